package service

import (
	"errors"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/repository"
	"lingo_edu_backend/internal/util"

	"gorm.io/gorm"
)

// RoadmapDetail 路线及其有序主题节点
type RoadmapDetail struct {
	model.Roadmap
	Topics []model.Topic `json:"topics"`
}

type RoadmapService struct {
	RoadmapRepo *repository.RoadmapRepository
}

func NewRoadmapService(roadmapRepo *repository.RoadmapRepository) *RoadmapService {
	return &RoadmapService{RoadmapRepo: roadmapRepo}
}

func (s *RoadmapService) Create(roadmap *model.Roadmap) error {
	return s.RoadmapRepo.Create(roadmap)
}

func (s *RoadmapService) Get(id string) (*RoadmapDetail, error) {
	roadmap, err := s.RoadmapRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRoadmapNotFound
	}
	if err != nil {
		return nil, err
	}

	topics, err := s.RoadmapRepo.TopicsByRoadmap(id)
	if err != nil {
		return nil, err
	}
	return &RoadmapDetail{Roadmap: *roadmap, Topics: topics}, nil
}

func (s *RoadmapService) List(req util.SearchRequest, category string, publishedOnly bool) ([]model.Roadmap, int64, error) {
	return s.RoadmapRepo.List(req, category, publishedOnly)
}

func (s *RoadmapService) Update(id string, updates map[string]interface{}) (*model.Roadmap, error) {
	roadmap, err := s.RoadmapRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRoadmapNotFound
	}
	if err != nil {
		return nil, err
	}

	if name, ok := updates["name"].(string); ok && name != "" {
		roadmap.Name = name
	}
	if description, ok := updates["description"].(string); ok {
		roadmap.Description = description
	}
	if category, ok := updates["category"].(string); ok && category != "" {
		roadmap.Category = category
	}
	if published, ok := updates["published"].(bool); ok {
		roadmap.Published = published
	}

	if err := s.RoadmapRepo.Update(roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

func (s *RoadmapService) Delete(id string) error {
	if _, err := s.RoadmapRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrRoadmapNotFound
	}
	return s.RoadmapRepo.Delete(id)
}

// AddTopic 在路线末尾追加主题节点
func (s *RoadmapService) AddTopic(roadmapID string, topic *model.Topic) error {
	if _, err := s.RoadmapRepo.FindByID(roadmapID); err != nil {
		return util.ErrRoadmapNotFound
	}

	existing, err := s.RoadmapRepo.TopicsByRoadmap(roadmapID)
	if err != nil {
		return err
	}

	topic.RoadmapID = roadmapID
	topic.Order = len(existing) + 1
	return s.RoadmapRepo.CreateTopic(topic)
}

func (s *RoadmapService) GetTopic(id string) (*model.Topic, error) {
	topic, err := s.RoadmapRepo.FindTopic(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTopicNotFound
	}
	return topic, err
}

func (s *RoadmapService) UpdateTopic(id string, name, description string) (*model.Topic, error) {
	topic, err := s.GetTopic(id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		topic.Name = name
	}
	if description != "" {
		topic.Description = description
	}

	if err := s.RoadmapRepo.UpdateTopic(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *RoadmapService) DeleteTopic(id string) error {
	if _, err := s.GetTopic(id); err != nil {
		return err
	}
	return s.RoadmapRepo.DeleteTopic(id)
}

// ReorderTopics 按传入顺序重排节点，要求ID集合与路线现有主题一致
func (s *RoadmapService) ReorderTopics(roadmapID string, orderedIDs []string) error {
	topics, err := s.RoadmapRepo.TopicsByRoadmap(roadmapID)
	if err != nil {
		return err
	}
	if len(topics) != len(orderedIDs) {
		return errors.New("节点列表与路线现有主题不一致")
	}

	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t.ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return util.ErrTopicNotFound
		}
	}

	return s.RoadmapRepo.ReorderTopics(roadmapID, orderedIDs)
}
