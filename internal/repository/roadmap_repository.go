package repository

import (
	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/util"

	"gorm.io/gorm"
)

type RoadmapRepository struct {
	DB *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: db}
}

func (r *RoadmapRepository) Create(roadmap *model.Roadmap) error {
	return r.DB.Create(roadmap).Error
}

func (r *RoadmapRepository) FindByID(id string) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.Where("id = ?", id).First(&roadmap).Error
	return &roadmap, err
}

func (r *RoadmapRepository) List(req util.SearchRequest, category string, publishedOnly bool) ([]model.Roadmap, int64, error) {
	query := r.DB.Model(&model.Roadmap{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if req.SearchKey != "" {
		query = query.Where("name LIKE ?", "%"+req.SearchKey+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var roadmaps []model.Roadmap
	err := query.Order(req.OrderClause("name", "category", "created_at")).
		Scopes(req.Paginate()).
		Find(&roadmaps).Error
	return roadmaps, total, err
}

func (r *RoadmapRepository) Update(roadmap *model.Roadmap) error {
	return r.DB.Save(roadmap).Error
}

func (r *RoadmapRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("roadmap_id = ?", id).Delete(&model.Topic{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Roadmap{}).Error
	})
}

func (r *RoadmapRepository) CreateTopic(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *RoadmapRepository) FindTopic(id string) (*model.Topic, error) {
	var topic model.Topic
	err := r.DB.Where("id = ?", id).First(&topic).Error
	return &topic, err
}

// TopicsByRoadmap 按节点顺序返回路线下的主题
func (r *RoadmapRepository) TopicsByRoadmap(roadmapID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Where("roadmap_id = ?", roadmapID).
		Order("sort_order asc").
		Find(&topics).Error
	return topics, err
}

func (r *RoadmapRepository) UpdateTopic(topic *model.Topic) error {
	return r.DB.Save(topic).Error
}

func (r *RoadmapRepository) DeleteTopic(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Topic{}).Error
}

// ReorderTopics 按给定的ID顺序重排主题节点
func (r *RoadmapRepository) ReorderTopics(roadmapID string, orderedIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			err := tx.Model(&model.Topic{}).
				Where("id = ? AND roadmap_id = ?", id, roadmapID).
				Update("sort_order", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
