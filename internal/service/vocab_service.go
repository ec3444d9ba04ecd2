package service

import (
	"errors"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/store"
	"lingo_edu_backend/internal/util"
	"lingo_edu_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VocabBackend 词汇持久层访问
type VocabBackend interface {
	Create(vocab *model.VocabEntry) error
	FindByID(id string) (*model.VocabEntry, error)
	ByTopic(topicID string) ([]model.VocabEntry, error)
	Search(topicID string, req util.SearchRequest) ([]model.VocabEntry, int64, error)
	UpdateFields(id string, updates map[string]interface{}) error
	SetLearned(id string, learned bool) error
	SoftDelete(id string) error
}

// VocabService 词汇服务。内存仓库作为按主题的读视图，
// 写操作先落库再增量同步内存索引，不做全量重建
type VocabService struct {
	repo  VocabBackend
	cache *store.VocabStore
}

func NewVocabService(repo VocabBackend, cache *store.VocabStore) *VocabService {
	return &VocabService{repo: repo, cache: cache}
}

// LoadTopic 从库里整体加载主题词汇并替换内存分组
func (s *VocabService) LoadTopic(topicID string) ([]model.VocabEntry, error) {
	vocabs, err := s.repo.ByTopic(topicID)
	if err != nil {
		return nil, err
	}
	s.cache.ReplaceTopic(topicID, vocabs)
	return s.cache.ByTopic(topicID), nil
}

func (s *VocabService) Create(vocab *model.VocabEntry) error {
	if err := s.repo.Create(vocab); err != nil {
		return err
	}

	// 分组未加载时整组拉库，单条新词不能充当整个主题
	if !s.cache.Loaded(vocab.TopicID) {
		_, err := s.LoadTopic(vocab.TopicID)
		return err
	}

	// 新词插到内存分组头部，与 created_at desc 的库序一致
	existing := s.cache.ByTopic(vocab.TopicID)
	s.cache.ReplaceTopic(vocab.TopicID, append([]model.VocabEntry{*vocab}, existing...))
	return nil
}

func (s *VocabService) Get(id string) (*model.VocabEntry, error) {
	if entry, ok := s.cache.Get(id); ok && !entry.IsDeleted {
		return &entry, nil
	}
	entry, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrVocabNotFound
	}
	return entry, err
}

// Update 字段更新，落库成功后浅合并到内存
func (s *VocabService) Update(id string, updates store.VocabUpdate) error {
	fields := make(map[string]interface{})
	if updates.Word != nil {
		fields["word"] = *updates.Word
	}
	if updates.Meaning != nil {
		fields["meaning"] = *updates.Meaning
	}
	if updates.Example != nil {
		fields["example"] = *updates.Example
	}
	if updates.ImageURL != nil {
		fields["image_url"] = *updates.ImageURL
	}
	if updates.AudioURL != nil {
		fields["audio_url"] = *updates.AudioURL
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.repo.UpdateFields(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrVocabNotFound
		}
		return err
	}

	s.cache.Update(id, updates)
	return nil
}

// ToggleLearned 乐观切换学习状态：先改内存让界面立刻生效，落库失败再回滚
func (s *VocabService) ToggleLearned(id string) (*model.TopicProgress, error) {
	entry, ok := s.cache.Get(id)
	if !ok {
		// 缓存未命中说明主题分组还没加载，整组拉库后再取，
		// 否则后面的进度会按单条子集计算
		located, err := s.repo.FindByID(id)
		if err != nil {
			return nil, util.ErrVocabNotFound
		}
		if _, err := s.LoadTopic(located.TopicID); err != nil {
			return nil, err
		}
		entry, ok = s.cache.Get(id)
		if !ok {
			return nil, util.ErrVocabNotFound
		}
	}

	next := !entry.IsLearned
	s.cache.Update(id, store.VocabUpdate{IsLearned: &next})

	if err := s.repo.SetLearned(id, next); err != nil {
		prev := entry.IsLearned
		s.cache.Update(id, store.VocabUpdate{IsLearned: &prev})
		logger.Log.Warn("学习状态落库失败，已回滚内存状态",
			zap.String("vocabId", id), zap.Error(err))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVocabNotFound
		}
		return nil, err
	}

	progress := s.cache.Progress(entry.TopicID)
	return &progress, nil
}

// Delete 软删除，内存侧同步打标记
func (s *VocabService) Delete(id string) error {
	if err := s.repo.SoftDelete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrVocabNotFound
		}
		return err
	}
	deleted := true
	s.cache.Update(id, store.VocabUpdate{IsDeleted: &deleted})
	return nil
}

// Search 分页检索走持久层，不经过内存视图
func (s *VocabService) Search(topicID string, req util.SearchRequest) ([]model.VocabEntry, int64, error) {
	return s.repo.Search(topicID, req)
}

// Progress 主题学习进度，优先用内存视图，未加载时按需拉取
func (s *VocabService) Progress(topicID string) (*model.TopicProgress, error) {
	if !s.cache.Loaded(topicID) {
		if _, err := s.LoadTopic(topicID); err != nil {
			return nil, err
		}
	}
	progress := s.cache.Progress(topicID)
	return &progress, nil
}
