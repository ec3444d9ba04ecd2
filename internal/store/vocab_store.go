package store

import (
	"math"
	"sync"

	"lingo_edu_backend/internal/model"
)

// VocabUpdate 浅合并更新，nil 字段不改动。TopicID 不允许通过更新迁移
type VocabUpdate struct {
	Word      *string
	Meaning   *string
	Example   *string
	ImageURL  *string
	AudioURL  *string
	IsLearned *bool
	IsDeleted *bool
}

// VocabStore 词汇内存仓库：按ID持有扁平集合，主题索引随插入/更新增量维护，
// 不做全量重建。主题分组内保持 ReplaceTopic 传入的顺序
type VocabStore struct {
	mu      sync.RWMutex
	entries map[string]model.VocabEntry
	byTopic map[string][]string // topicId -> 有序的词汇ID列表
	loaded  map[string]bool     // 整组写入过的主题，区分"未加载"和"加载后为空"
}

func NewVocabStore() *VocabStore {
	return &VocabStore{
		entries: make(map[string]model.VocabEntry),
		byTopic: make(map[string][]string),
		loaded:  make(map[string]bool),
	}
}

// ReplaceTopic 整体替换某个主题的词汇（先删后插），其他主题不受影响。
// 调用后该主题分组与传入列表完全一致
func (s *VocabStore) ReplaceTopic(topicID string, vocabs []model.VocabEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byTopic[topicID] {
		delete(s.entries, id)
	}

	ids := make([]string, 0, len(vocabs))
	for _, v := range vocabs {
		v.TopicID = topicID
		s.entries[v.ID] = v
		ids = append(ids, v.ID)
	}
	s.byTopic[topicID] = ids
	s.loaded[topicID] = true
}

// Loaded 主题分组是否被 ReplaceTopic 整组写入过。
// 进度统计等全量视角的读取必须先确认分组完整
func (s *VocabStore) Loaded(topicID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loaded[topicID]
}

// Update 按ID浅合并字段，ID不存在时静默返回 false
func (s *VocabStore) Update(id string, updates VocabUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return false
	}

	if updates.Word != nil {
		entry.Word = *updates.Word
	}
	if updates.Meaning != nil {
		entry.Meaning = *updates.Meaning
	}
	if updates.Example != nil {
		entry.Example = *updates.Example
	}
	if updates.ImageURL != nil {
		entry.ImageURL = *updates.ImageURL
	}
	if updates.AudioURL != nil {
		entry.AudioURL = *updates.AudioURL
	}
	if updates.IsLearned != nil {
		entry.IsLearned = *updates.IsLearned
	}
	if updates.IsDeleted != nil {
		entry.IsDeleted = *updates.IsDeleted
	}

	s.entries[id] = entry
	return true
}

func (s *VocabStore) Get(id string) (model.VocabEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	return entry, ok
}

// ByTopic 返回主题下的词汇，顺序与最近一次 ReplaceTopic 一致
func (s *VocabStore) ByTopic(topicID string) []model.VocabEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byTopic[topicID]
	result := make([]model.VocabEntry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := s.entries[id]; ok {
			result = append(result, entry)
		}
	}
	return result
}

// All 返回扁平集合的快照，顺序不保证
func (s *VocabStore) All() []model.VocabEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.VocabEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		result = append(result, entry)
	}
	return result
}

// Progress 统计主题进度。空主题进度为 0，避免除零
func (s *VocabStore) Progress(topicID string) model.TopicProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	progress := model.TopicProgress{TopicID: topicID}
	for _, id := range s.byTopic[topicID] {
		entry, ok := s.entries[id]
		if !ok || entry.IsDeleted {
			continue
		}
		progress.Total++
		if entry.IsLearned {
			progress.Known++
		}
	}

	if progress.Total > 0 {
		progress.Percentage = int(math.Round(float64(progress.Known) / float64(progress.Total) * 100))
	}
	return progress
}
