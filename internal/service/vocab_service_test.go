package service

import (
	"errors"
	"testing"

	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/store"
	"lingo_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockVocabRepo struct {
	createFn     func(*model.VocabEntry) error
	findFn       func(string) (*model.VocabEntry, error)
	byTopicFn    func(string) ([]model.VocabEntry, error)
	searchFn     func(string, util.SearchRequest) ([]model.VocabEntry, int64, error)
	updateFn     func(string, map[string]interface{}) error
	setLearnedFn func(string, bool) error
	softDeleteFn func(string) error
}

func (m *mockVocabRepo) Create(v *model.VocabEntry) error {
	if m.createFn != nil {
		return m.createFn(v)
	}
	if v.ID == "" {
		v.ID = model.GenerateUUID()
	}
	return nil
}

func (m *mockVocabRepo) FindByID(id string) (*model.VocabEntry, error) {
	if m.findFn != nil {
		return m.findFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVocabRepo) ByTopic(topicID string) ([]model.VocabEntry, error) {
	if m.byTopicFn != nil {
		return m.byTopicFn(topicID)
	}
	return nil, nil
}

func (m *mockVocabRepo) Search(topicID string, req util.SearchRequest) ([]model.VocabEntry, int64, error) {
	if m.searchFn != nil {
		return m.searchFn(topicID, req)
	}
	return nil, 0, nil
}

func (m *mockVocabRepo) UpdateFields(id string, updates map[string]interface{}) error {
	if m.updateFn != nil {
		return m.updateFn(id, updates)
	}
	return nil
}

func (m *mockVocabRepo) SetLearned(id string, learned bool) error {
	if m.setLearnedFn != nil {
		return m.setLearnedFn(id, learned)
	}
	return nil
}

func (m *mockVocabRepo) SoftDelete(id string) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(id)
	}
	return nil
}

func vocabEntry(id, topicID, word string, learned bool) model.VocabEntry {
	v := model.VocabEntry{
		TopicID:   topicID,
		Word:      word,
		IsLearned: learned,
	}
	v.ID = id
	return v
}

func TestLoadTopicReplacesGroup(t *testing.T) {
	repo := &mockVocabRepo{
		byTopicFn: func(topicID string) ([]model.VocabEntry, error) {
			return []model.VocabEntry{
				vocabEntry("v1", topicID, "apple", true),
				vocabEntry("v2", topicID, "banana", false),
			}, nil
		},
	}
	cache := store.NewVocabStore()
	cache.ReplaceTopic("t1", []model.VocabEntry{vocabEntry("stale", "t1", "old", false)})
	svc := NewVocabService(repo, cache)

	vocabs, err := svc.LoadTopic("t1")
	require.NoError(t, err)
	require.Len(t, vocabs, 2)
	assert.Equal(t, "v1", vocabs[0].ID)

	// 旧条目被整体替换掉
	_, ok := cache.Get("stale")
	assert.False(t, ok)
}

func TestCreateInsertsAtFront(t *testing.T) {
	cache := store.NewVocabStore()
	cache.ReplaceTopic("t1", []model.VocabEntry{vocabEntry("v1", "t1", "apple", false)})
	svc := NewVocabService(&mockVocabRepo{}, cache)

	fresh := vocabEntry("", "t1", "banana", false)
	require.NoError(t, svc.Create(&fresh))

	vocabs := cache.ByTopic("t1")
	require.Len(t, vocabs, 2)
	assert.Equal(t, "banana", vocabs[0].Word)
	assert.Equal(t, "apple", vocabs[1].Word)
}

func TestCreateColdCacheLoadsWholeTopic(t *testing.T) {
	// 库里已有3个学过的词，新建第4个时内存分组还没加载过
	repo := &mockVocabRepo{
		byTopicFn: func(topicID string) ([]model.VocabEntry, error) {
			return []model.VocabEntry{
				vocabEntry("v4", topicID, "date", false),
				vocabEntry("v1", topicID, "apple", true),
				vocabEntry("v2", topicID, "banana", true),
				vocabEntry("v3", topicID, "cherry", true),
			}, nil
		},
	}
	svc := NewVocabService(repo, store.NewVocabStore())

	fresh := vocabEntry("v4", "t1", "date", false)
	require.NoError(t, svc.Create(&fresh))

	// 进度必须按整个主题算，而不是只看刚建的那一条
	progress, err := svc.Progress("t1")
	require.NoError(t, err)
	assert.Equal(t, 4, progress.Total)
	assert.Equal(t, 3, progress.Known)
	assert.Equal(t, 75, progress.Percentage)
}

func TestToggleLearnedColdCacheLoadsWholeTopic(t *testing.T) {
	repo := &mockVocabRepo{
		findFn: func(id string) (*model.VocabEntry, error) {
			entry := vocabEntry("v1", "t1", "apple", false)
			return &entry, nil
		},
		byTopicFn: func(topicID string) ([]model.VocabEntry, error) {
			return []model.VocabEntry{
				vocabEntry("v1", topicID, "apple", false),
				vocabEntry("v2", topicID, "banana", false),
				vocabEntry("v3", topicID, "cherry", false),
			}, nil
		},
	}
	svc := NewVocabService(repo, store.NewVocabStore())

	progress, err := svc.ToggleLearned("v1")
	require.NoError(t, err)
	assert.Equal(t, 3, progress.Total)
	assert.Equal(t, 1, progress.Known)
	assert.Equal(t, 33, progress.Percentage)
}

func TestToggleLearnedRecomputesProgress(t *testing.T) {
	cache := store.NewVocabStore()
	cache.ReplaceTopic("t1", []model.VocabEntry{
		vocabEntry("v1", "t1", "apple", false),
		vocabEntry("v2", "t1", "banana", false),
	})
	svc := NewVocabService(&mockVocabRepo{}, cache)

	progress, err := svc.ToggleLearned("v1")
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Percentage)
	assert.Equal(t, 1, progress.Known)

	progress, err = svc.ToggleLearned("v1")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Percentage)
}

func TestToggleLearnedRollbackOnFailure(t *testing.T) {
	repo := &mockVocabRepo{
		setLearnedFn: func(id string, learned bool) error {
			return errors.New("db down")
		},
	}
	cache := store.NewVocabStore()
	cache.ReplaceTopic("t1", []model.VocabEntry{vocabEntry("v1", "t1", "apple", false)})
	svc := NewVocabService(repo, cache)

	_, err := svc.ToggleLearned("v1")
	require.Error(t, err)

	// 乐观更新被回滚，内存状态和库一致
	entry, ok := cache.Get("v1")
	require.True(t, ok)
	assert.False(t, entry.IsLearned)
}

func TestToggleLearnedMissingVocab(t *testing.T) {
	svc := NewVocabService(&mockVocabRepo{}, store.NewVocabStore())

	_, err := svc.ToggleLearned("ghost")
	assert.ErrorIs(t, err, util.ErrVocabNotFound)
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	repo := &mockVocabRepo{
		updateFn: func(id string, updates map[string]interface{}) error {
			return gorm.ErrRecordNotFound
		},
	}
	svc := NewVocabService(repo, store.NewVocabStore())

	word := "pear"
	err := svc.Update("ghost", store.VocabUpdate{Word: &word})
	assert.ErrorIs(t, err, util.ErrVocabNotFound)
}

func TestDeleteExcludedFromProgress(t *testing.T) {
	cache := store.NewVocabStore()
	cache.ReplaceTopic("t1", []model.VocabEntry{
		vocabEntry("v1", "t1", "apple", true),
		vocabEntry("v2", "t1", "banana", false),
	})
	svc := NewVocabService(&mockVocabRepo{}, cache)

	require.NoError(t, svc.Delete("v2"))

	progress, err := svc.Progress("t1")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Total)
	assert.Equal(t, 100, progress.Percentage)
}
