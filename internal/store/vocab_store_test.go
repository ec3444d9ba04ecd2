package store

import (
	"fmt"
	"testing"

	"lingo_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vocab(id, topicID, word string, learned bool) model.VocabEntry {
	entry := model.VocabEntry{
		TopicID:   topicID,
		Word:      word,
		IsLearned: learned,
	}
	entry.ID = id
	return entry
}

func TestReplaceTopic(t *testing.T) {
	s := NewVocabStore()
	s.ReplaceTopic("t1", []model.VocabEntry{
		vocab("v1", "t1", "cat", false),
		vocab("v2", "t1", "dog", true),
	})
	s.ReplaceTopic("t2", []model.VocabEntry{
		vocab("v3", "t2", "bird", false),
	})

	// 再次替换 t1，分组必须与新列表完全一致
	s.ReplaceTopic("t1", []model.VocabEntry{
		vocab("v4", "t1", "fish", false),
	})

	got := s.ByTopic("t1")
	require.Len(t, got, 1)
	assert.Equal(t, "v4", got[0].ID)

	// 旧条目从扁平集合中移除
	_, ok := s.Get("v1")
	assert.False(t, ok)
	_, ok = s.Get("v2")
	assert.False(t, ok)

	// 其他主题不受影响
	other := s.ByTopic("t2")
	require.Len(t, other, 1)
	assert.Equal(t, "v3", other[0].ID)
}

func TestReplaceTopicPreservesOrder(t *testing.T) {
	s := NewVocabStore()

	var vocabs []model.VocabEntry
	for i := 0; i < 10; i++ {
		vocabs = append(vocabs, vocab(fmt.Sprintf("v%d", i), "t1", fmt.Sprintf("word%d", i), false))
	}
	s.ReplaceTopic("t1", vocabs)

	got := s.ByTopic("t1")
	require.Len(t, got, 10)
	for i, entry := range got {
		assert.Equal(t, fmt.Sprintf("v%d", i), entry.ID)
	}
}

func TestLoadedDistinguishesEmptyTopic(t *testing.T) {
	s := NewVocabStore()
	assert.False(t, s.Loaded("t1"))

	// 整组写入空列表也算加载过，和"从未加载"不同
	s.ReplaceTopic("t1", nil)
	assert.True(t, s.Loaded("t1"))
	assert.False(t, s.Loaded("t2"))
}

func TestUpdate(t *testing.T) {
	s := NewVocabStore()
	s.ReplaceTopic("t1", []model.VocabEntry{vocab("v1", "t1", "cat", false)})

	learned := true
	meaning := "猫"
	ok := s.Update("v1", VocabUpdate{IsLearned: &learned, Meaning: &meaning})
	require.True(t, ok)

	entry, found := s.Get("v1")
	require.True(t, found)
	assert.True(t, entry.IsLearned)
	assert.Equal(t, "猫", entry.Meaning)
	// 未指定的字段不动
	assert.Equal(t, "cat", entry.Word)
}

func TestUpdateMissingIDIsNoop(t *testing.T) {
	s := NewVocabStore()
	s.ReplaceTopic("t1", []model.VocabEntry{vocab("v1", "t1", "cat", false)})
	before := s.ByTopic("t1")

	learned := true
	ok := s.Update("nonexistent", VocabUpdate{IsLearned: &learned})
	assert.False(t, ok)

	after := s.ByTopic("t1")
	assert.Equal(t, before, after)
	assert.Len(t, s.All(), 1)
}

func TestProgress(t *testing.T) {
	s := NewVocabStore()

	// 空主题不抛除零
	empty := s.Progress("none")
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.Percentage)

	s.ReplaceTopic("t1", []model.VocabEntry{
		vocab("v1", "t1", "cat", true),
		vocab("v2", "t1", "dog", false),
		vocab("v3", "t1", "bird", false),
	})

	p := s.Progress("t1")
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 1, p.Known)
	assert.Equal(t, 33, p.Percentage)
}

func TestProgressBounds(t *testing.T) {
	s := NewVocabStore()
	for n := 0; n <= 7; n++ {
		for k := 0; k <= n; k++ {
			var vocabs []model.VocabEntry
			for i := 0; i < n; i++ {
				vocabs = append(vocabs, vocab(fmt.Sprintf("v%d", i), "t1", "w", i < k))
			}
			s.ReplaceTopic("t1", vocabs)

			p := s.Progress("t1")
			assert.GreaterOrEqual(t, p.Percentage, 0)
			assert.LessOrEqual(t, p.Percentage, 100)
			if n == 0 {
				assert.Equal(t, 0, p.Percentage)
			}
		}
	}
}

func TestToggleRecomputesProgress(t *testing.T) {
	s := NewVocabStore()
	s.ReplaceTopic("t1", []model.VocabEntry{vocab("v1", "t1", "cat", false)})
	assert.Equal(t, 0, s.Progress("t1").Percentage)

	learned := true
	require.True(t, s.Update("v1", VocabUpdate{IsLearned: &learned}))
	assert.Equal(t, 100, s.Progress("t1").Percentage)

	unlearned := false
	require.True(t, s.Update("v1", VocabUpdate{IsLearned: &unlearned}))
	assert.Equal(t, 0, s.Progress("t1").Percentage)
}

func TestProgressSkipsDeleted(t *testing.T) {
	s := NewVocabStore()
	deleted := vocab("v2", "t1", "dog", true)
	deleted.IsDeleted = true
	s.ReplaceTopic("t1", []model.VocabEntry{
		vocab("v1", "t1", "cat", true),
		deleted,
	})

	p := s.Progress("t1")
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 100, p.Percentage)
}
