package store

import (
	"testing"

	"lingo_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func merged(id, content, imageURL string) model.MergedExercise {
	return model.MergedExercise{
		ID:       id,
		TopicID:  "t1",
		Type:     model.ExerciseTypeAnswerImage,
		Content:  content,
		ImageURL: imageURL,
	}
}

func TestPublishReplacesOnChange(t *testing.T) {
	s := NewExerciseSnapshot()

	gen := s.Begin()
	current, changed := s.Publish(gen, []model.MergedExercise{merged("ex1", "q1", "u1")})
	assert.True(t, changed)
	require.Len(t, current, 1)

	gen = s.Begin()
	current, changed = s.Publish(gen, []model.MergedExercise{merged("ex1", "q1-edited", "u1")})
	assert.True(t, changed)
	assert.Equal(t, "q1-edited", current[0].Content)
}

func TestPublishKeepsReferenceWhenEqual(t *testing.T) {
	s := NewExerciseSnapshot()

	first := []model.MergedExercise{merged("ex1", "q1", "u1"), merged("ex2", "q2", "u2")}
	gen := s.Begin()
	published, _ := s.Publish(gen, first)

	// 字段相同但切片是另一个实例，门控必须返回旧引用
	second := []model.MergedExercise{merged("ex1", "q1", "u1"), merged("ex2", "q2", "u2")}
	gen = s.Begin()
	current, changed := s.Publish(gen, second)

	assert.False(t, changed)
	assert.Same(t, &published[0], &current[0])
}

func TestPublishDetectsLengthChange(t *testing.T) {
	s := NewExerciseSnapshot()

	gen := s.Begin()
	s.Publish(gen, []model.MergedExercise{merged("ex1", "q1", "u1")})

	gen = s.Begin()
	current, changed := s.Publish(gen, []model.MergedExercise{
		merged("ex1", "q1", "u1"),
		merged("ex2", "q2", "u2"),
	})
	assert.True(t, changed)
	assert.Len(t, current, 2)
}

func TestStaleGenerationDiscarded(t *testing.T) {
	s := NewExerciseSnapshot()

	older := s.Begin()
	newer := s.Begin()

	// 晚发起的请求先返回
	current, changed := s.Publish(newer, []model.MergedExercise{merged("ex1", "fresh", "u1")})
	assert.True(t, changed)
	assert.Equal(t, "fresh", current[0].Content)

	// 早发起的请求后返回，必须被丢弃
	current, changed = s.Publish(older, []model.MergedExercise{merged("ex1", "stale", "u1")})
	assert.False(t, changed)
	assert.Equal(t, "fresh", current[0].Content)
	assert.Equal(t, "fresh", s.Current()[0].Content)
}

func TestReorderCountsAsChange(t *testing.T) {
	s := NewExerciseSnapshot()

	gen := s.Begin()
	s.Publish(gen, []model.MergedExercise{merged("ex1", "q1", "u1"), merged("ex2", "q2", "u2")})

	// 位置比较：顺序互换被视为整体变化
	gen = s.Begin()
	_, changed := s.Publish(gen, []model.MergedExercise{merged("ex2", "q2", "u2"), merged("ex1", "q1", "u1")})
	assert.True(t, changed)
}
