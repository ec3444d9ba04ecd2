package store

import (
	"sync"

	"lingo_edu_backend/internal/model"
)

// ExerciseSnapshot 持有某个主题最近发布的合并练习列表。
// 两件事：1) 按请求代次丢弃过期响应（晚发起的请求胜出，而不是晚返回的）；
// 2) 指纹比较门控，数据没变时沿用旧切片引用，避免下游无谓刷新。
// 指纹比较是按位置的：顺序变化会被当成整体变化，这是沿用已有行为的已知局限
type ExerciseSnapshot struct {
	mu        sync.Mutex
	issued    uint64
	published uint64
	current   []model.MergedExercise
}

func NewExerciseSnapshot() *ExerciseSnapshot {
	return &ExerciseSnapshot{}
}

// Begin 领取一个单调递增的请求代次，发起刷新前调用
func (s *ExerciseSnapshot) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	return s.issued
}

// Publish 尝试发布一次刷新结果。代次不高于已发布代次的结果直接丢弃；
// 指纹逐位相等时保留原引用。返回当前生效列表和本次是否真正替换了数据
func (s *ExerciseSnapshot) Publish(gen uint64, next []model.MergedExercise) ([]model.MergedExercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.published {
		return s.current, false
	}
	s.published = gen

	if fingerprintEqual(s.current, next) {
		return s.current, false
	}

	s.current = next
	return s.current, true
}

// LastPublished 最近一次成功发布的代次，用于判断某次刷新是否被丢弃
func (s *ExerciseSnapshot) LastPublished() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.published
}

// Current 当前生效的列表
func (s *ExerciseSnapshot) Current() []model.MergedExercise {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

func fingerprintEqual(prev, next []model.MergedExercise) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if prev[i].ID != next[i].ID ||
			prev[i].Content != next[i].Content ||
			prev[i].CorrectAnswer != next[i].CorrectAnswer ||
			prev[i].AssetID != next[i].AssetID ||
			prev[i].ImageURL != next[i].ImageURL ||
			prev[i].AudioURL != next[i].AudioURL {
			return false
		}
	}
	return true
}
