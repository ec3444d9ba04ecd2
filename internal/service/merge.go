package service

import (
	"lingo_edu_backend/internal/cms"
	"lingo_edu_backend/internal/model"
)

// AssetResolver 把CMS文件ID解析为可访问URL
type AssetResolver interface {
	AssetURL(fileID string) string
}

// MergeExercises 把主库练习和CMS媒体记录合并成展示结构。纯函数，无副作用。
// 结果每个练习恰好一条，顺序与输入一致；没有对应练习的CMS孤儿记录被丢弃。
// 同一练习有多条CMS记录时取最后一条
func MergeExercises(exercises []model.Exercise, records []cms.MediaRecord, resolver AssetResolver) []model.MergedExercise {
	byExercise := make(map[string]cms.MediaRecord, len(records))
	for _, record := range records {
		byExercise[record.ExerciseID] = record
	}

	merged := make([]model.MergedExercise, 0, len(exercises))
	for _, exercise := range exercises {
		m := model.MergedExercise{
			ID:            exercise.ID,
			TopicID:       exercise.TopicID,
			Type:          exercise.Type,
			Content:       exercise.Content,
			CorrectAnswer: exercise.CorrectAnswer,
			AssetID:       exercise.AssetID,
		}

		if record, ok := byExercise[exercise.ID]; ok {
			m.ImageURL = resolver.AssetURL(record.ExerciseImage)
			m.AudioURL = resolver.AssetURL(record.Audio)
		}

		merged = append(merged, m)
	}
	return merged
}
