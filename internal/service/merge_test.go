package service

import (
	"testing"

	"lingo_edu_backend/internal/cms"
	"lingo_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct{}

func (fakeResolver) AssetURL(fileID string) string {
	if fileID == "" {
		return ""
	}
	return "http://cms.local/assets/" + fileID
}

func exercise(id, topicID string, exType model.ExerciseType, answer string) model.Exercise {
	e := model.Exercise{
		TopicID:       topicID,
		Type:          exType,
		CorrectAnswer: answer,
	}
	e.ID = id
	return e
}

func TestMergeCompleteness(t *testing.T) {
	exercises := []model.Exercise{
		exercise("ex1", "t1", model.ExerciseTypeAnswerImage, "cat"),
		exercise("ex2", "t1", model.ExerciseQuiz, "b"),
		exercise("ex3", "t1", model.ExerciseTypeAnswerAudio, "dog"),
	}
	records := []cms.MediaRecord{
		{ExerciseID: "ex1", Type: "image", ExerciseImage: "file1"},
		{ExerciseID: "ex3", Type: "audio", Audio: "file3"},
		{ExerciseID: "orphan", Type: "image", ExerciseImage: "file9"},
	}

	merged := MergeExercises(exercises, records, fakeResolver{})

	// 每个练习恰好一条，顺序与输入一致
	require.Len(t, merged, 3)
	assert.Equal(t, "ex1", merged[0].ID)
	assert.Equal(t, "ex2", merged[1].ID)
	assert.Equal(t, "ex3", merged[2].ID)

	assert.Equal(t, "http://cms.local/assets/file1", merged[0].ImageURL)
	assert.Equal(t, "", merged[1].ImageURL)
	assert.Equal(t, "http://cms.local/assets/file3", merged[2].AudioURL)
}

func TestMergeCreateThenMergeScenario(t *testing.T) {
	exercises := []model.Exercise{
		exercise("ex1", "t1", model.ExerciseTypeAnswerImage, "cat"),
	}
	records := []cms.MediaRecord{
		{ExerciseID: "ex1", Type: "image", ExerciseImage: "file123"},
	}

	merged := MergeExercises(exercises, records, fakeResolver{})
	require.Len(t, merged, 1)
	assert.Equal(t, "ex1", merged[0].ID)
	assert.Equal(t, "cat", merged[0].CorrectAnswer)
	assert.Equal(t, "http://cms.local/assets/file123", merged[0].ImageURL)
}

func TestMergeOrphanRecordsDropped(t *testing.T) {
	records := []cms.MediaRecord{
		{ExerciseID: "ghost", Type: "audio", Audio: "file9"},
	}

	merged := MergeExercises(nil, records, fakeResolver{})
	assert.Empty(t, merged)
}

func TestMergeIdempotent(t *testing.T) {
	exercises := []model.Exercise{
		exercise("ex1", "t1", model.ExerciseTypeAnswerImage, "cat"),
		exercise("ex2", "t1", model.ExerciseTypeAnswerAudio, "dog"),
	}
	records := []cms.MediaRecord{
		{ExerciseID: "ex1", Type: "image", ExerciseImage: "file1"},
		{ExerciseID: "ex2", Type: "audio", Audio: "file2"},
	}

	first := MergeExercises(exercises, records, fakeResolver{})
	second := MergeExercises(exercises, records, fakeResolver{})
	assert.Equal(t, first, second)
}

func TestMergeDuplicateRecordsLastWins(t *testing.T) {
	exercises := []model.Exercise{
		exercise("ex1", "t1", model.ExerciseTypeAnswerImage, "cat"),
	}
	records := []cms.MediaRecord{
		{ExerciseID: "ex1", Type: "image", ExerciseImage: "old"},
		{ExerciseID: "ex1", Type: "image", ExerciseImage: "new"},
	}

	merged := MergeExercises(exercises, records, fakeResolver{})
	require.Len(t, merged, 1)
	assert.Equal(t, "http://cms.local/assets/new", merged[0].ImageURL)
}

func TestMergeNoRecordsFallback(t *testing.T) {
	// CMS 拉取失败时调用方传 nil records，媒体字段为空但列表完整
	exercises := []model.Exercise{
		exercise("ex1", "t1", model.ExerciseTypeAnswerImage, "cat"),
		exercise("ex2", "t1", model.ExerciseQuiz, "a"),
	}

	merged := MergeExercises(exercises, nil, fakeResolver{})
	require.Len(t, merged, 2)
	for _, m := range merged {
		assert.Equal(t, "", m.ImageURL)
		assert.Equal(t, "", m.AudioURL)
	}
}
