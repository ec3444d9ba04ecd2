package model

import "time"

type ExerciseType string

const (
	ExerciseQuiz            ExerciseType = "quiz"
	ExerciseTypeAnswerImage ExerciseType = "type-answer-image"
	ExerciseTypeAnswerAudio ExerciseType = "type-answer-audio"
)

// MediaStatus 练习媒体的同步状态。CMS 写入失败时置为 pending，由后台任务补偿重试
type MediaStatus string

const (
	MediaReady   MediaStatus = "ready"
	MediaPending MediaStatus = "pending"
	MediaNone    MediaStatus = "none" // quiz 类型没有媒体附件
)

// Exercise 练习题，主库记录。媒体文件存放在独立的CMS中，通过 AssetID 关联
// swagger:model Exercise
type Exercise struct {
	UUIDBase
	TopicID       string       `gorm:"type:varchar(36);index;not null" json:"topicId"`
	Type          ExerciseType `gorm:"type:enum('quiz','type-answer-image','type-answer-audio');not null" json:"type"`
	Content       string       `gorm:"type:text" json:"content"`
	CorrectAnswer string       `gorm:"size:255" json:"correctAnswer"`
	AssetID       string       `gorm:"size:64" json:"assetId"`
	MediaStatus   MediaStatus  `gorm:"type:enum('ready','pending','none');default:'none'" json:"mediaStatus"`
}

func (Exercise) TableName() string {
	return "exercises"
}

// MergedExercise 练习与CMS媒体记录合并后的展示结构，临时产物不落库
// swagger:model MergedExercise
type MergedExercise struct {
	ID            string       `json:"id"`
	TopicID       string       `json:"topicId"`
	Type          ExerciseType `json:"type"`
	Content       string       `json:"content"`
	CorrectAnswer string       `json:"correctAnswer"`
	AssetID       string       `json:"assetId"`
	ImageURL      string       `json:"imageUrl"`
	AudioURL      string       `json:"audioUrl"`
}

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxDone    OutboxStatus = "done"
	OutboxFailed  OutboxStatus = "failed"
)

// MediaOutbox 跨后端写补偿队列：主库写成功但CMS写失败的练习在这里排队重试
type MediaOutbox struct {
	BaseModel
	ExerciseID string       `gorm:"type:varchar(36);index;not null" json:"exerciseId"`
	Payload    string       `gorm:"type:text" json:"payload"` // CMS item 的 JSON 内容
	Attempts   int          `gorm:"default:0" json:"attempts"`
	LastError  string       `gorm:"size:500" json:"lastError"`
	Status     OutboxStatus `gorm:"type:enum('pending','done','failed');default:'pending';index" json:"status"`
	NextRetry  time.Time    `json:"nextRetry"`
}

func (MediaOutbox) TableName() string {
	return "media_outbox"
}
