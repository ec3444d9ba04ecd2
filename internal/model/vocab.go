package model

// VocabEntry 词汇条目。字段命名沿用前端约定（is_learned/is_deleted 为历史下划线风格）
// swagger:model VocabEntry
type VocabEntry struct {
	UUIDBase
	TopicID   string `gorm:"type:varchar(36);index;not null" json:"topicId"`
	Word      string `gorm:"size:100;not null" json:"word"`
	Meaning   string `gorm:"size:255" json:"meaning"`
	Example   string `gorm:"type:text" json:"example"`
	ImageURL  string `gorm:"size:255" json:"imageUrl"`
	AudioURL  string `gorm:"size:255" json:"audioUrl"`
	IsLearned bool   `gorm:"default:false" json:"is_learned"`
	IsDeleted bool   `gorm:"default:false" json:"is_deleted"`
}

func (VocabEntry) TableName() string {
	return "vocab_entries"
}

// TopicProgress 单个主题的学习进度
// swagger:model TopicProgress
type TopicProgress struct {
	TopicID    string `json:"topicId"`
	Total      int    `json:"total"`
	Known      int    `json:"known"`
	Percentage int    `json:"percentage"`
}
