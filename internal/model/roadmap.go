package model

// Roadmap 学习路线，包含有序的主题节点
// swagger:model Roadmap
type Roadmap struct {
	UUIDBase
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:50;index" json:"category"`
	Published   bool   `gorm:"default:false" json:"published"`
	CreatorID   uint   `gorm:"index" json:"creatorId"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

// Topic 路线下的主题节点，词汇和练习都挂在主题下
// swagger:model Topic
type Topic struct {
	UUIDBase
	RoadmapID   string `gorm:"type:varchar(36);index;not null" json:"roadmapId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Topic) TableName() string {
	return "topics"
}
