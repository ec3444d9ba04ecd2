package model

// Class 班级，关联一条学习路线
// swagger:model Class
type Class struct {
	UUIDBase
	Name      string `gorm:"size:100;not null" json:"name"`
	Code      string `gorm:"size:20;unique" json:"code"` // 学生加入班级用的邀请码
	TeacherID uint   `gorm:"index;not null" json:"teacherId"`
	RoadmapID string `gorm:"type:varchar(36);index" json:"roadmapId"`
	Note      string `gorm:"size:255" json:"note"`
}

func (Class) TableName() string {
	return "classes"
}

// ClassStudent 班级-学生关联
type ClassStudent struct {
	BaseModel
	ClassID string `gorm:"type:varchar(36);index;not null" json:"classId"`
	UserID  uint   `gorm:"index;not null" json:"userId"`
}

func (ClassStudent) TableName() string {
	return "class_students"
}
