package repository

import (
	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/util"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) FindByID(id string) (*model.Class, error) {
	var class model.Class
	err := r.DB.Where("id = ?", id).First(&class).Error
	return &class, err
}

func (r *ClassRepository) FindByCode(code string) (*model.Class, error) {
	var class model.Class
	err := r.DB.Where("code = ?", code).First(&class).Error
	return &class, err
}

func (r *ClassRepository) List(teacherID uint, req util.SearchRequest) ([]model.Class, int64, error) {
	query := r.DB.Model(&model.Class{})
	if teacherID != 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if req.SearchKey != "" {
		query = query.Where("name LIKE ?", "%"+req.SearchKey+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var classes []model.Class
	err := query.Order(req.OrderClause("name", "created_at")).
		Scopes(req.Paginate()).
		Find(&classes).Error
	return classes, total, err
}

func (r *ClassRepository) Update(class *model.Class) error {
	return r.DB.Save(class).Error
}

func (r *ClassRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_id = ?", id).Delete(&model.ClassStudent{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Class{}).Error
	})
}

// AddStudents 批量加入学生，已在班级中的跳过
func (r *ClassRepository) AddStudents(classID string, userIDs []uint) (int, error) {
	added := 0
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range userIDs {
			var existing int64
			tx.Model(&model.ClassStudent{}).
				Where("class_id = ? AND user_id = ?", classID, userID).
				Count(&existing)
			if existing > 0 {
				continue
			}
			if err := tx.Create(&model.ClassStudent{ClassID: classID, UserID: userID}).Error; err != nil {
				return err
			}
			added++
		}
		return nil
	})
	return added, err
}

func (r *ClassRepository) Students(classID string) ([]model.User, error) {
	var users []model.User
	err := r.DB.Model(&model.User{}).
		Joins("JOIN class_students ON class_students.user_id = users.id").
		Where("class_students.class_id = ? AND class_students.deleted_at IS NULL", classID).
		Find(&users).Error
	return users, err
}

func (r *ClassRepository) RemoveStudent(classID string, userID uint) error {
	return r.DB.Where("class_id = ? AND user_id = ?", classID, userID).
		Delete(&model.ClassStudent{}).Error
}
