package repository

import (
	"lingo_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ExerciseRepository struct {
	DB *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{DB: db}
}

func (r *ExerciseRepository) Create(exercise *model.Exercise) error {
	return r.DB.Create(exercise).Error
}

func (r *ExerciseRepository) FindByID(id string) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.DB.Where("id = ?", id).First(&exercise).Error
	return &exercise, err
}

// ByTopic 主题下全部练习，创建顺序稳定，保证合并结果的位置可比
func (r *ExerciseRepository) ByTopic(topicID string) ([]model.Exercise, error) {
	var exercises []model.Exercise
	err := r.DB.Where("topic_id = ?", topicID).
		Order("created_at asc, id asc").
		Find(&exercises).Error
	return exercises, err
}

func (r *ExerciseRepository) Update(exercise *model.Exercise) error {
	return r.DB.Save(exercise).Error
}

func (r *ExerciseRepository) UpdateFields(id string, updates map[string]interface{}) error {
	result := r.DB.Model(&model.Exercise{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ExerciseRepository) SetMediaStatus(id string, status model.MediaStatus) error {
	return r.UpdateFields(id, map[string]interface{}{"media_status": status})
}

func (r *ExerciseRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Exercise{}).Error
}
