package repository

import (
	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/util"

	"gorm.io/gorm"
)

type VocabRepository struct {
	DB *gorm.DB
}

func NewVocabRepository(db *gorm.DB) *VocabRepository {
	return &VocabRepository{DB: db}
}

func (r *VocabRepository) Create(vocab *model.VocabEntry) error {
	return r.DB.Create(vocab).Error
}

func (r *VocabRepository) FindByID(id string) (*model.VocabEntry, error) {
	var vocab model.VocabEntry
	err := r.DB.Where("id = ?", id).First(&vocab).Error
	return &vocab, err
}

// ByTopic 拉取主题下全部未删除词汇，创建时间倒序
func (r *VocabRepository) ByTopic(topicID string) ([]model.VocabEntry, error) {
	var vocabs []model.VocabEntry
	err := r.DB.Where("topic_id = ? AND is_deleted = ?", topicID, false).
		Order("created_at desc").
		Find(&vocabs).Error
	return vocabs, err
}

// Search 词汇检索。topicID 为空时做全局检索
func (r *VocabRepository) Search(topicID string, req util.SearchRequest) ([]model.VocabEntry, int64, error) {
	query := r.DB.Model(&model.VocabEntry{}).Where("is_deleted = ?", false)
	if topicID != "" {
		query = query.Where("topic_id = ?", topicID)
	}
	if req.SearchKey != "" {
		pattern := "%" + req.SearchKey + "%"
		query = query.Where("word LIKE ? OR meaning LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vocabs []model.VocabEntry
	err := query.Order(req.OrderClause("word", "created_at", "updated_at")).
		Scopes(req.Paginate()).
		Find(&vocabs).Error
	return vocabs, total, err
}

func (r *VocabRepository) UpdateFields(id string, updates map[string]interface{}) error {
	result := r.DB.Model(&model.VocabEntry{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetLearned 学习状态切换
func (r *VocabRepository) SetLearned(id string, learned bool) error {
	return r.UpdateFields(id, map[string]interface{}{"is_learned": learned})
}

// SoftDelete 标记删除，保留记录
func (r *VocabRepository) SoftDelete(id string) error {
	return r.UpdateFields(id, map[string]interface{}{"is_deleted": true})
}

// ProgressByTopic 直接在库里统计主题进度，供班级报表聚合使用
func (r *VocabRepository) ProgressByTopic(topicID string) (total int64, known int64, err error) {
	err = r.DB.Model(&model.VocabEntry{}).
		Where("topic_id = ? AND is_deleted = ?", topicID, false).
		Count(&total).Error
	if err != nil {
		return
	}
	err = r.DB.Model(&model.VocabEntry{}).
		Where("topic_id = ? AND is_deleted = ? AND is_learned = ?", topicID, false, true).
		Count(&known).Error
	return
}
