package repository

import (
	"time"

	"lingo_edu_backend/internal/model"

	"gorm.io/gorm"
)

const maxOutboxAttempts = 10

type OutboxRepository struct {
	DB *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

func (r *OutboxRepository) Enqueue(entry *model.MediaOutbox) error {
	if entry.NextRetry.IsZero() {
		entry.NextRetry = time.Now()
	}
	return r.DB.Create(entry).Error
}

// Due 取出到期待重试的条目
func (r *OutboxRepository) Due(limit int) ([]model.MediaOutbox, error) {
	var entries []model.MediaOutbox
	err := r.DB.Where("status = ? AND next_retry <= ?", model.OutboxPending, time.Now()).
		Order("next_retry asc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *OutboxRepository) MarkDone(id uint) error {
	return r.DB.Model(&model.MediaOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.OutboxDone, "last_error": ""}).
		Error
}

// MarkRetry 记一次失败，按尝试次数线性退避；超过重试上限的转为 failed 终态
func (r *OutboxRepository) MarkRetry(entry *model.MediaOutbox, retryErr error) error {
	entry.Attempts++
	entry.LastError = retryErr.Error()
	if len(entry.LastError) > 500 {
		entry.LastError = entry.LastError[:500]
	}

	if entry.Attempts >= maxOutboxAttempts {
		entry.Status = model.OutboxFailed
	} else {
		backoff := time.Duration(entry.Attempts) * time.Minute
		entry.NextRetry = time.Now().Add(backoff)
	}

	return r.DB.Save(entry).Error
}
