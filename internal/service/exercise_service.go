package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"lingo_edu_backend/internal/cms"
	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/store"
	"lingo_edu_backend/internal/util"
	"lingo_edu_backend/pkg/logger"
	"lingo_edu_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	mergedCacheKeyPrefix = "merged_exercises:"
	mergedCacheTTL       = 5 * time.Minute
	outboxBatchSize      = 20
)

// ExerciseStore 练习主库访问
type ExerciseStore interface {
	Create(exercise *model.Exercise) error
	FindByID(id string) (*model.Exercise, error)
	ByTopic(topicID string) ([]model.Exercise, error)
	UpdateFields(id string, updates map[string]interface{}) error
	SetMediaStatus(id string, status model.MediaStatus) error
	Delete(id string) error
}

// MediaOutboxStore 补偿队列访问
type MediaOutboxStore interface {
	Enqueue(entry *model.MediaOutbox) error
	Due(limit int) ([]model.MediaOutbox, error)
	MarkDone(id uint) error
	MarkRetry(entry *model.MediaOutbox, retryErr error) error
}

// MediaBackend CMS侧操作，生产环境由 cms.Client 实现
type MediaBackend interface {
	AssetResolver
	ListItems(ctx context.Context, collection string, exerciseIDs []string) ([]cms.MediaRecord, error)
	CreateItem(ctx context.Context, collection string, record cms.MediaRecord) (*cms.MediaRecord, error)
	DeleteItem(ctx context.Context, collection, id string) error
}

// ExerciseService 练习服务：主库+CMS双后端的读合并与两阶段写
type ExerciseService struct {
	repo       ExerciseStore
	outbox     MediaOutboxStore
	media      MediaBackend
	collection string
	rdb        *redis.Client

	mu        sync.Mutex
	snapshots map[string]*store.ExerciseSnapshot // topicId -> 快照门控
}

func NewExerciseService(repo ExerciseStore, outbox MediaOutboxStore, media MediaBackend, collection string, rdb *redis.Client) *ExerciseService {
	return &ExerciseService{
		repo:       repo,
		outbox:     outbox,
		media:      media,
		collection: collection,
		rdb:        rdb,
		snapshots:  make(map[string]*store.ExerciseSnapshot),
	}
}

func (s *ExerciseService) snapshot(topicID string) *store.ExerciseSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[topicID]
	if !ok {
		snap = store.NewExerciseSnapshot()
		s.snapshots[topicID] = snap
	}
	return snap
}

// Refresh 重新拉取并合并主题下的练习。
// 每次刷新领取一个代次，过期响应直接丢弃，保证"后发起的请求胜出"。
// CMS 拉取失败时降级为未合并列表（媒体字段为空），不让整个视图失败
func (s *ExerciseService) Refresh(ctx context.Context, topicID string) ([]model.MergedExercise, error) {
	snap := s.snapshot(topicID)
	gen := snap.Begin()

	exercises, err := s.repo.ByTopic(topicID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(exercises))
	for _, e := range exercises {
		ids = append(ids, e.ID)
	}

	var records []cms.MediaRecord
	if len(ids) > 0 {
		records, err = s.media.ListItems(ctx, s.collection, ids)
		if err != nil {
			logger.Log.Warn("CMS媒体拉取失败，降级为未合并列表",
				zap.String("topicId", topicID), zap.Error(err))
			records = nil
		}
	}

	merged := MergeExercises(exercises, records, s.media)

	current, changed := snap.Publish(gen, merged)
	if !changed && snap.LastPublished() > gen {
		monitoring.StaleFetchCounter.Inc()
		return current, nil
	}

	if changed {
		s.cachePut(ctx, topicID, current)
	}
	return current, nil
}

// List 优先读缓存，未命中时走一次刷新
func (s *ExerciseService) List(ctx context.Context, topicID string) ([]model.MergedExercise, error) {
	if current := s.snapshot(topicID).Current(); current != nil {
		return current, nil
	}

	if cached, ok := s.cacheGet(ctx, topicID); ok {
		return cached, nil
	}

	return s.Refresh(ctx, topicID)
}

// Create 两阶段写：先主库后CMS。CMS 写失败不回滚主库，
// 练习标记为 media pending 进补偿队列重试，并返回可区分的错误
func (s *ExerciseService) Create(ctx context.Context, exercise *model.Exercise, record *cms.MediaRecord) error {
	if exercise.Type == model.ExerciseQuiz || record == nil {
		exercise.MediaStatus = model.MediaNone
		record = nil
	} else {
		exercise.MediaStatus = model.MediaReady
	}

	if err := s.repo.Create(exercise); err != nil {
		return err
	}

	if record != nil {
		record.ExerciseID = exercise.ID
		if _, err := s.media.CreateItem(ctx, s.collection, *record); err != nil {
			logger.Log.Error("CMS媒体写入失败，进入补偿队列",
				zap.String("exerciseId", exercise.ID), zap.Error(err))

			if statusErr := s.repo.SetMediaStatus(exercise.ID, model.MediaPending); statusErr != nil {
				logger.Log.Error("标记 media pending 失败", zap.Error(statusErr))
			}

			payload, _ := json.Marshal(record)
			enqueueErr := s.outbox.Enqueue(&model.MediaOutbox{
				ExerciseID: exercise.ID,
				Payload:    string(payload),
			})
			if enqueueErr != nil {
				logger.Log.Error("补偿队列入队失败", zap.Error(enqueueErr))
			}

			s.cacheInvalidate(ctx, exercise.TopicID)
			return fmt.Errorf("%w: %v", util.ErrMediaPending, err)
		}
	}

	// 用变更自身的完成来触发刷新，替代过去的固定延时重拉
	s.cacheInvalidate(ctx, exercise.TopicID)
	_, err := s.Refresh(ctx, exercise.TopicID)
	return err
}

func (s *ExerciseService) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	exercise, err := s.repo.FindByID(id)
	if err != nil {
		return util.ErrExerciseNotFound
	}

	if err := s.repo.UpdateFields(id, updates); err != nil {
		return err
	}

	s.cacheInvalidate(ctx, exercise.TopicID)
	_, err = s.Refresh(ctx, exercise.TopicID)
	return err
}

func (s *ExerciseService) Delete(ctx context.Context, id string) error {
	exercise, err := s.repo.FindByID(id)
	if err != nil {
		return util.ErrExerciseNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	// CMS 记录主键和文件ID不是同一套key，先按练习ID反查记录，再按记录主键删除。
	// 删除失败只记日志：孤儿媒体记录在合并时会被丢弃，不影响展示
	if exercise.Type != model.ExerciseQuiz {
		records, lookupErr := s.media.ListItems(ctx, s.collection, []string{id})
		if lookupErr != nil {
			logger.Log.Warn("CMS媒体记录反查失败", zap.String("exerciseId", id), zap.Error(lookupErr))
		}
		for _, record := range records {
			if err := s.media.DeleteItem(ctx, s.collection, record.ID); err != nil {
				logger.Log.Warn("CMS媒体删除失败",
					zap.String("exerciseId", id), zap.String("recordId", record.ID), zap.Error(err))
			}
		}
	}

	s.cacheInvalidate(ctx, exercise.TopicID)
	_, err = s.Refresh(ctx, exercise.TopicID)
	return err
}

// RetryPendingMedia 补偿队列重试，由后台定时任务驱动
func (s *ExerciseService) RetryPendingMedia(ctx context.Context) error {
	entries, err := s.outbox.Due(outboxBatchSize)
	if err != nil {
		return err
	}

	for i := range entries {
		entry := &entries[i]

		var record cms.MediaRecord
		if err := json.Unmarshal([]byte(entry.Payload), &record); err != nil {
			s.outbox.MarkRetry(entry, err)
			monitoring.OutboxRetryCounter.WithLabelValues("failure").Inc()
			continue
		}

		if _, err := s.media.CreateItem(ctx, s.collection, record); err != nil {
			s.outbox.MarkRetry(entry, err)
			monitoring.OutboxRetryCounter.WithLabelValues("failure").Inc()
			continue
		}

		s.outbox.MarkDone(entry.ID)
		s.repo.SetMediaStatus(entry.ExerciseID, model.MediaReady)
		monitoring.OutboxRetryCounter.WithLabelValues("success").Inc()
		logger.Log.Info("补偿重试成功", zap.String("exerciseId", entry.ExerciseID))
	}
	return nil
}

func (s *ExerciseService) cachePut(ctx context.Context, topicID string, merged []model.MergedExercise) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(merged)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, mergedCacheKeyPrefix+topicID, payload, mergedCacheTTL).Err(); err != nil {
		logger.Log.Warn("合并结果写缓存失败", zap.Error(err))
	}
}

func (s *ExerciseService) cacheGet(ctx context.Context, topicID string) ([]model.MergedExercise, bool) {
	if s.rdb == nil {
		return nil, false
	}
	val, err := s.rdb.Get(ctx, mergedCacheKeyPrefix+topicID).Result()
	if err != nil {
		return nil, false
	}
	var merged []model.MergedExercise
	if err := json.Unmarshal([]byte(val), &merged); err != nil {
		return nil, false
	}
	return merged, true
}

func (s *ExerciseService) cacheInvalidate(ctx context.Context, topicID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, mergedCacheKeyPrefix+topicID)
}
