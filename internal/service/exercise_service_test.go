package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lingo_edu_backend/internal/cms"
	"lingo_edu_backend/internal/model"
	"lingo_edu_backend/internal/util"
	"lingo_edu_backend/pkg/logger"
	"lingo_edu_backend/pkg/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

type mockExerciseRepo struct {
	createFn         func(*model.Exercise) error
	findFn           func(string) (*model.Exercise, error)
	byTopicFn        func(string) ([]model.Exercise, error)
	updateFieldsFn   func(string, map[string]interface{}) error
	setMediaStatusFn func(string, model.MediaStatus) error
	deleteFn         func(string) error

	mu       sync.Mutex
	statuses map[string]model.MediaStatus
}

func (m *mockExerciseRepo) Create(e *model.Exercise) error {
	if m.createFn != nil {
		return m.createFn(e)
	}
	if e.ID == "" {
		e.ID = model.GenerateUUID()
	}
	return nil
}

func (m *mockExerciseRepo) FindByID(id string) (*model.Exercise, error) {
	if m.findFn != nil {
		return m.findFn(id)
	}
	return nil, errors.New("not found")
}

func (m *mockExerciseRepo) ByTopic(topicID string) ([]model.Exercise, error) {
	if m.byTopicFn != nil {
		return m.byTopicFn(topicID)
	}
	return nil, nil
}

func (m *mockExerciseRepo) UpdateFields(id string, updates map[string]interface{}) error {
	if m.updateFieldsFn != nil {
		return m.updateFieldsFn(id, updates)
	}
	return nil
}

func (m *mockExerciseRepo) SetMediaStatus(id string, status model.MediaStatus) error {
	if m.setMediaStatusFn != nil {
		return m.setMediaStatusFn(id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statuses == nil {
		m.statuses = make(map[string]model.MediaStatus)
	}
	m.statuses[id] = status
	return nil
}

func (m *mockExerciseRepo) Delete(id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockExerciseRepo) statusOf(id string) model.MediaStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[id]
}

type mockOutbox struct {
	mu      sync.Mutex
	entries []model.MediaOutbox
	done    []uint
	retried []string
	dueFn   func(int) ([]model.MediaOutbox, error)
}

func (m *mockOutbox) Enqueue(entry *model.MediaOutbox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockOutbox) Due(limit int) ([]model.MediaOutbox, error) {
	if m.dueFn != nil {
		return m.dueFn(limit)
	}
	return nil, nil
}

func (m *mockOutbox) MarkDone(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done = append(m.done, id)
	return nil
}

func (m *mockOutbox) MarkRetry(entry *model.MediaOutbox, retryErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retried = append(m.retried, entry.ExerciseID)
	return nil
}

type mockMedia struct {
	mu       sync.Mutex
	listFn   func(ctx context.Context, collection string, ids []string) ([]cms.MediaRecord, error)
	createFn func(ctx context.Context, collection string, record cms.MediaRecord) (*cms.MediaRecord, error)
	created  []cms.MediaRecord
}

func (m *mockMedia) AssetURL(fileID string) string {
	if fileID == "" {
		return ""
	}
	return "http://cms.local/assets/" + fileID
}

func (m *mockMedia) ListItems(ctx context.Context, collection string, ids []string) ([]cms.MediaRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collection, ids)
	}
	return nil, nil
}

func (m *mockMedia) CreateItem(ctx context.Context, collection string, record cms.MediaRecord) (*cms.MediaRecord, error) {
	if m.createFn != nil {
		return m.createFn(ctx, collection, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, record)
	return &record, nil
}

func (m *mockMedia) DeleteItem(ctx context.Context, collection, id string) error {
	return nil
}

func newTestService(repo *mockExerciseRepo, outbox *mockOutbox, media *mockMedia) *ExerciseService {
	return NewExerciseService(repo, outbox, media, "exercise-media", nil)
}

func TestRefreshMergesMedia(t *testing.T) {
	repo := &mockExerciseRepo{
		byTopicFn: func(topicID string) ([]model.Exercise, error) {
			return []model.Exercise{
				exercise("ex1", topicID, model.ExerciseTypeAnswerImage, "cat"),
			}, nil
		},
	}
	media := &mockMedia{
		listFn: func(ctx context.Context, collection string, ids []string) ([]cms.MediaRecord, error) {
			return []cms.MediaRecord{
				{ExerciseID: "ex1", Type: "image", ExerciseImage: "file1"},
			}, nil
		},
	}
	svc := newTestService(repo, &mockOutbox{}, media)

	merged, err := svc.Refresh(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "http://cms.local/assets/file1", merged[0].ImageURL)
}

func TestRefreshKeepsReferenceWhenUnchanged(t *testing.T) {
	repo := &mockExerciseRepo{
		byTopicFn: func(topicID string) ([]model.Exercise, error) {
			return []model.Exercise{
				exercise("ex1", topicID, model.ExerciseQuiz, "a"),
			}, nil
		},
	}
	svc := newTestService(repo, &mockOutbox{}, &mockMedia{})

	first, err := svc.Refresh(context.Background(), "t1")
	require.NoError(t, err)
	second, err := svc.Refresh(context.Background(), "t1")
	require.NoError(t, err)

	// 数据没变时第二次刷新沿用同一底层切片
	assert.Same(t, &first[0], &second[0])
}

func TestRefreshCMSFailureFallsBack(t *testing.T) {
	repo := &mockExerciseRepo{
		byTopicFn: func(topicID string) ([]model.Exercise, error) {
			return []model.Exercise{
				exercise("ex1", topicID, model.ExerciseTypeAnswerImage, "cat"),
				exercise("ex2", topicID, model.ExerciseTypeAnswerAudio, "dog"),
			}, nil
		},
	}
	media := &mockMedia{
		listFn: func(ctx context.Context, collection string, ids []string) ([]cms.MediaRecord, error) {
			return nil, &cms.TransportError{Op: "list items", Err: errors.New("connection refused")}
		},
	}
	svc := newTestService(repo, &mockOutbox{}, media)

	merged, err := svc.Refresh(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "", merged[0].ImageURL)
	assert.Equal(t, "", merged[1].AudioURL)
}

func TestStaleRefreshDiscarded(t *testing.T) {
	before := testutil.ToFloat64(monitoring.StaleFetchCounter)

	repo := &mockExerciseRepo{
		byTopicFn: func(topicID string) ([]model.Exercise, error) {
			return []model.Exercise{
				exercise("ex1", topicID, model.ExerciseTypeAnswerImage, "cat"),
			}, nil
		},
	}

	firstEntered := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var callMu sync.Mutex
	media := &mockMedia{}
	media.listFn = func(ctx context.Context, collection string, ids []string) ([]cms.MediaRecord, error) {
		callMu.Lock()
		calls++
		n := calls
		callMu.Unlock()
		if n == 1 {
			close(firstEntered)
			<-release
			return []cms.MediaRecord{{ExerciseID: "ex1", Type: "image", ExerciseImage: "old"}}, nil
		}
		return []cms.MediaRecord{{ExerciseID: "ex1", Type: "image", ExerciseImage: "new"}}, nil
	}
	svc := newTestService(repo, &mockOutbox{}, media)

	var staleResult []model.MergedExercise
	done := make(chan struct{})
	go func() {
		defer close(done)
		staleResult, _ = svc.Refresh(context.Background(), "t1")
	}()

	<-firstEntered
	fresh, err := svc.Refresh(context.Background(), "t1")
	require.NoError(t, err)

	close(release)
	<-done

	// 晚发起但先返回的请求胜出，先发起的过期响应被丢弃
	assert.Equal(t, "http://cms.local/assets/new", fresh[0].ImageURL)
	assert.Equal(t, "http://cms.local/assets/new", staleResult[0].ImageURL)
	assert.Equal(t, before+1, testutil.ToFloat64(monitoring.StaleFetchCounter))
}

func TestCreateTwoPhaseSuccess(t *testing.T) {
	repo := &mockExerciseRepo{
		byTopicFn: func(topicID string) ([]model.Exercise, error) { return nil, nil },
	}
	media := &mockMedia{}
	svc := newTestService(repo, &mockOutbox{}, media)

	ex := exercise("", "t1", model.ExerciseTypeAnswerImage, "cat")
	record := &cms.MediaRecord{Type: "image", ExerciseImage: "file1"}

	err := svc.Create(context.Background(), &ex, record)
	require.NoError(t, err)
	assert.Equal(t, model.MediaReady, ex.MediaStatus)

	require.Len(t, media.created, 1)
	assert.Equal(t, ex.ID, media.created[0].ExerciseID)
}

func TestCreateMediaFailureEntersOutbox(t *testing.T) {
	repo := &mockExerciseRepo{}
	outbox := &mockOutbox{}
	media := &mockMedia{
		createFn: func(ctx context.Context, collection string, record cms.MediaRecord) (*cms.MediaRecord, error) {
			return nil, &cms.StatusError{Op: "create item", StatusCode: 503}
		},
	}
	svc := newTestService(repo, outbox, media)

	ex := exercise("", "t1", model.ExerciseTypeAnswerAudio, "dog")
	err := svc.Create(context.Background(), &ex, &cms.MediaRecord{Type: "audio", Audio: "file2"})

	// 主库写入保留，错误可与普通失败区分
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrMediaPending)
	assert.Equal(t, model.MediaPending, repo.statusOf(ex.ID))

	require.Len(t, outbox.entries, 1)
	assert.Equal(t, ex.ID, outbox.entries[0].ExerciseID)
	assert.Contains(t, outbox.entries[0].Payload, "file2")
}

func TestCreateQuizSkipsMedia(t *testing.T) {
	repo := &mockExerciseRepo{}
	media := &mockMedia{}
	svc := newTestService(repo, &mockOutbox{}, media)

	ex := exercise("", "t1", model.ExerciseQuiz, "b")
	err := svc.Create(context.Background(), &ex, &cms.MediaRecord{Type: "image", ExerciseImage: "ignored"})
	require.NoError(t, err)

	assert.Equal(t, model.MediaNone, ex.MediaStatus)
	assert.Empty(t, media.created)
}

func TestRetryPendingMedia(t *testing.T) {
	okEntry := model.MediaOutbox{
		ExerciseID: "ex1",
		Payload:    `{"exerciseId":"ex1","type":"image","exerciseImage":"file1"}`,
	}
	okEntry.ID = 1
	badEntry := model.MediaOutbox{
		ExerciseID: "ex2",
		Payload:    "not-json",
	}
	badEntry.ID = 2

	repo := &mockExerciseRepo{}
	outbox := &mockOutbox{
		dueFn: func(limit int) ([]model.MediaOutbox, error) {
			return []model.MediaOutbox{okEntry, badEntry}, nil
		},
	}
	media := &mockMedia{}
	svc := newTestService(repo, outbox, media)

	require.NoError(t, svc.RetryPendingMedia(context.Background()))

	assert.Equal(t, []uint{1}, outbox.done)
	assert.Equal(t, []string{"ex2"}, outbox.retried)
	assert.Equal(t, model.MediaReady, repo.statusOf("ex1"))
	require.Len(t, media.created, 1)
	assert.Equal(t, "ex1", media.created[0].ExerciseID)
}

func TestDeleteRemovesCMSRecord(t *testing.T) {
	// 用真实 cms.Client 验证删除打到记录主键上，而不是文件ID
	var deleted []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/items/exercise-media":
			assert.Equal(t, "ex1", r.URL.Query().Get("filter[exerciseId][_in]"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[{"id":"rec9","exerciseId":"ex1","type":"image","exerciseImage":"file123"}]}`)
		case r.Method == http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ex := exercise("ex1", "t1", model.ExerciseTypeAnswerImage, "cat")
	ex.AssetID = "file123"
	repo := &mockExerciseRepo{
		findFn: func(id string) (*model.Exercise, error) {
			return &ex, nil
		},
		byTopicFn: func(topicID string) ([]model.Exercise, error) { return nil, nil },
	}
	client := cms.NewClient(server.URL, "", time.Second)
	svc := NewExerciseService(repo, &mockOutbox{}, client, "exercise-media", nil)

	require.NoError(t, svc.Delete(context.Background(), "ex1"))
	assert.Equal(t, []string{"/items/exercise-media/rec9"}, deleted)
}
