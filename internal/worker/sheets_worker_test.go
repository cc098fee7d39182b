package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"maestro/internal/database"
	"maestro/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheets struct {
	mu       sync.Mutex
	upserts  []string
	statuses map[string]string
	err      error
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{statuses: make(map[string]string)}
}

func (f *fakeSheets) UpsertBooking(ctx context.Context, request *models.BookingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, request.PublicID)
	return nil
}

func (f *fakeSheets) UpdateBookingStatus(ctx context.Context, requestID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.statuses[requestID] = status
	return nil
}

func (f *fakeSheets) ReplaceBookingsSheet(ctx context.Context, requests []*models.BookingRequest) error {
	return nil
}

func setupWorker(t *testing.T, sheets *fakeSheets) (*SheetsWorker, *database.DB, *miniredis.Miniredis) {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	w := NewSheetsWorker(db, sheets, client, RetryPolicy{MaxRetries: 3}, &logger)
	return w, db, mr
}

func TestNewSheetsWorkerDefaults(t *testing.T) {
	w := NewSheetsWorker(nil, nil, nil, RetryPolicy{}, nil)

	assert.Equal(t, models.WorkerQueueSize, cap(w.queue))
	assert.Equal(t, 5, w.retryPolicy.MaxRetries)
	assert.Equal(t, 2*time.Second, w.retryPolicy.InitialDelay)
	assert.Equal(t, time.Minute, w.retryPolicy.MaxDelay)
}

func testBooking(id string) *models.BookingRequest {
	return &models.BookingRequest{
		PublicID:     id,
		PerformerID:  1,
		CustomerID:   100,
		CustomerName: "Мария",
		Date:         time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Status:       models.BookingStatusPending,
	}
}

func TestEnqueueTaskPersistsAndPushesToRedis(t *testing.T) {
	w, db, mr := setupWorker(t, newFakeSheets())
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, "", testBooking("req-1"), ""))

	// Задача в базе и в очереди redis
	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskUpsert, tasks[0].TaskType)
	assert.Equal(t, "req-1", tasks[0].RequestID)

	llen, err := mr.List("sheets:queue")
	require.NoError(t, err)
	assert.Len(t, llen, 1)
}

func TestEnqueueTaskValidation(t *testing.T) {
	w, _, _ := setupWorker(t, newFakeSheets())
	ctx := context.Background()

	assert.Error(t, w.EnqueueTask(ctx, "", "req-1", nil, ""))
	assert.Error(t, w.EnqueueTask(ctx, TaskUpsert, "", nil, ""))
}

func TestEnqueueTaskFallsBackToMemoryQueue(t *testing.T) {
	w, _, mr := setupWorker(t, newFakeSheets())
	ctx := context.Background()

	mr.Close()
	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, "", testBooking("req-1"), ""))

	task, ok := w.tryLocalQueue()
	require.True(t, ok)
	assert.Equal(t, "req-1", task.RequestID)
}

func TestProcessTaskUpsert(t *testing.T) {
	sheets := newFakeSheets()
	w, db, _ := setupWorker(t, sheets)
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, "", testBooking("req-1"), ""))
	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	w.processTask(ctx, &tasks[0])
	assert.Equal(t, []string{"req-1"}, sheets.upserts)

	// Задача помечена выполненной
	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestProcessTaskUpdateStatus(t *testing.T) {
	sheets := newFakeSheets()
	w, db, _ := setupWorker(t, sheets)
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, TaskUpdateStatus, "req-1", nil, models.BookingStatusConfirmed))
	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	w.processTask(ctx, &tasks[0])
	assert.Equal(t, models.BookingStatusConfirmed, sheets.statuses["req-1"])
}

func TestProcessTaskRetriesThenDeadLetters(t *testing.T) {
	sheets := newFakeSheets()
	sheets.err = errors.New("sheets unavailable")
	w, db, mr := setupWorker(t, sheets)
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, "", testBooking("req-1"), ""))
	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]

	// Первая неудача уводит задачу в retry с задержкой
	w.processTask(ctx, &task)
	got, err := db.GetSyncTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusRetry, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Contains(t, got.LastError, "sheets unavailable")

	// Исчерпание попыток: задача падает и уходит в deadletter
	got.RetryCount = w.retryPolicy.MaxRetries
	w.processTask(ctx, got)

	final, err := db.GetSyncTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusFailed, final.Status)

	dead, err := mr.List("sheets:deadletter")
	require.NoError(t, err)
	assert.Len(t, dead, 1)
}

func TestHandleSheetTaskUnknownType(t *testing.T) {
	w, _, _ := setupWorker(t, newFakeSheets())
	err := w.handleSheetTask(context.Background(), "bogus", sheetTaskPayload{})
	assert.Error(t, err)
}
