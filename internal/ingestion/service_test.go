package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmoralesp/tarea-api/internal/domain"
	"github.com/hmoralesp/tarea-api/internal/store"
)

// fakeClient returns a canned response or error for every fetch.
type fakeClient struct {
	response     string
	err          error
	lastPDFURL   string
	lastQuestion string
	calls        int
}

func (f *fakeClient) FetchTasks(_ context.Context, pdfURL, question string) (string, error) {
	f.calls++
	f.lastPDFURL = pdfURL
	f.lastQuestion = question
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakeTaskStore records created tasks in memory and can be told to fail a
// specific create call.
type fakeTaskStore struct {
	created []*domain.Task
	nextID  int64
	failOn  map[int]error // 1-based call number -> error
	calls   int
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) (int64, error) {
	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return 0, err
	}
	f.nextID++
	copied := *task
	copied.ID = f.nextID
	f.created = append(f.created, &copied)
	return f.nextID, nil
}

func (f *fakeTaskStore) GetByID(context.Context, int64) (*domain.Task, error) {
	return nil, store.ErrTaskNotFound
}

func (f *fakeTaskStore) ListByUser(context.Context, uuid.UUID) ([]*domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) Update(context.Context, *domain.Task) error {
	return store.ErrTaskNotFound
}

func (f *fakeTaskStore) Delete(context.Context, int64) error {
	return store.ErrTaskNotFound
}

func newTestService(client *fakeClient, tasks *fakeTaskStore, now time.Time) *Service {
	svc := NewService(client, tasks, "Extrae las tareas", nil)
	svc.timeFunc = func() time.Time { return now }
	return svc
}

func TestServiceIngest(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("persists extracted tasks with computed dates", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{response: `{
			"tarea_1": "Write report",
			"tiempoEstimado_1": "2 días",
			"horasEstimadas_1": "5"
		}`}
		tasks := &fakeTaskStore{}
		svc := newTestService(client, tasks, now)

		results, err := svc.Ingest(context.Background(), userID, "http://example.com/doc.pdf", "resume")
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.Equal(t, "Write report", results[0].Description)
		require.NotNil(t, results[0].EstimatedDuration)
		assert.Equal(t, "2 días", *results[0].EstimatedDuration)
		assert.Equal(t, 5, results[0].Hours)
		assert.Equal(t, int64(1), results[0].TaskID)
		assert.Empty(t, results[0].Err)

		require.Len(t, tasks.created, 1)
		created := tasks.created[0]
		assert.Equal(t, userID, created.UserID)
		assert.Equal(t, "Write report", created.Title)
		assert.Equal(t, "Write report", created.Description)
		assert.Equal(t, today, created.StartDate)
		assert.Equal(t, today.AddDate(0, 0, 2), created.EndDate)
		assert.Equal(t, 5, created.Hours)
	})

	t.Run("persistence failure is captured per record", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{response: `{
			"tarea_1": "A",
			"tarea_2": "B",
			"tarea_3": "C"
		}`}
		tasks := &fakeTaskStore{failOn: map[int]error{2: errors.New("connection reset")}}
		svc := newTestService(client, tasks, now)

		results, err := svc.Ingest(context.Background(), userID, "http://example.com/doc.pdf", "")
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, int64(1), results[0].TaskID)
		assert.Empty(t, results[0].Err)

		assert.Zero(t, results[1].TaskID)
		assert.Equal(t, "connection reset", results[1].Err)

		assert.Equal(t, int64(2), results[2].TaskID)
		assert.Empty(t, results[2].Err)

		assert.Equal(t, 3, tasks.calls)
	})

	t.Run("blank question falls back to the default prompt", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{response: `{"tarea_1": "X"}`}
		tasks := &fakeTaskStore{}
		svc := newTestService(client, tasks, now)

		_, err := svc.Ingest(context.Background(), userID, "http://example.com/doc.pdf", "   ")
		require.NoError(t, err)
		assert.Equal(t, "Extrae las tareas", client.lastQuestion)
	})

	t.Run("explicit question is passed through trimmed", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{response: `{"tarea_1": "X"}`}
		tasks := &fakeTaskStore{}
		svc := newTestService(client, tasks, now)

		_, err := svc.Ingest(context.Background(), userID, " http://example.com/doc.pdf ", " lista de tareas ")
		require.NoError(t, err)
		assert.Equal(t, "lista de tareas", client.lastQuestion)
		assert.Equal(t, "http://example.com/doc.pdf", client.lastPDFURL)
	})

	t.Run("fetch error is returned unchanged", func(t *testing.T) {
		t.Parallel()

		fetchErr := errors.New("remote unavailable")
		client := &fakeClient{err: fetchErr}
		tasks := &fakeTaskStore{}
		svc := newTestService(client, tasks, now)

		_, err := svc.Ingest(context.Background(), userID, "http://example.com/doc.pdf", "")
		require.ErrorIs(t, err, fetchErr)
		assert.Zero(t, tasks.calls)
	})

	t.Run("unparseable response maps to ErrMalformedResponse", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{response: `not json at all {{{`}
		tasks := &fakeTaskStore{}
		svc := newTestService(client, tasks, now)

		_, err := svc.Ingest(context.Background(), userID, "http://example.com/doc.pdf", "")
		require.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("payload without task keys maps to ErrNoTasksFound", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{response: `{"resumen": "nada que hacer"}`}
		tasks := &fakeTaskStore{}
		svc := newTestService(client, tasks, now)

		_, err := svc.Ingest(context.Background(), userID, "http://example.com/doc.pdf", "")
		require.ErrorIs(t, err, ErrNoTasksFound)
		assert.Zero(t, tasks.calls)
	})

	t.Run("results preserve extraction order", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{response: `{
			"tarea_2": "Second key first",
			"tarea_1": "First key second"
		}`}
		tasks := &fakeTaskStore{}
		svc := newTestService(client, tasks, now)

		results, err := svc.Ingest(context.Background(), userID, "http://example.com/doc.pdf", "")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Second key first", results[0].Description)
		assert.Equal(t, "First key second", results[1].Description)
	})
}

func TestNewServicePanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewService(nil, &fakeTaskStore{}, "q", nil)
	})
	assert.Panics(t, func() {
		NewService(&fakeClient{}, nil, "q", nil)
	})
}
