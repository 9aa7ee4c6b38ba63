package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmoralesp/tarea-api/internal/api/shared"
	"github.com/hmoralesp/tarea-api/internal/domain"
	"github.com/hmoralesp/tarea-api/internal/ingestion"
	"github.com/hmoralesp/tarea-api/internal/platform/aiclient"
	"github.com/hmoralesp/tarea-api/internal/store"
)

// fakeTaskStore keeps tasks in memory keyed by their primary key.
type fakeTaskStore struct {
	byID   map[int64]*domain.Task
	nextID int64
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{byID: make(map[int64]*domain.Task)}
}

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) (int64, error) {
	f.nextID++
	copied := *task
	copied.ID = f.nextID
	f.byID[copied.ID] = &copied
	return copied.ID, nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	task, ok := f.byID[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for _, task := range f.byID {
		if task.UserID == userID {
			copied := *task
			tasks = append(tasks, &copied)
		}
	}
	return tasks, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	if _, ok := f.byID[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	f.byID[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(f.byID, id)
	return nil
}

// stubAIClient returns a canned repaired response or error.
type stubAIClient struct {
	response string
	err      error
}

func (s *stubAIClient) FetchTasks(context.Context, string, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// newTaskServer mounts the handler behind a router that injects the given
// user ID the way the authentication middleware would.
func newTaskServer(h *TaskHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Post("/tasks/ai", h.IngestTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	return r
}

func doRequest(t *testing.T, server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func seedTask(t *testing.T, tasks *fakeTaskStore, userID uuid.UUID, title string) int64 {
	t.Helper()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	task, err := domain.NewTask(userID, title, title, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	id, err := tasks.Create(context.Background(), task)
	require.NoError(t, err)
	return id
}

func TestTaskHandlerCRUD(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()

	newHandler := func(tasks *fakeTaskStore) *TaskHandler {
		svc := ingestion.NewService(&stubAIClient{response: "{}"}, tasks, "q", nil)
		return NewTaskHandler(tasks, svc, nil)
	}

	t.Run("create assigns owner from token", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodPost, "/tasks", `{
			"titulo": "Write report",
			"descripcion": "Write the quarterly report",
			"fecha_inicio": "2025-03-10",
			"fecha_fin": "2025-03-12",
			"horas": 5
		}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, owner, resp.UserID)
		assert.Equal(t, "Write report", resp.Title)
		assert.Equal(t, "2025-03-10", resp.StartDate)
		assert.Equal(t, "2025-03-12", resp.EndDate)
		assert.Equal(t, 5, resp.Hours)
	})

	t.Run("create rejects invalid dates", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodPost, "/tasks", `{
			"titulo": "X",
			"descripcion": "Y",
			"fecha_inicio": "10/03/2025",
			"fecha_fin": "2025-03-12"
		}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list returns only own tasks", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		seedTask(t, tasks, owner, "Mine")
		seedTask(t, tasks, stranger, "Theirs")
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodGet, "/tasks", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Mine", resp[0].Title)
	})

	t.Run("get own task", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		id := seedTask(t, tasks, owner, "Mine")
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodGet, "/tasks/1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.ID)
	})

	t.Run("get someone else's task is forbidden", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		seedTask(t, tasks, stranger, "Theirs")
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodGet, "/tasks/1", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("get missing task is not found", func(t *testing.T) {
		t.Parallel()

		server := newTaskServer(newHandler(newFakeTaskStore()), owner)
		rec := doRequest(t, server, http.MethodGet, "/tasks/99", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get with malformed id is bad request", func(t *testing.T) {
		t.Parallel()

		server := newTaskServer(newHandler(newFakeTaskStore()), owner)
		rec := doRequest(t, server, http.MethodGet, "/tasks/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update preserves identity and ownership", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		id := seedTask(t, tasks, owner, "Old title")
		original, err := tasks.GetByID(context.Background(), id)
		require.NoError(t, err)
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodPut, "/tasks/1", `{
			"titulo": "New title",
			"descripcion": "New description",
			"fecha_inicio": "2025-03-11",
			"fecha_fin": "2025-03-13"
		}`)
		require.Equal(t, http.StatusOK, rec.Code)

		updated, err := tasks.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, owner, updated.UserID)
		assert.Equal(t, original.CreatedAt, updated.CreatedAt)
	})

	t.Run("update someone else's task is forbidden", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		seedTask(t, tasks, stranger, "Theirs")
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodPut, "/tasks/1", `{
			"titulo": "Hijacked",
			"descripcion": "Hijacked",
			"fecha_inicio": "2025-03-11",
			"fecha_fin": "2025-03-13"
		}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		unchanged, err := tasks.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Theirs", unchanged.Title)
	})

	t.Run("delete own task", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		id := seedTask(t, tasks, owner, "Mine")
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodDelete, "/tasks/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"mensaje": "Tarea eliminada"}`, rec.Body.String())

		_, err := tasks.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("delete someone else's task is forbidden", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		seedTask(t, tasks, stranger, "Theirs")
		server := newTaskServer(newHandler(tasks), owner)

		rec := doRequest(t, server, http.MethodDelete, "/tasks/1", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		_, err := tasks.GetByID(context.Background(), 1)
		assert.NoError(t, err)
	})
}

func TestTaskHandlerIngest(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	newHandler := func(tasks *fakeTaskStore, client *stubAIClient) *TaskHandler {
		svc := ingestion.NewService(client, tasks, "q", nil)
		return NewTaskHandler(tasks, svc, nil)
	}

	t.Run("persists extracted tasks for the caller", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		client := &stubAIClient{response: `{
			"tarea_1": "Write report",
			"tiempoEstimado_1": "2 días",
			"horasEstimadas_1": "5"
		}`}
		server := newTaskServer(newHandler(tasks, client), owner)

		rec := doRequest(t, server, http.MethodPost, "/tasks/ai",
			`{"pdf_url": "http://example.com/doc.pdf"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp IngestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Processed, 1)
		assert.Equal(t, "Write report", resp.Processed[0].Description)
		assert.Equal(t, int64(1), resp.Processed[0].TaskID)

		stored, err := tasks.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, owner, stored.UserID)
	})

	t.Run("response without tasks is bad request", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		client := &stubAIClient{response: `{"resumen": "nada"}`}
		server := newTaskServer(newHandler(tasks, client), owner)

		rec := doRequest(t, server, http.MethodPost, "/tasks/ai",
			`{"pdf_url": "http://example.com/doc.pdf"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exhausted fetch attempts are a server error", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		client := &stubAIClient{err: fmt.Errorf("%w: connection refused", aiclient.ErrRemoteFetch)}
		server := newTaskServer(newHandler(tasks, client), owner)

		rec := doRequest(t, server, http.MethodPost, "/tasks/ai",
			`{"pdf_url": "http://example.com/doc.pdf"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()

		tasks := newFakeTaskStore()
		server := newTaskServer(newHandler(tasks, &stubAIClient{response: "{}"}), owner)

		rec := doRequest(t, server, http.MethodPost, "/tasks/ai", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
