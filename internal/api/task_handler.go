package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hmoralesp/tarea-api/internal/domain"
	"github.com/hmoralesp/tarea-api/internal/ingestion"
	"github.com/hmoralesp/tarea-api/internal/platform/logger"
	"github.com/hmoralesp/tarea-api/internal/store"
)

// TaskHandler handles task CRUD and AI ingestion API requests.
type TaskHandler struct {
	taskStore store.TaskStore
	ingestor  *ingestion.Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
// If log is nil, a default logger will be used.
func NewTaskHandler(taskStore store.TaskStore, ingestor *ingestion.Service, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}

	return &TaskHandler{
		taskStore: taskStore,
		ingestor:  ingestor,
		validator: validator.New(),
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks. It returns only the authenticated user's tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	tasks, err := h.taskStore.ListByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}

	RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	_, task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// CreateTask handles POST /tasks. The owning user always comes from the
// authenticated token, never from the request body.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	task, ok := h.decodeTaskRequest(w, r, userID)
	if !ok {
		return
	}

	id, err := h.taskStore.Create(r.Context(), task)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	task.ID = id

	RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// UpdateTask handles PUT /tasks/{id}. The task must exist and belong to
// the authenticated user before any mutation happens; ownership itself is
// never reassigned.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, existing, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	task, ok := h.decodeTaskRequest(w, r, userID)
	if !ok {
		return
	}

	task.ID = existing.ID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	_, task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), task.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]string{"mensaje": "Tarea eliminada"})
}

// IngestTasks handles POST /tasks/ai. It submits the document reference to
// the AI service and bulk-inserts the extracted tasks for the
// authenticated user.
func (h *TaskHandler) IngestTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req IngestRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Info("starting AI ingestion", slog.String("user_id", userID.String()))

	results, err := h.ingestor.Ingest(r.Context(), userID, req.PDFURL, req.Question)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, IngestResponse{Processed: results})
}

// loadOwnedTask extracts the user ID and path ID, loads the task, and
// verifies ownership. It writes the error response and returns ok=false
// when any step fails. The ownership check runs before any mutation.
func (h *TaskHandler) loadOwnedTask(w http.ResponseWriter, r *http.Request) (uuid.UUID, *domain.Task, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, nil, false
	}

	id, err := getPathID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return uuid.Nil, nil, false
	}

	task, err := h.taskStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, nil, false
	}

	if !task.OwnedBy(userID) {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, nil, false
	}

	return userID, task, true
}

// decodeTaskRequest decodes and validates a task payload and builds the
// domain task owned by the given user. It writes the error response and
// returns ok=false when any step fails.
func (h *TaskHandler) decodeTaskRequest(
	w http.ResponseWriter,
	r *http.Request,
	userID uuid.UUID,
) (*domain.Task, bool) {
	var req TaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return nil, false
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return nil, false
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid fecha_inicio")
		return nil, false
	}

	endDate, err := parseDate(req.EndDate)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid fecha_fin")
		return nil, false
	}

	task, err := domain.NewTask(userID, req.Title, req.Description, startDate, endDate)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid task data: "+err.Error())
		return nil, false
	}

	task.Priority = req.Priority
	task.EstimatedDuration = req.EstimatedDuration
	if req.Hours != nil {
		task.Hours = *req.Hours
	}

	return task, true
}
