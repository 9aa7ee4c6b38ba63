package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hmoralesp/tarea-api/internal/domain"
	"github.com/hmoralesp/tarea-api/internal/platform/logger"
	"github.com/hmoralesp/tarea-api/internal/store"
)

// TaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and
// managed by the caller. If logger is nil, a default logger will be used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task and returns the generated primary key.
// Returns store.ErrInvalidEntity if the owning user doesn't exist
// (foreign key violation).
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID.String()))
		return 0, err
	}

	query := `
		INSERT INTO tarea (fecha_inicio, fecha_fin, descripcion, titulo, prioridad,
			usuario, tiempo_estimado, horas, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING pk
	`

	var id int64
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.StartDate,
		task.EndDate,
		task.Description,
		task.Title,
		task.Priority,
		task.UserID,
		task.EstimatedDuration,
		task.Hours,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&id)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("user_id", task.UserID.String()))
			return 0, fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID.String()))
		return 0, MapError(err)
	}

	task.ID = id
	log.Info("task created successfully",
		slog.Int64("task_id", id),
		slog.String("user_id", task.UserID.String()))
	return id, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT pk, fecha_inicio, fecha_fin, descripcion, titulo, prioridad,
			usuario, tiempo_estimado, horas, created_at, updated_at
		FROM tarea
		WHERE pk = $1
	`

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, MapError(err)
	}

	return task, nil
}

// ListByUser implements store.TaskStore.ListByUser
func (s *TaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT pk, fecha_inicio, fecha_fin, descripcion, titulo, prioridad,
			usuario, tiempo_estimado, horas, created_at, updated_at
		FROM tarea
		WHERE usuario = $1
		ORDER BY fecha_inicio, pk
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
// The owning user column is deliberately absent from the SET list:
// ownership is immutable after creation.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	query := `
		UPDATE tarea
		SET fecha_inicio = $1, fecha_fin = $2, descripcion = $3, titulo = $4,
			prioridad = $5, tiempo_estimado = $6, horas = $7, updated_at = $8
		WHERE pk = $9
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.StartDate,
		task.EndDate,
		task.Description,
		task.Title,
		task.Priority,
		task.EstimatedDuration,
		task.Hours,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found during update", slog.Int64("task_id", task.ID))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully", slog.Int64("task_id", task.ID))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tarea WHERE pk = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found during delete", slog.Int64("task_id", id))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *TaskStore) scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var priority sql.NullInt64
	var estimated sql.NullString

	err := row.Scan(
		&task.ID,
		&task.StartDate,
		&task.EndDate,
		&task.Description,
		&task.Title,
		&priority,
		&task.UserID,
		&estimated,
		&task.Hours,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if priority.Valid {
		p := int(priority.Int64)
		task.Priority = &p
	}
	if estimated.Valid {
		e := estimated.String
		task.EstimatedDuration = &e
	}

	return &task, nil
}
