package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hmoralesp/tarea-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Ownership checks are the caller's responsibility: these operations
// address tasks by primary key and do not verify the requesting user.
type TaskStore interface {
	// Create inserts a new task and returns the generated primary key.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) (int64, error)

	// GetByID retrieves a task by its primary key.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// ListByUser retrieves all tasks owned by the given user,
	// ordered by start date and then primary key.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update modifies an existing task. The owning user is never changed
	// by an update. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its primary key.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error
}
