package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Task
var (
	ErrEmptyTaskUserID      = errors.New("task user ID cannot be empty")
	ErrEmptyTaskTitle       = errors.New("task title cannot be empty")
	ErrEmptyTaskDescription = errors.New("task description cannot be empty")
	ErrInvalidTaskDates     = errors.New("task end date cannot be before start date")
)

// Task represents a user-owned unit of work with a scheduled window.
// EstimatedDuration carries free-text like "3 días" straight from the AI
// service; Hours is the estimated effort in hours. The two are independent
// and are never reconciled against each other.
type Task struct {
	ID                int64      `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Priority          *int       `json:"priority,omitempty"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	EstimatedDuration *string    `json:"estimated_duration,omitempty"`
	Hours             int        `json:"hours"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user. The ID is zero until
// the store assigns one on insert. Returns an error if validation fails.
func NewTask(userID uuid.UUID, title, description string, startDate, endDate time.Time) (*Task, error) {
	task := &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		Hours:       3,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.Description == "" {
		return ErrEmptyTaskDescription
	}

	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return ErrInvalidTaskDates
	}

	return nil
}

// OwnedBy reports whether the task belongs to the given user.
// Handlers call this before any update or delete.
func (t *Task) OwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}
