package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hmoralesp/tarea-api/internal/domain"
	"github.com/hmoralesp/tarea-api/internal/ingestion"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TaskRequest defines the payload for task create and update endpoints.
// The owning user is never read from the body; it always comes from the
// authenticated token.
type TaskRequest struct {
	Title             string  `json:"titulo"          validate:"required"`
	Description       string  `json:"descripcion"     validate:"required"`
	Priority          *int    `json:"prioridad"`
	StartDate         string  `json:"fecha_inicio"    validate:"required,datetime=2006-01-02"`
	EndDate           string  `json:"fecha_fin"       validate:"required,datetime=2006-01-02"`
	EstimatedDuration *string `json:"tiempo_estimado"`
	Hours             *int    `json:"horas"`
}

// TaskResponse defines the representation of a task returned to clients.
type TaskResponse struct {
	ID                int64     `json:"pk"`
	UserID            uuid.UUID `json:"usuario"`
	Title             string    `json:"titulo"`
	Description       string    `json:"descripcion"`
	Priority          *int      `json:"prioridad,omitempty"`
	StartDate         string    `json:"fecha_inicio"`
	EndDate           string    `json:"fecha_fin"`
	EstimatedDuration *string   `json:"tiempo_estimado,omitempty"`
	Hours             int       `json:"horas"`
}

// NewTaskResponse maps a domain task to its API representation.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:                task.ID,
		UserID:            task.UserID,
		Title:             task.Title,
		Description:       task.Description,
		Priority:          task.Priority,
		StartDate:         task.StartDate.Format(dateLayout),
		EndDate:           task.EndDate.Format(dateLayout),
		EstimatedDuration: task.EstimatedDuration,
		Hours:             task.Hours,
	}
}

// dateLayout is the wire format for task dates.
const dateLayout = "2006-01-02"

// parseDate parses a wire-format date into a UTC time.
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

// IngestRequest defines the payload for the AI ingestion endpoint.
// Both fields are optional: an empty pdf_url is passed through to the AI
// service as-is, and an empty question falls back to the default prompt.
type IngestRequest struct {
	PDFURL   string `json:"pdf_url"`
	Question string `json:"question"`
}

// IngestResponse defines the successful response for the AI ingestion endpoint.
type IngestResponse struct {
	Processed []ingestion.Result `json:"tareasProcesadas"`
}
