package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hmoralesp/tarea-api/internal/domain"
	"github.com/hmoralesp/tarea-api/internal/platform/aiclient"
	"github.com/hmoralesp/tarea-api/internal/platform/logger"
	"github.com/hmoralesp/tarea-api/internal/store"
)

// Result is the per-record outcome of an ingestion run. Either TaskID is
// set (the generated primary key) or Err carries the persistence failure.
type Result struct {
	Description       string  `json:"tarea"`
	EstimatedDuration *string `json:"tiempoEstimado"`
	Hours             int     `json:"horas"`
	TaskID            int64   `json:"insertId,omitempty"`
	Err               string  `json:"error,omitempty"`
}

// Service orchestrates the ingestion pipeline: fetch and repair the AI
// response, extract task records, compute scheduling dates, and persist
// each record. A persistence failure for one record never aborts the rest
// of the batch.
type Service struct {
	client          aiclient.Client
	tasks           store.TaskStore
	defaultQuestion string
	logger          *slog.Logger
	timeFunc        func() time.Time // Injectable for testing
}

// NewService creates a Service with the given dependencies.
// If log is nil, a default logger will be used.
func NewService(client aiclient.Client, tasks store.TaskStore, defaultQuestion string, log *slog.Logger) *Service {
	if client == nil {
		panic("client cannot be nil")
	}
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		client:          client,
		tasks:           tasks,
		defaultQuestion: defaultQuestion,
		logger:          log.With(slog.String("component", "ingestion")),
		timeFunc:        time.Now,
	}
}

// Ingest runs the full pipeline for the given authenticated user.
//
// pdfURL is trimmed; an empty result is passed through as-is and the remote
// service decides whether a question-only request is valid. question is
// trimmed and replaced by the configured default prompt when empty.
//
// Returns one Result per extracted record, in extraction order, or one of
// the pipeline errors: aiclient.ErrRemoteFetch, ErrMalformedResponse,
// ErrNoTasksFound, ErrNoTasksProcessed.
func (s *Service) Ingest(ctx context.Context, userID uuid.UUID, pdfURL, question string) ([]Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pdfURL = strings.TrimSpace(pdfURL)
	question = strings.TrimSpace(question)
	if question == "" {
		question = s.defaultQuestion
	}

	repaired, err := s.client.FetchTasks(ctx, pdfURL, question)
	if err != nil {
		return nil, err
	}

	payload, err := ParsePayload(repaired)
	if err != nil {
		log.Warn("repaired AI response is still unparseable",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	extracted := ExtractTasks(payload)
	if len(extracted) == 0 {
		log.Info("AI response contained no task keys",
			slog.Int("payload_keys", payload.Len()))
		return nil, ErrNoTasksFound
	}

	// Scheduling dates are derived from the local calendar date, with the
	// end date pushed out by the parsed day count.
	today := s.timeFunc().UTC().Truncate(24 * time.Hour)

	results := make([]Result, 0, len(extracted))
	for _, task := range extracted {
		days := ParseDurationDays(task.EstimatedDuration)
		endDate := today.AddDate(0, 0, days)

		result := Result{
			Description:       task.Description,
			EstimatedDuration: task.EstimatedDuration,
			Hours:             task.Hours,
		}

		record := &domain.Task{
			UserID:            userID,
			Title:             task.Title,
			Description:       task.Description,
			StartDate:         today,
			EndDate:           endDate,
			EstimatedDuration: task.EstimatedDuration,
			Hours:             task.Hours,
			CreatedAt:         s.timeFunc().UTC(),
			UpdatedAt:         s.timeFunc().UTC(),
		}

		id, err := s.tasks.Create(ctx, record)
		if err != nil {
			// Captured per record: the batch always attempts every
			// extracted record.
			log.Warn("failed to persist extracted task",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			result.Err = err.Error()
		} else {
			result.TaskID = id
		}

		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, ErrNoTasksProcessed
	}

	log.Info("ingestion completed",
		slog.Int("extracted", len(extracted)),
		slog.Int("results", len(results)),
		slog.String("user_id", userID.String()))
	return results, nil
}
