package ingestion

import "errors"

// Common errors returned by the ingestion pipeline
var (
	// ErrMalformedResponse is returned when the AI response is still not
	// parseable as JSON after the best-effort repair step.
	ErrMalformedResponse = errors.New("AI response is not valid JSON after repair")

	// ErrNoTasksFound is returned when the AI response parsed cleanly but
	// contained no task keys. This reflects the content of the AI output,
	// not a server fault.
	ErrNoTasksFound = errors.New("AI response contained no tasks")

	// ErrNoTasksProcessed is returned when the aggregate result list ends
	// up empty. Defensive: extraction already guarantees at least one record.
	ErrNoTasksProcessed = errors.New("no tasks were processed")
)
