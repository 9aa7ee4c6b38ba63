// Package aiclient talks to the external AI summarization service and
// turns its near-JSON output into syntactically valid JSON text.
package aiclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kaptinlin/jsonrepair"

	"github.com/hmoralesp/tarea-api/internal/config"
	"github.com/hmoralesp/tarea-api/internal/platform/logger"
)

// maxAttempts is the fixed total attempt budget for a fetch. There is no
// backoff between attempts: worst-case latency stays bounded at twice the
// single-call latency.
const maxAttempts = 2

// Client defines the interface for fetching repaired task JSON from the
// AI service. The returned string is syntactically valid JSON text.
type Client interface {
	// FetchTasks POSTs the document reference and question to the AI
	// service and returns its response repaired into valid JSON text.
	// Returns ErrRemoteFetch (wrapping the last cause) once both
	// attempts are exhausted.
	FetchTasks(ctx context.Context, pdfURL, question string) (string, error)
}

// taskRequest is the JSON body sent to the AI endpoint.
type taskRequest struct {
	PDFURL   string `json:"pdf_url"`
	Question string `json:"question"`
}

// RestyClient implements Client over HTTP using resty.
type RestyClient struct {
	http     *resty.Client
	endpoint string
	apiKey   string
	logger   *slog.Logger
}

// Ensure RestyClient implements the Client interface
var _ Client = (*RestyClient)(nil)

// New creates a Client for the configured AI endpoint.
// If log is nil, a default logger will be used.
func New(cfg config.AIConfig, log *slog.Logger) *RestyClient {
	if log == nil {
		log = slog.Default()
	}

	http := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0) // the attempt loop below owns retries

	return &RestyClient{
		http:     http,
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		logger:   log.With(slog.String("component", "aiclient")),
	}
}

// FetchTasks implements the Client interface.
func (c *RestyClient) FetchTasks(ctx context.Context, pdfURL, question string) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		log.Info("calling AI service",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts))

		repaired, err := c.fetchOnce(ctx, pdfURL, question)
		if err == nil {
			return repaired, nil
		}

		lastErr = err
		log.Warn("AI service attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}

	return "", fmt.Errorf("%w: %w", ErrRemoteFetch, lastErr)
}

// fetchOnce performs a single call followed by sanitize and repair.
// A failure in any of the three steps fails the attempt as a whole.
func (c *RestyClient) fetchOnce(ctx context.Context, pdfURL, question string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.apiKey).
		SetBody(taskRequest{PDFURL: pdfURL, Question: question}).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("unexpected status %d from AI service", resp.StatusCode())
	}

	repaired, err := jsonrepair.JSONRepair(sanitize(resp.String()))
	if err != nil {
		return "", fmt.Errorf("JSON repair failed: %w", err)
	}

	return repaired, nil
}

// sanitize strips the literal newlines and backslashes the AI service is
// known to leak into its output before the repair pass.
func sanitize(raw string) string {
	raw = strings.ReplaceAll(raw, "\n", "")
	return strings.ReplaceAll(raw, "\\", "")
}
