package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hmoralesp/tarea-api/internal/api/shared"
)

// Response helpers re-exported from the shared package so handlers in this
// package can use them unqualified.
var (
	RespondWithJSON        = shared.RespondWithJSON
	RespondWithError       = shared.RespondWithError
	RespondWithErrorAndLog = shared.RespondWithErrorAndLog
)

// DecodeJSON decodes the request body into the given destination.
// Unknown fields are ignored.
func DecodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context. The user ID is expected to be placed in the context by
// the authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// getPathID extracts a numeric task ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, fmt.Errorf("%s is required", paramName)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid format", paramName)
	}

	return id, nil
}
