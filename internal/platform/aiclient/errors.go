package aiclient

import "errors"

// ErrRemoteFetch is returned when both attempts against the AI service
// failed. The last underlying cause is attached via wrapping.
var ErrRemoteFetch = errors.New("AI service request failed after 2 attempts")
