package ingestion

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// taskKeyPrefix marks the payload keys that open a task record.
// The match is case-insensitive on the key's lowercase form.
const taskKeyPrefix = "tarea"

// defaultHours is used when the horasEstimadas companion value is absent
// or not parseable as a number.
const defaultHours = 3

// ExtractedTask is a task record derived from the AI payload before any
// dates are computed or persistence happens.
//
// Title and Description deliberately carry the same value: the upstream
// payload has no separate title field, and this duplication matches the
// shipped behavior consumers rely on.
type ExtractedTask struct {
	Description       string
	Title             string
	EstimatedDuration *string
	Hours             int
}

// leadingIntPattern matches an optionally signed integer prefix, the same
// slice of the string JavaScript's parseInt would consume.
var leadingIntPattern = regexp.MustCompile(`^[+-]?\d+`)

// ExtractTasks groups the payload's flat indexed keys into task records.
// For every key whose lowercase form starts with "tarea", the suffix after
// the first underscore names the record index, and the companion keys
// tiempoEstimado_<idx> and horasEstimadas_<idx> supply the duration text
// and hour estimate. Missing companions never fail a record: the duration
// defaults to nil and the hours to 3.
//
// The function is pure and order-preserving: records appear in the order
// their tarea keys appear in the payload.
func ExtractTasks(payload *Payload) []ExtractedTask {
	tasks := make([]ExtractedTask, 0)

	for _, key := range payload.Keys() {
		if !strings.HasPrefix(strings.ToLower(key), taskKeyPrefix) {
			continue
		}

		// tarea_1 -> "1". The index is not required to be numeric; it is
		// only used to build the companion key names. A key without an
		// underscore suffix gets an empty index.
		idx := ""
		if parts := strings.Split(key, "_"); len(parts) > 1 {
			idx = parts[1]
		}

		value, _ := payload.Get(key)
		text := stringify(value)

		estimated := estimatedDuration(payload, "tiempoEstimado_"+idx)
		hours := estimatedHours(payload, "horasEstimadas_"+idx)

		tasks = append(tasks, ExtractedTask{
			Description:       text,
			Title:             text,
			EstimatedDuration: estimated,
			Hours:             hours,
		})
	}

	return tasks
}

// estimatedDuration reads the free-text duration companion. Only non-empty
// strings survive; absent keys and non-string values yield nil.
func estimatedDuration(payload *Payload, key string) *string {
	value, ok := payload.Get(key)
	if !ok {
		return nil
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// estimatedHours normalizes the hour-count companion. Strings get a
// lenient base-10 integer parse (leading digits, like parseInt); numbers
// are used as-is with fractions truncated toward zero. Anything else,
// including an absent key, falls back to the default of 3.
func estimatedHours(payload *Payload, key string) int {
	value, ok := payload.Get(key)
	if !ok {
		return defaultHours
	}

	switch v := value.(type) {
	case string:
		match := leadingIntPattern.FindString(strings.TrimSpace(v))
		if match == "" {
			return defaultHours
		}
		n, err := strconv.Atoi(match)
		if err != nil {
			return defaultHours
		}
		return n
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return defaultHours
		}
		return int(f)
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultHours
	}
}

// stringify renders a payload value for use as description/title text.
func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
