package ingestion

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is a flat key-value mapping parsed from the repaired AI response.
// Unlike a plain map it remembers the order keys appeared in the JSON text,
// because extraction order (and therefore result order) must follow it.
type Payload struct {
	keys   []string
	values map[string]any
}

// ParsePayload decodes repaired JSON text into a Payload. The top-level
// value must be a JSON object; values are decoded generically and nested
// structures are kept as-is (the extractor only reads scalars).
func ParsePayload(text string) (*Payload, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("payload is not a JSON object")
	}

	p := &Payload{values: make(map[string]any)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode payload key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("payload key is not a string")
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode payload value for %q: %w", key, err)
		}

		// Later duplicates overwrite earlier values but keep the
		// original key position.
		if _, seen := p.values[key]; !seen {
			p.keys = append(p.keys, key)
		}
		p.values[key] = value
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	return p, nil
}

// Keys returns the payload's keys in their original order.
func (p *Payload) Keys() []string {
	return p.keys
}

// Get returns the value stored under the given key.
func (p *Payload) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of distinct keys in the payload.
func (p *Payload) Len() int {
	return len(p.keys)
}
