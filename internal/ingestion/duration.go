package ingestion

import (
	"regexp"
	"strconv"
)

// dayCountPattern matches an integer followed by the Spanish word for
// "day(s)", with or without the accent: "3 días", "1 dia", "10días".
var dayCountPattern = regexp.MustCompile(`(?i)(\d+)\s*d[ií]as?`)

// defaultDurationDays is used when the estimate is absent or carries no
// recognizable day count.
const defaultDurationDays = 1

// ParseDurationDays extracts a day count from a free-text duration estimate
// such as "3 días". The first match wins. A nil or non-matching input yields
// the default of 1; a literal "0 días" parses to 0.
func ParseDurationDays(text *string) int {
	if text == nil {
		return defaultDurationDays
	}

	match := dayCountPattern.FindStringSubmatch(*text)
	if match == nil {
		return defaultDurationDays
	}

	days, err := strconv.Atoi(match[1])
	if err != nil {
		// The pattern only admits digits, so this would mean an integer
		// too large for int; fall back to the default.
		return defaultDurationDays
	}

	return days
}
