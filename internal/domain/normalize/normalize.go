// Package normalize maps the upstream API's loosely typed field shapes
// into canonical model types. Every function is total: malformed input
// yields a zero value (plus ok=false where it matters), never an error,
// because optionally absent fields are expected in the upstream data.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/roundoff/gymstats/internal/domain/model"
)

// ParseInt coerces a string-typed upstream id into an integer. Returns
// ok=false for empty or non-numeric content.
func ParseInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDecimal coerces a string-typed upstream score into a float.
// Returns ok=false for empty or non-numeric content.
func ParseDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDate parses the date format used by the past-meets listing.
// Accepts RFC 3339 timestamps and bare yyyy-mm-dd dates.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// MeetStatus maps the upstream status string onto the internal enum,
// case-insensitively. Unmatched input yields StatusUnknown; the caller
// decides whether that is worth a warning.
func MeetStatus(raw string) model.MeetStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open":
		return model.StatusOpen
	case "closed":
		return model.StatusClosed
	case "complete":
		return model.StatusComplete
	case "in progress":
		return model.StatusInProgress
	case "future":
		return model.StatusFuture
	default:
		return model.StatusUnknown
	}
}

// ProgramFromID maps the numeric program encoding used by the sanction
// header (1 womens, 2 mens).
func ProgramFromID(id int) model.Program {
	switch id {
	case 1:
		return model.ProgramWomens
	case 2:
		return model.ProgramMens
	default:
		return model.ProgramUnknown
	}
}

// ProgramFromName maps the string program encoding used by session rows
// ("Women"/"Men", with tolerance for the plural forms the API sometimes
// returns).
func ProgramFromName(raw string) model.Program {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "women", "womens":
		return model.ProgramWomens
	case "men", "mens":
		return model.ProgramMens
	default:
		return model.ProgramUnknown
	}
}
