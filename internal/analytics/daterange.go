// Package analytics derives dashboard figures from already-fetched record
// collections: body metrics, rolling averages, streaks, and gap-filled daily
// series. Every function here is pure — no I/O, no clock reads, no shared
// state — so results are fully determined by the inputs and the reference
// timestamp the caller passes in.
package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dayFormat = "2006-01-02"

// ErrInvalidDateRange marks an explicit date pair where neither half parses.
var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is an inclusive calendar-day interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered, inclusive.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(Day(r.End).Sub(Day(r.Start))/(24*time.Hour)) + 1
}

// Day truncates a timestamp to its calendar date, preserving location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format(dayFormat)
}

// ResolveDateRange turns a flexible range specifier into concrete day bounds
// ending at today. Recognised keywords map to fixed lookbacks and an explicit
// "YYYY-MM-DD,YYYY-MM-DD" pair is honoured verbatim. Unrecognised keywords
// fall back to the 30-day default rather than failing; callers that need
// strict validation must reject input before calling. The only error case is
// an explicit comma pair where neither half parses as a date.
func ResolveDateRange(spec string, today time.Time) (DateRange, error) {
	end := Day(today)
	spec = strings.ToLower(strings.TrimSpace(spec))

	lookbacks := map[string]int{
		"week": 7, "7d": 7,
		"month": 30, "30d": 30,
		"3months": 90, "90d": 90,
		"year": 365, "365d": 365,
	}
	if days, ok := lookbacks[spec]; ok {
		return DateRange{Start: end.AddDate(0, 0, -days), End: end}, nil
	}

	if strings.Contains(spec, ",") {
		parts := strings.SplitN(spec, ",", 2)
		start, errStart := time.Parse(dayFormat, strings.TrimSpace(parts[0]))
		explicitEnd, errEnd := time.Parse(dayFormat, strings.TrimSpace(parts[1]))
		switch {
		case errStart == nil && errEnd == nil:
			return DateRange{Start: start, End: explicitEnd}, nil
		case errStart != nil && errEnd != nil:
			return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidDateRange, spec)
		}
		// One half parsed: treat like any other malformed specifier.
	}

	return DateRange{Start: end.AddDate(0, 0, -30), End: end}, nil
}
