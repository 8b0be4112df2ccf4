// Package biztime provides UTC time utilities for the billing engine.
// All schedule dates are stored and computed in UTC; conversion to a
// display timezone happens at the presentation boundary, never here.
//
// Design principles:
// - All time storage is in UTC
// - The persistence boundary uses the "2006-01-02 15:04:05" text form
// - Implicit Local timezone is prohibited
package biztime

import (
	"fmt"
	"time"
)

// StorageLayout is the text form used for persisted schedule dates.
const StorageLayout = "2006-01-02 15:04:05"

// NowUTC returns current time in UTC, truncated to the second.
// Schedule dates carry second precision; sub-second noise breaks
// equality checks in date-ordering validation.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// ToUTC converts a time (any timezone) to UTC with second precision.
func ToUTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// FormatStorage formats a UTC time for the persistence boundary.
// The zero time formats as the empty string (absent date).
func FormatStorage(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(StorageLayout)
}

// ParseStorage parses a persisted date string back into a UTC time.
// The empty string parses as the zero time (absent date).
func ParseStorage(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(StorageLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid storage date %q: %w", s, err)
	}
	return t, nil
}

// MaxTime returns the later of two times, treating the zero time as absent.
func MaxTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
