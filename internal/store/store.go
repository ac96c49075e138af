package store

import "time"

// dateOnly normalizes a timestamp to midnight UTC so date columns compare
// and sort consistently regardless of the caller's clock or zone.
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
