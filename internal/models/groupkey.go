package models

import (
	"fmt"
	"strings"
	"time"
)

// GroupKey identifies one partition group. Implementations are comparable
// values derived deterministically from a record's timestamp (and optionally
// its profile), so two records with the same key always land in the same
// group.
type GroupKey interface {
	// String returns the human-readable key, used for ordering groups.
	String() string
	// Sanitized returns a filesystem-safe form of the key suitable for
	// directory and file names.
	Sanitized() string
}

// OperationalDayKey groups records into 7AM-to-7AM operational days. The
// date is the calendar day on which the window opens at 07:00.
type OperationalDayKey struct {
	Date time.Time
}

func (k OperationalDayKey) String() string    { return k.Date.Format("2006-01-02") }
func (k OperationalDayKey) Sanitized() string { return SanitizeName(k.String()) }

// Span returns the half-open [start, end) window covered by this key:
// 07:00 on the key date up to 07:00 the next day.
func (k OperationalDayKey) Span() (start, end time.Time) {
	start = time.Date(k.Date.Year(), k.Date.Month(), k.Date.Day(), 7, 0, 0, 0, k.Date.Location())
	return start, start.AddDate(0, 0, 1)
}

// ISOWeekKey groups records by ISO 8601 calendar week (Monday-start).
type ISOWeekKey struct {
	Year int
	Week int
}

func (k ISOWeekKey) String() string    { return fmt.Sprintf("%04d-W%02d", k.Year, k.Week) }
func (k ISOWeekKey) Sanitized() string { return SanitizeName(k.String()) }

// ProfileDateKey groups records by the categorical PROFILE value combined
// with the plain calendar date (not the operational day).
type ProfileDateKey struct {
	Profile string
	Date    time.Time
}

func (k ProfileDateKey) String() string {
	return fmt.Sprintf("%s_%s", k.Profile, k.Date.Format("2006-01-02"))
}

func (k ProfileDateKey) Sanitized() string { return SanitizeName(k.String()) }

// Group is a dataset restricted to the records sharing one partition key.
// Groups are transient: produced by the partitioner, consumed by the
// summarizer, detectors and exporter, never persisted as entities.
type Group struct {
	Key  GroupKey
	Data *Dataset
}

// SanitizeName makes a key or profile value safe for use in file and
// directory names. Alphanumerics, '-', '_' and '.' are kept; every other
// rune is replaced with '_'.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
