// Package partition splits a time-indexed dataset into disjoint groups.
// Three key policies coexist: the 7AM-to-7AM operational day used to align
// analysis with shift boundaries, the ISO 8601 calendar week, and the
// categorical profile combined with calendar date. Every valid record is
// assigned to exactly one group; empty groups are never emitted; record
// order within a group follows the source dataset.
package partition

import (
	"sort"
	"time"

	apperrors "github.com/pressline/go-press-analytics/internal/errors"
	"github.com/pressline/go-press-analytics/internal/models"
)

const component = "partition"

// Policy selects the partition key function.
type Policy string

const (
	// PolicyOperationalDay keys records by the 7AM-7AM operational day.
	PolicyOperationalDay Policy = "operational-day"
	// PolicyISOWeek keys records by ISO year and week number.
	PolicyISOWeek Policy = "iso-week"
	// PolicyProfileDate keys records by profile value and calendar date.
	PolicyProfileDate Policy = "profile-date"
)

// OperationalDay returns the operational-day date for t: timestamps before
// 07:00 belong to the previous day's 7AM-7AM window.
func OperationalDay(t time.Time) time.Time {
	if t.Hour() < 7 {
		t = t.AddDate(0, 0, -1)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// KeyFor derives the partition key for one record under the given policy.
// The second return value is false when the record cannot be keyed (it has
// no usable timestamp); such a record belongs to no group.
func KeyFor(rec models.Record, policy Policy) (models.GroupKey, bool) {
	if rec.Timestamp.IsZero() {
		return nil, false
	}
	switch policy {
	case PolicyOperationalDay:
		return models.OperationalDayKey{Date: OperationalDay(rec.Timestamp)}, true
	case PolicyISOWeek:
		year, week := rec.Timestamp.ISOWeek()
		return models.ISOWeekKey{Year: year, Week: week}, true
	case PolicyProfileDate:
		t := rec.Timestamp
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return models.ProfileDateKey{Profile: rec.Profile, Date: date}, true
	default:
		return nil, false
	}
}

// Split partitions the dataset under the given policy. Groups come back
// ordered by key; records that could not be keyed are returned as skipped
// so the caller can surface them rather than drop them silently.
func Split(ds *models.Dataset, policy Policy) (groups []models.Group, skipped []models.Record, err error) {
	switch policy {
	case PolicyOperationalDay, PolicyISOWeek, PolicyProfileDate:
	default:
		return nil, nil, apperrors.Newf(apperrors.ClassInternal, component, "split",
			"unknown partition policy %q", policy)
	}

	byKey := make(map[models.GroupKey][]models.Record)
	var order []models.GroupKey
	for _, rec := range ds.Records {
		key, ok := KeyFor(rec, policy)
		if !ok {
			skipped = append(skipped, rec)
			continue
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], rec)
	}

	sort.Slice(order, func(i, j int) bool {
		return order[i].String() < order[j].String()
	})

	groups = make([]models.Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, models.Group{
			Key:  key,
			Data: ds.Restrict(byKey[key]),
		})
	}
	return groups, skipped, nil
}

// Window restricts the dataset to records with from <= timestamp <= to.
// An empty result is not an error here; the caller decides whether to
// report it as a no-op.
func Window(ds *models.Dataset, from, to time.Time) *models.Dataset {
	var kept []models.Record
	for _, rec := range ds.Records {
		if rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
			continue
		}
		kept = append(kept, rec)
	}
	return ds.Restrict(kept)
}
