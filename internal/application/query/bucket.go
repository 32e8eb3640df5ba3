package query

import (
	"time"

	"kazi-marketplace/pkg/errors"
)

// Granularity selects the calendar period used for bucketing.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// ParseGranularity maps a request parameter to a Granularity, defaulting to
// month when empty.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", string(GranularityMonth):
		return GranularityMonth, nil
	case string(GranularityDay):
		return GranularityDay, nil
	default:
		return "", errors.NewValidationError("granularity must be day or month")
	}
}

// Window is an inclusive time range. Nil bounds mean "all time" on that side.
type Window struct {
	From *time.Time
	To   *time.Time
}

// AllTime returns the unbounded window.
func AllTime() Window { return Window{} }

// IsAllTime reports whether the window has no bounds at all.
func (w Window) IsAllTime() bool { return w.From == nil && w.To == nil }

// Contains reports whether t falls inside the window, bounds inclusive.
func (w Window) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

// Bucket groups items sharing one calendar period.
type Bucket[T any] struct {
	Period string `json:"period"`
	Items  []T    `json:"items"`
}

// BucketByPeriod distributes items into chronologically ordered calendar
// buckets covering every period of the window, zero-filling empty periods so
// trend charts never show gaps. All boundaries are computed on UTC calendar
// dates regardless of the timestamps' locations. Items outside the window are
// dropped. For an unbounded side the boundary is taken from the items
// themselves.
func BucketByPeriod[T any](items []T, at func(T) time.Time, window Window, granularity Granularity) ([]Bucket[T], error) {
	if granularity != GranularityDay && granularity != GranularityMonth {
		return nil, errors.NewValidationError("granularity must be day or month")
	}

	inWindow := make([]T, 0, len(items))
	for _, item := range items {
		if window.Contains(at(item)) {
			inWindow = append(inWindow, item)
		}
	}

	first, last, ok := resolveBounds(inWindow, at, window)
	if !ok {
		return []Bucket[T]{}, nil
	}

	byPeriod := make(map[string][]T)
	for _, item := range inWindow {
		label := periodLabel(at(item), granularity)
		byPeriod[label] = append(byPeriod[label], item)
	}

	var buckets []Bucket[T]
	for cursor := truncatePeriod(first, granularity); !cursor.After(last); cursor = nextPeriod(cursor, granularity) {
		label := periodLabel(cursor, granularity)
		bucketItems := byPeriod[label]
		if bucketItems == nil {
			bucketItems = []T{}
		}
		buckets = append(buckets, Bucket[T]{Period: label, Items: bucketItems})
	}

	return buckets, nil
}

// resolveBounds picks the concrete start and end instants of the bucket run.
// Unbounded sides are derived from the items; a window with an unbounded side
// and no items produces no buckets.
func resolveBounds[T any](items []T, at func(T) time.Time, window Window) (time.Time, time.Time, bool) {
	var first, last time.Time
	haveFirst, haveLast := window.From != nil, window.To != nil
	if haveFirst {
		first = window.From.UTC()
	}
	if haveLast {
		last = window.To.UTC()
	}

	if !haveFirst || !haveLast {
		if len(items) == 0 {
			return time.Time{}, time.Time{}, false
		}
		min, max := at(items[0]), at(items[0])
		for _, item := range items[1:] {
			ts := at(item)
			if ts.Before(min) {
				min = ts
			}
			if ts.After(max) {
				max = ts
			}
		}
		if !haveFirst {
			first = min.UTC()
		}
		if !haveLast {
			last = max.UTC()
		}
	}

	if first.After(last) {
		return time.Time{}, time.Time{}, false
	}
	return first, last, true
}

func truncatePeriod(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	if g == GranularityMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextPeriod(t time.Time, g Granularity) time.Time {
	if g == GranularityMonth {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

func periodLabel(t time.Time, g Granularity) string {
	if g == GranularityMonth {
		return t.UTC().Format("2006-01")
	}
	return t.UTC().Format("2006-01-02")
}
