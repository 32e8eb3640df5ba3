package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stamped struct {
	at    time.Time
	label string
}

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func windowOf(from, to string) Window {
	f, t := ts(from), ts(to)
	return Window{From: &f, To: &t}
}

func TestBucketByPeriodDayCoversEveryDay(t *testing.T) {
	window := windowOf("2026-03-01T00:00:00Z", "2026-03-07T23:59:59Z")
	items := []stamped{
		{at: ts("2026-03-02T09:00:00Z"), label: "a"},
		{at: ts("2026-03-02T17:30:00Z"), label: "b"},
		{at: ts("2026-03-06T00:00:00Z"), label: "c"},
	}

	buckets, err := BucketByPeriod(items, func(s stamped) time.Time { return s.at }, window, GranularityDay)
	require.NoError(t, err)

	require.Len(t, buckets, 7)
	for i, bucket := range buckets {
		assert.NotNil(t, bucket.Items, "bucket %d has a nil item list", i)
		if i > 0 {
			assert.Less(t, buckets[i-1].Period, bucket.Period, "buckets out of order")
		}
	}
	assert.Equal(t, "2026-03-01", buckets[0].Period)
	assert.Equal(t, "2026-03-07", buckets[6].Period)
	assert.Len(t, buckets[1].Items, 2)
	assert.Len(t, buckets[5].Items, 1)
	assert.Empty(t, buckets[0].Items)
}

func TestBucketByPeriodMonthBoundariesAreUTC(t *testing.T) {
	window := windowOf("2026-01-01T00:00:00Z", "2026-03-31T23:59:59Z")
	// 23:30 UTC on Jan 31 is already February in UTC+7; the bucket must
	// still be January because boundaries are UTC calendar dates.
	loc := time.FixedZone("UTC+7", 7*3600)
	items := []stamped{
		{at: time.Date(2026, 2, 1, 6, 30, 0, 0, loc), label: "jan-utc"},
		{at: ts("2026-02-15T12:00:00Z"), label: "feb"},
	}

	buckets, err := BucketByPeriod(items, func(s stamped) time.Time { return s.at }, window, GranularityMonth)
	require.NoError(t, err)

	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"2026-01", "2026-02", "2026-03"}, []string{buckets[0].Period, buckets[1].Period, buckets[2].Period})
	require.Len(t, buckets[0].Items, 1)
	assert.Equal(t, "jan-utc", buckets[0].Items[0].label)
	require.Len(t, buckets[1].Items, 1)
	assert.Empty(t, buckets[2].Items)
}

func TestBucketByPeriodDropsItemsOutsideWindow(t *testing.T) {
	window := windowOf("2026-03-01T00:00:00Z", "2026-03-02T23:59:59Z")
	items := []stamped{
		{at: ts("2026-02-28T12:00:00Z")},
		{at: ts("2026-03-01T12:00:00Z")},
		{at: ts("2026-03-05T12:00:00Z")},
	}

	buckets, err := BucketByPeriod(items, func(s stamped) time.Time { return s.at }, window, GranularityDay)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Len(t, buckets[0].Items, 1)
	assert.Empty(t, buckets[1].Items)
}

func TestBucketByPeriodAllTime(t *testing.T) {
	items := []stamped{
		{at: ts("2026-01-10T00:00:00Z")},
		{at: ts("2026-03-20T00:00:00Z")},
	}

	buckets, err := BucketByPeriod(items, func(s stamped) time.Time { return s.at }, AllTime(), GranularityMonth)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "2026-01", buckets[0].Period)
	assert.Equal(t, "2026-03", buckets[2].Period)
}

func TestBucketByPeriodAllTimeNoItems(t *testing.T) {
	buckets, err := BucketByPeriod(nil, func(s stamped) time.Time { return s.at }, AllTime(), GranularityDay)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestBucketByPeriodRejectsUnknownGranularity(t *testing.T) {
	_, err := BucketByPeriod([]stamped{}, func(s stamped) time.Time { return s.at }, AllTime(), "week")
	assert.Error(t, err)
}

func TestWindowContains(t *testing.T) {
	window := windowOf("2026-03-01T00:00:00Z", "2026-03-31T00:00:00Z")
	assert.True(t, window.Contains(ts("2026-03-01T00:00:00Z")), "window start is inclusive")
	assert.True(t, window.Contains(ts("2026-03-31T00:00:00Z")), "window end is inclusive")
	assert.False(t, window.Contains(ts("2026-02-28T23:59:59Z")))
	assert.True(t, AllTime().Contains(ts("1999-01-01T00:00:00Z")))
}
