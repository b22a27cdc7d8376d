// pkg/rules/aging.go
package rules

import "time"

const daysPerYear = 365

// Aging bucket labels. There is no 2-3Y bucket: the 1-2Y bucket is followed
// by 3-5Y, which covers (2,5] years. The labels match existing reports.
const (
	Bucket0To1   = "0-1Y"
	Bucket1To2   = "1-2Y"
	Bucket3To5   = "3-5Y"
	Bucket5To7   = "5-7Y"
	Bucket7To10  = "7-10Y"
	BucketOver10 = "10+Y"
)

// agingBounds are inclusive upper bounds in whole days (years * 365)
var agingBounds = []struct {
	maxDays int64
	label   string
}{
	{1 * daysPerYear, Bucket0To1},
	{2 * daysPerYear, Bucket1To2},
	{5 * daysPerYear, Bucket3To5},
	{7 * daysPerYear, Bucket5To7},
	{10 * daysPerYear, Bucket7To10},
}

// AgingYears converts a day count to fractional years
func AgingYears(days int64) float64 {
	return float64(days) / float64(daysPerYear)
}

// AgingBucket returns the bucket label for a day count
func AgingBucket(days int64) string {
	for _, b := range agingBounds {
		if days <= b.maxDays {
			return b.label
		}
	}
	return BucketOver10
}

// DaysSince returns the whole days from event to snapshot, comparing calendar
// dates only. It returns false when the event date is missing.
func DaysSince(event, snapshot time.Time) (int64, bool) {
	if event.IsZero() {
		return 0, false
	}
	from := civilDate(event)
	to := civilDate(snapshot)
	return (to.Unix() - from.Unix()) / secondsPerDay, true
}

const secondsPerDay = 24 * 60 * 60

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
