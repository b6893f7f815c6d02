package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Granularity selects the bucket size used for time series
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Range is a half-open [Start, End) interval in UTC
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// ParseGranularity converts user input into a Granularity
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Day, Week, Month, Year:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// StartOfDay returns UTC midnight of the day containing t
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns UTC midnight of the following day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// WeekBounds returns the Monday-based week containing t
func WeekBounds(t time.Time) Range {
	start := StartOfDay(t)
	// Monday -> 0 ... Sunday -> 6
	offset := (int(start.Weekday()) + 6) % 7
	start = start.AddDate(0, 0, -offset)
	return Range{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthBounds returns the calendar month containing t
func MonthBounds(t time.Time) Range {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// YearBounds returns the calendar year containing t
func YearBounds(t time.Time) Range {
	t = t.UTC()
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(1, 0, 0)}
}

// BucketRange returns the bucket of granularity g containing t.
// Unknown granularities fall back to a day bucket.
func BucketRange(t time.Time, g Granularity) Range {
	switch g {
	case Week:
		return WeekBounds(t)
	case Month:
		return MonthBounds(t)
	case Year:
		return YearBounds(t)
	default:
		return Range{Start: StartOfDay(t), End: EndOfDay(t)}
	}
}

// Buckets lists the aligned buckets intersecting period, oldest first.
// An empty or inverted period yields no buckets.
func Buckets(period Range, g Granularity) []Range {
	if !period.Start.Before(period.End) {
		return nil
	}
	var out []Range
	cur := BucketRange(period.Start, g)
	for cur.Start.Before(period.End) {
		out = append(out, cur)
		cur = BucketRange(cur.End, g)
	}
	return out
}

// DaysBetween counts whole UTC calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)) / (24 * time.Hour))
}
