package domain

import (
	"fmt"
	"regexp"
	"time"
)

var dateFormatRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a canonical YYYY-MM-DD string into a UTC-midnight time.
func ParseDate(s string) (time.Time, error) {
	if !dateFormatRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("date %q is not in YYYY-MM-DD format", s)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as a canonical YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates a time to its UTC civil date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts whole days in [start, end], both ends included.
func DaysInclusive(start, end time.Time) int {
	return int(Midnight(end).Sub(Midnight(start)).Hours()/24) + 1
}

// EndOfMonth returns the last civil day of t's calendar month. Correct for
// leap Februaries: day zero of the next month is the last day of this one.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// CrossesMonthBoundary reports whether [start, end] touches more than one
// calendar month.
func CrossesMonthBoundary(start, end time.Time) bool {
	return start.Year() != end.Year() || start.Month() != end.Month()
}

// YearsSpanned returns the distinct calendar years touched by [start, end],
// ascending.
func YearsSpanned(start, end time.Time) []int {
	var years []int
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// MonthSpan is the portion of a period falling inside one calendar month.
type MonthSpan struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
	Days  int
}

// SplitMonths splits [start, end] into one span per calendar month touched.
// The spans are chronological and partition the range exactly: each span ends
// at min(end of its month, end), and the next span starts the following day.
func SplitMonths(start, end time.Time) []MonthSpan {
	start, end = Midnight(start), Midnight(end)

	var spans []MonthSpan
	cur := start
	for !cur.After(end) {
		spanEnd := EndOfMonth(cur)
		if spanEnd.After(end) {
			spanEnd = end
		}
		spans = append(spans, MonthSpan{
			Year:  cur.Year(),
			Month: cur.Month(),
			Start: cur,
			End:   spanEnd,
			Days:  DaysInclusive(cur, spanEnd),
		})
		cur = spanEnd.AddDate(0, 0, 1)
	}
	return spans
}
