package domain

import (
	"time"
)

// DateLayout is the canonical civil date format used everywhere in FarePass.
// All dates are timezone-naive whole days; time.Time values carry UTC midnight.
const DateLayout = "2006-01-02"

// CalendarEntry classifies one civil date from a government holiday feed.
// A date with no entry at all is an ordinary day resolved by the weekday
// heuristic. IsWorkingDay and IsHoliday are usually complementary, but a
// compensatory working weekend carries IsWorkingDay=true with the holiday
// name attached for display.
type CalendarEntry struct {
	Date         string `json:"date"`
	IsWorkingDay bool   `json:"is_working_day"`
	IsHoliday    bool   `json:"is_holiday"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Day returns the entry's date as a UTC-midnight time.Time.
func (e CalendarEntry) Day() (time.Time, error) {
	return ParseDate(e.Date)
}

// CacheMetadata describes the persisted calendar cache.
type CacheMetadata struct {
	Version      string    `json:"version"`
	LastUpdated  time.Time `json:"last_updated"`
	Source       string    `json:"source"`
	YearsCovered []int     `json:"years_covered"`
}

// Covers reports whether the metadata records data for the given year.
func (m CacheMetadata) Covers(year int) bool {
	for _, y := range m.YearsCovered {
		if y == year {
			return true
		}
	}
	return false
}

// CalendarCache is the persisted cache document: metadata plus every
// calendar entry for the covered years.
type CalendarCache struct {
	Metadata CacheMetadata   `json:"metadata"`
	Entries  []CalendarEntry `json:"entries"`
}

// CacheVersion is the current on-disk cache schema version.
const CacheVersion = "1.0"

// DataQuality describes where working-day answers come from.
type DataQuality string

const (
	// QualityFresh means the calendar cache was fetched or validated recently.
	QualityFresh DataQuality = "fresh"
	// QualityDegraded means an expired cache is being served because a
	// refresh failed.
	QualityDegraded DataQuality = "degraded"
	// QualityHeuristic means no calendar data is loaded at all and every
	// answer comes from the Saturday/Sunday heuristic.
	QualityHeuristic DataQuality = "heuristic"
)
