package holidayapi

import (
	"encoding/json"
	"fmt"

	"github.com/yichenzhou/farepass/internal/core/domain"
)

// eventsDocument is the array-of-events shape: one row per special day, with
// isOffDay distinguishing holidays from compensatory working weekends.
type eventsDocument struct {
	Year int `json:"year"`
	Days []struct {
		Name     string `json:"name"`
		Date     string `json:"date"`
		IsOffDay bool   `json:"isOffDay"`
	} `json:"days"`
}

func parseEvents(body []byte) ([]domain.CalendarEntry, error) {
	var doc eventsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode events document: %w", err)
	}

	entries := make([]domain.CalendarEntry, 0, len(doc.Days))
	for _, d := range doc.Days {
		entry := domain.CalendarEntry{
			Date:         d.Date,
			IsWorkingDay: !d.IsOffDay,
			IsHoliday:    d.IsOffDay,
			Name:         d.Name,
		}
		if !d.IsOffDay {
			entry.Description = "compensatory working day"
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// tableDocument is the tabular shape: a holidays object keyed by "MM-DD",
// where holiday=false marks a working weekend. Each value carries its own
// full date, which is preferred over reconstructing from the key.
type tableDocument struct {
	Code    int                 `json:"code"`
	Holiday map[string]tableDay `json:"holiday"`
}

type tableDay struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Target  string `json:"target"`
}

func parseTable(body []byte, year int) ([]domain.CalendarEntry, error) {
	var doc tableDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode table document: %w", err)
	}
	if doc.Code != 0 {
		return nil, fmt.Errorf("table document reports code %d", doc.Code)
	}

	entries := make([]domain.CalendarEntry, 0, len(doc.Holiday))
	for key, d := range doc.Holiday {
		date := d.Date
		if date == "" {
			date = fmt.Sprintf("%04d-%s", year, key)
		}
		entry := domain.CalendarEntry{
			Date:         date,
			IsWorkingDay: !d.Holiday,
			IsHoliday:    d.Holiday,
			Name:         d.Name,
		}
		if !d.Holiday {
			entry.Description = "compensatory working day"
			if d.Target != "" {
				entry.Description = "compensatory working day for " + d.Target
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
