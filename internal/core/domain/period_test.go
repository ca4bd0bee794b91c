package domain_test

import (
	"testing"
	"time"

	"github.com/yichenzhou/farepass/internal/core/domain"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func TestParseDate_RejectsBadFormats(t *testing.T) {
	for _, s := range []string{"2024/10/01", "2024-1-1", "20241001", "not-a-date", "2024-13-01", ""} {
		if _, err := domain.ParseDate(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestDaysInclusive(t *testing.T) {
	start := mustDate(t, "2024-10-31")
	end := start.AddDate(0, 0, 29)
	if got := domain.DaysInclusive(start, end); got != 30 {
		t.Errorf("expected 30 days, got %d", got)
	}
	if got := domain.DaysInclusive(start, start); got != 1 {
		t.Errorf("expected 1 day for same start/end, got %d", got)
	}
}

func TestSplitMonths_SingleMonth(t *testing.T) {
	spans := domain.SplitMonths(mustDate(t, "2024-10-01"), mustDate(t, "2024-10-30"))
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Days != 30 {
		t.Errorf("expected 30 days, got %d", spans[0].Days)
	}
}

func TestSplitMonths_YearRollover(t *testing.T) {
	spans := domain.SplitMonths(mustDate(t, "2024-12-20"), mustDate(t, "2025-01-18"))
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Year != 2024 || spans[0].Month != time.December || spans[0].Days != 12 {
		t.Errorf("unexpected first span: %+v", spans[0])
	}
	if spans[1].Year != 2025 || spans[1].Month != time.January || spans[1].Days != 18 {
		t.Errorf("unexpected second span: %+v", spans[1])
	}
	if domain.FormatDate(spans[0].End) != "2024-12-31" {
		t.Errorf("first span should end at year end, got %s", domain.FormatDate(spans[0].End))
	}
}

func TestSplitMonths_February(t *testing.T) {
	// Leap year
	spans := domain.SplitMonths(mustDate(t, "2024-02-10"), mustDate(t, "2024-03-05"))
	if domain.FormatDate(spans[0].End) != "2024-02-29" {
		t.Errorf("leap February should end on the 29th, got %s", domain.FormatDate(spans[0].End))
	}

	// Non-leap year
	spans = domain.SplitMonths(mustDate(t, "2025-02-10"), mustDate(t, "2025-03-05"))
	if domain.FormatDate(spans[0].End) != "2025-02-28" {
		t.Errorf("February should end on the 28th, got %s", domain.FormatDate(spans[0].End))
	}
}

// Spans must partition the period exactly: days sum to the inclusive total,
// each span starts the day after its predecessor ends.
func TestSplitMonths_PartitionProperty(t *testing.T) {
	cases := []struct{ start, end string }{
		{"2024-10-31", "2024-11-29"},
		{"2024-01-01", "2024-12-31"},
		{"2024-02-01", "2024-02-29"},
		{"2024-12-31", "2025-01-01"},
		{"2024-06-15", "2024-06-15"},
	}
	for _, tc := range cases {
		start, end := mustDate(t, tc.start), mustDate(t, tc.end)
		spans := domain.SplitMonths(start, end)

		total := 0
		for _, s := range spans {
			total += s.Days
			if s.Days != domain.DaysInclusive(s.Start, s.End) {
				t.Errorf("%s-%s: span day count inconsistent: %+v", tc.start, tc.end, s)
			}
		}
		if total != domain.DaysInclusive(start, end) {
			t.Errorf("%s-%s: spans cover %d days, want %d", tc.start, tc.end, total, domain.DaysInclusive(start, end))
		}
		if !spans[0].Start.Equal(start) || !spans[len(spans)-1].End.Equal(end) {
			t.Errorf("%s-%s: spans do not cover period bounds", tc.start, tc.end)
		}
		for i := 1; i < len(spans); i++ {
			if !spans[i].Start.Equal(spans[i-1].End.AddDate(0, 0, 1)) {
				t.Errorf("%s-%s: gap or overlap between spans %d and %d", tc.start, tc.end, i-1, i)
			}
		}
	}
}

func TestCrossesMonthBoundary(t *testing.T) {
	if domain.CrossesMonthBoundary(mustDate(t, "2024-10-01"), mustDate(t, "2024-10-31")) {
		t.Error("same month should not cross")
	}
	if !domain.CrossesMonthBoundary(mustDate(t, "2024-10-31"), mustDate(t, "2024-11-01")) {
		t.Error("adjacent months should cross")
	}
	if !domain.CrossesMonthBoundary(mustDate(t, "2024-12-01"), mustDate(t, "2025-12-01")) {
		t.Error("same month in different years should cross")
	}
}

func TestYearsSpanned(t *testing.T) {
	years := domain.YearsSpanned(mustDate(t, "2024-12-20"), mustDate(t, "2025-01-18"))
	if len(years) != 2 || years[0] != 2024 || years[1] != 2025 {
		t.Errorf("unexpected years: %v", years)
	}
}

func TestWeekdayLabel(t *testing.T) {
	// 2024-10-06 is a Sunday.
	d := mustDate(t, "2024-10-06")
	if got := domain.WeekdayLabel(d); got != "星期日" {
		t.Errorf("expected 星期日, got %s", got)
	}
	if !domain.IsWeekend(d) {
		t.Error("Sunday should be a weekend")
	}
	if domain.IsWeekend(mustDate(t, "2024-10-09")) {
		t.Error("Wednesday should not be a weekend")
	}
}
