package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/yichenzhou/farepass/internal/core/domain"
	"github.com/yichenzhou/farepass/internal/core/usecases"
)

type stubCalendar struct {
	entries     map[string]domain.CalendarEntry
	quality     domain.DataQuality
	ensureErr   error
	ensureCalls int
}

func (s *stubCalendar) EnsureDataForPeriod(context.Context, time.Time, time.Time) error {
	s.ensureCalls++
	return s.ensureErr
}

func (s *stubCalendar) IsWorkingDay(date time.Time) bool {
	if e, ok := s.entries[domain.FormatDate(date)]; ok {
		return e.IsWorkingDay
	}
	return !domain.IsWeekend(date)
}

func (s *stubCalendar) CountWorkingDays(start, end time.Time) int {
	count := 0
	for d := domain.Midnight(start); !d.After(domain.Midnight(end)); d = d.AddDate(0, 0, 1) {
		if s.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

func (s *stubCalendar) Entry(date time.Time) *domain.CalendarEntry {
	if e, ok := s.entries[domain.FormatDate(date)]; ok {
		return &e
	}
	return nil
}

func (s *stubCalendar) Quality() domain.DataQuality {
	if s.quality == "" {
		return domain.QualityFresh
	}
	return s.quality
}

type stubCache struct {
	data map[string][]byte
	sets int
}

func (c *stubCache) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (c *stubCache) Set(_ context.Context, key string, value []byte, _ int) error {
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = value
	c.sets++
	return nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func testDefaults() usecases.PassDefaults {
	return usecases.PassDefaults{FarePerTrip: 40, TripsPerDay: 2, PassPrice: 1200}
}

func intPtr(n int) *int { return &n }

func clockAt(s string) func() time.Time {
	return func() time.Time {
		d, _ := domain.ParseDate(s)
		return d
	}
}

func TestCalculate_CustomWorkingDaysAcrossMonths(t *testing.T) {
	svc := usecases.NewPassService(&stubCalendar{}, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	calc, err := svc.Calculate(context.Background(), usecases.CalculationRequest{
		StartDate:         "2024-10-31",
		FarePerTrip:       35,
		TripsPerDay:       2,
		CustomWorkingDays: intPtr(20),
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if !calc.CrossesMonthBoundary || len(calc.Segments) != 2 {
		t.Fatalf("expected 2 segments across the boundary, got %d", len(calc.Segments))
	}

	oct := calc.Segments[0]
	if oct.Year != 2024 || oct.Month != 10 || oct.Days != 1 || oct.WorkingDays != 1 || oct.Trips != 2 {
		t.Errorf("unexpected October segment: %+v", oct)
	}
	if oct.Tier.Rate != 0 || !approx(oct.FinalCost, 70) {
		t.Errorf("October should be undiscounted at 70, got rate %v cost %v", oct.Tier.Rate, oct.FinalCost)
	}

	nov := calc.Segments[1]
	if nov.Month != 11 || nov.Days != 29 || nov.WorkingDays != 19 || nov.Trips != 38 {
		t.Errorf("unexpected November segment: %+v", nov)
	}
	if nov.Tier.Rate != 0.10 || !approx(nov.DiscountAmount, 133) || !approx(nov.FinalCost, 1197) {
		t.Errorf("November should land in the 10%% tier at 1197, got %+v", nov)
	}

	if calc.TotalWorkingDays != 20 || calc.TotalTrips != 40 {
		t.Errorf("unexpected totals: %d working days, %d trips", calc.TotalWorkingDays, calc.TotalTrips)
	}
	if !approx(calc.TotalFinalCost, 1267) {
		t.Errorf("expected total 1267, got %v", calc.TotalFinalCost)
	}

	if calc.Previous == nil {
		t.Fatal("cross-month calculation must carry the single-discount comparison")
	}
	if calc.Previous.Method != domain.NaiveMethod {
		t.Errorf("unexpected comparison method %q", calc.Previous.Method)
	}
	if !approx(calc.Previous.TotalCost, 1260) || !approx(calc.Previous.Difference, 7) {
		t.Errorf("expected naive 1260 with +7 difference, got %v / %v",
			calc.Previous.TotalCost, calc.Previous.Difference)
	}
}

func TestCalculate_SingleMonthHasNoComparison(t *testing.T) {
	svc := usecases.NewPassService(&stubCalendar{}, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	calc, err := svc.Calculate(context.Background(), usecases.CalculationRequest{
		StartDate: "2024-10-01",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if calc.CrossesMonthBoundary || len(calc.Segments) != 1 {
		t.Fatalf("expected a single in-month segment, got %d", len(calc.Segments))
	}
	if calc.Previous != nil {
		t.Error("single-segment calculation must not carry a comparison")
	}
	// Oct 1-30 2024 has 22 plain weekdays; defaults give 2 trips per day.
	seg := calc.Segments[0]
	if seg.WorkingDays != 22 || seg.Trips != 44 {
		t.Errorf("expected 22 working days and 44 trips, got %+v", seg)
	}
	if seg.Tier.Rate != 0.15 {
		t.Errorf("44 trips should hit the top tier, got rate %v", seg.Tier.Rate)
	}
	if seg.BaseFare != 40 || calc.TripsPerDay != 2 {
		t.Error("defaults were not applied")
	}
}

func TestCalculate_YearRolloverSegments(t *testing.T) {
	svc := usecases.NewPassService(&stubCalendar{}, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-12-01")))

	calc, err := svc.Calculate(context.Background(), usecases.CalculationRequest{
		StartDate: "2024-12-20",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(calc.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(calc.Segments))
	}
	if calc.Segments[0].Year != 2024 || calc.Segments[0].Month != 12 {
		t.Errorf("unexpected first segment: %+v", calc.Segments[0])
	}
	if calc.Segments[1].Year != 2025 || calc.Segments[1].Month != 1 {
		t.Errorf("unexpected second segment: %+v", calc.Segments[1])
	}
	if calc.EndDate != "2025-01-18" {
		t.Errorf("expected end 2025-01-18, got %s", calc.EndDate)
	}
}

func TestCalculate_Validation(t *testing.T) {
	svc := usecases.NewPassService(&stubCalendar{}, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	cases := []struct {
		name  string
		req   usecases.CalculationRequest
		field string
	}{
		{"bad date", usecases.CalculationRequest{StartDate: "2024/10/01"}, "start_date"},
		{"negative fare", usecases.CalculationRequest{FarePerTrip: -5}, "one_way_fare"},
		{"trips too high", usecases.CalculationRequest{TripsPerDay: 25}, "trips_per_day"},
		{"negative trips", usecases.CalculationRequest{TripsPerDay: -1}, "trips_per_day"},
		{"window too long", usecases.CalculationRequest{WindowDays: 400}, "window_days"},
		{"custom days negative", usecases.CalculationRequest{CustomWorkingDays: intPtr(-1)}, "custom_working_days"},
		{"custom days over window", usecases.CalculationRequest{CustomWorkingDays: intPtr(31)}, "custom_working_days"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Calculate(context.Background(), tc.req)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestCalculate_ZeroCustomWorkingDays(t *testing.T) {
	svc := usecases.NewPassService(&stubCalendar{}, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	calc, err := svc.Calculate(context.Background(), usecases.CalculationRequest{
		StartDate:         "2024-10-01",
		CustomWorkingDays: intPtr(0),
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if calc.TotalTrips != 0 || !approx(calc.TotalFinalCost, 0) {
		t.Errorf("zero working days must cost nothing, got %+v", calc)
	}
}

func TestCalculate_CalendarFailurePropagates(t *testing.T) {
	cal := &stubCalendar{ensureErr: domain.ErrCalendarUnavailable}
	svc := usecases.NewPassService(cal, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	_, err := svc.Calculate(context.Background(), usecases.CalculationRequest{StartDate: "2024-10-01"})
	if !errors.Is(err, domain.ErrCalendarUnavailable) {
		t.Fatalf("expected calendar error to propagate, got %v", err)
	}
}

func TestCompare_Recommendation(t *testing.T) {
	svc := usecases.NewPassService(&stubCalendar{}, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	// Regular cost for Oct 1 defaults: 44 trips * 40 * 0.85 = 1496.
	cmp, err := svc.Compare(context.Background(), usecases.CompareRequest{
		CalculationRequest: usecases.CalculationRequest{StartDate: "2024-10-01"},
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Recommendation != domain.BuyPass {
		t.Errorf("pass at 1200 should beat %v, got %s", cmp.RegularCost, cmp.Recommendation)
	}
	if !approx(cmp.Savings, cmp.RegularCost-1200) {
		t.Errorf("inconsistent savings %v", cmp.Savings)
	}

	cmp, err = svc.Compare(context.Background(), usecases.CompareRequest{
		CalculationRequest: usecases.CalculationRequest{StartDate: "2024-10-01"},
		PassPrice:          5000,
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Recommendation != domain.UseRegular {
		t.Errorf("an overpriced pass should lose, got %s", cmp.Recommendation)
	}
}

func TestCompare_Warnings(t *testing.T) {
	cal := &stubCalendar{quality: domain.QualityHeuristic}
	svc := usecases.NewPassService(cal, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-12-01")))

	cmp, err := svc.Compare(context.Background(), usecases.CompareRequest{
		CalculationRequest: usecases.CalculationRequest{
			StartDate:         "2024-10-31",
			CustomWorkingDays: intPtr(20),
		},
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	want := map[string]bool{"past": false, "rounding": false, "heuristic": false}
	for _, w := range cmp.Warnings {
		switch {
		case w == "start date is in the past":
			want["past"] = true
		case w == "custom working days are allocated to months proportionally with independent rounding":
			want["rounding"] = true
		case w == "no holiday calendar data; working days assume plain Monday-Friday weeks":
			want["heuristic"] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing %s warning in %v", name, cmp.Warnings)
		}
	}
}

func TestCompare_ServedFromCache(t *testing.T) {
	cal := &stubCalendar{}
	cache := &stubCache{}
	svc := usecases.NewPassService(cal, cache, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	req := usecases.CompareRequest{
		CalculationRequest: usecases.CalculationRequest{StartDate: "2024-10-01"},
	}
	first, err := svc.Compare(context.Background(), req)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	calls := cal.ensureCalls
	second, err := svc.Compare(context.Background(), req)
	if err != nil {
		t.Fatalf("compare from cache: %v", err)
	}
	if cal.ensureCalls != calls {
		t.Error("cached response should not touch the calendar")
	}
	if second.RegularCost != first.RegularCost || second.Recommendation != first.Recommendation {
		t.Error("cached response diverges from the computed one")
	}
}

func TestHolidays_NamedHolidaysOnly(t *testing.T) {
	cal := &stubCalendar{entries: map[string]domain.CalendarEntry{
		"2024-10-01": {Date: "2024-10-01", IsHoliday: true, Name: "国庆节"},
		"2024-10-04": {Date: "2024-10-04", IsHoliday: true, Name: "国庆节"},
		"2024-10-12": {Date: "2024-10-12", IsWorkingDay: true, Name: "国庆节", Description: "compensatory working day"},
		"2024-10-19": {Date: "2024-10-19", IsHoliday: true}, // unnamed, excluded
	}}
	svc := usecases.NewPassService(cal, nil, testDefaults(),
		usecases.WithPassClock(clockAt("2024-10-01")))

	start, _ := domain.ParseDate("2024-10-01")
	end, _ := domain.ParseDate("2024-10-31")
	summary, err := svc.Holidays(context.Background(), start, end)
	if err != nil {
		t.Fatalf("holidays: %v", err)
	}

	if summary.TotalHolidays != 2 {
		t.Fatalf("expected 2 named holidays, got %d: %+v", summary.TotalHolidays, summary.Holidays)
	}
	first := summary.Holidays[0]
	if first.Date != "2024-10-01" || first.Weekday != "星期二" || first.IsWeekend {
		t.Errorf("unexpected first holiday: %+v", first)
	}

	if _, err := svc.Holidays(context.Background(), end, start); err == nil {
		t.Error("inverted range should be rejected")
	}
}
