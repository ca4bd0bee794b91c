package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/yichenzhou/farepass/internal/core/domain"
	"github.com/yichenzhou/farepass/internal/core/ports"
)

// DefaultWindowDays is the standard pass validity window. The engine treats
// it as an ordinary parameter; nothing below depends on the value being 30.
const DefaultWindowDays = 30

// PassDefaults fills in omitted request fields.
type PassDefaults struct {
	FarePerTrip float64
	TripsPerDay int
	PassPrice   float64
}

// CalculationRequest is the input to the cross-month cost engine. Zero-value
// fields take documented defaults: start date today, fare and trips per day
// from configuration, working days counted from the calendar.
type CalculationRequest struct {
	StartDate         string  `json:"start_date"`
	FarePerTrip       float64 `json:"one_way_fare"`
	TripsPerDay       int     `json:"trips_per_day"`
	CustomWorkingDays *int    `json:"custom_working_days"`
	WindowDays        int     `json:"window_days"`
}

// CompareRequest adds the flat pass price to compare against.
type CompareRequest struct {
	CalculationRequest
	PassPrice float64 `json:"pass_price"`
}

// PassService computes per-trip costs with the volume discount applied
// independently to each calendar-month segment, and compares the total
// against a flat pass price.
type PassService struct {
	calendar ports.WorkingDayCalendar
	cache    ports.CacheService // optional, may be nil
	tiers    domain.TierTable
	defaults PassDefaults
	now      func() time.Time
}

// PassOption customises a PassService.
type PassOption func(*PassService)

// WithPassClock replaces the time source, for tests.
func WithPassClock(now func() time.Time) PassOption {
	return func(s *PassService) { s.now = now }
}

// NewPassService creates a PassService. cache may be nil when no response
// cache is configured.
func NewPassService(calendar ports.WorkingDayCalendar, cache ports.CacheService, defaults PassDefaults, opts ...PassOption) *PassService {
	s := &PassService{
		calendar: calendar,
		cache:    cache,
		tiers:    domain.DefaultTiers,
		defaults: defaults,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolve applies defaults and validates the request. Validation happens
// before any calendar work; a *domain.ValidationError here is never retried.
func (s *PassService) resolve(req CalculationRequest) (CalculationRequest, time.Time, time.Time, error) {
	if req.StartDate == "" {
		req.StartDate = domain.FormatDate(s.now())
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return req, time.Time{}, time.Time{}, domain.NewValidationError("start_date", err.Error())
	}

	if req.FarePerTrip == 0 {
		req.FarePerTrip = s.defaults.FarePerTrip
	}
	if req.FarePerTrip <= 0 {
		return req, time.Time{}, time.Time{}, domain.NewValidationError("one_way_fare", "must be positive")
	}

	if req.TripsPerDay == 0 {
		req.TripsPerDay = s.defaults.TripsPerDay
	}
	if req.TripsPerDay < 1 || req.TripsPerDay > 20 {
		return req, time.Time{}, time.Time{}, domain.NewValidationError("trips_per_day", "must be between 1 and 20")
	}

	if req.WindowDays == 0 {
		req.WindowDays = DefaultWindowDays
	}
	if req.WindowDays < 1 || req.WindowDays > 366 {
		return req, time.Time{}, time.Time{}, domain.NewValidationError("window_days", "must be between 1 and 366")
	}

	end := start.AddDate(0, 0, req.WindowDays-1)

	if req.CustomWorkingDays != nil {
		if cwd := *req.CustomWorkingDays; cwd < 0 || cwd > req.WindowDays {
			return req, time.Time{}, time.Time{}, domain.NewValidationError("custom_working_days",
				fmt.Sprintf("must be between 0 and %d", req.WindowDays))
		}
	}

	return req, start, end, nil
}

// Calculate runs the cross-month cost engine. Segment costs are computed
// first and then summed; totals are never derived and re-split, so
// TotalFinalCost equals the exact segment sum.
func (s *PassService) Calculate(ctx context.Context, req CalculationRequest) (*domain.CrossMonthCalculation, error) {
	req, start, end, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	if err := s.calendar.EnsureDataForPeriod(ctx, start, end); err != nil {
		return nil, err
	}

	totalDays := domain.DaysInclusive(start, end)
	spans := domain.SplitMonths(start, end)

	calc := &domain.CrossMonthCalculation{
		StartDate:            domain.FormatDate(start),
		EndDate:              domain.FormatDate(end),
		FarePerTrip:          req.FarePerTrip,
		TripsPerDay:          req.TripsPerDay,
		CustomWorkingDays:    req.CustomWorkingDays,
		TotalDays:            totalDays,
		CrossesMonthBoundary: len(spans) > 1,
		DataQuality:          s.calendar.Quality(),
	}

	for _, span := range spans {
		var workingDays int
		if req.CustomWorkingDays != nil {
			// Proportional share of the override, rounded per segment
			// independently. The segment sum may drift from the requested
			// total by up to segmentCount-1; that drift is accepted, not
			// reconciled.
			share := float64(span.Days) / float64(totalDays) * float64(*req.CustomWorkingDays)
			workingDays = int(math.Round(share))
		} else {
			workingDays = s.calendar.CountWorkingDays(span.Start, span.End)
		}

		trips := workingDays * req.TripsPerDay
		originalCost := float64(trips) * req.FarePerTrip
		tier := s.tiers.TierFor(trips)
		discount := originalCost * tier.Rate

		seg := domain.MonthlySegment{
			Year:           span.Year,
			Month:          int(span.Month),
			StartDate:      domain.FormatDate(span.Start),
			EndDate:        domain.FormatDate(span.End),
			Days:           span.Days,
			WorkingDays:    workingDays,
			Trips:          trips,
			BaseFare:       req.FarePerTrip,
			Tier:           tier,
			DiscountAmount: discount,
			OriginalCost:   originalCost,
			FinalCost:      originalCost - discount,
		}
		calc.Segments = append(calc.Segments, seg)

		calc.TotalWorkingDays += seg.WorkingDays
		calc.TotalTrips += seg.Trips
		calc.TotalOriginalCost += seg.OriginalCost
		calc.TotalDiscountAmount += seg.DiscountAmount
		calc.TotalFinalCost += seg.FinalCost
	}

	if calc.CrossesMonthBoundary {
		// Audit figure: the discount applied once across the whole period,
		// as if no month boundary existed.
		tier := s.tiers.TierFor(calc.TotalTrips)
		naiveCost := calc.TotalOriginalCost * (1 - tier.Rate)
		calc.Previous = &domain.NaiveComparison{
			Method:     domain.NaiveMethod,
			Tier:       tier,
			TotalCost:  naiveCost,
			Difference: calc.TotalFinalCost - naiveCost,
		}
	}

	return calc, nil
}

// Compare runs Calculate and recommends the pass or per-trip fares against a
// flat pass price, attaching the period's named holidays and any warnings.
// Responses are served read-through from the byte cache when one is wired.
func (s *PassService) Compare(ctx context.Context, req CompareRequest) (*domain.PassComparison, error) {
	if req.PassPrice == 0 {
		req.PassPrice = s.defaults.PassPrice
	}
	if req.PassPrice <= 0 {
		return nil, domain.NewValidationError("pass_price", "must be positive")
	}
	if req.StartDate == "" {
		req.StartDate = domain.FormatDate(s.now())
	}

	cacheKey := compareCacheKey(req)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cmp domain.PassComparison
			if err := json.Unmarshal(data, &cmp); err == nil {
				return &cmp, nil
			}
		}
	}

	calc, err := s.Calculate(ctx, req.CalculationRequest)
	if err != nil {
		return nil, err
	}

	start, _ := domain.ParseDate(calc.StartDate)
	end, _ := domain.ParseDate(calc.EndDate)

	holidays, err := s.Holidays(ctx, start, end)
	if err != nil {
		return nil, err
	}

	cmp := &domain.PassComparison{
		Calculation: calc,
		PassPrice:   req.PassPrice,
		RegularCost: calc.TotalFinalCost,
		Savings:     calc.TotalFinalCost - req.PassPrice,
		Holidays:    holidays,
	}
	if req.PassPrice < calc.TotalFinalCost {
		cmp.Recommendation = domain.BuyPass
		cmp.Reason = fmt.Sprintf("pass saves %.2f over discounted per-trip fares", cmp.Savings)
	} else {
		cmp.Recommendation = domain.UseRegular
		cmp.Reason = fmt.Sprintf("per-trip fares are cheaper by %.2f", -cmp.Savings)
	}
	cmp.Warnings = s.warnings(calc, start)

	// Calendar content changes at most daily; 1h keeps repeat lookups cheap.
	if s.cache != nil {
		if data, err := json.Marshal(cmp); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}

	return cmp, nil
}

func (s *PassService) warnings(calc *domain.CrossMonthCalculation, start time.Time) []string {
	var warnings []string
	if start.Before(domain.Midnight(s.now())) {
		warnings = append(warnings, "start date is in the past")
	}
	if calc.CustomWorkingDays != nil && calc.CrossesMonthBoundary {
		warnings = append(warnings, "custom working days are allocated to months proportionally with independent rounding")
	}
	switch calc.DataQuality {
	case domain.QualityDegraded:
		warnings = append(warnings, "holiday calendar is stale; counts may miss recent adjustments")
	case domain.QualityHeuristic:
		warnings = append(warnings, "no holiday calendar data; working days assume plain Monday-Friday weeks")
	}
	return warnings
}

// Holidays walks every day of [start, end] and reports the named holidays in
// ascending order. Plain weekends without a named holiday are excluded.
func (s *PassService) Holidays(ctx context.Context, start, end time.Time) (*domain.HolidaySummary, error) {
	if end.Before(start) {
		return nil, domain.NewValidationError("end", "must not be before start")
	}
	if err := s.calendar.EnsureDataForPeriod(ctx, start, end); err != nil {
		return nil, err
	}

	summary := &domain.HolidaySummary{Holidays: []domain.HolidayDetail{}}
	for d := domain.Midnight(start); !d.After(domain.Midnight(end)); d = d.AddDate(0, 0, 1) {
		entry := s.calendar.Entry(d)
		if entry == nil || !entry.IsHoliday || entry.Name == "" {
			continue
		}
		summary.Holidays = append(summary.Holidays, domain.HolidayDetail{
			Date:      entry.Date,
			Name:      entry.Name,
			Weekday:   domain.WeekdayLabel(d),
			IsWeekend: domain.IsWeekend(d),
		})
	}
	summary.TotalHolidays = len(summary.Holidays)
	return summary, nil
}

func compareCacheKey(req CompareRequest) string {
	cwd := -1
	if req.CustomWorkingDays != nil {
		cwd = *req.CustomWorkingDays
	}
	return fmt.Sprintf("pass:compare:%s:%g:%d:%d:%d:%g",
		req.StartDate, req.FarePerTrip, req.TripsPerDay, cwd, req.WindowDays, req.PassPrice)
}
