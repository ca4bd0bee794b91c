package domain

import "time"

// MonthlySegment is the cost breakdown for the portion of a pass period
// inside one calendar month. The discount tier is chosen from this segment's
// trips alone; that is the point of the cross-month split.
type MonthlySegment struct {
	Year           int          `json:"year"`
	Month          int          `json:"month"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	Days           int          `json:"days"`
	WorkingDays    int          `json:"working_days"`
	Trips          int          `json:"trips"`
	BaseFare       float64      `json:"base_fare"`
	Tier           DiscountTier `json:"tier"`
	DiscountAmount float64      `json:"discount_amount"`
	OriginalCost   float64      `json:"original_cost"`
	FinalCost      float64      `json:"final_cost"`
}

// NaiveComparison is the single-discount-over-the-whole-period result,
// attached for audit when the pass period straddles a month boundary. It is
// informational only and never feeds the recommendation.
type NaiveComparison struct {
	Method     string       `json:"method"`
	Tier       DiscountTier `json:"tier"`
	TotalCost  float64      `json:"total_cost"`
	Difference float64      `json:"difference"`
}

// NaiveMethod names the comparison method in NaiveComparison.
const NaiveMethod = "single-discount"

// CrossMonthCalculation is the aggregate per-trip cost of a pass period with
// the volume discount applied independently to each month segment.
// TotalFinalCost is always the exact sum of segment final costs; totals are
// never computed first and re-split.
type CrossMonthCalculation struct {
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	FarePerTrip          float64          `json:"fare_per_trip"`
	TripsPerDay          int              `json:"trips_per_day"`
	CustomWorkingDays    *int             `json:"custom_working_days,omitempty"`
	TotalDays            int              `json:"total_days"`
	TotalWorkingDays     int              `json:"total_working_days"`
	TotalTrips           int              `json:"total_trips"`
	CrossesMonthBoundary bool             `json:"crosses_month_boundary"`
	Segments             []MonthlySegment `json:"segments"`
	TotalOriginalCost    float64          `json:"total_original_cost"`
	TotalDiscountAmount  float64          `json:"total_discount_amount"`
	TotalFinalCost       float64          `json:"total_final_cost"`
	Previous             *NaiveComparison `json:"previous_calculation,omitempty"`
	DataQuality          DataQuality      `json:"data_quality"`
}

// Recommendation is the outcome of comparing pass price against per-trip cost.
type Recommendation string

const (
	BuyPass    Recommendation = "BUY_PASS"
	UseRegular Recommendation = "USE_REGULAR"
)

// PassComparison is the full response surface for a pass-versus-regular
// comparison.
type PassComparison struct {
	Calculation    *CrossMonthCalculation `json:"calculation"`
	PassPrice      float64                `json:"pass_price"`
	RegularCost    float64                `json:"regular_cost"`
	Savings        float64                `json:"savings"`
	Recommendation Recommendation         `json:"recommendation"`
	Reason         string                 `json:"reason"`
	Holidays       *HolidaySummary        `json:"holidays,omitempty"`
	Warnings       []string               `json:"warnings,omitempty"`
}

// HolidayDetail is one named holiday inside a period, for display.
type HolidayDetail struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Weekday   string `json:"weekday"`
	IsWeekend bool   `json:"is_weekend"`
}

// HolidaySummary lists the named holidays of a period in ascending date order.
type HolidaySummary struct {
	TotalHolidays int             `json:"total_holidays"`
	Holidays      []HolidayDetail `json:"holidays"`
}

// weekdayNames maps time.Weekday (Sunday=0) to its display label.
var weekdayNames = [7]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// WeekdayLabel returns the localized weekday name for a date.
func WeekdayLabel(t time.Time) string {
	return weekdayNames[int(t.Weekday())]
}

// IsWeekend reports whether a date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
