package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yichenzhou/farepass/internal/core/domain"
	"github.com/yichenzhou/farepass/internal/core/usecases"
	"github.com/yichenzhou/farepass/internal/pkg/metrics"
)

// CompareHandler computes a pass-versus-regular comparison for a usage
// pattern. All body fields are optional; defaults come from configuration.
func CompareHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.CompareRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "malformed request body: "+err.Error())
			}
		}

		cmp, err := deps.Pass.Compare(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}

		metrics.ComparisonsTotal.WithLabelValues(string(cmp.Recommendation)).Inc()
		return c.JSON(cmp)
	}
}

// CalculateHandler exposes the raw cross-month calculation without the pass
// price comparison, for audit tooling.
func CalculateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.CalculationRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "malformed request body: "+err.Error())
			}
		}

		calc, err := deps.Pass.Calculate(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(calc)
	}
}

// parseRange reads and validates start/end query parameters.
func parseRange(c *fiber.Ctx) (start, end, errVal string) {
	start = c.Query("start")
	end = c.Query("end")
	if start == "" || end == "" {
		return "", "", "start and end query parameters are required"
	}
	return start, end, ""
}

// WorkingDaysHandler counts working days in an inclusive date range.
func WorkingDaysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		startStr, endStr, msg := parseRange(c)
		if msg != "" {
			return errBadRequest(c, msg)
		}
		start, err := domain.ParseDate(startStr)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		end, err := domain.ParseDate(endStr)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if end.Before(start) {
			return errBadRequest(c, "end must not be before start")
		}
		if domain.DaysInclusive(start, end) > 366 {
			return errBadRequest(c, "range must not exceed 366 days")
		}

		if err := deps.Calendar.EnsureDataForPeriod(c.UserContext(), start, end); err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(fiber.Map{
			"start":        startStr,
			"end":          endStr,
			"total_days":   domain.DaysInclusive(start, end),
			"working_days": deps.Calendar.CountWorkingDays(start, end),
			"data_quality": deps.Calendar.Quality(),
		})
	}
}

// HolidaysHandler lists the named holidays of an inclusive date range.
func HolidaysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		startStr, endStr, msg := parseRange(c)
		if msg != "" {
			return errBadRequest(c, msg)
		}
		start, err := domain.ParseDate(startStr)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		end, err := domain.ParseDate(endStr)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if domain.DaysInclusive(start, end) > 366 {
			return errBadRequest(c, "range must not exceed 366 days")
		}

		summary, err := deps.Pass.Holidays(c.UserContext(), start, end)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(summary)
	}
}

// CalendarStatusHandler reports cache provenance and freshness, for ops.
func CalendarStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meta := deps.Calendar.Metadata()
		return c.JSON(fiber.Map{
			"version":       meta.Version,
			"source":        meta.Source,
			"last_updated":  meta.LastUpdated,
			"years_covered": meta.YearsCovered,
			"data_quality":  deps.Calendar.Quality(),
			"cache_file":    deps.Store.Path(),
		})
	}
}
