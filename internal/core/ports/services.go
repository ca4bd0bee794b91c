package ports

import (
	"context"
	"time"

	"github.com/yichenzhou/farepass/internal/core/domain"
)

// WorkingDayCalendar answers working-day queries for the cost calculator.
// Implemented by usecases.CalendarService.
type WorkingDayCalendar interface {
	// EnsureDataForPeriod guarantees calendar coverage for every year
	// touched by [start, end], fetching missing years. A failed fetch
	// returns an error wrapping domain.ErrCalendarUnavailable.
	EnsureDataForPeriod(ctx context.Context, start, end time.Time) error
	// IsWorkingDay never fails: cached classification when present,
	// Saturday/Sunday heuristic otherwise.
	IsWorkingDay(date time.Time) bool
	// CountWorkingDays sums IsWorkingDay over [start, end] inclusive.
	CountWorkingDays(start, end time.Time) int
	// Entry returns the raw cached entry for a date, nil if absent.
	Entry(date time.Time) *domain.CalendarEntry
	// Quality reports where answers currently come from.
	Quality() domain.DataQuality
}

// CacheService provides read-through caching of computed responses.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes calendar lifecycle events to a message broker.
type EventPublisher interface {
	// PublishCalendarRefreshed announces that the given years were fetched
	// and persisted, so other instances can reload from the store.
	PublishCalendarRefreshed(ctx context.Context, years []int) error
}

// EventSubscriber subscribes to calendar lifecycle events.
type EventSubscriber interface {
	SubscribeCalendarRefreshed(ctx context.Context, handler func(ctx context.Context, years []int) error) error
}
