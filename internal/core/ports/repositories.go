package ports

import (
	"context"

	"github.com/yichenzhou/farepass/internal/core/domain"
)

// CalendarSource fetches one year of holiday/working-day classifications
// from an external provider chain.
type CalendarSource interface {
	// FetchYear returns the year's entries sorted by date ascending. When
	// every configured provider fails it returns an error wrapping
	// domain.ErrDataSourceUnavailable.
	FetchYear(ctx context.Context, year int) ([]domain.CalendarEntry, error)
}

// CalendarStore persists the calendar cache durably.
type CalendarStore interface {
	// Load returns the persisted cache, domain.ErrCacheNotFound when none
	// exists, or domain.ErrCorruptCache when the file cannot be decoded.
	Load(ctx context.Context) (*domain.CalendarCache, error)
	// Save writes the cache crash-safely, preserving the previous file as a
	// timestamped backup on a best-effort basis.
	Save(ctx context.Context, cache *domain.CalendarCache) error
}
