package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/yichenzhou/farepass/internal/core/domain"
	"github.com/yichenzhou/farepass/internal/core/ports"
)

// defaultCacheMaxAge is how long a persisted calendar cache counts as fresh.
const defaultCacheMaxAge = 30 * 24 * time.Hour

// CalendarService is the stateful calendar façade: it owns the in-memory
// working-day index, keeps the persisted cache fresh, and degrades to a
// weekday heuristic when no data can be had. Construct one per process and
// inject it; there is no package-level instance.
//
// A single RWMutex guards all state, so concurrent callers needing the same
// uncached year block behind one fetch instead of issuing duplicates.
type CalendarService struct {
	source ports.CalendarSource
	store  ports.CalendarStore
	events ports.EventPublisher // optional, may be nil

	maxAge     time.Duration
	sourceName string
	now        func() time.Time

	mu          sync.RWMutex
	initialized bool
	entries     map[string]domain.CalendarEntry
	meta        domain.CacheMetadata
	quality     domain.DataQuality
}

// CalendarOption customises a CalendarService.
type CalendarOption func(*CalendarService)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) CalendarOption {
	return func(s *CalendarService) { s.now = now }
}

// WithMaxAge overrides the cache freshness window.
func WithMaxAge(d time.Duration) CalendarOption {
	return func(s *CalendarService) { s.maxAge = d }
}

// WithSourceName sets the provenance label recorded in cache metadata.
func WithSourceName(name string) CalendarOption {
	return func(s *CalendarService) { s.sourceName = name }
}

// NewCalendarService creates an uninitialized CalendarService. events may be
// nil when no broker is configured.
func NewCalendarService(source ports.CalendarSource, store ports.CalendarStore, events ports.EventPublisher, opts ...CalendarOption) *CalendarService {
	s := &CalendarService{
		source:     source,
		store:      store,
		events:     events,
		maxAge:     defaultCacheMaxAge,
		sourceName: "holiday-api",
		now:        time.Now,
		entries:    make(map[string]domain.CalendarEntry),
		quality:    domain.QualityHeuristic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize brings the service to a ready state. It is idempotent: repeated
// or concurrent calls after the first observe the completed result and never
// re-run the fetch sequence.
//
// A persisted cache younger than the freshness window is loaded as-is.
// Otherwise the current year is fetched and persisted; if that fails, a stale
// cache still serves in degraded mode, and with nothing at all the service
// answers from the weekday heuristic alone.
func (s *CalendarService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx)
}

func (s *CalendarService) initLocked(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	cache, loadErr := s.store.Load(ctx)
	if loadErr != nil && !errors.Is(loadErr, domain.ErrCacheNotFound) && !errors.Is(loadErr, domain.ErrCorruptCache) {
		return fmt.Errorf("load calendar cache: %w", loadErr)
	}
	if errors.Is(loadErr, domain.ErrCorruptCache) {
		slog.Warn("calendar cache corrupt, treating as missing", "error", loadErr)
	}

	if cache != nil && s.now().Sub(cache.Metadata.LastUpdated) < s.maxAge {
		s.indexLocked(cache)
		s.quality = domain.QualityFresh
		s.initialized = true
		slog.Info("calendar cache loaded",
			"years", cache.Metadata.YearsCovered,
			"entries", len(cache.Entries),
			"last_updated", cache.Metadata.LastUpdated)
		return nil
	}

	// Cache missing or expired: try a fresh fetch of the current year.
	if cache != nil {
		s.indexLocked(cache)
	}
	year := s.now().Year()
	fetched, err := s.source.FetchYear(ctx, year)
	if err != nil {
		if cache != nil {
			slog.Warn("calendar fetch failed, serving stale cache", "year", year, "error", err)
			s.quality = domain.QualityDegraded
		} else {
			slog.Warn("calendar fetch failed and no cache exists, weekday heuristic only", "year", year, "error", err)
			s.quality = domain.QualityHeuristic
		}
		s.initialized = true
		return nil
	}

	s.mergeYearLocked(year, fetched)
	s.persistLocked(ctx)
	s.quality = domain.QualityFresh
	s.initialized = true
	slog.Info("calendar initialized from provider", "year", year, "entries", len(fetched))
	return nil
}

// EnsureDataForPeriod guarantees coverage for every year touched by
// [start, end]. Missing years are fetched and merged, then the cache is
// persisted once. Unlike the bootstrap fallback, a fetch failure here is
// hard: the caller asked for that year's data, so the error propagates
// wrapping domain.ErrCalendarUnavailable.
func (s *CalendarService) EnsureDataForPeriod(ctx context.Context, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return err
	}

	var missing []int
	for _, year := range domain.YearsSpanned(start, end) {
		if !s.meta.Covers(year) {
			missing = append(missing, year)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	for _, year := range missing {
		fetched, err := s.source.FetchYear(ctx, year)
		if err != nil {
			return fmt.Errorf("%w: year %d: %v", domain.ErrCalendarUnavailable, year, err)
		}
		s.mergeYearLocked(year, fetched)
	}
	s.persistLocked(ctx)
	s.quality = domain.QualityFresh
	s.publishLocked(ctx, missing)
	slog.Info("calendar coverage extended", "years", missing)
	return nil
}

// Refresh refetches the given years unconditionally, replacing whatever the
// index holds for them, and persists the result. Used by the background
// refresher worker.
func (s *CalendarService) Refresh(ctx context.Context, years ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(ctx); err != nil {
		return err
	}

	for _, year := range years {
		fetched, err := s.source.FetchYear(ctx, year)
		if err != nil {
			return fmt.Errorf("%w: year %d: %v", domain.ErrCalendarUnavailable, year, err)
		}
		s.mergeYearLocked(year, fetched)
	}
	s.persistLocked(ctx)
	s.quality = domain.QualityFresh
	s.publishLocked(ctx, years)
	return nil
}

// Reload re-reads the persisted cache into memory. The API server calls this
// when a refresh event arrives from the broker.
func (s *CalendarService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload calendar cache: %w", err)
	}
	s.indexLocked(cache)
	if s.now().Sub(cache.Metadata.LastUpdated) < s.maxAge {
		s.quality = domain.QualityFresh
	} else {
		s.quality = domain.QualityDegraded
	}
	s.initialized = true
	return nil
}

// IsWorkingDay never fails: the cached classification when the date is
// indexed, otherwise true unless the date falls on Saturday or Sunday.
func (s *CalendarService) IsWorkingDay(date time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[domain.FormatDate(date)]; ok {
		return e.IsWorkingDay
	}
	return !domain.IsWeekend(date)
}

// CountWorkingDays sums IsWorkingDay over [start, end] inclusive.
func (s *CalendarService) CountWorkingDays(start, end time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for d := domain.Midnight(start); !d.After(domain.Midnight(end)); d = d.AddDate(0, 0, 1) {
		if e, ok := s.entries[domain.FormatDate(d)]; ok {
			if e.IsWorkingDay {
				count++
			}
		} else if !domain.IsWeekend(d) {
			count++
		}
	}
	return count
}

// Entry returns a copy of the cached entry for a date, nil when absent.
func (s *CalendarService) Entry(date time.Time) *domain.CalendarEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[domain.FormatDate(date)]; ok {
		return &e
	}
	return nil
}

// Quality reports where working-day answers currently come from.
func (s *CalendarService) Quality() domain.DataQuality {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quality
}

// Metadata returns a snapshot of the cache metadata.
func (s *CalendarService) Metadata() domain.CacheMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta := s.meta
	meta.YearsCovered = append([]int(nil), s.meta.YearsCovered...)
	return meta
}

// indexLocked replaces the in-memory index with the cache contents.
func (s *CalendarService) indexLocked(cache *domain.CalendarCache) {
	entries := make(map[string]domain.CalendarEntry, len(cache.Entries))
	for _, e := range cache.Entries {
		entries[e.Date] = e
	}
	s.entries = entries
	s.meta = cache.Metadata
}

// mergeYearLocked swaps in a freshly fetched year: existing entries for that
// year are dropped, never mutated in place.
func (s *CalendarService) mergeYearLocked(year int, fetched []domain.CalendarEntry) {
	prefix := fmt.Sprintf("%04d-", year)
	for date := range s.entries {
		if len(date) >= len(prefix) && date[:len(prefix)] == prefix {
			delete(s.entries, date)
		}
	}
	for _, e := range fetched {
		s.entries[e.Date] = e
	}

	if !s.meta.Covers(year) {
		s.meta.YearsCovered = append(s.meta.YearsCovered, year)
		sort.Ints(s.meta.YearsCovered)
	}
	s.meta.Version = domain.CacheVersion
	s.meta.Source = s.sourceName
	s.meta.LastUpdated = s.now()
}

// persistLocked writes the current index through the store. The index is
// already correct in memory, so a failed save degrades durability but not
// the running calculation; it is logged, not propagated.
func (s *CalendarService) persistLocked(ctx context.Context) {
	cache := &domain.CalendarCache{
		Metadata: s.meta,
		Entries:  make([]domain.CalendarEntry, 0, len(s.entries)),
	}
	for _, e := range s.entries {
		cache.Entries = append(cache.Entries, e)
	}
	sort.Slice(cache.Entries, func(i, j int) bool { return cache.Entries[i].Date < cache.Entries[j].Date })

	if err := s.store.Save(ctx, cache); err != nil {
		slog.Warn("persist calendar cache failed", "error", err)
	}
}

// publishLocked announces refreshed years, best-effort.
func (s *CalendarService) publishLocked(ctx context.Context, years []int) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCalendarRefreshed(ctx, years); err != nil {
		slog.Warn("publish calendar refresh event failed", "years", years, "error", err)
	}
}
