// Package holidayapi fetches yearly holiday/working-day calendars from
// public government-calendar endpoints, normalizing their formats into
// domain.CalendarEntry lists.
package holidayapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/yichenzhou/farepass/internal/core/domain"
	"github.com/yichenzhou/farepass/internal/pkg/metrics"
)

// Format names a provider's response body shape.
type Format string

const (
	// FormatEvents is an array-of-events document:
	// {"year": ..., "days": [{"name": ..., "date": "YYYY-MM-DD", "isOffDay": ...}]}
	FormatEvents Format = "events"
	// FormatTable is a tabular holidays object keyed by month-day:
	// {"code": 0, "holiday": {"MM-DD": {"holiday": ..., "name": ..., "date": ...}}}
	FormatTable Format = "table"
)

// Provider is one configured upstream calendar endpoint. URL must contain a
// single %d verb for the year.
type Provider struct {
	Name   string
	URL    string
	Format Format
}

// Gateway implements ports.CalendarSource over an ordered provider list:
// the first provider answering 2xx with a parseable body wins.
type Gateway struct {
	providers []Provider
	client    *http.Client
}

// New creates a Gateway with a bounded per-request timeout.
func New(providers []Provider, timeout time.Duration) *Gateway {
	return &Gateway{
		providers: providers,
		client:    &http.Client{Timeout: timeout},
	}
}

// FetchYear tries each provider in priority order and returns the first
// successfully parsed year, sorted by date ascending. When every provider
// fails, the error wraps domain.ErrDataSourceUnavailable and names each
// provider's failure. No retrying happens here; the caller owns backoff.
func (g *Gateway) FetchYear(ctx context.Context, year int) ([]domain.CalendarEntry, error) {
	var failures []string
	for _, p := range g.providers {
		start := time.Now()
		entries, err := g.fetchProvider(ctx, p, year)
		metrics.ObserveCalendarFetch(p.Name, err == nil, time.Since(start))
		if err != nil {
			slog.Warn("calendar provider failed", "provider", p.Name, "year", year, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", p.Name, err))
			continue
		}
		slog.Info("calendar year fetched", "provider", p.Name, "year", year, "entries", len(entries))
		return entries, nil
	}
	return nil, fmt.Errorf("%w: year %d: %s", domain.ErrDataSourceUnavailable, year, strings.Join(failures, "; "))
}

func (g *Gateway) fetchProvider(ctx context.Context, p Provider, year int) ([]domain.CalendarEntry, error) {
	url := fmt.Sprintf(p.URL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var entries []domain.CalendarEntry
	switch p.Format {
	case FormatTable:
		entries, err = parseTable(body, year)
	default:
		entries, err = parseEvents(body)
	}
	if err != nil {
		return nil, err
	}

	entries = dropMalformed(entries, p.Name)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

// dropMalformed filters out entries whose date fails the YYYY-MM-DD check.
// Bad rows are logged and skipped, never fatal.
func dropMalformed(entries []domain.CalendarEntry, provider string) []domain.CalendarEntry {
	kept := entries[:0]
	for _, e := range entries {
		if _, err := domain.ParseDate(e.Date); err != nil {
			slog.Debug("dropping malformed calendar entry", "provider", provider, "date", e.Date)
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
