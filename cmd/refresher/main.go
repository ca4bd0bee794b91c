package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yichenzhou/farepass/internal/adapters/filecache"
	"github.com/yichenzhou/farepass/internal/adapters/holidayapi"
	natsadapter "github.com/yichenzhou/farepass/internal/adapters/nats"
	"github.com/yichenzhou/farepass/internal/core/usecases"
	"github.com/yichenzhou/farepass/internal/pkg/config"
	"github.com/yichenzhou/farepass/internal/pkg/logging"
)

// The refresher keeps the calendar cache file warm so API instances rarely
// fetch inline. Each tick refetches the current year (and the next one near
// year end), then announces the refresh over NATS.
func main() {
	cfg, err := config.Load("farepass-refresher")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := filecache.New(cfg.Calendar.CacheFile)
	if err != nil {
		log.Fatalf("calendar cache store: %v", err)
	}

	providers := make([]holidayapi.Provider, 0, len(cfg.Calendar.Providers))
	for _, p := range cfg.Calendar.Providers {
		providers = append(providers, holidayapi.Provider{
			Name:   p.Name,
			URL:    p.URL,
			Format: holidayapi.Format(p.Format),
		})
	}
	gateway := holidayapi.New(providers, time.Duration(cfg.Calendar.FetchTimeout)*time.Second)

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, refresh events disabled", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	calOpts := []usecases.CalendarOption{
		usecases.WithMaxAge(time.Duration(cfg.Calendar.MaxAgeDays) * 24 * time.Hour),
	}
	var calendar *usecases.CalendarService
	if publisher != nil {
		calendar = usecases.NewCalendarService(gateway, store, publisher, calOpts...)
	} else {
		calendar = usecases.NewCalendarService(gateway, store, nil, calOpts...)
	}

	interval := time.Duration(cfg.Calendar.RefreshHours) * time.Hour
	slog.Info("refresher starting", "interval", interval, "cache_file", store.Path())

	refresh(ctx, calendar)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			refresh(ctx, calendar)
		case sig := <-quit:
			slog.Info("refresher stopping", "signal", sig.String())
			return
		}
	}
}

// refresh refetches the current year, plus the next year when within 60 days
// of rollover so January passes already have data. Errors are logged; the
// next tick is the retry.
func refresh(ctx context.Context, calendar *usecases.CalendarService) {
	now := time.Now()
	years := []int{now.Year()}
	if now.AddDate(0, 0, 60).Year() > now.Year() {
		years = append(years, now.Year()+1)
	}

	refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := calendar.Refresh(refreshCtx, years...); err != nil {
		slog.Error("calendar refresh failed", "years", years, "error", err)
		return
	}
	slog.Info("calendar refreshed", "years", years)
}
