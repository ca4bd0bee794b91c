package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yichenzhou/farepass/internal/adapters/filecache"
	"github.com/yichenzhou/farepass/internal/adapters/holidayapi"
	httpadapter "github.com/yichenzhou/farepass/internal/adapters/http"
	natsadapter "github.com/yichenzhou/farepass/internal/adapters/nats"
	"github.com/yichenzhou/farepass/internal/adapters/valkey"
	"github.com/yichenzhou/farepass/internal/core/usecases"
	"github.com/yichenzhou/farepass/internal/pkg/config"
	"github.com/yichenzhou/farepass/internal/pkg/logging"
	"github.com/yichenzhou/farepass/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("farepass-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Calendar cache file
	store, err := filecache.New(cfg.Calendar.CacheFile)
	if err != nil {
		log.Fatalf("calendar cache store: %v", err)
	}

	// Holiday providers
	providers := make([]holidayapi.Provider, 0, len(cfg.Calendar.Providers))
	for _, p := range cfg.Calendar.Providers {
		providers = append(providers, holidayapi.Provider{
			Name:   p.Name,
			URL:    p.URL,
			Format: holidayapi.Format(p.Format),
		})
	}
	gateway := holidayapi.New(providers, time.Duration(cfg.Calendar.FetchTimeout)*time.Second)

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// Calendar service: a failed bootstrap still serves via the weekday
	// heuristic, so only log.
	calOpts := []usecases.CalendarOption{
		usecases.WithMaxAge(time.Duration(cfg.Calendar.MaxAgeDays) * 24 * time.Hour),
	}
	var calendar *usecases.CalendarService
	if publisher != nil {
		calendar = usecases.NewCalendarService(gateway, store, publisher, calOpts...)
	} else {
		calendar = usecases.NewCalendarService(gateway, store, nil, calOpts...)
	}
	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := calendar.Initialize(initCtx); err != nil {
		slog.Error("calendar initialize failed", "error", err)
	}
	initCancel()

	// Reload the in-memory index when the refresher rewrites the cache file.
	if publisher != nil {
		subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer subscriber.Close()
			err = subscriber.SubscribeCalendarRefreshed(ctx, func(ctx context.Context, years []int) error {
				slog.Info("calendar refresh event received", "years", years)
				return calendar.Reload(ctx)
			})
			if err != nil {
				slog.Warn("subscribe calendar refresh failed", "error", err)
			}
		}
	}

	// Use cases
	defaults := usecases.PassDefaults{
		FarePerTrip: cfg.Pricing.OneWayFare,
		TripsPerDay: cfg.Pricing.TripsPerDay,
		PassPrice:   cfg.Pricing.PassPrice,
	}
	var pass *usecases.PassService
	if cache != nil {
		pass = usecases.NewPassService(calendar, cache, defaults)
	} else {
		pass = usecases.NewPassService(calendar, nil, defaults)
	}

	deps := &httpadapter.Dependencies{
		Pass:     pass,
		Calendar: calendar,
		Store:    store,
		Cache:    cache,
	}
	if publisher != nil {
		deps.NATS = publisher.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // comparison requests are tiny
		AppName:      "FarePass API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	httpadapter.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
