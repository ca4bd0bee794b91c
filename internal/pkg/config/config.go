package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// CalendarConfig configures the holiday data sources and the persisted cache.
type CalendarConfig struct {
	CacheFile    string           `mapstructure:"cache_file"`
	MaxAgeDays   int              `mapstructure:"max_age_days"`
	FetchTimeout int              `mapstructure:"fetch_timeout"`
	RefreshHours int              `mapstructure:"refresh_hours"`
	Providers    []ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig is one upstream calendar endpoint, tried in list order.
// URL must contain a single %d verb for the year; format is "events" or
// "table".
type ProviderConfig struct {
	Name   string `mapstructure:"name"`
	URL    string `mapstructure:"url"`
	Format string `mapstructure:"format"`
}

// PricingConfig carries the fare defaults applied to requests that omit them.
type PricingConfig struct {
	PassPrice   float64 `mapstructure:"pass_price"`
	OneWayFare  float64 `mapstructure:"one_way_fare"`
	TripsPerDay int     `mapstructure:"trips_per_day"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("calendar.cache_file", "data/calendar_cache.json")
	v.SetDefault("calendar.max_age_days", 30)
	v.SetDefault("calendar.fetch_timeout", 10)
	v.SetDefault("calendar.refresh_hours", 24)
	v.SetDefault("calendar.providers", []map[string]any{
		{
			"name":   "holiday-cn",
			"url":    "https://raw.githubusercontent.com/NateScarlet/holiday-cn/master/%d.json",
			"format": "events",
		},
		{
			"name":   "timor",
			"url":    "https://timor.tech/api/holiday/year/%d",
			"format": "table",
		},
	})
	v.SetDefault("pricing.pass_price", 1200)
	v.SetDefault("pricing.one_way_fare", 40)
	v.SetDefault("pricing.trips_per_day", 2)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FAREPASS_CALENDAR_CACHE_FILE → calendar.cache_file
	v.SetEnvPrefix("FAREPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Calendar.CacheFile == "" {
		errs = append(errs, "calendar.cache_file is required")
	}
	if c.Calendar.MaxAgeDays <= 0 {
		errs = append(errs, "calendar.max_age_days must be positive")
	}
	if c.Calendar.FetchTimeout <= 0 {
		errs = append(errs, "calendar.fetch_timeout must be positive")
	}
	if c.Calendar.RefreshHours <= 0 {
		errs = append(errs, "calendar.refresh_hours must be positive")
	}
	if len(c.Calendar.Providers) == 0 {
		errs = append(errs, "calendar.providers must list at least one provider")
	}
	for i, p := range c.Calendar.Providers {
		if p.Name == "" || p.URL == "" {
			errs = append(errs, fmt.Sprintf("calendar.providers[%d] needs name and url", i))
		} else if !strings.Contains(p.URL, "%d") {
			errs = append(errs, fmt.Sprintf("calendar.providers[%d].url needs a %%d year placeholder", i))
		}
		if p.Format != "" && p.Format != "events" && p.Format != "table" {
			errs = append(errs, fmt.Sprintf("calendar.providers[%d].format must be events or table, got %q", i, p.Format))
		}
	}
	if c.Pricing.PassPrice <= 0 {
		errs = append(errs, "pricing.pass_price must be positive")
	}
	if c.Pricing.OneWayFare <= 0 {
		errs = append(errs, "pricing.one_way_fare must be positive")
	}
	if c.Pricing.TripsPerDay <= 0 {
		errs = append(errs, "pricing.trips_per_day must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
