package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// Config carries environment-driven settings for the api and worker processes.
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	RunLocal       bool   `env:"RUN_LOCAL"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT"`

	DateFormat    string `env:"ORDER_DATE_FORMAT" envDefault:"ymd"` // ymd | dmy
	TimeZone      string `env:"ORDER_TIMEZONE" envDefault:"UTC"`
	MaxPhotoBytes int64  `env:"MAX_PHOTO_BYTES" envDefault:"10485760"`

	CarrierQueueURL  string `env:"CARRIER_QUEUE_URL"`
	MetricsEnabled   bool   `env:"METRICS_ENABLED"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"CargoOrderForm"`

	AWSRegion           string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointOverride string `env:"AWS_ENDPOINT_OVERRIDE"`

	DedupWindow  time.Duration `env:"DEDUP_WINDOW" envDefault:"48h"`
	LocalSQSBody string        `env:"LOCAL_SQS_BODY"` // worker RUN_LOCAL payload

	// resolved by Load
	dateLayout string
	location   *time.Location
}

// Load reads an optional .env file, then the environment, and checks the
// values that can be checked up front.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	layout, err := orders.DateLayout(cfg.DateFormat)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("ORDER_TIMEZONE %q: %w", cfg.TimeZone, err)
	}
	cfg.dateLayout, cfg.location = layout, loc

	if cfg.DedupWindow <= 0 {
		return nil, fmt.Errorf("DEDUP_WINDOW must be positive")
	}
	if cfg.MaxPhotoBytes < 0 {
		return nil, fmt.Errorf("MAX_PHOTO_BYTES must not be negative")
	}
	return cfg, nil
}

// DateLayout is the Go layout for normalized order dates. A Config not built
// by Load uses yyyy-mm-dd.
func (c *Config) DateLayout() string {
	if c.dateLayout == "" {
		return orders.DateLayoutYMD
	}
	return c.dateLayout
}

// Location is the time zone that decides which calendar day is "today". A
// Config not built by Load uses UTC.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
