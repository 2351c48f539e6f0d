// Package config loads service configuration from YAML with APP_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/rotation-advisor-service/internal/augment"
	"github.com/maxviazov/rotation-advisor-service/internal/logger"
	"github.com/maxviazov/rotation-advisor-service/internal/rotation"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Redis    RedisConfig         `mapstructure:"redis"`
	Rotation RotationConfig      `mapstructure:"rotation"`
	Augment  AugmentConfig       `mapstructure:"augment"`
}

type AppConfig struct {
	Name            string `mapstructure:"name" validate:"required"`
	Version         string `mapstructure:"version"`
	Env             string `mapstructure:"env" validate:"oneof=dev staging prod"`
	Port            int    `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" validate:"min=1"`
}

// StorageConfig picks the backend for games and rotation history.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory postgres"`
}

// PostgresConfig durations are in seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port" validate:"min=1,max=65535"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db"`
	SSLMode           string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"min=1"`
	MinConns          int32  `mapstructure:"min_conns" validate:"min=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime" validate:"min=0"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time" validate:"min=0"`
	HealthCheckPeriod int    `mapstructure:"health_check_period" validate:"min=0"`
	Migrate           bool   `mapstructure:"migrate"`
}

// RedisConfig backs the analysis cache. An empty Addr keeps the cache in process.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
	TTL      int    `mapstructure:"ttl" validate:"min=1"`
}

type RotationConfig struct {
	Style           string `mapstructure:"style" validate:"omitempty,oneof=relaxed balanced strict"`
	QuarterDuration int    `mapstructure:"quarter_duration" validate:"omitempty,min=60,max=3600"`
	TopN            int    `mapstructure:"top_n" validate:"omitempty,min=1,max=10"`
	HistoryCap      int    `mapstructure:"history_cap" validate:"omitempty,min=1,max=1000"`
}

// AugmentConfig points at the optional remote text model. No base_url or api_key disables it.
type AugmentConfig struct {
	BaseURL   string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	TimeoutMS int    `mapstructure:"timeout_ms" validate:"min=100"`
}

// Validate checks struct tags plus the rules that span fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	if c.Storage.Driver == "postgres" {
		if c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.DBName == "" {
			return errors.New("config validation error: postgres.host, postgres.user and postgres.db are required for the postgres driver")
		}
		if c.Postgres.MinConns > c.Postgres.MaxConns {
			return errors.New("config validation error: postgres.min_conns exceeds postgres.max_conns")
		}
	}
	if _, err := c.Rotation.Thresholds(); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

// Thresholds resolves the style preset and applies the explicit overrides on top.
func (r RotationConfig) Thresholds() (rotation.Thresholds, error) {
	th, err := rotation.ThresholdsFor(rotation.Style(r.Style))
	if err != nil {
		return rotation.Thresholds{}, err
	}
	if r.QuarterDuration > 0 {
		th.QuarterDuration = r.QuarterDuration
	}
	if r.TopN > 0 {
		th.TopN = r.TopN
	}
	return th, th.Validate()
}

// Client returns the augment client settings.
func (a AugmentConfig) Client() augment.Config {
	return augment.Config{
		BaseURL: a.BaseURL,
		APIKey:  a.APIKey,
		Model:   a.Model,
		Timeout: time.Duration(a.TimeoutMS) * time.Millisecond,
	}
}

// TTLDuration is the analysis cache entry lifetime.
func (r RedisConfig) TTLDuration() time.Duration {
	return time.Duration(r.TTL) * time.Second
}
