package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// defaults are registered with viper so every key can also come from APP_* env alone.
var defaults = map[string]any{
	"app.name":             "rotation-advisor-service",
	"app.version":          "0.1.0",
	"app.env":              "prod",
	"app.port":             8080,
	"app.shutdown_timeout": 10,

	"logger.level":         "",
	"logger.format":        "",
	"logger.env":           "",
	"logger.service_name":  "",
	"logger.output_target": "",

	"storage.driver": "memory",

	"postgres.host":                "localhost",
	"postgres.port":                5432,
	"postgres.user":                "",
	"postgres.password":            "",
	"postgres.db":                  "",
	"postgres.sslmode":             "disable",
	"postgres.max_conns":           10,
	"postgres.min_conns":           1,
	"postgres.max_conn_lifetime":   3600,
	"postgres.max_conn_idle_time":  300,
	"postgres.health_check_period": 30,
	"postgres.migrate":             true,

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,
	"redis.ttl":      3600,

	"rotation.style":            "balanced",
	"rotation.quarter_duration": 900,
	"rotation.top_n":            4,
	"rotation.history_cap":      20,

	"augment.base_url":   "",
	"augment.api_key":    "",
	"augment.model":      "gemini-2.0-flash",
	"augment.timeout_ms": 5000,
}

func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
