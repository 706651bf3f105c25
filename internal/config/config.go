package config

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AnalyticsURL string        `envconfig:"ANALYTICS_URL" default:"https://analytics.api.aiesec.org/v2/applications/analyze.json"`
	Port         string        `envconfig:"PORT" default:"8080"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	LogLevelName string        `envconfig:"LOG_LEVEL" default:"info"`
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) LogLevel() slog.Level {
	if c.LogLevelName == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
