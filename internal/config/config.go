package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port      string `env:"PORT" envDefault:"4000"`
	Log       LogConfig
	Store     StoreConfig
	Rankings  RankingsConfig
	Snapshots SnapshotsConfig
	Metrics   MetricsConfig
	Tracing   TracingConfig
	Rules     RulesConfig
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads a .env file when present, then environment variables with defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyFallbacks()
	if err := cfg.Store.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFallbacks() {
	c.Rankings.RefreshInterval = positiveDuration(c.Rankings.RefreshInterval, defaultRankingsInterval)
	c.Snapshots.RetentionDays = positiveInt(c.Snapshots.RetentionDays, defaultRetentionDays)
	c.Rules.DefaultMaxEncountersPerPlayer = positiveInt(c.Rules.DefaultMaxEncountersPerPlayer, defaultMaxEncountersPerPlayer)
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.Metrics.Port == "" {
		c.Metrics.Port = defaultMetricsPort
	}
}
