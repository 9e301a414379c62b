package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Store.Driver != DriverMemory || cfg.Store.SQLitePath != defaultSQLitePath {
		t.Fatalf("unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Rankings.RefreshInterval != defaultRankingsInterval || !cfg.Rankings.RefreshEnabled {
		t.Fatalf("unexpected rankings defaults %+v", cfg.Rankings)
	}
	if cfg.Snapshots.Folder != defaultSnapshotFolder || cfg.Snapshots.RetentionDays != defaultRetentionDays {
		t.Fatalf("unexpected snapshot defaults %+v", cfg.Snapshots)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != defaultMetricsPort || cfg.Metrics.ServiceName != defaultServiceName {
		t.Fatalf("unexpected metrics defaults %+v", cfg.Metrics)
	}
	if cfg.Tracing.Enabled {
		t.Fatalf("expected tracing disabled by default")
	}
	if cfg.Rules.DefaultMaxEncountersPerPlayer != 2 || !cfg.Rules.AllowPairRepeat || cfg.Rules.TiebreakerIgnoresCap {
		t.Fatalf("unexpected rule defaults %+v", cfg.Rules)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults %+v", cfg.Log)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envPort, "5000")
	t.Setenv(envRefresh, "45s")
	t.Setenv(envStoreDriver, DriverSQLite)
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("ALLOW_PAIR_REPEAT", "false")
	t.Setenv("TIEBREAKER_IGNORES_CAP", "true")
	t.Setenv(envMaxPerPlay, "3")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "5000" {
		t.Fatalf("expected port 5000, got %s", cfg.Port)
	}
	if cfg.Rankings.RefreshInterval != 45*time.Second {
		t.Fatalf("expected refresh interval 45s, got %s", cfg.Rankings.RefreshInterval)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLitePath != "/tmp/x.db" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Log.Format != "json" || !cfg.Tracing.Enabled {
		t.Fatalf("expected overrides applied")
	}
	if cfg.Rules.AllowPairRepeat || !cfg.Rules.TiebreakerIgnoresCap || cfg.Rules.DefaultMaxEncountersPerPlayer != 3 {
		t.Fatalf("unexpected rules %+v", cfg.Rules)
	}
}

func TestLoadNonPositiveFallsBack(t *testing.T) {
	t.Setenv(envRefresh, "0s")
	t.Setenv(envRetention, "-1")
	t.Setenv(envMaxPerPlay, "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Rankings.RefreshInterval != defaultRankingsInterval {
		t.Fatalf("expected default interval on non-positive value, got %s", cfg.Rankings.RefreshInterval)
	}
	if cfg.Snapshots.RetentionDays != defaultRetentionDays {
		t.Fatalf("expected default retention, got %d", cfg.Snapshots.RetentionDays)
	}
	if cfg.Rules.DefaultMaxEncountersPerPlayer != defaultMaxEncountersPerPlayer {
		t.Fatalf("expected default cap, got %d", cfg.Rules.DefaultMaxEncountersPerPlayer)
	}
}

func TestLoadMalformedValueFails(t *testing.T) {
	t.Setenv(envRefresh, "not-a-duration")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadStoreValidation(t *testing.T) {
	t.Setenv(envStoreDriver, "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown driver error")
	}

	t.Setenv(envStoreDriver, DriverPostgres)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), envDatabaseURL) {
		t.Fatalf("expected missing database url error, got %v", err)
	}

	t.Setenv(envDatabaseURL, "postgres://localhost/scoring")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
