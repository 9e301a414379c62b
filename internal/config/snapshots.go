package config

import "time"

// SnapshotsConfig controls on-disk rankings snapshots and finished-match archives.
type SnapshotsConfig struct {
	Enabled       bool   `env:"SNAPSHOTS_ENABLED" envDefault:"true"`
	Folder        string `env:"SNAPSHOT_FOLDER" envDefault:"data/snapshots"`
	RetentionDays int    `env:"SNAPSHOT_RETENTION_DAYS" envDefault:"14"`
}

// RankingsConfig controls the background rankings refresher.
type RankingsConfig struct {
	RefreshEnabled  bool          `env:"RANKINGS_REFRESH_ENABLED" envDefault:"true"`
	RefreshInterval time.Duration `env:"RANKINGS_REFRESH_INTERVAL" envDefault:"1m"`
}
