package config

import "time"

const (
	envPort        = "PORT"
	envStoreDriver = "STORE_DRIVER"
	envDatabaseURL = "DATABASE_URL"
	envRefresh     = "RANKINGS_REFRESH_INTERVAL"
	envRetention   = "SNAPSHOT_RETENTION_DAYS"
	envMaxPerPlay  = "DEFAULT_MAX_ENCOUNTERS_PER_PLAYER"

	defaultPort                   = "4000"
	defaultMetricsPort            = "9090"
	defaultRankingsInterval       = time.Minute
	defaultRetentionDays          = 14
	defaultMaxEncountersPerPlayer = 2
	defaultSnapshotFolder         = "data/snapshots"
	defaultSQLitePath             = "data/scoring.db"
	defaultServiceName            = "tabletennis-scoring-service"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
