package config

import "fmt"

// StoreConfig selects the repository backend.
type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER" envDefault:"memory"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/scoring.db"`
	DatabaseURL string `env:"DATABASE_URL"`
}

func (s StoreConfig) validate() error {
	switch s.Driver {
	case DriverMemory, DriverSQLite:
		return nil
	case DriverPostgres:
		if s.DatabaseURL == "" {
			return fmt.Errorf("%s is required for the postgres store", envDatabaseURL)
		}
		return nil
	default:
		return fmt.Errorf("unknown %s %q", envStoreDriver, s.Driver)
	}
}
