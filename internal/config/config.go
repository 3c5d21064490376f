// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; file and environment layers override them.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Store backend names accepted by StoreBackend.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the persistence adapter: memory or sqlite.
	StoreBackend string `koanf:"store_backend"`

	// SQLitePath locates the database file when StoreBackend is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// CascadeWorkers bounds the per-league fan-out of a pool cascade.
	CascadeWorkers int `koanf:"cascade_workers"`

	// DefaultStartingSize seeds League.StartingSize when a league is created
	// without one.
	DefaultStartingSize int `koanf:"default_starting_size"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// Per-category transfer quotas granted to a newly created squad.
	QuotaGeneral   int `koanf:"quota_general"`
	QuotaBench     int `koanf:"quota_bench"`
	QuotaFlexible  int `koanf:"quota_flexible"`
	QuotaMidSeason int `koanf:"quota_mid_season"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StoreBackend:        StoreMemory,
		SQLitePath:          "squadledger.db",
		CascadeWorkers:      4,
		DefaultStartingSize: 11,
		MaxStandingsLimit:   100,
		QuotaGeneral:        10,
		QuotaBench:          4,
		QuotaFlexible:       2,
		QuotaMidSeason:      2,
	}
}
