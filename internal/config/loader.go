package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LEDGER_CONFIG is set
//  3. env (prefix LEDGER_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: LEDGER_ADDR, LEDGER_STORE_BACKEND, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("LEDGER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "ledger_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.StoreBackend != StoreMemory && cfg.StoreBackend != StoreSQLite {
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, cfg.StoreBackend)
	}
	if cfg.StoreBackend == StoreSQLite && cfg.SQLitePath == "" {
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	}
	if cfg.CascadeWorkers < 1 {
		return fmt.Errorf("%w: cascade_workers must be positive", ErrInvalidConfig)
	}
	if cfg.DefaultStartingSize < 1 {
		return fmt.Errorf("%w: default_starting_size must be positive", ErrInvalidConfig)
	}
	if cfg.QuotaGeneral < 0 || cfg.QuotaBench < 0 || cfg.QuotaFlexible < 0 || cfg.QuotaMidSeason < 0 {
		return fmt.Errorf("%w: transfer quotas must not be negative", ErrInvalidConfig)
	}
	return nil
}
