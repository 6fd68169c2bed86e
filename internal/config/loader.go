package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/roundoff/gymstats/internal/domain/normalize"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if GYMSTATS_CONFIG is set
//  3. env (prefix GYMSTATS_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("GYMSTATS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GYMSTATS_ADDR, GYMSTATS_DATABASE_URL, ...
	// Map env keys like GYMSTATS_DATABASE_URL -> database_url (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("GYMSTATS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gymstats_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DatabaseURL == "":
		return nil, fmt.Errorf("%w: database_url must not be empty", ErrInvalidConfig)
	case cfg.UpstreamBaseURL == "":
		return nil, fmt.Errorf("%w: upstream_base_url must not be empty", ErrInvalidConfig)
	}
	if _, ok := normalize.ParseDate(cfg.SeasonStart); !ok {
		return nil, fmt.Errorf("%w: season_start must be yyyy-mm-dd", ErrInvalidConfig)
	}
	return &cfg, nil
}
