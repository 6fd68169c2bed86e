// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `koanf:"database_url"`

	// DatabaseMaxConns caps the connection pool.
	DatabaseMaxConns int `koanf:"database_max_conns"`

	// UpstreamBaseURL points at the federation results API.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamTimeoutMS bounds each upstream request in milliseconds.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// HomeClubID is the default club for club-season batch syncs.
	HomeClubID int `koanf:"home_club_id"`

	// SeasonStart is the default cutoff date (yyyy-mm-dd) for club-season
	// batch syncs.
	SeasonStart string `koanf:"season_start"`

	// SearchLimit caps rows per entity kind on GET /search.
	SearchLimit int `koanf:"search_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8080",
		DatabaseURL:       "postgres://localhost:5432/gymstats",
		DatabaseMaxConns:  10,
		UpstreamBaseURL:   "https://api.myusagym.com",
		UpstreamTimeoutMS: 15_000,
		HomeClubID:        24029,
		SeasonStart:       "2022-09-01",
		SearchLimit:       5,
	}
}
