package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOption tunes the pgx pool configuration before connect.
type PostgresOption func(*pgxpool.Config)

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) PostgresOption {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = n
		}
	}
}

// WithConnectTimeout bounds the initial dial.
func WithConnectTimeout(d time.Duration) PostgresOption {
	return func(cfg *pgxpool.Config) {
		if d > 0 {
			cfg.ConnConfig.ConnectTimeout = d
		}
	}
}
