// internal/adapter/storage/probe.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresProbe checks database reachability with a short-lived pgx pool
type PostgresProbe struct {
	maxConns int32
}

// NewPostgresProbe creates a new probe
func NewPostgresProbe() *PostgresProbe {
	return &PostgresProbe{
		maxConns: 1,
	}
}

// Probe connects, pings and closes. It never writes.
func (p *PostgresProbe) Probe(ctx context.Context, databaseURL string) error {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = p.maxConns
	poolConfig.MinConns = 0

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("unable to ping database: %w", err)
	}

	return nil
}
