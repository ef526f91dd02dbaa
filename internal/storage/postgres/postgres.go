// Package postgres stores imported area and mobile documents in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/rotimport/internal/config"
)

// applicationName tags every connection in pg_stat_activity.
const applicationName = "rotimport"

// Pool owns the connection pool the postgres sink writes through.
type Pool struct {
	pool *pgxpool.Pool
	name string
}

// NewPool connects to the database described by cfg and verifies it answers.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error; no connections
// are left open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{pool: pool, name: cfg.Name}
	if err := p.Health(ctx, 10*time.Second); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %q: %w", cfg.Name, err)
	}
	return p, nil
}

// Health pings the database, giving up after timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Areas returns an AreaRepository sharing this pool.
func (p *Pool) Areas() *AreaRepository {
	return NewAreaRepository(p.pool)
}

// Name returns the database name the pool is connected to.
func (p *Pool) Name() string { return p.name }

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
