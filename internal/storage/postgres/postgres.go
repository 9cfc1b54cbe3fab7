// Package postgres provides Postgres-backed persistence for price and
// news snapshots.
//
// Expected schema:
//
//	CREATE TABLE daily_prices (
//		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//		commodity_np TEXT NOT NULL,
//		min_price DOUBLE PRECISION NOT NULL,
//		max_price DOUBLE PRECISION NOT NULL,
//		avg_price DOUBLE PRECISION NOT NULL,
//		effective_date DATE NOT NULL
//	);
//	CREATE INDEX ON daily_prices (effective_date);
//	CREATE INDEX ON daily_prices (commodity_np, effective_date DESC);
//
//	CREATE TABLE news_items (
//		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//		title_np TEXT NOT NULL,
//		title_en TEXT NOT NULL,
//		body_np TEXT NOT NULL,
//		body_en TEXT NOT NULL,
//		source TEXT NOT NULL,
//		publish_date TEXT NOT NULL,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig controls the shared pgx connection pool.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DB is the subset of pgxpool.Pool the stores need; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// NewPool creates a pgx connection pool from the provided config.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
