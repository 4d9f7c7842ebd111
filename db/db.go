package db

import (
	"context"
	"fmt"

	"tasty-canteen/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and pings it so a bad DSN fails at startup.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
