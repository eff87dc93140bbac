// Package core owns database connectivity: the pgx pool used for request
// traffic and the direct connection used for schema migration.
package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servify/backend/config"
	"github.com/servify/backend/internal/schema"
)

// Connect creates the pooled connection used by repositories and verifies
// it with a ping.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// MigrateSchema applies the declared schema over the non-pooling endpoint
// and closes the connection when done.
func MigrateSchema(ctx context.Context, cfg *config.Config) error {
	conn, err := pgx.Connect(ctx, cfg.Database.NonPoolingURL)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(ctx)

	return schema.Migrate(ctx, conn)
}
