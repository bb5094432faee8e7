package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS payments (
        id UUID PRIMARY KEY,
        number TEXT NOT NULL,
        status TEXT NOT NULL,
        gateway_name TEXT NOT NULL,
        total_amount BIGINT NOT NULL,
        currency_code CHAR(3) NOT NULL,
        client_email TEXT NOT NULL DEFAULT '',
        client_id TEXT NOT NULL DEFAULT '',
        description TEXT NOT NULL DEFAULT '',
        details JSONB NOT NULL DEFAULT '{}'::jsonb,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS payments_created_at_idx ON payments (created_at, id)`,
	`CREATE TABLE IF NOT EXISTS gateway_configs (
        gateway_name TEXT PRIMARY KEY,
        factory_name TEXT NOT NULL,
        config JSONB NOT NULL DEFAULT '{}'::jsonb,
        created_at TIMESTAMPTZ NOT NULL
    )`,
}

// EnsureSchema creates the tables the repositories need when they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
