package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Execer is the subset of pgx used to apply DDL.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS employers (
	id BIGINT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	company_name TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	founded_year INTEGER NOT NULL DEFAULT 0,
	location TEXT NOT NULL DEFAULT '',
	verification JSONB NOT NULL DEFAULT '{"status":"unverified","trustScore":0}'::jsonb,
	version BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS employers_verification_status_idx
	ON employers ((COALESCE(verification->>'status', 'unverified')))`,
}

// EnsureSchema applies the employers schema when the application starts.
func EnsureSchema(lc fx.Lifecycle, pool *pgxpool.Pool, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ApplySchema(ctx, pool); err != nil {
				return err
			}
			logger.Info("employers schema ensured")
			return nil
		},
	})
}

// ApplySchema runs the idempotent DDL statements in order.
func ApplySchema(ctx context.Context, db Execer) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
