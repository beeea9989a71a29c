// Package infra provides throwaway Postgres instances for integration tests.
package infra

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"reviewflow/db"
	"reviewflow/migrations"
)

type PGContainer struct {
	C *postgres.PostgresContainer
}

// StartPostgres16 starts a Postgres 16 container and returns a DSN. If
// overrideDSN or EVENTS_TEST_PG_DSN is set, that database is reused instead.
func StartPostgres16(ctx context.Context, overrideDSN string) (*PGContainer, string, error) {
	if overrideDSN != "" {
		return &PGContainer{}, overrideDSN, nil
	}
	if dsn := os.Getenv("EVENTS_TEST_PG_DSN"); dsn != "" {
		return &PGContainer{}, dsn, nil
	}

	pgC, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase("events_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
	)
	if err != nil {
		return nil, "", err
	}

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, "", err
	}
	return &PGContainer{C: pgC}, dsn, nil
}

func (p *PGContainer) Terminate(ctx context.Context) error {
	if p == nil || p.C == nil {
		return nil
	}
	return p.C.Terminate(ctx)
}

// NewMigratedPool connects to dsn and applies the embedded schema when the
// events table is absent.
func NewMigratedPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}

	ready, err := db.SchemaReady(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if !ready {
		if err := db.ApplyMigrations(ctx, pool, migrations.FS); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}
