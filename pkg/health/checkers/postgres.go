package checkers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresChecker is up when the pool answers and the job queue table exists,
// i.e. migrations ran against this database.
type PostgresChecker struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresChecker(pool *pgxpool.Pool) *PostgresChecker {
	return &PostgresChecker{pool: pool, timeout: time.Second}
}

func (c *PostgresChecker) Name() string { return "postgres" }

func (c *PostgresChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	var migrated bool
	if err := c.pool.QueryRow(ctx, `SELECT to_regclass('jobs') IS NOT NULL`).Scan(&migrated); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if !migrated {
		return errors.New("schema not migrated")
	}
	return nil
}
