// Package store is the Postgres persistence layer: typed reads and writes for
// leagues, rounds, picks, fixtures, teams, and the tick run ledger.
//
// All engine-facing mutations are conditional single-row updates (the WHERE
// clause re-asserts the expected prior status) or insert-if-absent upserts, so
// racing writers resolve to at most one effective write.
package store

import (
	"context"

	"github.com/Joshmanser1/last-man-standing/internal/db"
)

// Store executes queries against the shared connection pool. Hot-path
// statements are prepared per connection by internal/db.
type Store struct {
	pool *db.Pool
}

// New creates a store over an established pool.
func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.HealthCheck(ctx)
}
