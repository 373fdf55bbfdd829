// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Joshmanser1/last-man-standing/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the statements the tick engine runs on
// every interval. Prepared statements eliminate parse overhead on the hot path.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Leagues
		"active_leagues": `SELECT id, name, status, current_round, fpl_start_event, winner_player_id, created_at, deleted_at
			FROM leagues
			WHERE deleted_at IS NULL AND status IN ('upcoming', 'active')
			ORDER BY created_at`,
		"league_by_id": `SELECT id, name, status, current_round, fpl_start_event, winner_player_id, created_at, deleted_at
			FROM leagues WHERE id = $1 AND deleted_at IS NULL`,

		// Rounds
		"round_by_number": `SELECT id, league_id, round_number, name, status, pick_deadline_utc, locked_at, completed_at, created_at
			FROM rounds WHERE league_id = $1 AND round_number = $2`,
		"round_cas_status": `UPDATE rounds SET status = $3,
				locked_at = CASE WHEN $3 = 'locked' THEN NOW() ELSE locked_at END,
				completed_at = CASE WHEN $3 = 'completed' THEN NOW() ELSE completed_at END
			WHERE id = $1 AND status = $2`,

		// Picks
		"picks_by_round": `SELECT id, league_id, round_id, player_id, team_id, status, reason, created_at
			FROM picks WHERE round_id = $1 ORDER BY created_at`,
		"forfeit_unpicked": `UPDATE picks SET status = 'forfeit', reason = 'missed'
			WHERE round_id = $1 AND team_id IS NULL AND (status IS NULL OR status = 'pending')`,
		"resolve_pick": `UPDATE picks SET status = $2, reason = $3
			WHERE id = $1 AND status = 'pending'`,

		// Fixtures
		"fixtures_by_round": `SELECT id, round_id, home_team_id, away_team_id, kickoff_utc, result, winning_team_id
			FROM fixtures WHERE round_id = $1`,

		// Teams
		"teams_by_league": `SELECT id, league_id, name, code FROM teams WHERE league_id = $1 ORDER BY name`,

		// Tick run ledger
		"insert_tick_run": `INSERT INTO tick_runs (id, run_key, started_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (run_key) DO NOTHING`,
		"finish_tick_run": `UPDATE tick_runs SET status = $2, error = $3, completed_at = NOW()
			WHERE id = $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
