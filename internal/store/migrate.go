package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schema is the idempotent bootstrap DDL. Statuses are text rather than
// Postgres enums so new values never need a migration.
const schema = `
CREATE TABLE IF NOT EXISTS leagues (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'upcoming',
	current_round    INT  NOT NULL DEFAULT 1,
	fpl_start_event  INT,
	winner_player_id TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS teams (
	id        UUID PRIMARY KEY,
	league_id UUID NOT NULL REFERENCES leagues(id),
	name      TEXT NOT NULL,
	code      TEXT NOT NULL,
	UNIQUE (league_id, code)
);

CREATE TABLE IF NOT EXISTS rounds (
	id                UUID PRIMARY KEY,
	league_id         UUID NOT NULL REFERENCES leagues(id),
	round_number      INT  NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'upcoming',
	pick_deadline_utc TIMESTAMPTZ NOT NULL,
	locked_at         TIMESTAMPTZ,
	completed_at      TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (league_id, round_number)
);

CREATE TABLE IF NOT EXISTS picks (
	id         UUID PRIMARY KEY,
	league_id  UUID NOT NULL REFERENCES leagues(id),
	round_id   UUID NOT NULL REFERENCES rounds(id),
	player_id  TEXT NOT NULL,
	team_id    UUID REFERENCES teams(id),
	status     TEXT NOT NULL DEFAULT 'pending',
	reason     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (round_id, player_id)
);

CREATE TABLE IF NOT EXISTS fixtures (
	id              UUID PRIMARY KEY,
	round_id        UUID NOT NULL REFERENCES rounds(id),
	home_team_id    UUID NOT NULL REFERENCES teams(id),
	away_team_id    UUID NOT NULL REFERENCES teams(id),
	kickoff_utc     TIMESTAMPTZ,
	result          TEXT NOT NULL DEFAULT 'not_set',
	winning_team_id UUID REFERENCES teams(id),
	UNIQUE (round_id, home_team_id, away_team_id)
);

CREATE TABLE IF NOT EXISTS tick_runs (
	id           UUID PRIMARY KEY,
	run_key      TEXT NOT NULL UNIQUE,
	status       TEXT NOT NULL DEFAULT 'running',
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_rounds_league ON rounds(league_id);
CREATE INDEX IF NOT EXISTS idx_picks_round ON picks(round_id);
CREATE INDEX IF NOT EXISTS idx_fixtures_round ON fixtures(round_id);
`

// Migrate creates the schema if it does not exist. Safe to run on every boot.
// It opens its own connection: the shared pool prepares statements against
// these tables on connect, so the schema must exist before the pool does.
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
