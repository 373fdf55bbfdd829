package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// RoundByNumber returns nil, nil when the round does not exist.
func (s *Store) RoundByNumber(ctx context.Context, leagueID string, number int) (*game.Round, error) {
	row := s.pool.QueryRow(ctx, "round_by_number", leagueID, number)
	r, err := scanRound(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CompareAndSetRoundStatus conditionally moves a round between statuses.
// The WHERE clause re-asserts the expected prior status, so of two racing
// writers only one affects a row; the other sees zero and treats it as a
// benign no-op.
func (s *Store) CompareAndSetRoundStatus(ctx context.Context, roundID string, expect, next game.RoundStatus) (int64, error) {
	tag, err := s.pool.Exec(ctx, "round_cas_status", roundID, string(expect), string(next))
	if err != nil {
		return 0, fmt.Errorf("round status %s -> %s: %w", expect, next, err)
	}
	return tag.RowsAffected(), nil
}

// CreateRound inserts a round. A concurrent insert of the same
// (league, number) pair is absorbed by the unique constraint: the loser's
// insert affects zero rows and is not an error.
func (s *Store) CreateRound(ctx context.Context, round game.Round) error {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rounds (id, league_id, round_number, name, status, pick_deadline_utc)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (league_id, round_number) DO NOTHING`,
		round.ID, round.LeagueID, round.Number, round.Name,
		string(round.Status), round.PickDeadline)
	if err != nil {
		return fmt.Errorf("insert round %d: %w", round.Number, err)
	}
	return nil
}

func scanRound(row pgx.Row) (game.Round, error) {
	var (
		r      game.Round
		status string
	)
	err := row.Scan(&r.ID, &r.LeagueID, &r.Number, &r.Name, &status,
		&r.PickDeadline, &r.LockedAt, &r.CompletedAt, &r.CreatedAt)
	if err != nil {
		return game.Round{}, fmt.Errorf("scan round: %w", err)
	}
	r.Status = game.RoundStatus(status)
	return r, nil
}
