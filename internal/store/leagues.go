package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// ActiveLeagues returns non-deleted leagues that have not finished, oldest
// first.
func (s *Store) ActiveLeagues(ctx context.Context) ([]game.League, error) {
	rows, err := s.pool.Query(ctx, "active_leagues")
	if err != nil {
		return nil, fmt.Errorf("query active leagues: %w", err)
	}
	defer rows.Close()

	var leagues []game.League
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, err
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

// LeagueByID returns nil, nil when no such league exists.
func (s *Store) LeagueByID(ctx context.Context, id string) (*game.League, error) {
	row := s.pool.QueryRow(ctx, "league_by_id", id)
	l, err := scanLeague(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLeague inserts a league together with its round 1.
func (s *Store) CreateLeague(ctx context.Context, league game.League, firstRound game.Round) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // safe no-op on commit

	if league.ID == "" {
		league.ID = uuid.NewString()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO leagues (id, name, status, current_round, fpl_start_event)
		VALUES ($1, $2, $3, 1, $4)`,
		league.ID, league.Name, string(league.Status), league.FPLStartEvent)
	if err != nil {
		return fmt.Errorf("insert league: %w", err)
	}

	if firstRound.ID == "" {
		firstRound.ID = uuid.NewString()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO rounds (id, league_id, round_number, name, status, pick_deadline_utc)
		VALUES ($1, $2, 1, $3, 'upcoming', $4)`,
		firstRound.ID, league.ID, firstRound.Name, firstRound.PickDeadline)
	if err != nil {
		return fmt.Errorf("insert round 1: %w", err)
	}

	return tx.Commit(ctx)
}

// FinishLeague marks a league finished and records the winner.
func (s *Store) FinishLeague(ctx context.Context, leagueID string, winnerPlayerID *string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE leagues SET status = 'finished', winner_player_id = $2
		WHERE id = $1 AND status <> 'finished'`,
		leagueID, winnerPlayerID)
	if err != nil {
		return fmt.Errorf("finish league: %w", err)
	}
	return nil
}

// SetCurrentRound moves a league's round pointer.
func (s *Store) SetCurrentRound(ctx context.Context, leagueID string, number int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE leagues SET current_round = $2 WHERE id = $1`, leagueID, number)
	if err != nil {
		return fmt.Errorf("set current round: %w", err)
	}
	return nil
}

func scanLeague(row pgx.Row) (game.League, error) {
	var (
		l         game.League
		status    string
		winner    *string
		createdAt time.Time
	)
	err := row.Scan(&l.ID, &l.Name, &status, &l.CurrentRound,
		&l.FPLStartEvent, &winner, &createdAt, &l.DeletedAt)
	if err != nil {
		return game.League{}, fmt.Errorf("scan league: %w", err)
	}
	l.Status = game.LeagueStatus(status)
	l.WinnerPlayerID = winner
	l.CreatedAt = createdAt
	return l, nil
}
