package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// FixturesByRound returns all fixtures of a round.
func (s *Store) FixturesByRound(ctx context.Context, roundID string) ([]game.Fixture, error) {
	rows, err := s.pool.Query(ctx, "fixtures_by_round", roundID)
	if err != nil {
		return nil, fmt.Errorf("query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []game.Fixture
	for rows.Next() {
		var (
			f      game.Fixture
			result string
		)
		if err := rows.Scan(&f.ID, &f.RoundID, &f.HomeTeamID, &f.AwayTeamID,
			&f.KickoffUTC, &result, &f.WinningTeamID); err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		f.Result = game.FixtureResult(result)
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}

// UpsertFixture writes one imported fixture. The (round, home, away) key makes
// re-imports refresh results in place instead of duplicating rows.
func (s *Store) UpsertFixture(ctx context.Context, f game.Fixture) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fixtures (id, round_id, home_team_id, away_team_id, kickoff_utc, result, winning_team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (round_id, home_team_id, away_team_id)
		DO UPDATE SET kickoff_utc = EXCLUDED.kickoff_utc,
			result = EXCLUDED.result,
			winning_team_id = EXCLUDED.winning_team_id`,
		f.ID, f.RoundID, f.HomeTeamID, f.AwayTeamID, f.KickoffUTC,
		string(f.Result), f.WinningTeamID)
	if err != nil {
		return fmt.Errorf("upsert fixture: %w", err)
	}
	return nil
}
