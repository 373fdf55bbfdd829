package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// TeamsByLeague returns a league's teams ordered by name.
func (s *Store) TeamsByLeague(ctx context.Context, leagueID string) ([]game.Team, error) {
	rows, err := s.pool.Query(ctx, "teams_by_league", leagueID)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []game.Team
	for rows.Next() {
		var t game.Team
		if err := rows.Scan(&t.ID, &t.LeagueID, &t.Name, &t.Code); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// UpsertTeams seeds a league's pickable teams, matching on short code.
func (s *Store) UpsertTeams(ctx context.Context, leagueID string, teams []game.Team) error {
	for _, t := range teams {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO teams (id, league_id, name, code)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (league_id, code) DO UPDATE SET name = EXCLUDED.name`,
			t.ID, leagueID, t.Name, t.Code)
		if err != nil {
			return fmt.Errorf("upsert team %s: %w", t.Code, err)
		}
	}
	return nil
}
