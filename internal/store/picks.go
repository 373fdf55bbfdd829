package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// PicksByRound returns every pick of a round, oldest first.
func (s *Store) PicksByRound(ctx context.Context, roundID string) ([]game.Pick, error) {
	rows, err := s.pool.Query(ctx, "picks_by_round", roundID)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	var picks []game.Pick
	for rows.Next() {
		var (
			p      game.Pick
			status string
			reason *string
		)
		if err := rows.Scan(&p.ID, &p.LeagueID, &p.RoundID, &p.PlayerID,
			&p.TeamID, &status, &reason, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		p.Status = game.PickStatus(status)
		if reason != nil {
			r := game.PickReason(*reason)
			p.Reason = &r
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// ForfeitUnpicked resolves every still-pending pick with no chosen team to
// forfeit with reason missed. Already-resolved picks are untouched, so the
// back-fill can be retried on any later interval.
func (s *Store) ForfeitUnpicked(ctx context.Context, roundID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, "forfeit_unpicked", roundID)
	if err != nil {
		return 0, fmt.Errorf("forfeit unpicked: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ResolvePick moves a pending pick to a terminal status. The WHERE clause
// re-asserts pending, so a pick never reverts once resolved.
func (s *Store) ResolvePick(ctx context.Context, pickID string, status game.PickStatus, reason *game.PickReason) error {
	var reasonStr *string
	if reason != nil {
		str := string(*reason)
		reasonStr = &str
	}
	_, err := s.pool.Exec(ctx, "resolve_pick", pickID, string(status), reasonStr)
	if err != nil {
		return fmt.Errorf("resolve pick: %w", err)
	}
	return nil
}

// SavePick records a player's choice for a round, replacing any earlier pick
// for the same (round, player). Rejected once the round deadline has passed.
func (s *Store) SavePick(ctx context.Context, round game.Round, playerID, teamID string) (*game.Pick, error) {
	if !round.PickDeadline.After(time.Now()) {
		return nil, fmt.Errorf("deadline passed for round %d", round.Number)
	}

	pick := game.Pick{
		ID:       uuid.NewString(),
		LeagueID: round.LeagueID,
		RoundID:  round.ID,
		PlayerID: playerID,
		TeamID:   &teamID,
		Status:   game.PickPending,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO picks (id, league_id, round_id, player_id, team_id, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		ON CONFLICT (round_id, player_id)
		DO UPDATE SET team_id = EXCLUDED.team_id, status = 'pending', reason = NULL
		WHERE picks.status = 'pending'`,
		pick.ID, pick.LeagueID, pick.RoundID, pick.PlayerID, pick.TeamID)
	if err != nil {
		return nil, fmt.Errorf("save pick: %w", err)
	}
	return &pick, nil
}
