package engine

import (
	"context"
	"fmt"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// evaluateRound resolves every pending pick of a locked round once all of its
// fixtures are decided, then completes the round.
//
// An empty fixture set means the import step has not run yet: recorded as a
// note, not an error. Any undecided fixture makes the round not yet
// resolvable, so the stage is a no-op and the next interval tries again.
// A drawn fixture yields no winner, eliminating both teams' backers.
func (e *Engine) evaluateRound(ctx context.Context, league game.League, round *game.Round, report *Report) error {
	if round.Status != game.RoundLocked {
		return nil
	}

	fixtures, err := e.store.FixturesByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("load fixtures for round %d: %w", round.Number, err)
	}
	if len(fixtures) == 0 {
		report.addAction(Action{
			LeagueID: league.ID, RoundID: round.ID, RoundNumber: round.Number,
			Step: StepFixturesMissing,
		})
		return nil
	}

	winners := make(map[string]bool, len(fixtures))
	for _, f := range fixtures {
		if !f.Decided() {
			return nil
		}
		if f.WinningTeamID != nil {
			winners[*f.WinningTeamID] = true
		}
	}

	picks, err := e.store.PicksByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("load picks for round %d: %w", round.Number, err)
	}

	survivors := 0
	for _, pick := range picks {
		if pick.Status != game.PickPending {
			// Forfeits and already-resolved picks are final.
			continue
		}
		if pick.TeamID != nil && winners[*pick.TeamID] {
			if err := e.store.ResolvePick(ctx, pick.ID, game.PickSurvived, nil); err != nil {
				return fmt.Errorf("resolve pick %s: %w", pick.ID, err)
			}
			survivors++
			continue
		}
		// Losing, drawn, or unrecognized team references all eliminate.
		reason := game.ReasonLoss
		if err := e.store.ResolvePick(ctx, pick.ID, game.PickEliminated, &reason); err != nil {
			return fmt.Errorf("resolve pick %s: %w", pick.ID, err)
		}
	}

	if _, err := e.store.CompareAndSetRoundStatus(ctx, round.ID, game.RoundLocked, game.RoundCompleted); err != nil {
		return fmt.Errorf("complete round %d: %w", round.Number, err)
	}
	// Zero rows affected means a concurrent evaluation finished first; either
	// way the round is completed now.
	round.Status = game.RoundCompleted

	e.logger.Info("round evaluated", "league_id", league.ID, "round", round.Number, "survivors", survivors)
	report.addAction(Action{
		LeagueID: league.ID, RoundID: round.ID, RoundNumber: round.Number,
		Step: StepEvaluate, Survivors: survivors,
	})
	return nil
}
