package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// advanceLeague decides what a completed round means for its league:
//
//   - exactly one survivor: that player wins and the league finishes;
//   - zero survivors: rollover — the league stays active at the same round
//     and nobody progresses;
//   - more than one survivor: materialize round N+1 if it does not already
//     exist and move the league's round pointer forward.
//
// The existence check (backed by the unique (league, number) constraint) is
// what makes double invocation safe, not any lock.
func (e *Engine) advanceLeague(ctx context.Context, league game.League, round *game.Round, report *Report) error {
	if round.Status != game.RoundCompleted {
		return nil
	}

	picks, err := e.store.PicksByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("load picks for round %d: %w", round.Number, err)
	}

	var survivors []game.Pick
	for _, p := range picks {
		if p.Status == game.PickSurvived {
			survivors = append(survivors, p)
		}
	}

	switch len(survivors) {
	case 1:
		winner := survivors[0]
		if err := e.store.FinishLeague(ctx, league.ID, &winner.PlayerID); err != nil {
			return fmt.Errorf("finish league: %w", err)
		}
		e.logger.Info("league finished", "league_id", league.ID, "winner", winner.PlayerID)
		report.addAction(Action{
			LeagueID: league.ID, RoundID: round.ID, RoundNumber: round.Number,
			Step: StepWinner, Winner: winner.PlayerID,
		})
		return nil

	case 0:
		// Nobody survived. The league stays active at the same round pointer;
		// there is no consolation round.
		report.addAction(Action{
			LeagueID: league.ID, RoundID: round.ID, RoundNumber: round.Number,
			Step: StepRollover,
		})
		return nil
	}

	next := round.Number + 1
	existing, err := e.store.RoundByNumber(ctx, league.ID, next)
	if err != nil {
		return fmt.Errorf("check round %d: %w", next, err)
	}

	if existing == nil {
		newRound := game.Round{
			ID:           uuid.NewString(),
			LeagueID:     league.ID,
			Number:       next,
			Name:         fmt.Sprintf("Round %d", next),
			Status:       game.RoundUpcoming,
			PickDeadline: e.nextDeadline(ctx, league, next),
		}
		if err := e.store.CreateRound(ctx, newRound); err != nil {
			return fmt.Errorf("create round %d: %w", next, err)
		}
		e.logger.Info("next round created",
			"league_id", league.ID, "round", next, "deadline", newRound.PickDeadline)
		report.addAction(Action{
			LeagueID: league.ID, RoundID: newRound.ID, RoundNumber: round.Number,
			Step: StepRoundCreated, NextRound: next,
		})
	}

	if league.CurrentRound != next {
		if err := e.store.SetCurrentRound(ctx, league.ID, next); err != nil {
			return fmt.Errorf("advance round pointer: %w", err)
		}
		step := StepAdvance
		if existing != nil {
			step = StepRoundSynced
		}
		report.addAction(Action{
			LeagueID: league.ID, RoundNumber: round.Number,
			Step: step, NextRound: next,
		})
	}
	return nil
}
