package engine

import (
	"context"
	"fmt"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// lockRound closes picking for a round whose deadline has passed. The status
// flip is a compare-and-set from upcoming; losing that race means another
// invocation already locked the round and there is nothing left to do. The
// winning invocation additionally forfeits every still-pending pick that has
// no chosen team.
//
// A failure during the forfeit back-fill does not undo the lock: forfeits only
// ever touch pending picks, so the next interval retries them safely.
func (e *Engine) lockRound(ctx context.Context, league game.League, round *game.Round, report *Report) error {
	if round.Status != game.RoundUpcoming {
		return nil
	}
	if round.PickDeadline.IsZero() || round.PickDeadline.After(e.now()) {
		return nil
	}

	affected, err := e.store.CompareAndSetRoundStatus(ctx, round.ID, game.RoundUpcoming, game.RoundLocked)
	if err != nil {
		return fmt.Errorf("lock round %d: %w", round.Number, err)
	}
	// Whatever happened, the round is no longer upcoming.
	round.Status = game.RoundLocked

	if affected == 0 {
		report.addAction(Action{
			LeagueID: league.ID, RoundID: round.ID, RoundNumber: round.Number,
			Step: StepLockAlready,
		})
		return nil
	}

	forfeits, err := e.store.ForfeitUnpicked(ctx, round.ID)
	if err != nil {
		report.addError(league.ID, fmt.Errorf("forfeit no-picks for round %d: %w", round.Number, err))
	}

	e.logger.Info("round locked", "league_id", league.ID, "round", round.Number, "forfeits", forfeits)
	report.addAction(Action{
		LeagueID: league.ID, RoundID: round.ID, RoundNumber: round.Number,
		Step: StepLock, Forfeits: int(forfeits),
	})
	return nil
}
