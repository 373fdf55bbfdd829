package fpl

import (
	"context"
	"fmt"
	"time"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// Deadlines derives round pick deadlines from the FPL gameweek calendar. It
// satisfies the engine's DeadlineSource; when a league has no start-event
// mapping or the calendar runs out, it errors and the engine falls back to a
// fixed offset.
type Deadlines struct {
	client *Client
}

// NewDeadlines creates a schedule-backed deadline source.
func NewDeadlines(client *Client) *Deadlines {
	return &Deadlines{client: client}
}

// NextDeadline returns the gameweek deadline mapped to a league round.
func (d *Deadlines) NextDeadline(ctx context.Context, league game.League, roundNumber int) (time.Time, error) {
	if league.FPLStartEvent == nil {
		return time.Time{}, fmt.Errorf("league %s has no start event mapping", league.ID)
	}
	event := *league.FPLStartEvent + roundNumber - 1
	return d.client.EventDeadline(ctx, event)
}
