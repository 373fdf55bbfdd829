// Package game defines the typed records of a last-man-standing competition:
// leagues, rounds, picks, fixtures, and the tick run ledger. Status values are
// stored as text and only ever move forward.
package game

import "time"

// LeagueStatus is the lifecycle of a league.
type LeagueStatus string

const (
	LeagueUpcoming LeagueStatus = "upcoming"
	LeagueActive   LeagueStatus = "active"
	LeagueFinished LeagueStatus = "finished"
)

// RoundStatus is the per-round state machine:
// upcoming -> locked (deadline passed) -> completed (all fixtures decided).
type RoundStatus string

const (
	RoundUpcoming  RoundStatus = "upcoming"
	RoundLocked    RoundStatus = "locked"
	RoundCompleted RoundStatus = "completed"
)

// PickStatus is the lifecycle of a single pick. Once a pick leaves pending it
// never reverts.
type PickStatus string

const (
	PickPending    PickStatus = "pending"
	PickSurvived   PickStatus = "survived"
	PickEliminated PickStatus = "eliminated"
	PickForfeit    PickStatus = "forfeit"
)

// PickReason explains a terminal pick status.
type PickReason string

const (
	ReasonLoss   PickReason = "loss"
	ReasonDraw   PickReason = "draw"
	ReasonMissed PickReason = "missed"
)

// FixtureResult is the outcome of one real-world match.
type FixtureResult string

const (
	ResultNotSet  FixtureResult = "not_set"
	ResultHomeWin FixtureResult = "home_win"
	ResultAwayWin FixtureResult = "away_win"
	ResultDraw    FixtureResult = "draw"
)

// RunStatus is the terminal state of one tick run.
type RunStatus string

const (
	RunOK    RunStatus = "ok"
	RunError RunStatus = "error"
)

// League is a single elimination competition.
type League struct {
	ID           string
	Name         string
	Status       LeagueStatus
	CurrentRound int
	// FPLStartEvent is the gameweek mapped to round 1, used to align rounds
	// with the external fixture schedule. Nil when the league was created
	// before a season mapping existed.
	FPLStartEvent  *int
	WinnerPlayerID *string
	CreatedAt      time.Time
	DeletedAt      *time.Time
}

// Round is one numbered stage of a league.
type Round struct {
	ID           string
	LeagueID     string
	Number       int
	Name         string
	Status       RoundStatus
	PickDeadline time.Time
	LockedAt     *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// Team is a pickable contestant belonging to a league.
type Team struct {
	ID       string
	LeagueID string
	Name     string
	// Code is the short code used to match external fixture data (e.g. "ARS").
	Code string
}

// Pick is one player's choice for one round. TeamID is nil when the player
// registered for the round but never chose.
type Pick struct {
	ID        string
	LeagueID  string
	RoundID   string
	PlayerID  string
	TeamID    *string
	Status    PickStatus
	Reason    *PickReason
	CreatedAt time.Time
}

// Fixture is one external match whose outcome decides survival. Written by
// the import step; the engine only reads it.
type Fixture struct {
	ID            string
	RoundID       string
	HomeTeamID    string
	AwayTeamID    string
	KickoffUTC    *time.Time
	Result        FixtureResult
	WinningTeamID *string
}

// Decided reports whether the fixture outcome is final.
func (f Fixture) Decided() bool { return f.Result != ResultNotSet }

// RunRecord is one row of the tick run ledger. RunKey is unique; the insert
// that wins the key owns the interval.
type RunRecord struct {
	ID          string
	RunKey      string
	Status      RunStatus
	Error       *string
	StartedAt   time.Time
	CompletedAt *time.Time
}
