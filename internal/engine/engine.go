// Package engine drives the round-lifecycle automation for last-man-standing
// leagues: lock rounds whose deadline passed, evaluate picks once every
// fixture is decided, and advance leagues round by round until one survivor
// remains.
//
// The engine holds no state between runs. Every step is computed from what is
// currently in the store, every mutation is a conditional update keyed on the
// expected prior status, and the whole run is gated by a unique time-bucketed
// run key, so overlapping or retried invocations are safe.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// Store is the persistence surface the engine needs. The Postgres
// implementation lives in internal/store; tests use an in-memory fake.
type Store interface {
	// InsertRunIfAbsent atomically claims runKey. inserted is false when a run
	// for the key already exists.
	InsertRunIfAbsent(ctx context.Context, runKey string) (runID string, inserted bool, err error)
	// FinishRun records the terminal status of a claimed run.
	FinishRun(ctx context.Context, runID string, status game.RunStatus, runErr error) error

	// ActiveLeagues returns non-deleted leagues that have not finished.
	ActiveLeagues(ctx context.Context) ([]game.League, error)
	// RoundByNumber returns nil, nil when the round does not exist.
	RoundByNumber(ctx context.Context, leagueID string, number int) (*game.Round, error)
	// CompareAndSetRoundStatus moves a round from expect to next, returning
	// the number of rows affected. Zero means another writer got there first.
	CompareAndSetRoundStatus(ctx context.Context, roundID string, expect, next game.RoundStatus) (int64, error)
	// CreateRound inserts a round. A (league, number) duplicate is a no-op.
	CreateRound(ctx context.Context, round game.Round) error

	PicksByRound(ctx context.Context, roundID string) ([]game.Pick, error)
	// ForfeitUnpicked resolves still-pending picks with no chosen team to
	// forfeit/missed, returning how many were affected.
	ForfeitUnpicked(ctx context.Context, roundID string) (int64, error)
	// ResolvePick moves a pending pick to a terminal status. Picks that have
	// already left pending are never touched.
	ResolvePick(ctx context.Context, pickID string, status game.PickStatus, reason *game.PickReason) error

	FixturesByRound(ctx context.Context, roundID string) ([]game.Fixture, error)

	FinishLeague(ctx context.Context, leagueID string, winnerPlayerID *string) error
	SetCurrentRound(ctx context.Context, leagueID string, number int) error
}

// DeadlineSource maps a league round number to a pick deadline from the
// external schedule. Optional; the engine falls back to a fixed offset.
type DeadlineSource interface {
	NextDeadline(ctx context.Context, league game.League, roundNumber int) (time.Time, error)
}

// Config controls engine behavior. Zero values get production defaults.
type Config struct {
	// Bucket is the run-gate interval width.
	Bucket time.Duration
	// AdvanceFallback is the next-round deadline offset used when Deadlines
	// is unset or fails.
	AdvanceFallback time.Duration
	// Deadlines supplies schedule-derived deadlines for new rounds. May be nil.
	Deadlines DeadlineSource
	Logger    *slog.Logger
	// Now overrides the clock. Tests only.
	Now func() time.Time
}

// Engine runs the lock -> evaluate -> advance pipeline over all active leagues.
type Engine struct {
	store     Store
	deadlines DeadlineSource
	logger    *slog.Logger
	bucket    time.Duration
	fallback  time.Duration
	now       func() time.Time
}

// New creates an engine over the given store.
func New(store Store, cfg Config) *Engine {
	if cfg.Bucket <= 0 {
		cfg.Bucket = 5 * time.Minute
	}
	if cfg.AdvanceFallback <= 0 {
		cfg.AdvanceFallback = 7 * 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		store:     store,
		deadlines: cfg.Deadlines,
		logger:    cfg.Logger,
		bucket:    cfg.Bucket,
		fallback:  cfg.AdvanceFallback,
		now:       cfg.Now,
	}
}

// Run executes one tick: admit through the run gate, process every active
// league with per-league failure isolation, and finalize the run record.
// The returned report is always non-nil and serializable; Report.OK is false
// only for fatal conditions (gate failure, league list unavailable).
func (e *Engine) Run(ctx context.Context) *Report {
	started := e.now()
	report := &Report{
		OK:        true,
		Timestamp: started.UTC(),
		Actions:   []Action{},
	}
	defer func() {
		report.DurationMS = time.Since(started).Milliseconds()
	}()

	runID, key, adm, err := e.admit(ctx, started)
	report.RunKey = key
	switch adm {
	case admitDuplicate:
		// Another invocation already owns this interval. Success, no work.
		report.Skipped = true
		report.Note = fmt.Sprintf("already ran for run_key=%s", key)
		return report
	case admitFailed:
		report.OK = false
		report.Error = err.Error()
		return report
	}

	leagues, err := e.store.ActiveLeagues(ctx)
	if err != nil {
		report.OK = false
		report.Error = fmt.Sprintf("load leagues: %v", err)
		e.finishRun(ctx, runID, game.RunError, err)
		return report
	}
	if len(leagues) == 0 {
		report.Note = "no active leagues"
		e.finishRun(ctx, runID, game.RunOK, nil)
		return report
	}

	for _, league := range leagues {
		report.Processed++
		e.processLeague(ctx, league, report)
	}

	e.finishRun(ctx, runID, game.RunOK, nil)
	e.logger.Info("tick complete",
		"run_key", key,
		"leagues", report.Processed,
		"actions", len(report.Actions),
		"errors", len(report.Errors))
	return report
}

// processLeague runs the three stages for one league. Failures, including
// panics from bad data, are folded into the report and never escape.
func (e *Engine) processLeague(ctx context.Context, league game.League, report *Report) {
	defer func() {
		if rec := recover(); rec != nil {
			report.addError(league.ID, fmt.Errorf("panic: %v", rec))
			e.logger.Error("league processing panicked", "league_id", league.ID, "panic", rec)
		}
	}()

	round, err := e.store.RoundByNumber(ctx, league.ID, league.CurrentRound)
	if err != nil {
		report.addError(league.ID, fmt.Errorf("load round %d: %w", league.CurrentRound, err))
		return
	}
	if round == nil {
		report.addAction(Action{LeagueID: league.ID, RoundNumber: league.CurrentRound, Step: StepRoundMissing})
		return
	}

	if err := e.lockRound(ctx, league, round, report); err != nil {
		report.addError(league.ID, err)
		return
	}
	if err := e.evaluateRound(ctx, league, round, report); err != nil {
		report.addError(league.ID, err)
		return
	}
	if err := e.advanceLeague(ctx, league, round, report); err != nil {
		report.addError(league.ID, err)
	}
}

// nextDeadline resolves the pick deadline for a newly created round: the
// external schedule when available, otherwise a fixed offset from now.
func (e *Engine) nextDeadline(ctx context.Context, league game.League, roundNumber int) time.Time {
	if e.deadlines != nil {
		deadline, err := e.deadlines.NextDeadline(ctx, league, roundNumber)
		if err == nil && !deadline.IsZero() {
			return deadline
		}
		if err != nil {
			e.logger.Warn("deadline source unavailable, using fallback",
				"league_id", league.ID, "round", roundNumber, "error", err)
		}
	}
	return e.now().Add(e.fallback)
}

func (e *Engine) finishRun(ctx context.Context, runID string, status game.RunStatus, runErr error) {
	if err := e.store.FinishRun(ctx, runID, status, runErr); err != nil {
		e.logger.Warn("failed to finalize tick run", "run_id", runID, "error", err)
	}
}
