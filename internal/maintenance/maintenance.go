// Package maintenance runs periodic background tasks as Go tickers: a
// self-tick so the engine advances even without an external scheduler, and a
// fixture-import sweep that keeps locked rounds supplied with results.
//
// Both tasks are safe to overlap with external triggers — the self-tick goes
// through the same run gate as the HTTP endpoint, and imports are upserts.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/Joshmanser1/last-man-standing/internal/engine"
	"github.com/Joshmanser1/last-man-standing/internal/fpl"
	"github.com/Joshmanser1/last-man-standing/internal/game"
	"github.com/Joshmanser1/last-man-standing/internal/telemetry"
)

// sweepStore is the subset of the store the import sweep reads.
type sweepStore interface {
	ActiveLeagues(ctx context.Context) ([]game.League, error)
	RoundByNumber(ctx context.Context, leagueID string, number int) (*game.Round, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	TickInterval   time.Duration // engine self-tick
	ImportInterval time.Duration // fixture import sweep
}

// Deps carries the collaborators the tasks run against.
type Deps struct {
	Engine   *engine.Engine
	Store    sweepStore
	Importer *fpl.Importer
}

// NewDeps builds maintenance dependencies.
func NewDeps(eng *engine.Engine, store sweepStore, importer *fpl.Importer) Deps {
	return Deps{Engine: eng, Store: store, Importer: importer}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, deps Deps, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"tick", cfg.TickInterval,
		"import", cfg.ImportInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Self-tick: run the engine on a fixed cadence. The run gate dedupes
	// against any external scheduler hitting the tick endpoint.
	if cfg.TickInterval > 0 {
		t := time.NewTicker(cfg.TickInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { selfTick(ctx, deps.Engine, logger) })
	}

	// Import sweep: refresh fixtures for every active league whose current
	// round is locked and waiting on results.
	if cfg.ImportInterval > 0 {
		t := time.NewTicker(cfg.ImportInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { importSweep(ctx, deps, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

func selfTick(ctx context.Context, eng *engine.Engine, logger *slog.Logger) {
	started := time.Now()
	report := eng.Run(ctx)
	telemetry.TickDuration.Observe(time.Since(started).Seconds())

	switch {
	case report.Skipped:
		telemetry.TickRuns.WithLabelValues("skipped").Inc()
	case !report.OK:
		telemetry.TickRuns.WithLabelValues("error").Inc()
		logger.Warn("Self-tick failed", "error", report.Error)
	default:
		telemetry.TickRuns.WithLabelValues("ok").Inc()
		telemetry.LeaguesProcessed.Add(float64(report.Processed))
		for _, a := range report.Actions {
			telemetry.StageActions.WithLabelValues(a.Step).Inc()
		}
		telemetry.LeagueErrors.Add(float64(len(report.Errors)))
	}
}

// importSweep imports fixtures for leagues blocked on results. Upstream
// failures are logged and skipped; they never touch engine state, which just
// sees unresolved fixtures until a later sweep succeeds.
func importSweep(ctx context.Context, deps Deps, logger *slog.Logger) {
	leagues, err := deps.Store.ActiveLeagues(ctx)
	if err != nil {
		logger.Warn("Import sweep: failed to load leagues", "error", err)
		return
	}

	for _, league := range leagues {
		round, err := deps.Store.RoundByNumber(ctx, league.ID, league.CurrentRound)
		if err != nil || round == nil {
			continue
		}
		if round.Status != game.RoundLocked {
			continue
		}

		if _, err := deps.Importer.ImportCurrentRound(ctx, league.ID); err != nil {
			telemetry.FixtureImports.WithLabelValues("error").Inc()
			logger.Warn("Import sweep: import failed", "league_id", league.ID, "error", err)
			continue
		}
		telemetry.FixtureImports.WithLabelValues("ok").Inc()
	}
}
