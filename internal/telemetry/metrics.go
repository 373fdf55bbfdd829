// Package telemetry exposes Prometheus metrics for the tick engine and the
// fixture import pipeline.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	TickRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lms_tick_runs_total", Help: "Tick invocations by outcome"},
		[]string{"outcome"}) // ok, error, skipped
	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "lms_tick_duration_seconds", Help: "End-to-end tick duration"})
	LeaguesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "lms_leagues_processed_total", Help: "Leagues processed across all ticks"})
	StageActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lms_stage_actions_total", Help: "Engine stage actions by step"},
		[]string{"step"})
	LeagueErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "lms_league_errors_total", Help: "Per-league failures recovered during ticks"})
	FixtureImports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lms_fixture_imports_total", Help: "Fixture import runs by outcome"},
		[]string{"outcome"}) // ok, error
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			TickRuns,
			TickDuration,
			LeaguesProcessed,
			StageActions,
			LeagueErrors,
			FixtureImports,
		)
	})
	return promhttp.Handler()
}
