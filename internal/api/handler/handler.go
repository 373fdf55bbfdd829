// Package handler provides HTTP handlers for all API endpoints: the tick
// trigger, fixture import, health checks, and the league read surface.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Joshmanser1/last-man-standing/internal/api/respond"
	"github.com/Joshmanser1/last-man-standing/internal/config"
	"github.com/Joshmanser1/last-man-standing/internal/engine"
	"github.com/Joshmanser1/last-man-standing/internal/fpl"
	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// TickRunner runs one engine tick. Satisfied by *engine.Engine.
type TickRunner interface {
	Run(ctx context.Context) *engine.Report
}

// FixtureImporter imports a league's current-round fixtures. Satisfied by
// *fpl.Importer.
type FixtureImporter interface {
	ImportCurrentRound(ctx context.Context, leagueID string) (*fpl.ImportResult, error)
}

// LeagueReader is the read surface the league endpoints need. Satisfied by
// *store.Store.
type LeagueReader interface {
	HealthCheck(ctx context.Context) error
	LeagueByID(ctx context.Context, id string) (*game.League, error)
	RoundByNumber(ctx context.Context, leagueID string, number int) (*game.Round, error)
	PicksByRound(ctx context.Context, roundID string) ([]game.Pick, error)
}

// PickSaver is the pick write path. Satisfied by *store.Store.
type PickSaver interface {
	SavePick(ctx context.Context, round game.Round, playerID, teamID string) (*game.Pick, error)
}

// Deps collects the handler collaborators.
type Deps struct {
	Store    LeagueReader
	Picks    PickSaver
	Engine   TickRunner
	Importer FixtureImporter
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    LeagueReader
	picks    PickSaver
	engine   TickRunner
	importer FixtureImporter
	cfg      *config.Config
}

// New creates a Handler with shared dependencies.
func New(deps Deps, cfg *config.Config) *Handler {
	return &Handler{
		store:    deps.Store,
		picks:    deps.Picks,
		engine:   deps.Engine,
		importer: deps.Importer,
		cfg:      cfg,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Last Man Standing API",
		"status":  "operational",
		"version": "1.0.0",
	})
}

// HealthCheck reports process liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB reports database reachability.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.HealthCheck(ctx); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}
