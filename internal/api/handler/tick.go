package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/Joshmanser1/last-man-standing/internal/api/respond"
	"github.com/Joshmanser1/last-man-standing/internal/telemetry"
)

// Tick is the scheduler trigger: it runs one lock -> evaluate -> advance pass
// over every active league. Callers authenticate with the pre-shared cron
// secret, either as a bearer token or a ?key= query parameter. The run gate
// makes repeated or overlapping calls within one interval harmless, so the
// scheduler needs no retry logic beyond "call again next interval".
func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid cron secret")
		return
	}

	started := time.Now()
	report := h.engine.Run(r.Context())
	telemetry.TickDuration.Observe(time.Since(started).Seconds())
	telemetry.LeaguesProcessed.Add(float64(report.Processed))
	for _, a := range report.Actions {
		telemetry.StageActions.WithLabelValues(a.Step).Inc()
	}
	telemetry.LeagueErrors.Add(float64(len(report.Errors)))

	status := http.StatusOK
	outcome := "ok"
	switch {
	case report.Skipped:
		outcome = "skipped"
	case !report.OK:
		// Fatal: gate or league list unavailable. Per-league errors do NOT
		// land here; they ride inside a 200 response.
		status = http.StatusBadGateway
		outcome = "error"
	}
	telemetry.TickRuns.WithLabelValues(outcome).Inc()

	respond.WriteJSONObject(w, status, report)
}

// ImportFixtures triggers a fixture import for one league's current round.
// Shares the cron-secret auth with Tick; import is an operator action, not a
// public endpoint.
func (h *Handler) ImportFixtures(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid cron secret")
		return
	}

	leagueID := pathParam(r, "leagueID")
	result, err := h.importer.ImportCurrentRound(r.Context(), leagueID)
	if err != nil {
		telemetry.FixtureImports.WithLabelValues("error").Inc()
		respond.WriteError(w, http.StatusBadGateway, "IMPORT_FAILED", err.Error())
		return
	}
	telemetry.FixtureImports.WithLabelValues("ok").Inc()
	respond.WriteJSONObject(w, http.StatusOK, result)
}

// authorized checks the pre-shared secret: Authorization: Bearer <secret> or
// ?key=<secret>. An empty configured secret never authorizes.
func (h *Handler) authorized(r *http.Request) bool {
	secret := h.cfg.CronSecret
	if secret == "" {
		return false
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] == secret {
			return true
		}
	}
	return r.URL.Query().Get("key") == secret
}
