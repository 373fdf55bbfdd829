package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Joshmanser1/last-man-standing/internal/api/respond"
	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// leagueResponse is the league detail payload.
type leagueResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Status       string         `json:"status"`
	CurrentRound int            `json:"current_round"`
	Winner       *string        `json:"winner_player_id,omitempty"`
	Round        *roundResponse `json:"round,omitempty"`
}

type roundResponse struct {
	ID           string `json:"id"`
	Number       int    `json:"number"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	PickDeadline string `json:"pick_deadline_utc"`
	Picks        int    `json:"picks"`
	Survivors    int    `json:"survivors"`
}

// GetLeague returns a league with its current round and survivor count.
func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	leagueID := pathParam(r, "leagueID")

	league, err := h.store.LeagueByID(r.Context(), leagueID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if league == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "league not found")
		return
	}

	resp := leagueResponse{
		ID:           league.ID,
		Name:         league.Name,
		Status:       string(league.Status),
		CurrentRound: league.CurrentRound,
		Winner:       league.WinnerPlayerID,
	}

	round, err := h.store.RoundByNumber(r.Context(), league.ID, league.CurrentRound)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if round != nil {
		rr := &roundResponse{
			ID:           round.ID,
			Number:       round.Number,
			Name:         round.Name,
			Status:       string(round.Status),
			PickDeadline: round.PickDeadline.UTC().Format("2006-01-02T15:04:05Z"),
		}
		picks, err := h.store.PicksByRound(r.Context(), round.ID)
		if err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
			return
		}
		rr.Picks = len(picks)
		for _, p := range picks {
			if p.Status == game.PickSurvived {
				rr.Survivors++
			}
		}
		resp.Round = rr
	}

	respond.WriteJSONObject(w, http.StatusOK, resp)
}

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
