package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Joshmanser1/last-man-standing/internal/api/respond"
	"github.com/Joshmanser1/last-man-standing/internal/game"
)

type pickRequest struct {
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
}

type pickResponse struct {
	ID       string `json:"id"`
	RoundID  string `json:"round_id"`
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	Status   string `json:"status"`
}

// SavePick records or replaces a player's pick for a league's current round.
// Rejected once the round deadline has passed or the round is no longer
// upcoming; a pick that has already been resolved is never overwritten.
func (h *Handler) SavePick(w http.ResponseWriter, r *http.Request) {
	leagueID := pathParam(r, "leagueID")

	var req pickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.TeamID = strings.TrimSpace(req.TeamID)
	if req.PlayerID == "" || req.TeamID == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "player_id and team_id are required")
		return
	}

	league, err := h.store.LeagueByID(r.Context(), leagueID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if league == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "league not found")
		return
	}

	round, err := h.store.RoundByNumber(r.Context(), league.ID, league.CurrentRound)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if round == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "current round not found")
		return
	}
	if round.Status != game.RoundUpcoming {
		respond.WriteError(w, http.StatusConflict, "ROUND_CLOSED", "picks are closed for this round")
		return
	}

	pick, err := h.picks.SavePick(r.Context(), *round, req.PlayerID, req.TeamID)
	if err != nil {
		respond.WriteError(w, http.StatusConflict, "PICK_REJECTED", err.Error())
		return
	}

	respond.WriteJSONObject(w, http.StatusCreated, pickResponse{
		ID:       pick.ID,
		RoundID:  pick.RoundID,
		PlayerID: pick.PlayerID,
		TeamID:   req.TeamID,
		Status:   string(pick.Status),
	})
}
