package engine

import "time"

// Step names recorded in report actions. These are part of the trigger
// endpoint's response contract, so renaming them is a breaking change.
const (
	StepLock            = "lock"
	StepLockAlready     = "lock_already"
	StepFixturesMissing = "fixtures_missing"
	StepEvaluate        = "evaluate_complete"
	StepWinner          = "winner"
	StepRollover        = "rollover_zero_survivors"
	StepAdvance         = "advance"
	StepRoundCreated    = "next_round_created"
	StepRoundSynced     = "current_round_synced"
	StepRoundMissing    = "round_missing"
)

// Action is one recorded engine step for one league.
type Action struct {
	LeagueID    string `json:"league_id"`
	RoundID     string `json:"round_id,omitempty"`
	RoundNumber int    `json:"round_number,omitempty"`
	Step        string `json:"step"`
	Detail      string `json:"detail,omitempty"`
	Survivors   int    `json:"survivors,omitempty"`
	Forfeits    int    `json:"forfeits,omitempty"`
	NextRound   int    `json:"next_round,omitempty"`
	Winner      string `json:"winner_player_id,omitempty"`
}

// RunError is a per-league failure. It never fails the whole run.
type RunError struct {
	LeagueID string `json:"league_id"`
	Error    string `json:"error"`
}

// Report is the structured outcome of one tick run, serialized as the trigger
// endpoint's response body.
type Report struct {
	OK         bool       `json:"ok"`
	RunKey     string     `json:"run_key,omitempty"`
	Skipped    bool       `json:"skipped,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	DurationMS int64      `json:"duration_ms"`
	Processed  int        `json:"processed_leagues"`
	Actions    []Action   `json:"actions"`
	Errors     []RunError `json:"errors,omitempty"`
	Note       string     `json:"note,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func (r *Report) addAction(a Action) {
	r.Actions = append(r.Actions, a)
}

func (r *Report) addError(leagueID string, err error) {
	r.Errors = append(r.Errors, RunError{LeagueID: leagueID, Error: err.Error()})
}
