package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// memStore is an in-memory Store with the same conditional-write semantics as
// the Postgres implementation. Individual operations can be failed or made to
// panic to exercise the per-league error boundary.
type memStore struct {
	mu       sync.Mutex
	leagues  []*game.League
	rounds   []*game.Round
	picks    []*game.Pick
	fixtures []*game.Fixture
	runs     map[string]*game.RunRecord // keyed by run key
	nextID   int

	failInsertRun     error
	failActiveLeagues error
	failRoundFor      map[string]error // leagueID -> error
	panicPicksFor     string           // roundID that panics on PicksByRound
}

func newMemStore() *memStore {
	return &memStore{
		runs:         make(map[string]*game.RunRecord),
		failRoundFor: make(map[string]error),
	}
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// --- fixtures for tests -------------------------------------------------

func (m *memStore) addLeague(name string, status game.LeagueStatus, currentRound int) *game.League {
	l := &game.League{ID: m.id("league"), Name: name, Status: status, CurrentRound: currentRound}
	m.leagues = append(m.leagues, l)
	return l
}

func (m *memStore) addRound(league *game.League, number int, status game.RoundStatus, deadline time.Time) *game.Round {
	r := &game.Round{
		ID: m.id("round"), LeagueID: league.ID, Number: number,
		Name: fmt.Sprintf("Round %d", number), Status: status, PickDeadline: deadline,
	}
	m.rounds = append(m.rounds, r)
	return r
}

func (m *memStore) addPick(round *game.Round, playerID string, teamID *string, status game.PickStatus) *game.Pick {
	p := &game.Pick{
		ID: m.id("pick"), LeagueID: round.LeagueID, RoundID: round.ID,
		PlayerID: playerID, TeamID: teamID, Status: status,
	}
	m.picks = append(m.picks, p)
	return p
}

func (m *memStore) addFixture(round *game.Round, home, away string, result game.FixtureResult, winner *string) *game.Fixture {
	f := &game.Fixture{
		ID: m.id("fixture"), RoundID: round.ID, HomeTeamID: home, AwayTeamID: away,
		Result: result, WinningTeamID: winner,
	}
	m.fixtures = append(m.fixtures, f)
	return f
}

func (m *memStore) pick(id string) *game.Pick {
	for _, p := range m.picks {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *memStore) roundsFor(leagueID string) []*game.Round {
	var out []*game.Round
	for _, r := range m.rounds {
		if r.LeagueID == leagueID {
			out = append(out, r)
		}
	}
	return out
}

// --- Store implementation ------------------------------------------------

func (m *memStore) InsertRunIfAbsent(_ context.Context, runKey string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertRun != nil {
		return "", false, m.failInsertRun
	}
	if _, exists := m.runs[runKey]; exists {
		return "", false, nil
	}
	rec := &game.RunRecord{ID: m.id("run"), RunKey: runKey, StartedAt: time.Now()}
	m.runs[runKey] = rec
	return rec.ID, true, nil
}

func (m *memStore) FinishRun(_ context.Context, runID string, status game.RunStatus, runErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.runs {
		if rec.ID == runID {
			rec.Status = status
			now := time.Now()
			rec.CompletedAt = &now
			if runErr != nil {
				msg := runErr.Error()
				rec.Error = &msg
			}
			return nil
		}
	}
	return fmt.Errorf("run %s not found", runID)
}

func (m *memStore) ActiveLeagues(context.Context) ([]game.League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failActiveLeagues != nil {
		return nil, m.failActiveLeagues
	}
	var out []game.League
	for _, l := range m.leagues {
		if l.DeletedAt == nil && l.Status != game.LeagueFinished {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memStore) RoundByNumber(_ context.Context, leagueID string, number int) (*game.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failRoundFor[leagueID]; err != nil {
		return nil, err
	}
	for _, r := range m.rounds {
		if r.LeagueID == leagueID && r.Number == number {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) CompareAndSetRoundStatus(_ context.Context, roundID string, expect, next game.RoundStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rounds {
		if r.ID == roundID && r.Status == expect {
			r.Status = next
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) CreateRound(_ context.Context, round game.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rounds {
		if r.LeagueID == round.LeagueID && r.Number == round.Number {
			return nil // unique constraint absorbs the duplicate
		}
	}
	copied := round
	m.rounds = append(m.rounds, &copied)
	return nil
}

func (m *memStore) PicksByRound(_ context.Context, roundID string) ([]game.Pick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicPicksFor == roundID {
		panic("picks table corrupted")
	}
	var out []game.Pick
	for _, p := range m.picks {
		if p.RoundID == roundID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) ForfeitUnpicked(_ context.Context, roundID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.picks {
		if p.RoundID == roundID && p.TeamID == nil && p.Status == game.PickPending {
			p.Status = game.PickForfeit
			reason := game.ReasonMissed
			p.Reason = &reason
			n++
		}
	}
	return n, nil
}

func (m *memStore) ResolvePick(_ context.Context, pickID string, status game.PickStatus, reason *game.PickReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.picks {
		if p.ID == pickID && p.Status == game.PickPending {
			p.Status = status
			p.Reason = reason
		}
	}
	return nil
}

func (m *memStore) FixturesByRound(_ context.Context, roundID string) ([]game.Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []game.Fixture
	for _, f := range m.fixtures {
		if f.RoundID == roundID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memStore) FinishLeague(_ context.Context, leagueID string, winnerPlayerID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leagues {
		if l.ID == leagueID && l.Status != game.LeagueFinished {
			l.Status = game.LeagueFinished
			l.WinnerPlayerID = winnerPlayerID
		}
	}
	return nil
}

func (m *memStore) SetCurrentRound(_ context.Context, leagueID string, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leagues {
		if l.ID == leagueID {
			l.CurrentRound = number
		}
	}
	return nil
}
