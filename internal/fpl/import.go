package fpl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Joshmanser1/last-man-standing/internal/game"
)

// ImportStore is the persistence surface the importer writes through.
type ImportStore interface {
	LeagueByID(ctx context.Context, id string) (*game.League, error)
	RoundByNumber(ctx context.Context, leagueID string, number int) (*game.Round, error)
	TeamsByLeague(ctx context.Context, leagueID string) ([]game.Team, error)
	UpsertFixture(ctx context.Context, f game.Fixture) error
}

// ImportResult summarizes one import run for a league round.
type ImportResult struct {
	LeagueID string `json:"league_id"`
	Round    int    `json:"round"`
	Event    int    `json:"event"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// Importer maps FPL gameweeks onto league rounds and materializes fixture
// rows. It writes fixtures only; round and pick state belong to the engine.
type Importer struct {
	client *Client
	store  ImportStore
	logger *slog.Logger
}

// NewImporter creates an importer.
func NewImporter(client *Client, store ImportStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{client: client, store: store, logger: logger}
}

// ImportCurrentRound fetches the gameweek mapped to a league's current round
// (start event + current round - 1) and upserts its fixtures. FPL fixtures
// are matched to league teams by short code; unmatched fixtures are skipped,
// not fatal.
func (im *Importer) ImportCurrentRound(ctx context.Context, leagueID string) (*ImportResult, error) {
	league, err := im.store.LeagueByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("load league: %w", err)
	}
	if league == nil {
		return nil, fmt.Errorf("league %s not found", leagueID)
	}

	round, err := im.store.RoundByNumber(ctx, league.ID, league.CurrentRound)
	if err != nil {
		return nil, fmt.Errorf("load round %d: %w", league.CurrentRound, err)
	}
	if round == nil {
		return nil, fmt.Errorf("round %d not found for league %s", league.CurrentRound, leagueID)
	}

	event := 0
	if league.FPLStartEvent != nil {
		event = *league.FPLStartEvent + league.CurrentRound - 1
	} else {
		event, err = im.client.SmartCurrentEvent(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve event: %w", err)
		}
	}

	teams, err := im.store.TeamsByLeague(ctx, league.ID)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	byCode := make(map[string]game.Team, len(teams))
	for _, t := range teams {
		byCode[strings.ToUpper(t.Code)] = t
	}

	bs, err := im.client.GetBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	fplTeams := make(map[int]Team, len(bs.Teams))
	for _, t := range bs.Teams {
		fplTeams[t.ID] = t
	}

	fixtures, err := im.client.FixturesForEvent(ctx, event)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{LeagueID: league.ID, Round: round.Number, Event: event}
	for _, fx := range fixtures {
		home, okH := byCode[strings.ToUpper(fplTeams[fx.TeamH].ShortName)]
		away, okA := byCode[strings.ToUpper(fplTeams[fx.TeamA].ShortName)]
		if !okH || !okA {
			result.Skipped++
			continue
		}

		row := game.Fixture{
			RoundID:    round.ID,
			HomeTeamID: home.ID,
			AwayTeamID: away.ID,
			KickoffUTC: fx.KickoffTime,
			Result:     game.ResultNotSet,
		}
		if fx.Done() {
			switch {
			case *fx.TeamHScore > *fx.TeamAScore:
				row.Result = game.ResultHomeWin
				row.WinningTeamID = &home.ID
			case *fx.TeamAScore > *fx.TeamHScore:
				row.Result = game.ResultAwayWin
				row.WinningTeamID = &away.ID
			default:
				row.Result = game.ResultDraw
			}
		}

		if err := im.store.UpsertFixture(ctx, row); err != nil {
			return nil, fmt.Errorf("upsert fixture %s vs %s: %w", home.Code, away.Code, err)
		}
		result.Imported++
	}

	im.logger.Info("fixtures imported",
		"league_id", league.ID, "round", round.Number, "event", event,
		"imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}
