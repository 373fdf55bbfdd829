// Command lmsctl is the Last Man Standing admin CLI.
//
// Usage:
//
//	lmsctl migrate
//	lmsctl league create --name "Office LMS" --start 2026-09-12
//	lmsctl fixtures import --league <id>
//	lmsctl tick
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Joshmanser1/last-man-standing/internal/cache"
	"github.com/Joshmanser1/last-man-standing/internal/config"
	"github.com/Joshmanser1/last-man-standing/internal/db"
	"github.com/Joshmanser1/last-man-standing/internal/engine"
	"github.com/Joshmanser1/last-man-standing/internal/fpl"
	"github.com/Joshmanser1/last-man-standing/internal/game"
	"github.com/Joshmanser1/last-man-standing/internal/store"

	"github.com/google/uuid"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "lmsctl",
		Short: "Last Man Standing admin CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(leagueCmd())
	root.AddCommand(fixturesCmd())
	root.AddCommand(tickCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runWith loads config, applies the schema, opens the pool, and hands control
// to fn. Shared by every subcommand that touches the database.
func runWith(fn func(ctx context.Context, cfg *config.Config, st *store.Store, client *fpl.Client) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := store.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return err
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	client := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerMinute, cache.New(cfg.CacheEnabled), logger)
	return fn(ctx, cfg, store.New(pool), client)
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(func(ctx context.Context, cfg *config.Config, st *store.Store, _ *fpl.Client) error {
				logger.Info("Schema applied")
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// league command
// --------------------------------------------------------------------------

func leagueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "league",
		Short: "League administration",
	}
	cmd.AddCommand(leagueCreateCmd())
	return cmd
}

func leagueCreateCmd() *cobra.Command {
	var name, start string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a league with round 1 and its team list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(func(ctx context.Context, cfg *config.Config, st *store.Store, client *fpl.Client) error {
				startDate, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("parse --start: %w", err)
				}

				startEvent, err := client.EventForDate(ctx, startDate)
				if err != nil {
					return fmt.Errorf("resolve start event: %w", err)
				}

				league := game.League{
					ID:            uuid.NewString(),
					Name:          name,
					Status:        game.LeagueUpcoming,
					CurrentRound:  1,
					FPLStartEvent: &startEvent,
				}
				// Round 1 picks close at 17:00 UTC on the start date.
				deadline := time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
					17, 0, 0, 0, time.UTC)
				firstRound := game.Round{
					Name:         "Round 1",
					Status:       game.RoundUpcoming,
					PickDeadline: deadline,
				}
				if err := st.CreateLeague(ctx, league, firstRound); err != nil {
					return err
				}

				bs, err := client.GetBootstrap(ctx)
				if err != nil {
					return fmt.Errorf("load team list: %w", err)
				}
				teams := make([]game.Team, 0, len(bs.Teams))
				for _, t := range bs.Teams {
					teams = append(teams, game.Team{Name: t.Name, Code: t.ShortName})
				}
				if err := st.UpsertTeams(ctx, league.ID, teams); err != nil {
					return err
				}

				logger.Info("League created",
					"id", league.ID, "name", name,
					"start_event", startEvent, "round1_deadline", deadline)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "league display name")
	cmd.Flags().StringVar(&start, "start", "", "round 1 date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

// --------------------------------------------------------------------------
// fixtures command
// --------------------------------------------------------------------------

func fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Fixture import",
	}
	cmd.AddCommand(fixturesImportCmd())
	return cmd
}

func fixturesImportCmd() *cobra.Command {
	var leagueID string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import fixtures for a league's current round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(func(ctx context.Context, cfg *config.Config, st *store.Store, client *fpl.Client) error {
				importer := fpl.NewImporter(client, st, logger)
				result, err := importer.ImportCurrentRound(ctx, leagueID)
				if err != nil {
					return err
				}
				logger.Info("Import finished",
					"event", result.Event, "imported", result.Imported, "skipped", result.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&leagueID, "league", "", "league id")
	_ = cmd.MarkFlagRequired("league")
	return cmd
}

// --------------------------------------------------------------------------
// tick command
// --------------------------------------------------------------------------

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one engine tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(func(ctx context.Context, cfg *config.Config, st *store.Store, client *fpl.Client) error {
				eng := engine.New(st, engine.Config{
					Bucket:          cfg.TickBucket,
					AdvanceFallback: cfg.AdvanceFallback,
					Deadlines:       fpl.NewDeadlines(client),
					Logger:          logger,
				})
				report := eng.Run(ctx)
				if !report.OK {
					return fmt.Errorf("tick failed: %s", report.Error)
				}
				logger.Info("Tick finished",
					"run_key", report.RunKey,
					"skipped", report.Skipped,
					"leagues", report.Processed,
					"actions", len(report.Actions),
					"errors", len(report.Errors))
				return nil
			})
		},
	}
}
