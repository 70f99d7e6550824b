// Command admin runs operator tasks against the fantasy cricket database.
//
// Usage:
//
//	fantasy-admin tournament upsert --file tournament.json
//	fantasy-admin tournament activate-window --tournament wcl-2025 --week 3
//	fantasy-admin tournament close-window --tournament wcl-2025
//	fantasy-admin roster snapshot --tournament wcl-2025 --week 3
//	fantasy-admin points recompute --tournament wcl-2025 --week 3
//
// Commands write straight to Postgres, so they require STORAGE_DRIVER=postgres.
// When ADMIN_TOKEN is set in the environment, --token must match it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crickarena/fantasy-cricket/internal/app"
	"github.com/crickarena/fantasy-cricket/internal/config"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/crickarena/fantasy-cricket/internal/platform/cache"
	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

var adminToken string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "fantasy-admin",
		Short:         "Operator tasks for the fantasy cricket API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&adminToken, "token", "", "Admin token (required when ADMIN_TOKEN is set)")

	root.AddCommand(tournamentCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(pointsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// tournament commands
// --------------------------------------------------------------------------

func tournamentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Manage tournaments and transfer windows",
	}
	cmd.AddCommand(tournamentUpsertCmd())
	cmd.AddCommand(activateWindowCmd())
	cmd.AddCommand(closeWindowCmd())
	return cmd
}

func tournamentUpsertCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create or replace a tournament from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdmin(func(ctx context.Context, env *adminEnv) error {
				t, err := readTournamentFile(file)
				if err != nil {
					return err
				}
				svc := usecase.NewTournamentService(env.tournamentRepo, env.performanceRepo)
				if err := svc.Upsert(ctx, t); err != nil {
					return err
				}
				env.logger.Info("tournament upserted", "tournament_id", t.ID, "windows", len(t.Windows))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the tournament JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func activateWindowCmd() *cobra.Command {
	var tournamentID string
	var week int
	cmd := &cobra.Command{
		Use:   "activate-window",
		Short: "Open the transfer window for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdmin(func(ctx context.Context, env *adminEnv) error {
				svc := usecase.NewTournamentService(env.tournamentRepo, env.performanceRepo)
				window, err := svc.ActivateWindow(ctx, tournamentID, week)
				if err != nil {
					return err
				}
				env.logger.Info("transfer window activated",
					"tournament_id", tournamentID, "week", window.Week, "ends_at", window.EndsAt)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament ID")
	cmd.Flags().IntVar(&week, "week", 0, "Week number")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func closeWindowCmd() *cobra.Command {
	var tournamentID string
	cmd := &cobra.Command{
		Use:   "close-window",
		Short: "Close the active transfer window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdmin(func(ctx context.Context, env *adminEnv) error {
				svc := usecase.NewTournamentService(env.tournamentRepo, env.performanceRepo)
				if err := svc.CloseWindow(ctx, tournamentID); err != nil {
					return err
				}
				env.logger.Info("transfer window closed", "tournament_id", tournamentID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament ID")
	_ = cmd.MarkFlagRequired("tournament")
	return cmd
}

// --------------------------------------------------------------------------
// roster commands
// --------------------------------------------------------------------------

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage roster snapshots",
	}
	cmd.AddCommand(rosterSnapshotCmd())
	return cmd
}

func rosterSnapshotCmd() *cobra.Command {
	var tournamentID string
	var week int
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Freeze every current roster into a week snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdmin(func(ctx context.Context, env *adminEnv) error {
				svc := usecase.NewRosterService(env.rosterRepo, env.tournamentRepo)
				count, err := svc.SnapshotWeek(ctx, tournamentID, week)
				if err != nil {
					return err
				}
				env.logger.Info("rosters snapshotted",
					"tournament_id", tournamentID, "week", week, "count", count)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament ID")
	cmd.Flags().IntVar(&week, "week", 0, "Week number")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

// --------------------------------------------------------------------------
// points commands
// --------------------------------------------------------------------------

func pointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Recompute fantasy points and standings",
	}
	cmd.AddCommand(pointsRecomputeCmd())
	return cmd
}

func pointsRecomputeCmd() *cobra.Command {
	var tournamentID string
	var week int
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild weekly stats, ranks, and overall standings for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdmin(func(ctx context.Context, env *adminEnv) error {
				rosterSvc := usecase.NewRosterService(env.rosterRepo, env.tournamentRepo)
				pointsSvc := usecase.NewPointsService(
					rosterSvc, env.rosterRepo, env.performanceRepo,
					env.playerRepo, env.statRepo, cache.NewStore(time.Nanosecond))

				start := time.Now()
				result, err := pointsSvc.RecomputeWeek(ctx, tournamentID, week)
				if err != nil {
					return err
				}
				ranked, err := pointsSvc.RecomputeRanks(ctx, tournamentID, week)
				if err != nil {
					return err
				}
				standings, err := pointsSvc.RecomputeOverall(ctx, tournamentID)
				if err != nil {
					return err
				}
				env.logger.Info("recompute finished",
					"tournament_id", tournamentID, "week", week,
					"users", result.Users, "ranked", ranked, "standings", standings,
					"unmatched_rows", result.Report.TotalRows-result.Report.MatchedRows,
					"duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&tournamentID, "tournament", "", "Tournament ID")
	cmd.Flags().IntVar(&week, "week", 0, "Week number")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type adminEnv struct {
	logger          *logging.Logger
	tournamentRepo  *postgres.TournamentRepository
	rosterRepo      *postgres.RosterRepository
	performanceRepo *postgres.PerformanceRepository
	playerRepo      *postgres.PlayerRepository
	statRepo        *postgres.WeeklyStatRepository
}

// runAdmin handles config loading, the token check, and the DB connection.
func runAdmin(fn func(ctx context.Context, env *adminEnv) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.AdminToken != "" && adminToken != cfg.AdminToken {
		return fmt.Errorf("admin token mismatch; pass --token matching ADMIN_TOKEN")
	}
	if cfg.StorageDriver != config.StorageDriverPostgres {
		return fmt.Errorf("admin commands require STORAGE_DRIVER=postgres")
	}

	db, err := app.OpenDB(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return fn(ctx, newAdminEnv(cfg, db))
}

func newAdminEnv(cfg config.Config, db *sqlx.DB) *adminEnv {
	return &adminEnv{
		logger:          logging.NewJSON(cfg.LogLevel),
		tournamentRepo:  postgres.NewTournamentRepository(db),
		rosterRepo:      postgres.NewRosterRepository(db),
		performanceRepo: postgres.NewPerformanceRepository(db),
		playerRepo:      postgres.NewPlayerRepository(db),
		statRepo:        postgres.NewWeeklyStatRepository(db),
	}
}

type tournamentFile struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	ExternalSeriesRef    string           `json:"external_series_ref"`
	StartsAt             time.Time        `json:"starts_at"`
	EndsAt               time.Time        `json:"ends_at"`
	RegistrationDeadline time.Time        `json:"registration_deadline"`
	Status               string           `json:"status"`
	Windows              []windowFileSpec `json:"windows"`
}

type windowFileSpec struct {
	Week     int       `json:"week"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   string    `json:"status"`
}

func readTournamentFile(path string) (tournament.Tournament, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("read tournament file: %w", err)
	}

	var payload tournamentFile
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return tournament.Tournament{}, fmt.Errorf("decode tournament file: %w", err)
	}

	t := tournament.Tournament{
		ID:                   payload.ID,
		Name:                 payload.Name,
		ExternalSeriesRef:    payload.ExternalSeriesRef,
		StartsAt:             payload.StartsAt,
		EndsAt:               payload.EndsAt,
		RegistrationDeadline: payload.RegistrationDeadline,
		Status:               tournament.Status(payload.Status),
		Windows:              make([]tournament.TransferWindow, 0, len(payload.Windows)),
	}
	for _, w := range payload.Windows {
		t.Windows = append(t.Windows, tournament.TransferWindow{
			Week:     w.Week,
			StartsAt: w.StartsAt,
			EndsAt:   w.EndsAt,
			Status:   tournament.Status(w.Status),
		})
	}

	return t, nil
}
