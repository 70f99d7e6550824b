package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/crickarena/fantasy-cricket/internal/config"
	"github.com/crickarena/fantasy-cricket/internal/domain/league"
	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	"github.com/crickarena/fantasy-cricket/internal/domain/player"
	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/account/introspect"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/account/jwtverify"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/external/cricketdata"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/external/sheetfeed"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/jobqueue"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/storage"
	"github.com/crickarena/fantasy-cricket/internal/interfaces/httpapi"
	"github.com/crickarena/fantasy-cricket/internal/platform/cache"
	idgen "github.com/crickarena/fantasy-cricket/internal/platform/id"
	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

type repositories struct {
	tournaments  tournament.Repository
	rosters      roster.Repository
	performances performance.Repository
	players      player.Repository
	stats        weeklystat.Repository
	leagues      league.Repository
	raws         rawdata.Repository
}

// NewHTTPServer wires repositories, external clients and usecase services
// into the HTTP API. The returned cleanup closes whatever the wiring opened
// (currently the database handle).
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	slogLogger := logger.Slog()

	cleanup := func(context.Context) error { return nil }

	repos, db, err := buildRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}
	if db != nil {
		cleanup = func(context.Context) error { return db.Close() }
	}

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		cacheTTL = time.Nanosecond
	}
	leaderboards := cache.NewStore(cacheTTL)

	rosterSvc := usecase.NewRosterService(repos.rosters, repos.tournaments)
	pointsSvc := usecase.NewPointsService(rosterSvc, repos.rosters, repos.performances, repos.players, repos.stats, leaderboards)
	tournamentSvc := usecase.NewTournamentService(repos.tournaments, repos.performances)
	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.tournaments, repos.stats, idgen.NewRandomGenerator())

	var sheetSource usecase.SheetSource
	if cfg.SheetEnabled {
		sheetSource = sheetfeed.NewClient(sheetfeed.ClientConfig{
			BaseURL:        cfg.SheetBaseURL,
			SheetID:        cfg.SheetID,
			Timeout:        cfg.SheetTimeout,
			MaxRetries:     cfg.SheetMaxRetries,
			Logger:         logger,
			CircuitBreaker: cfg.SheetCircuit,
		})
	}
	sheetSyncSvc := usecase.NewSheetSyncService(sheetSource, pointsSvc, repos.rosters, repos.performances, repos.raws, logger)

	var matchProvider usecase.MatchDataProvider
	if cfg.CricketDataEnabled {
		matchProvider = cricketdata.NewClient(cricketdata.ClientConfig{
			BaseURL:           cfg.CricketDataBaseURL,
			APIKey:            cfg.CricketDataAPIKey,
			Timeout:           cfg.CricketDataTimeout,
			MaxRetries:        cfg.CricketDataMaxRetries,
			RequestsPerMinute: cfg.CricketDataRequestsPerMinute,
			Logger:            logger,
			CircuitBreaker:    cfg.CricketDataCircuit,
		})
	}
	matchSyncSvc := usecase.NewMatchSyncService(matchProvider, repos.tournaments, repos.players, repos.raws, logger)

	var assets usecase.AssetStore
	if cfg.S3Enabled {
		assets, err = storage.NewS3Uploader(ctx, storage.S3UploaderConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			_ = cleanup(ctx)
			return nil, nil, fmt.Errorf("build s3 uploader: %w", err)
		}
	}
	profileSvc := usecase.NewProfileService(assets, idgen.NewRandomGenerator())

	var jobPublisher usecase.JobPublisher
	if cfg.QStashEnabled {
		jobPublisher = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker:   cfg.QStashCircuit,
		}, slogLogger)
	}

	verifier, err := buildTokenVerifier(cfg, slogLogger)
	if err != nil {
		_ = cleanup(ctx)
		return nil, nil, err
	}

	handler := httpapi.NewHandler(
		tournamentSvc,
		rosterSvc,
		pointsSvc,
		sheetSyncSvc,
		matchSyncSvc,
		leagueSvc,
		profileSvc,
		jobPublisher,
		slogLogger,
	)
	router := httpapi.NewRouter(handler, verifier, slogLogger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup(ctx)
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config) (repositories, *sqlx.DB, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		return repositories{
			tournaments:  memory.NewTournamentRepository(nil),
			rosters:      memory.NewRosterRepository(nil, nil),
			performances: memory.NewPerformanceRepository(nil),
			players:      memory.NewPlayerRepository(nil),
			stats:        memory.NewWeeklyStatRepository(nil),
			leagues:      memory.NewLeagueRepository(nil),
			raws:         memory.NewRawDataRepository(),
		}, nil, nil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	return repositories{
		tournaments:  postgres.NewTournamentRepository(db),
		rosters:      postgres.NewRosterRepository(db),
		performances: postgres.NewPerformanceRepository(db),
		players:      postgres.NewPlayerRepository(db),
		stats:        postgres.NewWeeklyStatRepository(db),
		leagues:      postgres.NewLeagueRepository(db),
		raws:         postgres.NewRawDataRepository(db),
	}, db, nil
}

// OpenDB opens the traced database handle shared by the API and the admin
// commands.
func OpenDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	options := []otelsql.Option{
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(cfg.DBURL); name != "" {
		options = append(options, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Connect("postgres", dsn, options...)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func buildTokenVerifier(cfg config.Config, logger *slog.Logger) (httpapi.TokenVerifier, error) {
	if cfg.AuthMode == config.AuthModeJWT {
		verifier, err := jwtverify.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("build jwt verifier: %w", err)
		}
		return verifier, nil
	}

	return introspect.NewClient(
		&http.Client{Timeout: cfg.AccountTimeout},
		cfg.AccountBaseURL,
		cfg.AccountIntrospectPath,
		cfg.AccountCacheTTL,
		logger,
	), nil
}
