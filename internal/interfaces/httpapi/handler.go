package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/crickarena/fantasy-cricket/internal/usecase"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	tournamentService *usecase.TournamentService
	rosterService     *usecase.RosterService
	pointsService     *usecase.PointsService
	sheetSyncService  *usecase.SheetSyncService
	matchSyncService  *usecase.MatchSyncService
	leagueService     *usecase.LeagueService
	profileService    *usecase.ProfileService
	jobPublisher      usecase.JobPublisher
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(
	tournamentService *usecase.TournamentService,
	rosterService *usecase.RosterService,
	pointsService *usecase.PointsService,
	sheetSyncService *usecase.SheetSyncService,
	matchSyncService *usecase.MatchSyncService,
	leagueService *usecase.LeagueService,
	profileService *usecase.ProfileService,
	jobPublisher usecase.JobPublisher,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tournamentService: tournamentService,
		rosterService:     rosterService,
		pointsService:     pointsService,
		sheetSyncService:  sheetSyncService,
		matchSyncService:  matchSyncService,
		leagueService:     leagueService,
		profileService:    profileService,
		jobPublisher:      jobPublisher,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
