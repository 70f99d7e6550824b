package httpapi

import (
	"fmt"
	"net/http"

	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

func (h *Handler) GetMyRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	tournamentID := r.PathValue("tournamentID")
	current, err := h.rosterService.GetCurrent(ctx, principal.UserID, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "user_id", principal.UserID, "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentRosterToDTO(current))
}

func (h *Handler) SaveMyRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveMyRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req saveRosterRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	tournamentID := r.PathValue("tournamentID")
	current, err := h.rosterService.SaveCurrent(ctx, principal.UserID, tournamentID, rosterPlayersFromPayload(req.Players))
	if err != nil {
		h.logger.WarnContext(ctx, "save roster failed", "user_id", principal.UserID, "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentRosterToDTO(current))
}

func (h *Handler) GetMyResolvedRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyResolvedRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	tournamentID := r.PathValue("tournamentID")
	week, err := requiredWeekQueryParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	resolved, err := h.rosterService.ResolveForWeek(ctx, principal.UserID, tournamentID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve roster failed", "user_id", principal.UserID, "tournament_id", tournamentID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resolvedRosterDTO{
		TournamentID: resolved.TournamentID,
		Week:         resolved.Week,
		Source:       string(resolved.Source),
		SourceWeek:   resolved.SourceWeek,
		Players:      rosterPlayersToDTO(resolved.Players),
	})
}

func (h *Handler) ApplyTransfer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyTransfer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req transferRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	tournamentID := r.PathValue("tournamentID")
	incoming := rosterPlayersFromPayload([]rosterPlayerPayload{req.In})[0]
	current, err := h.rosterService.ApplyTransfer(ctx, principal.UserID, tournamentID, req.OutPlayerID, incoming)
	if err != nil {
		h.logger.WarnContext(ctx, "apply transfer failed", "user_id", principal.UserID, "tournament_id", tournamentID, "out_player_id", req.OutPlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentRosterToDTO(current))
}

func (h *Handler) GetMyWeeklyPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyWeeklyPoints")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	tournamentID := r.PathValue("tournamentID")
	week, err := requiredWeekQueryParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stat, err := h.pointsService.UserWeeklyStat(ctx, principal.UserID, tournamentID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get weekly points failed", "user_id", principal.UserID, "tournament_id", tournamentID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weeklyStatToDTO(ctx, stat))
}

func currentRosterToDTO(current roster.Current) currentRosterDTO {
	return currentRosterDTO{
		TournamentID:       current.TournamentID,
		Players:            rosterPlayersToDTO(current.Players),
		TransfersRemaining: current.TransfersRemaining,
		LastTransferAt:     current.LastTransferAt,
		UpdatedAt:          current.UpdatedAt,
	}
}
