package httpapi

import (
	"fmt"
	"net/http"

	"github.com/crickarena/fantasy-cricket/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createLeagueRequest
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

	created, err := h.leagueService.Create(ctx, usecase.CreateLeagueInput{
		TournamentID: req.TournamentID,
		Name:         req.Name,
		UserID:       principal.UserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(created))
}

func (h *Handler) ListMyLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyLeagues")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagues, err := h.leagueService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := r.PathValue("leagueID")
	found, err := h.leagueService.Get(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(found))
}

func (h *Handler) InviteToLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InviteToLeague")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req inviteRequest
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

	leagueID := r.PathValue("leagueID")
	invite, err := h.leagueService.Invite(ctx, usecase.InviteInput{
		LeagueID:  leagueID,
		InviterID: principal.UserID,
		InviteeID: req.InviteeID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "invite to league failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, inviteToDTO(invite))
}

func (h *Handler) ListMyInvites(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyInvites")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	invites, err := h.leagueService.ListInvites(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list invites failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]inviteDTO, 0, len(invites))
	for _, invite := range invites {
		items = append(items, inviteToDTO(invite))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptInvite")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	inviteID := r.PathValue("inviteID")
	joined, err := h.leagueService.AcceptInvite(ctx, principal.UserID, inviteID)
	if err != nil {
		h.logger.WarnContext(ctx, "accept invite failed", "user_id", principal.UserID, "invite_id", inviteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(joined))
}

func (h *Handler) DeclineInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeclineInvite")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	inviteID := r.PathValue("inviteID")
	if err := h.leagueService.DeclineInvite(ctx, principal.UserID, inviteID); err != nil {
		h.logger.WarnContext(ctx, "decline invite failed", "user_id", principal.UserID, "invite_id", inviteID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "declined"})
}

func (h *Handler) GetLeagueLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueLeaderboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := r.PathValue("leagueID")
	rows, err := h.leagueService.Leaderboard(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "league leaderboard failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueStandingDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, leagueStandingDTO{
			UserID:      row.UserID,
			TotalPoints: row.TotalPoints,
			Rank:        row.Rank,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
