package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/usecase"
	jsoniter "github.com/json-iterator/go"
)

func (h *Handler) RunSheetSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSheetSyncJob")
	defer span.End()

	var req sheetSyncJobRequest
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

	result, err := h.sheetSyncService.SyncWeek(ctx, usecase.SheetSyncInput{
		TournamentID: req.TournamentID,
		Week:         req.Week,
		StartIndex:   req.StartIndex,
		BatchSize:    req.BatchSize,
		MaxWorkers:   req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sheet sync job failed", "tournament_id", req.TournamentID, "week", req.Week, "start_index", req.StartIndex, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunCapBonusJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCapBonusJob")
	defer span.End()

	var req tournamentWeekJobRequest
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

	result, err := h.sheetSyncService.SyncCapBonuses(ctx, req.TournamentID, req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "cap bonus job failed", "tournament_id", req.TournamentID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunMatchRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMatchRefreshJob")
	defer span.End()

	var req tournamentJobRequest
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

	result, err := h.matchSyncService.RefreshTournament(ctx, req.TournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "match refresh job failed", "tournament_id", req.TournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSnapshotWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSnapshotWeekJob")
	defer span.End()

	var req tournamentWeekJobRequest
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

	frozen, err := h.rosterService.SnapshotWeek(ctx, req.TournamentID, req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "snapshot week job failed", "tournament_id", req.TournamentID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"tournament_id": req.TournamentID,
		"week":          req.Week,
		"snapshots":     frozen,
	})
}

func (h *Handler) RunRecomputeRanksJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeRanksJob")
	defer span.End()

	var req tournamentWeekJobRequest
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

	ranked, err := h.pointsService.RecomputeRanks(ctx, req.TournamentID, req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute ranks job failed", "tournament_id", req.TournamentID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"tournament_id": req.TournamentID,
		"week":          req.Week,
		"ranked_users":  ranked,
	})
}

func (h *Handler) RunRecomputeOverallJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeOverallJob")
	defer span.End()

	var req tournamentJobRequest
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

	ranked, err := h.pointsService.RecomputeOverall(ctx, req.TournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute overall job failed", "tournament_id", req.TournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"tournament_id": req.TournamentID,
		"ranked_users":  ranked,
	})
}

// ScheduleMatchRefresh enqueues a deferred match-refresh invocation through
// the job queue instead of running it inline.
func (h *Handler) ScheduleMatchRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleMatchRefresh")
	defer span.End()

	if h.jobPublisher == nil {
		writeError(ctx, w, fmt.Errorf("%w: job publisher is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req scheduleRefreshJobRequest
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

	delay := time.Duration(req.DelaySeconds) * time.Second
	deduplicationID := "match-refresh-" + req.TournamentID
	payload := tournamentJobRequest{TournamentID: req.TournamentID}
	if err := h.jobPublisher.Enqueue(ctx, "/v1/internal/jobs/match-refresh", payload, delay, deduplicationID); err != nil {
		h.logger.WarnContext(ctx, "schedule match refresh failed", "tournament_id", req.TournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]any{
		"tournament_id": req.TournamentID,
		"delay_seconds": req.DelaySeconds,
		"status":        "enqueued",
	})
}
