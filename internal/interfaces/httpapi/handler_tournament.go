package httpapi

import "net/http"

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	tournaments, err := h.tournamentService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]tournamentDTO, 0, len(tournaments))
	for _, t := range tournaments {
		items = append(items, tournamentToDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetActiveTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveTournament")
	defer span.End()

	t, err := h.tournamentService.GetActive(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get active tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(ctx, t))
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	t, err := h.tournamentService.Get(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(ctx, t))
}

func (h *Handler) ListPerformances(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPerformances")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	week, err := weekQueryParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.tournamentService.ListPerformances(ctx, tournamentID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list performances failed", "tournament_id", tournamentID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]performanceRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, performanceRowToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetWeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyLeaderboard")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	week, err := requiredWeekQueryParam(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.pointsService.WeeklyLeaderboard(ctx, tournamentID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "weekly leaderboard failed", "tournament_id", tournamentID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weeklyStatDTO, 0, len(stats))
	for _, stat := range stats {
		items = append(items, weeklyStatToDTO(ctx, stat))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetOverallLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOverallLeaderboard")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	standings, err := h.pointsService.OverallLeaderboard(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "overall leaderboard failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]overallStandingDTO, 0, len(standings))
	for _, standing := range standings {
		items = append(items, overallStandingDTO{
			UserID:      standing.UserID,
			TotalPoints: standing.TotalPoints,
			Rank:        standing.Rank,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
