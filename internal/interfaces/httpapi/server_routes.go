package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/active", handler.GetActiveTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/performances", handler.ListPerformances)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/leaderboard", handler.GetWeeklyLeaderboard)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/leaderboard/overall", handler.GetOverallLeaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedRosterRoutes(mux, handler, verifier)
	registerAuthorizedLeagueRoutes(mux, handler, verifier)
	registerAuthorizedProfileRoutes(mux, handler, verifier)
}

func registerAuthorizedRosterRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/tournaments/{tournamentID}/roster", RequireAuth(verifier, http.HandlerFunc(handler.GetMyRoster)))
	mux.Handle("PUT /v1/tournaments/{tournamentID}/roster", RequireAuth(verifier, http.HandlerFunc(handler.SaveMyRoster)))
	mux.Handle("GET /v1/tournaments/{tournamentID}/roster/resolved", RequireAuth(verifier, http.HandlerFunc(handler.GetMyResolvedRoster)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/roster/transfers", RequireAuth(verifier, http.HandlerFunc(handler.ApplyTransfer)))
	mux.Handle("GET /v1/tournaments/{tournamentID}/points/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyWeeklyPoints)))
}

func registerAuthorizedLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("GET /v1/leagues/mine", RequireAuth(verifier, http.HandlerFunc(handler.ListMyLeagues)))
	mux.Handle("GET /v1/leagues/invites", RequireAuth(verifier, http.HandlerFunc(handler.ListMyInvites)))
	mux.Handle("POST /v1/leagues/invites/{inviteID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptInvite)))
	mux.Handle("POST /v1/leagues/invites/{inviteID}/decline", RequireAuth(verifier, http.HandlerFunc(handler.DeclineInvite)))
	mux.Handle("GET /v1/leagues/{leagueID}", RequireAuth(verifier, http.HandlerFunc(handler.GetLeague)))
	mux.Handle("POST /v1/leagues/{leagueID}/invites", RequireAuth(verifier, http.HandlerFunc(handler.InviteToLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetLeagueLeaderboard)))
}

func registerAuthorizedProfileRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/profile/avatar", RequireAuth(verifier, http.HandlerFunc(handler.UploadAvatar)))
	mux.Handle("DELETE /v1/profile/avatar", RequireAuth(verifier, http.HandlerFunc(handler.DeleteAvatar)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sheet-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSheetSyncJob)))
	mux.Handle("POST /v1/internal/jobs/cap-bonus", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCapBonusJob)))
	mux.Handle("POST /v1/internal/jobs/match-refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMatchRefreshJob)))
	mux.Handle("POST /v1/internal/jobs/snapshot-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSnapshotWeekJob)))
	mux.Handle("POST /v1/internal/jobs/recompute-ranks", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeRanksJob)))
	mux.Handle("POST /v1/internal/jobs/recompute-overall", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeOverallJob)))
	mux.Handle("POST /v1/internal/jobs/schedule-refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ScheduleMatchRefresh)))
}
