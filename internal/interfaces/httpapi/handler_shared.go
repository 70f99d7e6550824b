package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/league"
	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

type rosterPlayerPayload struct {
	PlayerID      string `json:"playerId" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Role          string `json:"role" validate:"required"`
	IsCaptain     bool   `json:"isCaptain"`
	IsViceCaptain bool   `json:"isViceCaptain"`
}

type saveRosterRequest struct {
	Players []rosterPlayerPayload `json:"players" validate:"required,len=11,dive"`
}

type transferRequest struct {
	OutPlayerID string              `json:"outPlayerId" validate:"required"`
	In          rosterPlayerPayload `json:"in" validate:"required"`
}

type createLeagueRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
}

type inviteRequest struct {
	InviteeID string `json:"inviteeId" validate:"required"`
}

type sheetSyncJobRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	Week         int    `json:"week" validate:"required,gt=0"`
	StartIndex   int    `json:"startIndex" validate:"gte=0"`
	BatchSize    int    `json:"batchSize" validate:"gte=0"`
	MaxWorkers   int    `json:"maxWorkers" validate:"gte=0"`
}

type tournamentWeekJobRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	Week         int    `json:"week" validate:"required,gt=0"`
}

type tournamentJobRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
}

type scheduleRefreshJobRequest struct {
	TournamentID string `json:"tournamentId" validate:"required"`
	DelaySeconds int    `json:"delaySeconds" validate:"gte=0"`
}

type transferWindowDTO struct {
	Week     int       `json:"week"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Status   string    `json:"status"`
}

type tournamentDTO struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	StartsAt             time.Time           `json:"startsAt"`
	EndsAt               time.Time           `json:"endsAt"`
	RegistrationDeadline time.Time           `json:"registrationDeadline"`
	Status               string              `json:"status"`
	Windows              []transferWindowDTO `json:"windows"`
}

type performanceRowDTO struct {
	Week        int     `json:"week"`
	MatchID     string  `json:"matchId"`
	PlayerName  string  `json:"playerName"`
	TotalPoints float64 `json:"totalPoints"`
}

type breakdownEntryDTO struct {
	PlayerID    string  `json:"playerId"`
	PlayerName  string  `json:"playerName"`
	MatchID     string  `json:"matchId"`
	BasePoints  float64 `json:"basePoints"`
	Multiplier  float64 `json:"multiplier"`
	FinalPoints float64 `json:"finalPoints"`
}

type weeklyStatDTO struct {
	UserID           string              `json:"userId"`
	TournamentID     string              `json:"tournamentId"`
	Week             int                 `json:"week"`
	TotalPoints      float64             `json:"totalPoints"`
	Rank             int                 `json:"rank"`
	CapPoints        float64             `json:"capPoints"`
	CapPointsAwarded bool                `json:"capPointsAwarded"`
	Breakdown        []breakdownEntryDTO `json:"breakdown"`
	CalculatedAt     time.Time           `json:"calculatedAt"`
}

type overallStandingDTO struct {
	UserID      string  `json:"userId"`
	TotalPoints float64 `json:"totalPoints"`
	Rank        int     `json:"rank"`
}

type rosterPlayerDTO struct {
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	IsCaptain     bool   `json:"isCaptain"`
	IsViceCaptain bool   `json:"isViceCaptain"`
}

type currentRosterDTO struct {
	TournamentID       string            `json:"tournamentId"`
	Players            []rosterPlayerDTO `json:"players"`
	TransfersRemaining int               `json:"transfersRemaining"`
	LastTransferAt     *time.Time        `json:"lastTransferAt,omitempty"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

type resolvedRosterDTO struct {
	TournamentID string            `json:"tournamentId"`
	Week         int               `json:"week"`
	Source       string            `json:"source"`
	SourceWeek   int               `json:"sourceWeek,omitempty"`
	Players      []rosterPlayerDTO `json:"players"`
}

type leagueDTO struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournamentId"`
	Name         string    `json:"name"`
	CreatorID    string    `json:"creatorId"`
	MemberIDs    []string  `json:"memberIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

type inviteDTO struct {
	ID        string    `json:"id"`
	LeagueID  string    `json:"leagueId"`
	InviteeID string    `json:"inviteeId"`
	InviterID string    `json:"inviterId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type leagueStandingDTO struct {
	UserID      string  `json:"userId"`
	TotalPoints float64 `json:"totalPoints"`
	Rank        int     `json:"rank"`
}

type storedAssetDTO struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

func tournamentToDTO(ctx context.Context, t tournament.Tournament) tournamentDTO {
	_, span := startSpan(ctx, "httpapi.tournamentToDTO")
	defer span.End()

	windows := make([]transferWindowDTO, 0, len(t.Windows))
	for _, w := range t.Windows {
		windows = append(windows, transferWindowDTO{
			Week:     w.Week,
			StartsAt: w.StartsAt,
			EndsAt:   w.EndsAt,
			Status:   string(w.Status),
		})
	}

	return tournamentDTO{
		ID:                   t.ID,
		Name:                 t.Name,
		StartsAt:             t.StartsAt,
		EndsAt:               t.EndsAt,
		RegistrationDeadline: t.RegistrationDeadline,
		Status:               string(t.Status),
		Windows:              windows,
	}
}

func performanceRowToDTO(row performance.Row) performanceRowDTO {
	return performanceRowDTO{
		Week:        row.Week,
		MatchID:     row.MatchID,
		PlayerName:  row.PlayerName,
		TotalPoints: row.TotalPoints,
	}
}

func weeklyStatToDTO(ctx context.Context, stat weeklystat.Stat) weeklyStatDTO {
	_, span := startSpan(ctx, "httpapi.weeklyStatToDTO")
	defer span.End()

	breakdown := make([]breakdownEntryDTO, 0, len(stat.Breakdown))
	for _, entry := range stat.Breakdown {
		breakdown = append(breakdown, breakdownEntryDTO{
			PlayerID:    entry.PlayerID,
			PlayerName:  entry.PlayerName,
			MatchID:     entry.MatchID,
			BasePoints:  entry.BasePoints,
			Multiplier:  entry.Multiplier,
			FinalPoints: entry.FinalPoints,
		})
	}

	return weeklyStatDTO{
		UserID:           stat.Key.UserID,
		TournamentID:     stat.Key.TournamentID,
		Week:             stat.Key.Week,
		TotalPoints:      stat.TotalPoints,
		Rank:             stat.Rank,
		CapPoints:        stat.CapPoints,
		CapPointsAwarded: stat.CapPointsAwarded,
		Breakdown:        breakdown,
		CalculatedAt:     stat.CalculatedAt,
	}
}

func rosterPlayersToDTO(players []roster.Player) []rosterPlayerDTO {
	items := make([]rosterPlayerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, rosterPlayerDTO{
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			Role:          string(p.Role),
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}
	return items
}

func rosterPlayersFromPayload(payload []rosterPlayerPayload) []roster.Player {
	players := make([]roster.Player, 0, len(payload))
	for _, p := range payload {
		players = append(players, roster.Player{
			PlayerID:      strings.TrimSpace(p.PlayerID),
			Name:          strings.TrimSpace(p.Name),
			Role:          roster.Role(strings.TrimSpace(p.Role)),
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}
	return players
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:           l.ID,
		TournamentID: l.TournamentID,
		Name:         l.Name,
		CreatorID:    l.CreatorID,
		MemberIDs:    l.MemberIDs,
		CreatedAt:    l.CreatedAt,
	}
}

func inviteToDTO(invite league.Invite) inviteDTO {
	return inviteDTO{
		ID:        invite.ID,
		LeagueID:  invite.LeagueID,
		InviteeID: invite.InviteeID,
		InviterID: invite.InviterID,
		Status:    string(invite.Status),
		CreatedAt: invite.CreatedAt,
	}
}

// weekQueryParam parses the optional "week" query value. Zero means the
// caller did not ask for a specific week.
func weekQueryParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("week"))
	if raw == "" {
		return 0, nil
	}
	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: week must be an integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return week, nil
}

func requiredWeekQueryParam(r *http.Request) (int, error) {
	week, err := weekQueryParam(r)
	if err != nil {
		return 0, err
	}
	if week <= 0 {
		return 0, fmt.Errorf("%w: week query parameter is required and must be greater than zero", usecase.ErrInvalidInput)
	}
	return week, nil
}
