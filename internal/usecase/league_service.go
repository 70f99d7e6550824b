package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/league"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
	idgen "github.com/crickarena/fantasy-cricket/internal/platform/id"
)

type CreateLeagueInput struct {
	UserID       string
	TournamentID string
	Name         string
}

type InviteInput struct {
	InviterID string
	LeagueID  string
	InviteeID string
}

// LeagueStandingRow is one member's row on a league-scoped leaderboard.
// Rank is league-local, recomputed from the tournament standings on read.
type LeagueStandingRow struct {
	UserID      string
	TotalPoints float64
	Rank        int
}

type LeagueService struct {
	leagueRepo     league.Repository
	tournamentRepo tournament.Repository
	statRepo       weeklystat.Repository
	idGen          idgen.Generator
	now            func() time.Time
}

func NewLeagueService(
	leagueRepo league.Repository,
	tournamentRepo tournament.Repository,
	statRepo weeklystat.Repository,
	idGen idgen.Generator,
) *LeagueService {
	return &LeagueService{
		leagueRepo:     leagueRepo,
		tournamentRepo: tournamentRepo,
		statRepo:       statRepo,
		idGen:          idGen,
		now:            time.Now,
	}
}

func (s *LeagueService) Create(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Create")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.TournamentID = strings.TrimSpace(input.TournamentID)
	input.Name = strings.TrimSpace(input.Name)
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.TournamentID == "" {
		return league.League{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}

	_, found, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		return league.League{}, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return league.League{}, fmt.Errorf("%w: tournament %s", ErrNotFound, input.TournamentID)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	l := league.League{
		ID:           id,
		TournamentID: input.TournamentID,
		Name:         input.Name,
		CreatorID:    input.UserID,
		MemberIDs:    []string{input.UserID},
		CreatedAt:    s.now().UTC(),
	}
	if err := s.leagueRepo.Upsert(ctx, l); err != nil {
		return league.League{}, fmt.Errorf("upsert league: %w", err)
	}
	return l, nil
}

func (s *LeagueService) Get(ctx context.Context, userID, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Get")
	defer span.End()

	l, err := s.memberLeague(ctx, userID, leagueID)
	if err != nil {
		return league.League{}, err
	}
	return l, nil
}

func (s *LeagueService) ListMine(ctx context.Context, userID string) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListMine")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	leagues, err := s.leagueRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by member: %w", err)
	}
	return leagues, nil
}

// Invite asks another user into a league. Only members can invite, and a
// pending invite for the same pair is not duplicated.
func (s *LeagueService) Invite(ctx context.Context, input InviteInput) (league.Invite, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Invite")
	defer span.End()

	input.InviterID = strings.TrimSpace(input.InviterID)
	input.InviteeID = strings.TrimSpace(input.InviteeID)
	if input.InviteeID == "" {
		return league.Invite{}, fmt.Errorf("%w: invitee id is required", ErrInvalidInput)
	}

	l, err := s.memberLeague(ctx, input.InviterID, input.LeagueID)
	if err != nil {
		return league.Invite{}, err
	}
	if l.HasMember(input.InviteeID) {
		return league.Invite{}, fmt.Errorf("%w: user %s is already a member", ErrInvalidInput, input.InviteeID)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return league.Invite{}, fmt.Errorf("generate invite id: %w", err)
	}

	now := s.now().UTC()
	invite := league.Invite{
		ID:        id,
		LeagueID:  l.ID,
		InviteeID: input.InviteeID,
		InviterID: input.InviterID,
		Status:    league.InviteStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.leagueRepo.CreateInvite(ctx, invite); err != nil {
		return league.Invite{}, fmt.Errorf("create invite: %w", err)
	}
	return invite, nil
}

func (s *LeagueService) ListInvites(ctx context.Context, userID string) ([]league.Invite, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListInvites")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	invites, err := s.leagueRepo.ListInvitesByInvitee(ctx, userID, league.InviteStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// AcceptInvite resolves a pending invite and adds the invitee to the league.
func (s *LeagueService) AcceptInvite(ctx context.Context, userID, inviteID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.AcceptInvite")
	defer span.End()

	invite, err := s.pendingInvite(ctx, userID, inviteID)
	if err != nil {
		return league.League{}, err
	}

	if err := s.leagueRepo.UpdateInviteStatus(ctx, invite.ID, league.InviteStatusAccepted); err != nil {
		return league.League{}, fmt.Errorf("update invite status: %w", err)
	}
	if err := s.leagueRepo.AddMember(ctx, invite.LeagueID, userID); err != nil {
		return league.League{}, fmt.Errorf("add league member: %w", err)
	}

	l, found, err := s.leagueRepo.GetByID(ctx, invite.LeagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !found {
		return league.League{}, fmt.Errorf("%w: league %s", ErrNotFound, invite.LeagueID)
	}
	return l, nil
}

func (s *LeagueService) DeclineInvite(ctx context.Context, userID, inviteID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.DeclineInvite")
	defer span.End()

	invite, err := s.pendingInvite(ctx, userID, inviteID)
	if err != nil {
		return err
	}
	if err := s.leagueRepo.UpdateInviteStatus(ctx, invite.ID, league.InviteStatusDeclined); err != nil {
		return fmt.Errorf("update invite status: %w", err)
	}
	return nil
}

// Leaderboard projects the tournament's overall standings down to the
// league's members and renumbers ranks 1..N inside the league.
func (s *LeagueService) Leaderboard(ctx context.Context, userID, leagueID string) ([]LeagueStandingRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Leaderboard")
	defer span.End()

	l, err := s.memberLeague(ctx, userID, leagueID)
	if err != nil {
		return nil, err
	}

	standings, err := s.statRepo.ListOverallStandings(ctx, l.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("list overall standings: %w", err)
	}

	members := make(map[string]struct{}, len(l.MemberIDs))
	for _, id := range l.MemberIDs {
		members[id] = struct{}{}
	}

	rows := make([]LeagueStandingRow, 0, len(members))
	for _, standing := range standings {
		if _, ok := members[standing.UserID]; !ok {
			continue
		}
		rows = append(rows, LeagueStandingRow{
			UserID:      standing.UserID,
			TotalPoints: standing.TotalPoints,
			Rank:        len(rows) + 1,
		})
	}

	// Members with no standing yet still belong on the board, at zero.
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		seen[row.UserID] = struct{}{}
	}
	for _, id := range l.MemberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		rows = append(rows, LeagueStandingRow{UserID: id, TotalPoints: 0, Rank: len(rows) + 1})
	}

	return rows, nil
}

func (s *LeagueService) memberLeague(ctx context.Context, userID, leagueID string) (league.League, error) {
	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	l, found, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !found {
		return league.League{}, fmt.Errorf("%w: league %s", ErrNotFound, leagueID)
	}
	if !l.HasMember(userID) {
		return league.League{}, fmt.Errorf("%w: user %s is not a member of league %s", ErrUnauthorized, userID, leagueID)
	}
	return l, nil
}

func (s *LeagueService) pendingInvite(ctx context.Context, userID, inviteID string) (league.Invite, error) {
	userID = strings.TrimSpace(userID)
	inviteID = strings.TrimSpace(inviteID)
	if userID == "" {
		return league.Invite{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if inviteID == "" {
		return league.Invite{}, fmt.Errorf("%w: invite id is required", ErrInvalidInput)
	}

	invite, found, err := s.leagueRepo.GetInvite(ctx, inviteID)
	if err != nil {
		return league.Invite{}, fmt.Errorf("get invite: %w", err)
	}
	if !found {
		return league.Invite{}, fmt.Errorf("%w: invite %s", ErrNotFound, inviteID)
	}
	if invite.InviteeID != userID {
		return league.Invite{}, fmt.Errorf("%w: invite %s is not addressed to user %s", ErrUnauthorized, inviteID, userID)
	}
	if invite.Status != league.InviteStatusPending {
		return league.Invite{}, fmt.Errorf("%w: invite %s is already %s", ErrInvalidInput, inviteID, invite.Status)
	}
	return invite, nil
}
