package usecase

import (
	"errors"
	"testing"

	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/crickarena/fantasy-cricket/internal/platform/id"
)

func newLeagueFixture() (*LeagueService, *memory.WeeklyStatRepository) {
	leagueRepo := memory.NewLeagueRepository(nil)
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	statRepo := memory.NewWeeklyStatRepository(nil)
	svc := NewLeagueService(leagueRepo, tournamentRepo, statRepo, id.NewRandomGenerator())
	return svc, statRepo
}

func TestLeagueService_CreateAndInviteFlow(t *testing.T) {
	svc, _ := newLeagueFixture()

	created, err := svc.Create(t.Context(), CreateLeagueInput{
		UserID:       "user-1",
		TournamentID: testTournamentID,
		Name:         "Office League",
	})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}
	if !created.HasMember("user-1") {
		t.Fatalf("creator must be a member")
	}

	invite, err := svc.Invite(t.Context(), InviteInput{InviterID: "user-1", LeagueID: created.ID, InviteeID: "user-2"})
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	pending, err := svc.ListInvites(t.Context(), "user-2")
	if err != nil {
		t.Fatalf("list invites failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != invite.ID {
		t.Fatalf("unexpected pending invites: %+v", pending)
	}

	joined, err := svc.AcceptInvite(t.Context(), "user-2", invite.ID)
	if err != nil {
		t.Fatalf("accept invite failed: %v", err)
	}
	if !joined.HasMember("user-2") {
		t.Fatalf("invitee missing from league after accept")
	}

	// Accepted invites cannot be replayed.
	if _, err := svc.AcceptInvite(t.Context(), "user-2", invite.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on replay, got %v", err)
	}
}

func TestLeagueService_DeclineInvite(t *testing.T) {
	svc, _ := newLeagueFixture()

	created, err := svc.Create(t.Context(), CreateLeagueInput{UserID: "user-1", TournamentID: testTournamentID, Name: "L"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}
	invite, err := svc.Invite(t.Context(), InviteInput{InviterID: "user-1", LeagueID: created.ID, InviteeID: "user-2"})
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	if err := svc.DeclineInvite(t.Context(), "user-2", invite.ID); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	got, err := svc.Get(t.Context(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("get league failed: %v", err)
	}
	if got.HasMember("user-2") {
		t.Fatalf("declined invitee must not join")
	}
}

func TestLeagueService_InviteRequiresMembership(t *testing.T) {
	svc, _ := newLeagueFixture()

	created, err := svc.Create(t.Context(), CreateLeagueInput{UserID: "user-1", TournamentID: testTournamentID, Name: "L"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}

	_, err = svc.Invite(t.Context(), InviteInput{InviterID: "outsider", LeagueID: created.ID, InviteeID: "user-2"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLeagueService_AcceptInvite_WrongInvitee(t *testing.T) {
	svc, _ := newLeagueFixture()

	created, err := svc.Create(t.Context(), CreateLeagueInput{UserID: "user-1", TournamentID: testTournamentID, Name: "L"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}
	invite, err := svc.Invite(t.Context(), InviteInput{InviterID: "user-1", LeagueID: created.ID, InviteeID: "user-2"})
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}

	if _, err := svc.AcceptInvite(t.Context(), "user-3", invite.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLeagueService_Leaderboard_LeagueLocalRanks(t *testing.T) {
	svc, statRepo := newLeagueFixture()

	created, err := svc.Create(t.Context(), CreateLeagueInput{UserID: "user-2", TournamentID: testTournamentID, Name: "L"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}
	invite, err := svc.Invite(t.Context(), InviteInput{InviterID: "user-2", LeagueID: created.ID, InviteeID: "user-4"})
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	if _, err := svc.AcceptInvite(t.Context(), "user-4", invite.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// Tournament-wide standings include non-members; the league board must
	// renumber ranks over members only.
	standings := []weeklystat.OverallStanding{
		{TournamentID: testTournamentID, UserID: "user-1", TotalPoints: 300, Rank: 1},
		{TournamentID: testTournamentID, UserID: "user-2", TotalPoints: 200, Rank: 2},
		{TournamentID: testTournamentID, UserID: "user-3", TotalPoints: 150, Rank: 3},
		{TournamentID: testTournamentID, UserID: "user-4", TotalPoints: 100, Rank: 4},
	}
	if err := statRepo.ReplaceOverallStandings(t.Context(), testTournamentID, standings); err != nil {
		t.Fatalf("seed standings: %v", err)
	}

	rows, err := svc.Leaderboard(t.Context(), "user-2", created.ID)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 member rows, got %d", len(rows))
	}
	if rows[0].UserID != "user-2" || rows[0].Rank != 1 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].UserID != "user-4" || rows[1].Rank != 2 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestLeagueService_Leaderboard_NonMemberDenied(t *testing.T) {
	svc, _ := newLeagueFixture()

	created, err := svc.Create(t.Context(), CreateLeagueInput{UserID: "user-1", TournamentID: testTournamentID, Name: "L"})
	if err != nil {
		t.Fatalf("create league failed: %v", err)
	}
	if _, err := svc.Leaderboard(t.Context(), "outsider", created.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
