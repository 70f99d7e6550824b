package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/memory"
)

type stubMatchProvider struct {
	matches []ExternalMatch
	cards   map[string]ExternalScorecard
	err     error
}

func (s *stubMatchProvider) FetchSeriesMatches(_ context.Context, _ string) ([]ExternalMatch, []rawdata.Payload, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.matches, []rawdata.Payload{{Source: "cricketdata", Ref: "series"}}, nil
}

func (s *stubMatchProvider) FetchScorecard(_ context.Context, matchRef string) (ExternalScorecard, rawdata.Payload, error) {
	card, ok := s.cards[matchRef]
	if !ok {
		return ExternalScorecard{}, rawdata.Payload{}, errors.New("unknown match ref")
	}
	return card, rawdata.Payload{Source: "cricketdata", Ref: matchRef}, nil
}

func TestMatchSyncService_RefreshTournament_RollsUpCareerStats(t *testing.T) {
	provider := &stubMatchProvider{
		matches: []ExternalMatch{
			{Ref: "m1", Name: "MI vs CSK", Ended: true},
			{Ref: "m2", Name: "RCB vs KKR", Ended: true},
			{Ref: "m3", Name: "GT vs LSG", Ended: false},
		},
		cards: map[string]ExternalScorecard{
			"m1": {MatchRef: "m1", Lines: []ExternalPlayerLine{
				{Name: "Virat Kohli", Runs: 50, Fours: 4, Sixes: 2, Batted: true},
				{Name: "Jasprit Bumrah", Wickets: 3, OversBowled: 4, RunsConceded: 21, Bowled: true},
			}},
			"m2": {MatchRef: "m2", Lines: []ExternalPlayerLine{
				{Name: "V Kohli", Runs: 30, Fours: 3, Batted: true},
				{Name: "Unknown Debutant", Runs: 12, Batted: true},
			}},
		},
	}

	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	playerRepo := memory.NewPlayerRepository(testMasters())
	rawRepo := memory.NewRawDataRepository()
	svc := NewMatchSyncService(provider, tournamentRepo, playerRepo, rawRepo, nil)

	result, err := svc.RefreshTournament(t.Context(), testTournamentID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.Matches != 3 || result.EndedMatches != 2 || result.Scorecards != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.PlayersUpdated != 2 {
		t.Fatalf("expected 2 players updated, got %d", result.PlayersUpdated)
	}
	if len(result.UnknownNames) != 1 || result.UnknownNames[0] != "Unknown Debutant" {
		t.Fatalf("unexpected unknown names: %v", result.UnknownNames)
	}

	// Kohli appears in both scorecards, once under an alias.
	kohli, found, err := playerRepo.GetByID(t.Context(), "pl-kohli")
	if err != nil || !found {
		t.Fatalf("kohli missing: found=%v err=%v", found, err)
	}
	if kohli.MatchesPlayed != 2 {
		t.Fatalf("expected 2 matches, got %d", kohli.MatchesPlayed)
	}
	if kohli.TotalRuns != 80 {
		t.Fatalf("expected 80 runs, got %d", kohli.TotalRuns)
	}
	// 80 runs + 7 fours + 2 sixes = 80 + 7 + 4 = 91
	if kohli.CareerPoints != 91 {
		t.Fatalf("expected 91 career points, got %v", kohli.CareerPoints)
	}

	bumrah, _, _ := playerRepo.GetByID(t.Context(), "pl-bumrah")
	if bumrah.TotalWickets != 3 {
		t.Fatalf("expected 3 wickets, got %d", bumrah.TotalWickets)
	}
	if bumrah.CareerPoints != 75 {
		t.Fatalf("expected 75 career points, got %v", bumrah.CareerPoints)
	}

	raws, err := rawRepo.ListBySource(t.Context(), "cricketdata", 10)
	if err != nil {
		t.Fatalf("list raw payloads: %v", err)
	}
	if len(raws) != 3 {
		t.Fatalf("expected series + 2 scorecard payloads, got %d", len(raws))
	}
}

func TestMatchSyncService_RefreshTournament_NoSeriesRef(t *testing.T) {
	noRef := testTournament()
	noRef.ExternalSeriesRef = ""
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{noRef})
	svc := NewMatchSyncService(&stubMatchProvider{}, tournamentRepo, memory.NewPlayerRepository(nil), nil, nil)

	if _, err := svc.RefreshTournament(t.Context(), testTournamentID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatchSyncService_RefreshTournament_UnknownTournament(t *testing.T) {
	svc := NewMatchSyncService(&stubMatchProvider{}, memory.NewTournamentRepository(nil), memory.NewPlayerRepository(nil), nil, nil)

	if _, err := svc.RefreshTournament(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScoreLine(t *testing.T) {
	line := ExternalPlayerLine{Runs: 40, Fours: 4, Sixes: 1, Wickets: 2, Catches: 1, Stumpings: 1}
	// 40 + 4 + 2 + 50 + 8 + 12 = 116
	if got := scoreLine(line); got != 116 {
		t.Fatalf("expected 116, got %v", got)
	}
}
