package usecase

import (
	"errors"
	"testing"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/memory"
)

func TestTournamentService_ActivateWindow_SingleActive(t *testing.T) {
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	perfRepo := memory.NewPerformanceRepository(nil)
	svc := NewTournamentService(tournamentRepo, perfRepo)

	// Week 2 is active in the fixture; activating week 3 must close it.
	window, err := svc.ActivateWindow(t.Context(), testTournamentID, 3)
	if err != nil {
		t.Fatalf("activate window failed: %v", err)
	}
	if window.Week != 3 || window.Status != tournament.StatusActive {
		t.Fatalf("unexpected activated window: %+v", window)
	}

	got, err := svc.Get(t.Context(), testTournamentID)
	if err != nil {
		t.Fatalf("get tournament failed: %v", err)
	}
	active := 0
	for _, w := range got.Windows {
		if w.Status == tournament.StatusActive {
			active++
			if w.Week != 3 {
				t.Fatalf("wrong window active: week %d", w.Week)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active window, got %d", active)
	}
}

func TestTournamentService_ActivateWindow_UnknownWeek(t *testing.T) {
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	svc := NewTournamentService(tournamentRepo, memory.NewPerformanceRepository(nil))

	if _, err := svc.ActivateWindow(t.Context(), testTournamentID, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTournamentService_CloseWindow(t *testing.T) {
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	svc := NewTournamentService(tournamentRepo, memory.NewPerformanceRepository(nil))

	if err := svc.CloseWindow(t.Context(), testTournamentID); err != nil {
		t.Fatalf("close window failed: %v", err)
	}

	got, err := svc.Get(t.Context(), testTournamentID)
	if err != nil {
		t.Fatalf("get tournament failed: %v", err)
	}
	if _, active := got.ActiveWindow(); active {
		t.Fatalf("window still active after close")
	}
}

func TestTournamentService_ListPerformances_WeekFilter(t *testing.T) {
	rows := []performance.Row{
		{TournamentID: testTournamentID, Week: 1, MatchID: "m1", PlayerName: "Virat Kohli", TotalPoints: 40},
		{TournamentID: testTournamentID, Week: 2, MatchID: "m5", PlayerName: "Rohit Sharma", TotalPoints: 30},
	}
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	svc := NewTournamentService(tournamentRepo, memory.NewPerformanceRepository(rows))

	all, err := svc.ListPerformances(t.Context(), testTournamentID, 0)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}

	week2, err := svc.ListPerformances(t.Context(), testTournamentID, 2)
	if err != nil {
		t.Fatalf("list week failed: %v", err)
	}
	if len(week2) != 1 || week2[0].MatchID != "m5" {
		t.Fatalf("unexpected week filter result: %+v", week2)
	}
}

func TestTournamentService_Upsert_Invalid(t *testing.T) {
	tournamentRepo := memory.NewTournamentRepository(nil)
	svc := NewTournamentService(tournamentRepo, memory.NewPerformanceRepository(nil))

	bad := testTournament()
	bad.Status = "paused"
	if err := svc.Upsert(t.Context(), bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
