package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/crickarena/fantasy-cricket/internal/platform/cache"
)

type stubSheetSource struct {
	rows    []SheetPerformanceRow
	holders SheetCapHolders
	err     error

	listCalls int
}

func (s *stubSheetSource) ListPerformanceRows(_ context.Context, week int) ([]SheetPerformanceRow, rawdata.Payload, error) {
	s.listCalls++
	if s.err != nil {
		return nil, rawdata.Payload{}, s.err
	}
	out := make([]SheetPerformanceRow, 0, len(s.rows))
	for _, row := range s.rows {
		if week <= 0 || row.Week == week {
			out = append(out, row)
		}
	}
	return out, rawdata.Payload{Source: "sheetfeed", Ref: "test/Player_Performance"}, nil
}

func (s *stubSheetSource) FetchCapHolders(_ context.Context, week int) (SheetCapHolders, rawdata.Payload, error) {
	if s.err != nil {
		return SheetCapHolders{}, rawdata.Payload{}, s.err
	}
	holders := s.holders
	holders.Week = week
	return holders, rawdata.Payload{Source: "sheetfeed", Ref: "test/Cap_Points"}, nil
}

type sheetSyncFixture struct {
	service  *SheetSyncService
	statRepo *memory.WeeklyStatRepository
	perfRepo *memory.PerformanceRepository
	rawRepo  *memory.RawDataRepository
	sheet    *stubSheetSource
}

func newSheetSyncFixture(sheet *stubSheetSource, snapshots []roster.Snapshot) sheetSyncFixture {
	rosterRepo := memory.NewRosterRepository(snapshots, nil)
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	perfRepo := memory.NewPerformanceRepository(nil)
	playerRepo := memory.NewPlayerRepository(testMasters())
	statRepo := memory.NewWeeklyStatRepository(nil)
	rawRepo := memory.NewRawDataRepository()

	resolver := NewRosterService(rosterRepo, tournamentRepo)
	points := NewPointsService(resolver, rosterRepo, perfRepo, playerRepo, statRepo, cache.NewStore(time.Minute))
	service := NewSheetSyncService(sheet, points, rosterRepo, perfRepo, rawRepo, nil)
	return sheetSyncFixture{service: service, statRepo: statRepo, perfRepo: perfRepo, rawRepo: rawRepo, sheet: sheet}
}

func TestSheetSyncService_SyncWeek_IngestsAndRecomputes(t *testing.T) {
	sheet := &stubSheetSource{rows: []SheetPerformanceRow{
		{Week: 1, MatchID: "m1", PlayerName: "Virat Kohli", TotalPoints: 40},
		{Week: 1, MatchID: "m1", PlayerName: "Rohit Sharma", TotalPoints: 25},
	}}
	fx := newSheetSyncFixture(sheet, []roster.Snapshot{snapshotFor(testUserID, 1, testSquad())})

	result, err := fx.service.SyncWeek(t.Context(), SheetSyncInput{TournamentID: testTournamentID, Week: 1})
	if err != nil {
		t.Fatalf("sync week failed: %v", err)
	}
	if result.RowCount != 2 {
		t.Fatalf("expected 2 ingested rows, got %d", result.RowCount)
	}
	if !result.Done {
		t.Fatalf("single page of one user should be done")
	}
	if result.SuccessCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Users[0].Points != 105 {
		t.Fatalf("expected 40*2+25 = 105 points, got %v", result.Users[0].Points)
	}

	stat, found, err := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))
	if err != nil || !found {
		t.Fatalf("stat missing after sync: found=%v err=%v", found, err)
	}
	if stat.TotalPoints != 105 {
		t.Fatalf("expected 105 points persisted, got %v", stat.TotalPoints)
	}

	raws, err := fx.rawRepo.ListBySource(t.Context(), "sheetfeed", 10)
	if err != nil {
		t.Fatalf("list raw payloads: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("expected raw sheet payload retained, got %d", len(raws))
	}
}

func TestSheetSyncService_SyncWeek_Paginates(t *testing.T) {
	sheet := &stubSheetSource{rows: []SheetPerformanceRow{
		{Week: 1, MatchID: "m1", PlayerName: "Virat Kohli", TotalPoints: 10},
	}}
	snapshots := []roster.Snapshot{
		snapshotFor("user-1", 1, testSquad()),
		snapshotFor("user-2", 1, testSquad()),
		snapshotFor("user-3", 1, testSquad()),
	}
	fx := newSheetSyncFixture(sheet, snapshots)

	first, err := fx.service.SyncWeek(t.Context(), SheetSyncInput{TournamentID: testTournamentID, Week: 1, BatchSize: 2})
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if first.Done {
		t.Fatalf("first page of 2/3 users must not be done")
	}
	if first.NextStartIndex != 2 {
		t.Fatalf("expected next start index 2, got %d", first.NextStartIndex)
	}
	if len(first.Users) != 2 {
		t.Fatalf("expected 2 users on first page, got %d", len(first.Users))
	}

	second, err := fx.service.SyncWeek(t.Context(), SheetSyncInput{
		TournamentID: testTournamentID, Week: 1, StartIndex: first.NextStartIndex, BatchSize: 2,
	})
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if !second.Done {
		t.Fatalf("second page must finish the run")
	}
	if len(second.Users) != 1 {
		t.Fatalf("expected 1 user on second page, got %d", len(second.Users))
	}
	if second.RowCount != 0 {
		t.Fatalf("later pages must not re-ingest the sheet, got %d rows", second.RowCount)
	}
	if sheet.listCalls != 1 {
		t.Fatalf("sheet fetched %d times, want 1", sheet.listCalls)
	}
	if second.Report == nil {
		t.Fatalf("final page should carry the unmatched report")
	}
}

func TestSheetSyncService_SyncWeek_SheetUnavailable(t *testing.T) {
	sheet := &stubSheetSource{err: errors.New("gviz endpoint down")}
	fx := newSheetSyncFixture(sheet, []roster.Snapshot{snapshotFor(testUserID, 1, testSquad())})

	if _, err := fx.service.SyncWeek(t.Context(), SheetSyncInput{TournamentID: testTournamentID, Week: 1}); err == nil {
		t.Fatalf("expected error when sheet fetch fails")
	}
}

func TestSheetSyncService_SyncCapBonuses(t *testing.T) {
	sheet := &stubSheetSource{holders: SheetCapHolders{OrangeCap: []string{"Virat Kohli"}, PurpleCap: []string{"Jasprit Bumrah"}}}
	fx := newSheetSyncFixture(sheet, []roster.Snapshot{snapshotFor(testUserID, 1, testSquad())})

	result, err := fx.service.SyncCapBonuses(t.Context(), testTournamentID, 1)
	if err != nil {
		t.Fatalf("sync cap bonuses failed: %v", err)
	}
	if result.Awarded != 1 {
		t.Fatalf("expected 1 award, got %d", result.Awarded)
	}

	stat, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))
	if stat.CapPoints != 100 {
		t.Fatalf("expected stacked +100 cap points, got %v", stat.CapPoints)
	}

	again, err := fx.service.SyncCapBonuses(t.Context(), testTournamentID, 1)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if again.Awarded != 0 || again.Skipped != 1 {
		t.Fatalf("expected idempotent skip, got %+v", again)
	}
}
