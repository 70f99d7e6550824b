package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
	"github.com/crickarena/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/crickarena/fantasy-cricket/internal/platform/cache"
)

type pointsFixture struct {
	service  *PointsService
	statRepo *memory.WeeklyStatRepository
	perfRepo *memory.PerformanceRepository
}

func newPointsFixture(snapshots []roster.Snapshot, currents []roster.Current, rows []performance.Row) pointsFixture {
	rosterRepo := memory.NewRosterRepository(snapshots, currents)
	tournamentRepo := memory.NewTournamentRepository([]tournament.Tournament{testTournament()})
	perfRepo := memory.NewPerformanceRepository(rows)
	playerRepo := memory.NewPlayerRepository(testMasters())
	statRepo := memory.NewWeeklyStatRepository(nil)

	resolver := NewRosterService(rosterRepo, tournamentRepo)
	service := NewPointsService(resolver, rosterRepo, perfRepo, playerRepo, statRepo, cache.NewStore(time.Minute))
	return pointsFixture{service: service, statRepo: statRepo, perfRepo: perfRepo}
}

func perfRow(week int, matchID, playerName string, points float64) performance.Row {
	return performance.Row{
		TournamentID: testTournamentID,
		Week:         week,
		MatchID:      matchID,
		PlayerName:   playerName,
		TotalPoints:  points,
	}
}

func weekKey(t *testing.T, userID string, week int) weeklystat.Key {
	t.Helper()
	key, err := weeklystat.NewKey(userID, testTournamentID, week)
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	return key
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPointsService_RecomputeWeek_CaptainDoubles(t *testing.T) {
	// Worked example: the captain scores 40 base points in one match and the
	// weekly total credits 80.
	fx := newPointsFixture(
		[]roster.Snapshot{snapshotFor(testUserID, 1, testSquad())},
		nil,
		[]performance.Row{perfRow(1, "m1", "Virat Kohli", 40)},
	)

	result, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if result.Users != 1 {
		t.Fatalf("expected 1 user, got %d", result.Users)
	}

	stat, found, err := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))
	if err != nil || !found {
		t.Fatalf("stat missing: found=%v err=%v", found, err)
	}
	if !almostEqual(stat.TotalPoints, 80) {
		t.Fatalf("expected 80 points, got %v", stat.TotalPoints)
	}
	if len(stat.Breakdown) != 1 {
		t.Fatalf("expected 1 breakdown entry, got %d", len(stat.Breakdown))
	}
	entry := stat.Breakdown[0]
	if !almostEqual(entry.BasePoints, 40) || !almostEqual(entry.Multiplier, 2) || !almostEqual(entry.FinalPoints, 80) {
		t.Fatalf("unexpected breakdown entry: %+v", entry)
	}
}

func TestPointsService_RecomputeWeek_MultipliersPerMatch(t *testing.T) {
	// Captain, vice and a regular player across two matches: the multiplier
	// applies to every match the player appears in.
	fx := newPointsFixture(
		[]roster.Snapshot{snapshotFor(testUserID, 1, testSquad())},
		nil,
		[]performance.Row{
			perfRow(1, "m1", "Virat Kohli", 30),
			perfRow(1, "m2", "Virat Kohli", 10),
			perfRow(1, "m1", "Jasprit Bumrah", 20),
			perfRow(1, "m1", "Rohit Sharma", 50),
		},
	)

	if _, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	stat, _, err := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))
	if err != nil {
		t.Fatalf("get stat: %v", err)
	}
	// 30*2 + 10*2 + 20*1.5 + 50*1 = 160
	if !almostEqual(stat.TotalPoints, 160) {
		t.Fatalf("expected 160 points, got %v", stat.TotalPoints)
	}
	if len(stat.ProcessedMatchIDs) != 2 {
		t.Fatalf("expected 2 processed matches, got %v", stat.ProcessedMatchIDs)
	}
}

func TestPointsService_RecomputeWeek_Idempotent(t *testing.T) {
	fx := newPointsFixture(
		[]roster.Snapshot{snapshotFor(testUserID, 1, testSquad())},
		nil,
		[]performance.Row{
			perfRow(1, "m1", "Virat Kohli", 30),
			perfRow(1, "m1", "Rohit Sharma", 25),
		},
	)

	if _, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1); err != nil {
		t.Fatalf("first recompute failed: %v", err)
	}
	first, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))

	if _, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1); err != nil {
		t.Fatalf("second recompute failed: %v", err)
	}
	second, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))

	if !almostEqual(first.TotalPoints, second.TotalPoints) {
		t.Fatalf("recompute is not idempotent: %v vs %v", first.TotalPoints, second.TotalPoints)
	}
	if len(first.Breakdown) != len(second.Breakdown) {
		t.Fatalf("breakdown changed across recomputes: %d vs %d", len(first.Breakdown), len(second.Breakdown))
	}
}

func TestPointsService_RecomputeWeek_MatchesAliases(t *testing.T) {
	// The sheet spells Kohli as "V Kohli"; the master alias resolves it onto
	// the rostered player, case-insensitively.
	fx := newPointsFixture(
		[]roster.Snapshot{snapshotFor(testUserID, 1, testSquad())},
		nil,
		[]performance.Row{
			perfRow(1, "m1", "v kohli", 40),
			perfRow(1, "m1", "ROHIT SHARMA", 10),
		},
	)

	result, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if result.Report.MatchedRows != 2 {
		t.Fatalf("expected 2 matched rows, got %d", result.Report.MatchedRows)
	}

	stat, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))
	if !almostEqual(stat.TotalPoints, 90) {
		t.Fatalf("expected 90 points, got %v", stat.TotalPoints)
	}
}

func TestPointsService_RecomputeWeek_ReportsUnmatchedWithSuggestions(t *testing.T) {
	fx := newPointsFixture(
		[]roster.Snapshot{snapshotFor(testUserID, 1, testSquad())},
		nil,
		[]performance.Row{
			perfRow(1, "m1", "Virat Kohli", 40),
			perfRow(1, "m1", "Virat Kohl", 15),
		},
	)

	result, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	var unmatched *RowOutcome
	for i := range result.Report.Outcomes {
		if !result.Report.Outcomes[i].Matched {
			unmatched = &result.Report.Outcomes[i]
		}
	}
	if unmatched == nil {
		t.Fatalf("expected an unmatched outcome, report: %+v", result.Report)
	}
	if unmatched.PlayerName != "Virat Kohl" {
		t.Fatalf("unexpected unmatched name: %s", unmatched.PlayerName)
	}
	if len(unmatched.Suggestions) == 0 {
		t.Fatalf("expected fuzzy suggestions for %q", unmatched.PlayerName)
	}
	if unmatched.Suggestions[0].PlayerID != "pl-kohli" {
		t.Fatalf("expected pl-kohli as top suggestion, got %s", unmatched.Suggestions[0].PlayerID)
	}
}

func TestPointsService_RecomputeWeek_PreservesAwardedCapBonus(t *testing.T) {
	fx := newPointsFixture(
		[]roster.Snapshot{snapshotFor(testUserID, 1, testSquad())},
		nil,
		[]performance.Row{perfRow(1, "m1", "Rohit Sharma", 30)},
	)

	if _, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	holders := SheetCapHolders{Week: 1, OrangeCap: []string{"Virat Kohli"}}
	if _, err := fx.service.AwardCapBonuses(t.Context(), testTournamentID, holders); err != nil {
		t.Fatalf("award cap bonus failed: %v", err)
	}

	// A later recompute must not wipe the bonus.
	if _, err := fx.service.RecomputeWeek(t.Context(), testTournamentID, 1); err != nil {
		t.Fatalf("second recompute failed: %v", err)
	}

	stat, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))
	if !stat.CapPointsAwarded {
		t.Fatalf("cap bonus flag lost on recompute")
	}
	if !almostEqual(stat.TotalPoints, 80) {
		t.Fatalf("expected 30 base + 50 bonus = 80, got %v", stat.TotalPoints)
	}
}

func TestPointsService_AwardCapBonuses_Stacking(t *testing.T) {
	// user-1 holds both cap holders, user-2 only one, user-3 none.
	squadWithoutKohli := testSquad()
	squadWithoutKohli[0] = roster.Player{PlayerID: "pl-gaikwad", Name: "Ruturaj Gaikwad", Role: roster.RoleBatter, IsCaptain: true}

	thirdSquad := make([]roster.Player, len(testSquad()))
	copy(thirdSquad, testSquad())
	thirdSquad[0] = roster.Player{PlayerID: "pl-a", Name: "Player A", Role: roster.RoleBatter, IsCaptain: true}
	thirdSquad[1] = roster.Player{PlayerID: "pl-b", Name: "Player B", Role: roster.RoleBowler, IsViceCaptain: true}

	fx := newPointsFixture(
		[]roster.Snapshot{
			snapshotFor("user-1", 1, testSquad()),
			snapshotFor("user-2", 1, squadWithoutKohli),
			snapshotFor("user-3", 1, thirdSquad),
		},
		nil,
		nil,
	)

	holders := SheetCapHolders{Week: 1, OrangeCap: []string{"Virat Kohli"}, PurpleCap: []string{"Jasprit Bumrah"}}
	result, err := fx.service.AwardCapBonuses(t.Context(), testTournamentID, holders)
	if err != nil {
		t.Fatalf("award cap bonus failed: %v", err)
	}
	if result.Awarded != 2 {
		t.Fatalf("expected 2 awards, got %d", result.Awarded)
	}

	both, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, "user-1", 1))
	if !almostEqual(both.CapPoints, 100) {
		t.Fatalf("expected stacked +100 for both caps, got %v", both.CapPoints)
	}
	one, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, "user-2", 1))
	if !almostEqual(one.CapPoints, 50) {
		t.Fatalf("expected +50 for one cap, got %v", one.CapPoints)
	}
	_, found, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, "user-3", 1))
	if found {
		t.Fatalf("user without holders must not get a stat row")
	}
}

func TestPointsService_AwardCapBonuses_SecondRunSkips(t *testing.T) {
	fx := newPointsFixture(
		[]roster.Snapshot{snapshotFor(testUserID, 1, testSquad())},
		nil,
		nil,
	)

	holders := SheetCapHolders{Week: 1, OrangeCap: []string{"Virat Kohli"}}
	first, err := fx.service.AwardCapBonuses(t.Context(), testTournamentID, holders)
	if err != nil {
		t.Fatalf("first award failed: %v", err)
	}
	if first.Awarded != 1 || first.Skipped != 0 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := fx.service.AwardCapBonuses(t.Context(), testTournamentID, holders)
	if err != nil {
		t.Fatalf("second award failed: %v", err)
	}
	if second.Awarded != 0 || second.Skipped != 1 {
		t.Fatalf("expected skip on second run, got %+v", second)
	}

	stat, _, _ := fx.statRepo.GetByKey(t.Context(), weekKey(t, testUserID, 1))
	if !almostEqual(stat.TotalPoints, 50) {
		t.Fatalf("bonus double-granted: %v", stat.TotalPoints)
	}
}

func TestPointsService_RecomputeRanks_SequentialNoGaps(t *testing.T) {
	fx := newPointsFixture(nil, nil, nil)

	totals := map[string]float64{"user-a": 120, "user-b": 95, "user-c": 95, "user-d": 40}
	for userID, points := range totals {
		stat := weeklystat.Stat{Key: weekKey(t, userID, 1), TotalPoints: points}
		if err := fx.statRepo.Upsert(t.Context(), stat); err != nil {
			t.Fatalf("seed stat: %v", err)
		}
	}

	count, err := fx.service.RecomputeRanks(t.Context(), testTournamentID, 1)
	if err != nil {
		t.Fatalf("recompute ranks failed: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 ranked users, got %d", count)
	}

	stats, err := fx.statRepo.ListByTournamentWeek(t.Context(), testTournamentID, 1)
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	for i, stat := range stats {
		if stat.Rank != i+1 {
			t.Fatalf("expected rank %d at position %d, got %d", i+1, i, stat.Rank)
		}
	}
	// Tied users keep their stable order: user-b before user-c.
	if stats[1].Key.UserID != "user-b" || stats[2].Key.UserID != "user-c" {
		t.Fatalf("tie order broken: %s then %s", stats[1].Key.UserID, stats[2].Key.UserID)
	}
}

func TestPointsService_RecomputeOverall_SumsWeeks(t *testing.T) {
	fx := newPointsFixture(nil, nil, nil)

	seed := []weeklystat.Stat{
		{Key: weekKey(t, "user-a", 1), TotalPoints: 60},
		{Key: weekKey(t, "user-a", 2), TotalPoints: 50},
		{Key: weekKey(t, "user-b", 1), TotalPoints: 90},
	}
	for _, stat := range seed {
		if err := fx.statRepo.Upsert(t.Context(), stat); err != nil {
			t.Fatalf("seed stat: %v", err)
		}
	}

	if _, err := fx.service.RecomputeOverall(t.Context(), testTournamentID); err != nil {
		t.Fatalf("recompute overall failed: %v", err)
	}

	standings, err := fx.service.OverallLeaderboard(t.Context(), testTournamentID)
	if err != nil {
		t.Fatalf("overall leaderboard failed: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(standings))
	}
	if standings[0].UserID != "user-a" || !almostEqual(standings[0].TotalPoints, 110) || standings[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", standings[0])
	}
	if standings[1].UserID != "user-b" || standings[1].Rank != 2 {
		t.Fatalf("unexpected runner-up: %+v", standings[1])
	}
}
