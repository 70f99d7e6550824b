package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	"github.com/crickarena/fantasy-cricket/internal/domain/player"
	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
	"github.com/crickarena/fantasy-cricket/internal/platform/cache"
	"github.com/crickarena/fantasy-cricket/internal/platform/namematch"
)

const (
	captainMultiplier     = 2.0
	viceCaptainMultiplier = 1.5
	capBonusPoints        = 50.0

	unmatchedSuggestionLimit = 3
	rankWriteWorkers         = 8
)

// RowOutcome records how one performance row fared against the rosters of a
// week: matched by at least one roster, or unmatched with a reason and fuzzy
// suggestions for manual alias review.
type RowOutcome struct {
	MatchID     string
	PlayerName  string
	Matched     bool
	Reason      string
	Suggestions []namematch.Suggestion
}

// UnmatchedReport summarizes a week recompute for operators.
type UnmatchedReport struct {
	TournamentID string
	Week         int
	TotalRows    int
	MatchedRows  int
	Outcomes     []RowOutcome
}

// WeekRecomputeResult is the outcome of recomputing a full tournament week.
type WeekRecomputeResult struct {
	Users  int
	Report UnmatchedReport
}

// CapBonusResult counts the cap bonus writes for one week.
type CapBonusResult struct {
	Awarded int
	Skipped int
}

type PointsService struct {
	resolver        *RosterService
	rosterRepo      roster.Repository
	performanceRepo performance.Repository
	playerRepo      player.Repository
	statRepo        weeklystat.Repository
	leaderboards    *cache.Store
	now             func() time.Time
}

func NewPointsService(
	resolver *RosterService,
	rosterRepo roster.Repository,
	performanceRepo performance.Repository,
	playerRepo player.Repository,
	statRepo weeklystat.Repository,
	leaderboards *cache.Store,
) *PointsService {
	return &PointsService{
		resolver:        resolver,
		rosterRepo:      rosterRepo,
		performanceRepo: performanceRepo,
		playerRepo:      playerRepo,
		statRepo:        statRepo,
		leaderboards:    leaderboards,
		now:             time.Now,
	}
}

// RecomputeWeek rebuilds every user's weekly stat for a tournament week from
// the stored performance rows. The write is a full overwrite, so re-running
// it against unchanged rows is a no-op; an already awarded cap bonus is
// carried over instead of being lost to the overwrite.
func (s *PointsService) RecomputeWeek(ctx context.Context, tournamentID string, week int) (WeekRecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RecomputeWeek")
	defer span.End()

	if tournamentID == "" {
		return WeekRecomputeResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return WeekRecomputeResult{}, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, week)
	}

	rows, err := s.performanceRepo.ListByTournamentWeek(ctx, tournamentID, week)
	if err != nil {
		return WeekRecomputeResult{}, fmt.Errorf("list performance rows: %w", err)
	}
	matches := performance.GroupByMatch(rows)

	masterIndex, err := s.buildMasterIndex(ctx)
	if err != nil {
		return WeekRecomputeResult{}, err
	}

	userIDs, err := s.rosterRepo.ListUserIDs(ctx, tournamentID)
	if err != nil {
		return WeekRecomputeResult{}, fmt.Errorf("list tournament users: %w", err)
	}

	matchedRows := make(map[string]struct{}, len(rows))
	for _, userID := range userIDs {
		resolved, err := s.resolver.ResolveForWeek(ctx, userID, tournamentID, week)
		if err != nil {
			return WeekRecomputeResult{}, fmt.Errorf("resolve roster for user %s: %w", userID, err)
		}
		if err := s.recomputeUserStat(ctx, resolved, matches, masterIndex, matchedRows); err != nil {
			return WeekRecomputeResult{}, err
		}
	}

	s.invalidateLeaderboards(ctx, tournamentID)

	report := buildUnmatchedReport(tournamentID, week, rows, matchedRows, masterIndex)
	return WeekRecomputeResult{Users: len(userIDs), Report: report}, nil
}

// RecomputeUserWeek rebuilds a single user's weekly stat.
func (s *PointsService) RecomputeUserWeek(ctx context.Context, userID, tournamentID string, week int) (weeklystat.Stat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RecomputeUserWeek")
	defer span.End()

	rows, err := s.performanceRepo.ListByTournamentWeek(ctx, tournamentID, week)
	if err != nil {
		return weeklystat.Stat{}, fmt.Errorf("list performance rows: %w", err)
	}
	matches := performance.GroupByMatch(rows)

	masterIndex, err := s.buildMasterIndex(ctx)
	if err != nil {
		return weeklystat.Stat{}, err
	}

	resolved, err := s.resolver.ResolveForWeek(ctx, userID, tournamentID, week)
	if err != nil {
		return weeklystat.Stat{}, fmt.Errorf("resolve roster for user %s: %w", userID, err)
	}
	if err := s.recomputeUserStat(ctx, resolved, matches, masterIndex, nil); err != nil {
		return weeklystat.Stat{}, err
	}

	s.invalidateLeaderboards(ctx, tournamentID)

	key, err := weeklystat.NewKey(userID, tournamentID, week)
	if err != nil {
		return weeklystat.Stat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	stat, _, err := s.statRepo.GetByKey(ctx, key)
	if err != nil {
		return weeklystat.Stat{}, fmt.Errorf("get weekly stat: %w", err)
	}
	return stat, nil
}

func (s *PointsService) recomputeUserStat(
	ctx context.Context,
	resolved ResolvedRoster,
	matches []performance.Match,
	masterIndex *namematch.Index,
	matchedRows map[string]struct{},
) error {
	key, err := weeklystat.NewKey(resolved.UserID, resolved.TournamentID, resolved.Week)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lookup := newRosterLookup(resolved.Players, masterIndex)

	stat := weeklystat.Stat{
		Key:          key,
		Breakdown:    []weeklystat.BreakdownEntry{},
		CalculatedAt: s.now().UTC(),
	}
	for _, match := range matches {
		stat.ProcessedMatchIDs = append(stat.ProcessedMatchIDs, match.MatchID)
		for _, row := range match.Rows {
			p, ok := lookup.find(row.PlayerName)
			if !ok {
				continue
			}
			if matchedRows != nil {
				matchedRows[rowKey(row)] = struct{}{}
			}

			multiplier := 1.0
			switch {
			case p.IsCaptain:
				multiplier = captainMultiplier
			case p.IsViceCaptain:
				multiplier = viceCaptainMultiplier
			}
			final := row.TotalPoints * multiplier

			stat.TotalPoints += final
			stat.Breakdown = append(stat.Breakdown, weeklystat.BreakdownEntry{
				PlayerID:    p.PlayerID,
				PlayerName:  p.Name,
				MatchID:     match.MatchID,
				BasePoints:  row.TotalPoints,
				Multiplier:  multiplier,
				FinalPoints: final,
			})
		}
	}

	existing, found, err := s.statRepo.GetByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("get weekly stat %s: %w", key, err)
	}
	if found && existing.CapPointsAwarded {
		stat.CapPoints = existing.CapPoints
		stat.CapPointsAwarded = true
		stat.TotalPoints += existing.CapPoints
	}
	if found {
		stat.Rank = existing.Rank
	}

	if err := s.statRepo.Upsert(ctx, stat); err != nil {
		return fmt.Errorf("upsert weekly stat %s: %w", key, err)
	}
	return nil
}

// RecomputeRanks reorders a week's stats by total points descending and
// writes sequential ranks 1..N. Ties keep the list's stable order, so equal
// totals still get distinct consecutive ranks.
func (s *PointsService) RecomputeRanks(ctx context.Context, tournamentID string, week int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RecomputeRanks")
	defer span.End()

	if tournamentID == "" {
		return 0, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return 0, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, week)
	}

	stats, err := s.statRepo.ListByTournamentWeek(ctx, tournamentID, week)
	if err != nil {
		return 0, fmt.Errorf("list weekly stats: %w", err)
	}

	writers := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(rankWriteWorkers)
	for i, stat := range stats {
		rank := i + 1
		if stat.Rank == rank {
			continue
		}
		key := stat.Key
		writers.Go(func(ctx context.Context) error {
			if err := s.statRepo.UpdateRank(ctx, key, rank); err != nil {
				return fmt.Errorf("update rank for %s: %w", key, err)
			}
			return nil
		})
	}
	if err := writers.Wait(); err != nil {
		return 0, err
	}

	s.invalidateLeaderboards(ctx, tournamentID)
	return len(stats), nil
}

// RecomputeOverall rebuilds the cross-week standings for a tournament.
func (s *PointsService) RecomputeOverall(ctx context.Context, tournamentID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RecomputeOverall")
	defer span.End()

	if tournamentID == "" {
		return 0, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	standings, err := s.statRepo.ListTotalsByTournament(ctx, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("list tournament totals: %w", err)
	}

	now := s.now().UTC()
	for i := range standings {
		standings[i].Rank = i + 1
		standings[i].CalculatedAt = now
	}
	if err := s.statRepo.ReplaceOverallStandings(ctx, tournamentID, standings); err != nil {
		return 0, fmt.Errorf("replace overall standings: %w", err)
	}

	s.invalidateLeaderboards(ctx, tournamentID)
	return len(standings), nil
}

// AwardCapBonuses grants +50 points per cap held for every user whose
// resolved roster contains an orange or purple cap holder. Both caps stack.
// The repository write is conditional on the bonus not having been awarded
// yet, so re-running the job cannot double-grant.
func (s *PointsService) AwardCapBonuses(ctx context.Context, tournamentID string, holders SheetCapHolders) (CapBonusResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.AwardCapBonuses")
	defer span.End()

	if tournamentID == "" {
		return CapBonusResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if holders.Week <= 0 {
		return CapBonusResult{}, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, holders.Week)
	}

	holderNames := append(append([]string{}, holders.OrangeCap...), holders.PurpleCap...)
	if len(holderNames) == 0 {
		return CapBonusResult{}, nil
	}

	masterIndex, err := s.buildMasterIndex(ctx)
	if err != nil {
		return CapBonusResult{}, err
	}

	userIDs, err := s.rosterRepo.ListUserIDs(ctx, tournamentID)
	if err != nil {
		return CapBonusResult{}, fmt.Errorf("list tournament users: %w", err)
	}

	result := CapBonusResult{}
	for _, userID := range userIDs {
		resolved, err := s.resolver.ResolveForWeek(ctx, userID, tournamentID, holders.Week)
		if err != nil {
			return result, fmt.Errorf("resolve roster for user %s: %w", userID, err)
		}

		lookup := newRosterLookup(resolved.Players, masterIndex)
		caps := 0
		for _, name := range holderNames {
			if _, ok := lookup.find(name); ok {
				caps++
			}
		}
		if caps == 0 {
			continue
		}

		key, err := weeklystat.NewKey(userID, tournamentID, holders.Week)
		if err != nil {
			return result, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		awarded, err := s.statRepo.AwardCapBonus(ctx, key, capBonusPoints*float64(caps))
		if err != nil {
			return result, fmt.Errorf("award cap bonus for %s: %w", key, err)
		}
		if awarded {
			result.Awarded++
		} else {
			result.Skipped++
		}
	}

	if result.Awarded > 0 {
		s.invalidateLeaderboards(ctx, tournamentID)
	}
	return result, nil
}

// WeeklyLeaderboard returns a week's stats ordered by total points, served
// from the leaderboard cache.
func (s *PointsService) WeeklyLeaderboard(ctx context.Context, tournamentID string, week int) ([]weeklystat.Stat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.WeeklyLeaderboard")
	defer span.End()

	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return nil, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, week)
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:week:%d", tournamentID, week)
	value, err := s.leaderboards.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (any, error) {
		stats, err := s.statRepo.ListByTournamentWeek(ctx, tournamentID, week)
		if err != nil {
			return nil, fmt.Errorf("list weekly stats: %w", err)
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	stats, ok := value.([]weeklystat.Stat)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache value for %s", cacheKey)
	}
	return stats, nil
}

// OverallLeaderboard returns the tournament's cross-week standings, served
// from the leaderboard cache.
func (s *PointsService) OverallLeaderboard(ctx context.Context, tournamentID string) ([]weeklystat.OverallStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.OverallLeaderboard")
	defer span.End()

	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:overall", tournamentID)
	value, err := s.leaderboards.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (any, error) {
		standings, err := s.statRepo.ListOverallStandings(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("list overall standings: %w", err)
		}
		return standings, nil
	})
	if err != nil {
		return nil, err
	}
	standings, ok := value.([]weeklystat.OverallStanding)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache value for %s", cacheKey)
	}
	return standings, nil
}

// UserWeeklyStat returns one user's stat for a week.
func (s *PointsService) UserWeeklyStat(ctx context.Context, userID, tournamentID string, week int) (weeklystat.Stat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.UserWeeklyStat")
	defer span.End()

	key, err := weeklystat.NewKey(userID, tournamentID, week)
	if err != nil {
		return weeklystat.Stat{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	stat, found, err := s.statRepo.GetByKey(ctx, key)
	if err != nil {
		return weeklystat.Stat{}, fmt.Errorf("get weekly stat: %w", err)
	}
	if !found {
		return weeklystat.Stat{}, fmt.Errorf("%w: no weekly stat for %s", ErrNotFound, key)
	}
	return stat, nil
}

func (s *PointsService) buildMasterIndex(ctx context.Context) (*namematch.Index, error) {
	masters, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list player masters: %w", err)
	}

	index := namematch.NewIndex()
	for _, m := range masters {
		index.Add(m.ID, m.Name)
		for _, alt := range m.AlternateNames {
			index.Add(m.ID, alt)
		}
	}
	return index, nil
}

func (s *PointsService) invalidateLeaderboards(ctx context.Context, tournamentID string) {
	if s.leaderboards == nil {
		return
	}
	s.leaderboards.DeletePrefix(ctx, "leaderboard:"+tournamentID)
}

// rosterLookup resolves a source spelling onto a roster player, first
// through the master alias index, then by direct case-insensitive name.
type rosterLookup struct {
	byID   map[string]roster.Player
	byName map[string]roster.Player
	index  *namematch.Index
}

func newRosterLookup(players []roster.Player, index *namematch.Index) rosterLookup {
	lookup := rosterLookup{
		byID:   make(map[string]roster.Player, len(players)),
		byName: make(map[string]roster.Player, len(players)),
		index:  index,
	}
	for _, p := range players {
		lookup.byID[p.PlayerID] = p
		lookup.byName[namematch.Normalize(p.Name)] = p
	}
	return lookup
}

func (l rosterLookup) find(name string) (roster.Player, bool) {
	if l.index != nil {
		if id, ok := l.index.Lookup(name); ok {
			if p, ok := l.byID[id]; ok {
				return p, true
			}
		}
	}
	p, ok := l.byName[namematch.Normalize(name)]
	return p, ok
}

func rowKey(row performance.Row) string {
	return row.MatchID + "|" + namematch.Normalize(row.PlayerName)
}

func buildUnmatchedReport(
	tournamentID string,
	week int,
	rows []performance.Row,
	matchedRows map[string]struct{},
	masterIndex *namematch.Index,
) UnmatchedReport {
	report := UnmatchedReport{
		TournamentID: tournamentID,
		Week:         week,
		TotalRows:    len(rows),
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		outcome := RowOutcome{MatchID: row.MatchID, PlayerName: row.PlayerName}
		if _, ok := matchedRows[key]; ok {
			outcome.Matched = true
			report.MatchedRows++
		} else {
			outcome.Reason = fmt.Sprintf("no roster contains %q", row.PlayerName)
			outcome.Suggestions = masterIndex.Suggest(row.PlayerName, unmatchedSuggestionLimit)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report
}
