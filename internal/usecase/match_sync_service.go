package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/crickarena/fantasy-cricket/internal/domain/player"
	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
	"github.com/crickarena/fantasy-cricket/internal/platform/namematch"
)

const scorecardFetchWorkers = 4

// Scorecard points per event, applied when deriving career points from raw
// scorecards.
const (
	pointsPerRun      = 1.0
	pointsPerFour     = 1.0
	pointsPerSix      = 2.0
	pointsPerWicket   = 25.0
	pointsPerCatch    = 8.0
	pointsPerStumping = 12.0
)

type MatchSyncResult struct {
	TournamentID   string   `json:"tournament_id"`
	Matches        int      `json:"matches"`
	EndedMatches   int      `json:"ended_matches"`
	Scorecards     int      `json:"scorecards"`
	PlayersUpdated int      `json:"players_updated"`
	UnknownNames   []string `json:"unknown_names,omitempty"`
}

// MatchSyncService refreshes a tournament's match data from the cricket
// stats provider and rolls finished scorecards up into the player masters'
// career columns. The rollup is a recompute over every ended match of the
// series, so re-running it produces the same totals.
type MatchSyncService struct {
	provider       MatchDataProvider
	tournamentRepo tournament.Repository
	playerRepo     player.Repository
	rawRepo        rawdata.Repository
	logger         *logging.Logger
	now            func() time.Time
}

func NewMatchSyncService(
	provider MatchDataProvider,
	tournamentRepo tournament.Repository,
	playerRepo player.Repository,
	rawRepo rawdata.Repository,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MatchSyncService{
		provider:       provider,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		rawRepo:        rawRepo,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *MatchSyncService) RefreshTournament(ctx context.Context, tournamentID string) (MatchSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.RefreshTournament")
	defer span.End()

	if s.provider == nil {
		return MatchSyncResult{}, fmt.Errorf("%w: match data provider is not configured", ErrDependencyUnavailable)
	}
	if tournamentID == "" {
		return MatchSyncResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	t, found, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return MatchSyncResult{}, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return MatchSyncResult{}, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	if t.ExternalSeriesRef == "" {
		return MatchSyncResult{}, fmt.Errorf("%w: tournament %s has no external series ref", ErrInvalidInput, tournamentID)
	}

	matches, raws, err := s.provider.FetchSeriesMatches(ctx, t.ExternalSeriesRef)
	if err != nil {
		return MatchSyncResult{}, fmt.Errorf("fetch series matches: %w", err)
	}
	s.storeRaws(ctx, raws)

	result := MatchSyncResult{TournamentID: tournamentID, Matches: len(matches)}

	ended := make([]ExternalMatch, 0, len(matches))
	for _, m := range matches {
		if m.Ended {
			ended = append(ended, m)
		}
	}
	result.EndedMatches = len(ended)
	if len(ended) == 0 {
		return result, nil
	}

	cards, err := s.fetchScorecards(ctx, ended)
	if err != nil {
		return result, err
	}
	result.Scorecards = len(cards)

	updated, unknown, err := s.rollupCareerStats(ctx, cards)
	if err != nil {
		return result, err
	}
	result.PlayersUpdated = updated
	result.UnknownNames = unknown
	return result, nil
}

func (s *MatchSyncService) fetchScorecards(ctx context.Context, matches []ExternalMatch) ([]ExternalScorecard, error) {
	var mu sync.Mutex
	cards := make([]ExternalScorecard, 0, len(matches))

	fetchers := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(scorecardFetchWorkers)
	for _, match := range matches {
		ref := match.Ref
		fetchers.Go(func(ctx context.Context) error {
			card, raw, err := s.provider.FetchScorecard(ctx, ref)
			if err != nil {
				return fmt.Errorf("fetch scorecard %s: %w", ref, err)
			}
			s.storeRaws(ctx, []rawdata.Payload{raw})

			mu.Lock()
			cards = append(cards, card)
			mu.Unlock()
			return nil
		})
	}
	if err := fetchers.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(cards, func(i, j int) bool { return cards[i].MatchRef < cards[j].MatchRef })
	return cards, nil
}

func (s *MatchSyncService) rollupCareerStats(ctx context.Context, cards []ExternalScorecard) (int, []string, error) {
	masters, err := s.playerRepo.List(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list player masters: %w", err)
	}

	index := namematch.NewIndex()
	byID := make(map[string]player.Master, len(masters))
	for _, m := range masters {
		byID[m.ID] = m
		index.Add(m.ID, m.Name)
		for _, alt := range m.AlternateNames {
			index.Add(m.ID, alt)
		}
	}

	type careerTally struct {
		matches int
		runs    int
		wickets int
		points  float64
	}
	tallies := make(map[string]*careerTally, len(masters))
	unknownSet := make(map[string]struct{})

	for _, card := range cards {
		for _, line := range card.Lines {
			id, ok := index.Lookup(line.Name)
			if !ok {
				unknownSet[line.Name] = struct{}{}
				continue
			}
			tally, ok := tallies[id]
			if !ok {
				tally = &careerTally{}
				tallies[id] = tally
			}
			tally.matches++
			tally.runs += line.Runs
			tally.wickets += line.Wickets
			tally.points += scoreLine(line)
		}
	}

	now := s.now().UTC()
	updated := make([]player.Master, 0, len(tallies))
	for id, tally := range tallies {
		m := byID[id]
		m.MatchesPlayed = tally.matches
		m.TotalRuns = tally.runs
		m.TotalWickets = tally.wickets
		m.CareerPoints = tally.points
		m.UpdatedAt = now
		updated = append(updated, m)
	}
	sort.Slice(updated, func(i, j int) bool { return updated[i].ID < updated[j].ID })

	if len(updated) > 0 {
		if err := s.playerRepo.Upsert(ctx, updated); err != nil {
			return 0, nil, fmt.Errorf("upsert player masters: %w", err)
		}
	}

	unknown := make([]string, 0, len(unknownSet))
	for name := range unknownSet {
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)
	if len(unknown) > 0 {
		s.logger.WarnContext(ctx, "scorecard names missing from player master",
			"count", len(unknown))
	}
	return len(updated), unknown, nil
}

func (s *MatchSyncService) storeRaws(ctx context.Context, raws []rawdata.Payload) {
	if s.rawRepo == nil || len(raws) == 0 {
		return
	}
	if err := s.rawRepo.Store(ctx, raws); err != nil {
		s.logger.WarnContext(ctx, "store raw provider payload failed", "error", err)
	}
}

func scoreLine(line ExternalPlayerLine) float64 {
	points := float64(line.Runs)*pointsPerRun +
		float64(line.Fours)*pointsPerFour +
		float64(line.Sixes)*pointsPerSix
	points += float64(line.Wickets) * pointsPerWicket
	points += float64(line.Catches)*pointsPerCatch + float64(line.Stumpings)*pointsPerStumping
	return points
}
