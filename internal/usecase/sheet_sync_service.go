package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
)

const (
	defaultSyncBatchSize  = 25
	defaultSyncMaxWorkers = 8

	syncStatusSuccess = "success"
	syncStatusFailed  = "failed"
)

type SheetSyncInput struct {
	TournamentID string
	Week         int
	// StartIndex and BatchSize page the per-user recompute; the caller keeps
	// requesting pages until Done. A page of zero means the default size.
	StartIndex int
	BatchSize  int
	MaxWorkers int
}

type SheetSyncResult struct {
	TournamentID   string           `json:"tournament_id"`
	Week           int              `json:"week"`
	RowCount       int              `json:"row_count"`
	UserTotal      int              `json:"user_total"`
	StartIndex     int              `json:"start_index"`
	NextStartIndex int              `json:"next_start_index"`
	Done           bool             `json:"done"`
	SuccessCount   int              `json:"success_count"`
	FailedCount    int              `json:"failed_count"`
	WorkerCount    int              `json:"worker_count"`
	Users          []UserSyncResult `json:"users"`
	Report         *UnmatchedReport `json:"report,omitempty"`
}

type UserSyncResult struct {
	UserID     string  `json:"user_id"`
	Status     string  `json:"status"`
	Points     float64 `json:"points"`
	DurationMs int64   `json:"duration_ms"`
	Message    string  `json:"message,omitempty"`
}

type CapBonusSyncResult struct {
	TournamentID string   `json:"tournament_id"`
	Week         int      `json:"week"`
	Holders      []string `json:"holders"`
	Awarded      int      `json:"awarded"`
	Skipped      int      `json:"skipped"`
}

// SheetSyncService pulls the performance sheet into the performance store and
// fans the per-user recompute out over a worker pool, one page of users per
// invocation. Pages are independent: a failed page is re-requested without
// affecting the pages around it.
type SheetSyncService struct {
	sheet           SheetSource
	points          *PointsService
	rosterRepo      roster.Repository
	performanceRepo performance.Repository
	rawRepo         rawdata.Repository
	logger          *logging.Logger
	now             func() time.Time
}

func NewSheetSyncService(
	sheet SheetSource,
	points *PointsService,
	rosterRepo roster.Repository,
	performanceRepo performance.Repository,
	rawRepo rawdata.Repository,
	logger *logging.Logger,
) *SheetSyncService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SheetSyncService{
		sheet:           sheet,
		points:          points,
		rosterRepo:      rosterRepo,
		performanceRepo: performanceRepo,
		rawRepo:         rawRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// SyncWeek ingests the week's sheet rows (first page only) and recomputes one
// page of users. The first page replaces the week's stored rows wholesale,
// matching the sheet's recompute-and-replace semantics.
func (s *SheetSyncService) SyncWeek(ctx context.Context, input SheetSyncInput) (SheetSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SheetSyncService.SyncWeek")
	defer span.End()

	if s.sheet == nil {
		return SheetSyncResult{}, fmt.Errorf("%w: sheet source is not configured", ErrDependencyUnavailable)
	}
	if input.TournamentID == "" {
		return SheetSyncResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if input.Week <= 0 {
		return SheetSyncResult{}, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, input.Week)
	}
	if input.StartIndex < 0 {
		return SheetSyncResult{}, fmt.Errorf("%w: start index must not be negative, got %d", ErrInvalidInput, input.StartIndex)
	}
	batchSize := input.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSyncBatchSize
	}
	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = defaultSyncMaxWorkers
	}

	result := SheetSyncResult{
		TournamentID: input.TournamentID,
		Week:         input.Week,
		StartIndex:   input.StartIndex,
		WorkerCount:  workerCount,
	}

	if input.StartIndex == 0 {
		rowCount, err := s.ingestWeekRows(ctx, input.TournamentID, input.Week)
		if err != nil {
			return SheetSyncResult{}, err
		}
		result.RowCount = rowCount
	}

	userIDs, err := s.rosterRepo.ListUserIDs(ctx, input.TournamentID)
	if err != nil {
		return SheetSyncResult{}, fmt.Errorf("list tournament users: %w", err)
	}
	result.UserTotal = len(userIDs)

	if input.StartIndex >= len(userIDs) {
		result.NextStartIndex = input.StartIndex
		result.Done = true
		return result, nil
	}

	end := input.StartIndex + batchSize
	if end > len(userIDs) {
		end = len(userIDs)
	}
	page := userIDs[input.StartIndex:end]
	result.NextStartIndex = end
	result.Done = end >= len(userIDs)
	if workerCount > len(page) {
		workerCount = len(page)
		result.WorkerCount = workerCount
	}

	users, successCount, failedCount, err := s.recomputePage(ctx, input.TournamentID, input.Week, page, workerCount)
	if err != nil {
		return SheetSyncResult{}, err
	}
	result.Users = users
	result.SuccessCount = successCount
	result.FailedCount = failedCount

	if result.Done {
		report, err := s.buildReport(ctx, input.TournamentID, input.Week)
		if err != nil {
			s.logger.WarnContext(ctx, "build unmatched report failed",
				"tournament_id", input.TournamentID, "week", input.Week, "error", err)
		} else {
			result.Report = &report
		}
	}

	return result, nil
}

func (s *SheetSyncService) ingestWeekRows(ctx context.Context, tournamentID string, week int) (int, error) {
	sheetRows, payload, err := s.sheet.ListPerformanceRows(ctx, week)
	if err != nil {
		return 0, fmt.Errorf("list sheet rows: %w", err)
	}
	if s.rawRepo != nil {
		if err := s.rawRepo.Store(ctx, []rawdata.Payload{payload}); err != nil {
			s.logger.WarnContext(ctx, "store raw sheet payload failed", "ref", payload.Ref, "error", err)
		}
	}

	now := s.now().UTC()
	rows := make([]performance.Row, 0, len(sheetRows))
	for _, row := range sheetRows {
		rows = append(rows, performance.Row{
			TournamentID: tournamentID,
			Week:         row.Week,
			MatchID:      row.MatchID,
			PlayerName:   row.PlayerName,
			TotalPoints:  row.TotalPoints,
			Raw:          row.Raw,
			SyncedAt:     now,
		})
	}
	if err := s.performanceRepo.ReplaceWeek(ctx, tournamentID, week, rows); err != nil {
		return 0, fmt.Errorf("replace week performance rows: %w", err)
	}
	return len(rows), nil
}

func (s *SheetSyncService) recomputePage(
	ctx context.Context,
	tournamentID string,
	week int,
	page []string,
	workerCount int,
) ([]UserSyncResult, int, int, error) {
	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	results := make(chan UserSyncResult, len(page))
	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, userID := range page {
		userID := userID
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := UserSyncResult{UserID: userID}

			stat, err := s.points.RecomputeUserWeek(ctx, userID, tournamentID, week)
			if err != nil {
				row.Status = syncStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
			} else {
				row.Status = syncStatusSuccess
				row.Points = stat.TotalPoints
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()

			results <- row
		}); err != nil {
			workers.Done()
			return nil, 0, 0, fmt.Errorf("submit user to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	users := make([]UserSyncResult, 0, len(page))
	for row := range results {
		users = append(users, row)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })

	return users, int(successCount.Load()), int(failedCount.Load()), nil
}

func (s *SheetSyncService) buildReport(ctx context.Context, tournamentID string, week int) (UnmatchedReport, error) {
	rows, err := s.performanceRepo.ListByTournamentWeek(ctx, tournamentID, week)
	if err != nil {
		return UnmatchedReport{}, fmt.Errorf("list performance rows: %w", err)
	}

	masterIndex, err := s.points.buildMasterIndex(ctx)
	if err != nil {
		return UnmatchedReport{}, err
	}

	userIDs, err := s.rosterRepo.ListUserIDs(ctx, tournamentID)
	if err != nil {
		return UnmatchedReport{}, fmt.Errorf("list tournament users: %w", err)
	}

	matchedRows := make(map[string]struct{}, len(rows))
	for _, userID := range userIDs {
		resolved, err := s.points.resolver.ResolveForWeek(ctx, userID, tournamentID, week)
		if err != nil {
			return UnmatchedReport{}, fmt.Errorf("resolve roster for user %s: %w", userID, err)
		}
		lookup := newRosterLookup(resolved.Players, masterIndex)
		for _, row := range rows {
			if _, ok := lookup.find(row.PlayerName); ok {
				matchedRows[rowKey(row)] = struct{}{}
			}
		}
	}

	return buildUnmatchedReport(tournamentID, week, rows, matchedRows, masterIndex), nil
}

// SyncCapBonuses reads the week's cap holders from the sheet and applies the
// bonus through the conditional award path.
func (s *SheetSyncService) SyncCapBonuses(ctx context.Context, tournamentID string, week int) (CapBonusSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SheetSyncService.SyncCapBonuses")
	defer span.End()

	if s.sheet == nil {
		return CapBonusSyncResult{}, fmt.Errorf("%w: sheet source is not configured", ErrDependencyUnavailable)
	}
	if tournamentID == "" {
		return CapBonusSyncResult{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return CapBonusSyncResult{}, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, week)
	}

	holders, payload, err := s.sheet.FetchCapHolders(ctx, week)
	if err != nil {
		return CapBonusSyncResult{}, fmt.Errorf("fetch cap holders: %w", err)
	}
	if s.rawRepo != nil {
		if err := s.rawRepo.Store(ctx, []rawdata.Payload{payload}); err != nil {
			s.logger.WarnContext(ctx, "store raw cap payload failed", "ref", payload.Ref, "error", err)
		}
	}

	awarded, err := s.points.AwardCapBonuses(ctx, tournamentID, holders)
	if err != nil {
		return CapBonusSyncResult{}, err
	}

	return CapBonusSyncResult{
		TournamentID: tournamentID,
		Week:         week,
		Holders:      append(append([]string{}, holders.OrangeCap...), holders.PurpleCap...),
		Awarded:      awarded.Awarded,
		Skipped:      awarded.Skipped,
	}, nil
}
