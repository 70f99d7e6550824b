package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
)

type TournamentService struct {
	tournamentRepo  tournament.Repository
	performanceRepo performance.Repository
	now             func() time.Time
}

func NewTournamentService(tournamentRepo tournament.Repository, performanceRepo performance.Repository) *TournamentService {
	return &TournamentService{
		tournamentRepo:  tournamentRepo,
		performanceRepo: performanceRepo,
		now:             time.Now,
	}
}

func (s *TournamentService) List(ctx context.Context) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.List")
	defer span.End()

	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *TournamentService) Get(ctx context.Context, id string) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Get")
	defer span.End()

	if id == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	t, found, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament %s", ErrNotFound, id)
	}
	return t, nil
}

func (s *TournamentService) GetActive(ctx context.Context) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GetActive")
	defer span.End()

	t, found, err := s.tournamentRepo.GetActive(ctx)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get active tournament: %w", err)
	}
	if !found {
		return tournament.Tournament{}, fmt.Errorf("%w: no active tournament", ErrNotFound)
	}
	return t, nil
}

// Upsert creates or replaces a tournament. Window management goes through
// ActivateWindow and ReplaceWindows, not here.
func (s *TournamentService) Upsert(ctx context.Context, t tournament.Tournament) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Upsert")
	defer span.End()

	if err := t.ValidateBasic(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.tournamentRepo.Upsert(ctx, t); err != nil {
		return fmt.Errorf("upsert tournament: %w", err)
	}
	return nil
}

// ActivateWindow marks one transfer window active and closes any other.
// At most one window per tournament is active at a time.
func (s *TournamentService) ActivateWindow(ctx context.Context, tournamentID string, week int) (tournament.TransferWindow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ActivateWindow")
	defer span.End()

	if tournamentID == "" {
		return tournament.TransferWindow{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return tournament.TransferWindow{}, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, week)
	}

	t, found, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.TransferWindow{}, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return tournament.TransferWindow{}, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}

	var activated tournament.TransferWindow
	matched := false
	windows := make([]tournament.TransferWindow, 0, len(t.Windows))
	for _, window := range t.Windows {
		switch {
		case window.Week == week:
			window.Status = tournament.StatusActive
			activated = window
			matched = true
		case window.Status == tournament.StatusActive:
			window.Status = tournament.StatusCompleted
		}
		windows = append(windows, window)
	}
	if !matched {
		return tournament.TransferWindow{}, fmt.Errorf("%w: tournament %s has no window for week %d", ErrNotFound, tournamentID, week)
	}

	if err := s.tournamentRepo.ReplaceWindows(ctx, tournamentID, windows); err != nil {
		return tournament.TransferWindow{}, fmt.Errorf("replace transfer windows: %w", err)
	}
	return activated, nil
}

// CloseWindow completes the active window, if any.
func (s *TournamentService) CloseWindow(ctx context.Context, tournamentID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.CloseWindow")
	defer span.End()

	if tournamentID == "" {
		return fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	t, found, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}

	changed := false
	windows := make([]tournament.TransferWindow, 0, len(t.Windows))
	for _, window := range t.Windows {
		if window.Status == tournament.StatusActive {
			window.Status = tournament.StatusCompleted
			changed = true
		}
		windows = append(windows, window)
	}
	if !changed {
		return nil
	}

	if err := s.tournamentRepo.ReplaceWindows(ctx, tournamentID, windows); err != nil {
		return fmt.Errorf("replace transfer windows: %w", err)
	}
	return nil
}

// ListPerformances returns a tournament's stored performance rows, optionally
// narrowed to one week. Week zero means every week.
func (s *TournamentService) ListPerformances(ctx context.Context, tournamentID string, week int) ([]performance.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ListPerformances")
	defer span.End()

	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if week < 0 {
		return nil, fmt.Errorf("%w: week must not be negative, got %d", ErrInvalidInput, week)
	}

	if week == 0 {
		rows, err := s.performanceRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("list performance rows: %w", err)
		}
		return rows, nil
	}

	rows, err := s.performanceRepo.ListByTournamentWeek(ctx, tournamentID, week)
	if err != nil {
		return nil, fmt.Errorf("list performance rows: %w", err)
	}
	return rows, nil
}
