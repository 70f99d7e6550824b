package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
)

const defaultTransfersPerWindow = 2

// ResolvedRoster is the outcome of resolving a user's roster for a week.
// Source records which fallback level produced the players, so callers can
// tell an intentional empty roster from a snapshot hit.
type ResolvedRoster struct {
	UserID       string
	TournamentID string
	Week         int
	Players      []roster.Player
	Source       RosterSource
	// SourceWeek is the snapshot week that actually supplied the players
	// when Source is RosterSourceSnapshot.
	SourceWeek int
}

type RosterSource string

const (
	RosterSourceSnapshot RosterSource = "snapshot"
	RosterSourceCurrent  RosterSource = "current"
	RosterSourceEmpty    RosterSource = "empty"
)

type RosterService struct {
	rosterRepo     roster.Repository
	tournamentRepo tournament.Repository
	now            func() time.Time
}

func NewRosterService(rosterRepo roster.Repository, tournamentRepo tournament.Repository) *RosterService {
	return &RosterService{
		rosterRepo:     rosterRepo,
		tournamentRepo: tournamentRepo,
		now:            time.Now,
	}
}

// ResolveForWeek finds the roster that scores for (user, tournament, week):
// the snapshot for that week, else the nearest earlier snapshot down to week
// one, else the live current roster, else an empty roster.
func (s *RosterService) ResolveForWeek(ctx context.Context, userID, tournamentID string, week int) (ResolvedRoster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ResolveForWeek")
	defer span.End()

	if userID == "" || tournamentID == "" {
		return ResolvedRoster{}, fmt.Errorf("%w: user id and tournament id are required", ErrInvalidInput)
	}
	if week <= 0 {
		return ResolvedRoster{}, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, week)
	}

	resolved := ResolvedRoster{UserID: userID, TournamentID: tournamentID, Week: week}

	for candidate := week; candidate >= 1; candidate-- {
		snapshot, found, err := s.rosterRepo.GetSnapshot(ctx, userID, tournamentID, candidate)
		if err != nil {
			return ResolvedRoster{}, fmt.Errorf("get roster snapshot week %d: %w", candidate, err)
		}
		if found {
			resolved.Players = snapshot.Players
			resolved.Source = RosterSourceSnapshot
			resolved.SourceWeek = candidate
			return resolved, nil
		}
	}

	current, found, err := s.rosterRepo.GetCurrent(ctx, userID, tournamentID)
	if err != nil {
		return ResolvedRoster{}, fmt.Errorf("get current roster: %w", err)
	}
	if found {
		resolved.Players = current.Players
		resolved.Source = RosterSourceCurrent
		return resolved, nil
	}

	resolved.Players = []roster.Player{}
	resolved.Source = RosterSourceEmpty
	return resolved, nil
}

// GetCurrent returns the user's live roster for a tournament.
func (s *RosterService) GetCurrent(ctx context.Context, userID, tournamentID string) (roster.Current, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.GetCurrent")
	defer span.End()

	if userID == "" || tournamentID == "" {
		return roster.Current{}, fmt.Errorf("%w: user id and tournament id are required", ErrInvalidInput)
	}

	current, found, err := s.rosterRepo.GetCurrent(ctx, userID, tournamentID)
	if err != nil {
		return roster.Current{}, fmt.Errorf("get current roster: %w", err)
	}
	if !found {
		return roster.Current{}, fmt.Errorf("%w: no roster for user %s in tournament %s", ErrNotFound, userID, tournamentID)
	}
	return current, nil
}

// SaveCurrent replaces the user's live roster. Before the registration
// deadline the roster is freely editable; afterwards changes go through
// ApplyTransfer.
func (s *RosterService) SaveCurrent(ctx context.Context, userID, tournamentID string, players []roster.Player) (roster.Current, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SaveCurrent")
	defer span.End()

	if userID == "" || tournamentID == "" {
		return roster.Current{}, fmt.Errorf("%w: user id and tournament id are required", ErrInvalidInput)
	}
	if err := roster.ValidatePlayers(players); err != nil {
		return roster.Current{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	t, found, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return roster.Current{}, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return roster.Current{}, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}

	now := s.now().UTC()
	if now.After(t.RegistrationDeadline) {
		return roster.Current{}, fmt.Errorf("%w: registration closed at %s, use transfers", ErrInvalidInput, t.RegistrationDeadline.Format(time.RFC3339))
	}

	existing, found, err := s.rosterRepo.GetCurrent(ctx, userID, tournamentID)
	if err != nil {
		return roster.Current{}, fmt.Errorf("get current roster: %w", err)
	}

	current := roster.Current{
		UserID:             userID,
		TournamentID:       tournamentID,
		Players:            players,
		TransfersRemaining: defaultTransfersPerWindow,
		UpdatedAt:          now,
	}
	if found {
		current.TransfersRemaining = existing.TransfersRemaining
		current.LastTransferAt = existing.LastTransferAt
	}

	if err := s.rosterRepo.UpsertCurrent(ctx, current); err != nil {
		return roster.Current{}, fmt.Errorf("upsert current roster: %w", err)
	}
	return current, nil
}

// ApplyTransfer swaps one player out for another in the live roster during an
// active transfer window, consuming one of the window's transfer credits.
func (s *RosterService) ApplyTransfer(ctx context.Context, userID, tournamentID, outPlayerID string, in roster.Player) (roster.Current, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ApplyTransfer")
	defer span.End()

	if userID == "" || tournamentID == "" {
		return roster.Current{}, fmt.Errorf("%w: user id and tournament id are required", ErrInvalidInput)
	}
	if outPlayerID == "" {
		return roster.Current{}, fmt.Errorf("%w: outgoing player id is required", ErrInvalidInput)
	}

	t, found, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return roster.Current{}, fmt.Errorf("get tournament: %w", err)
	}
	if !found {
		return roster.Current{}, fmt.Errorf("%w: tournament %s", ErrNotFound, tournamentID)
	}
	window, active := t.ActiveWindow()
	if !active {
		return roster.Current{}, fmt.Errorf("%w: no active transfer window for tournament %s", ErrInvalidInput, tournamentID)
	}

	current, found, err := s.rosterRepo.GetCurrent(ctx, userID, tournamentID)
	if err != nil {
		return roster.Current{}, fmt.Errorf("get current roster: %w", err)
	}
	if !found {
		return roster.Current{}, fmt.Errorf("%w: no roster for user %s in tournament %s", ErrNotFound, userID, tournamentID)
	}
	if current.TransfersRemaining <= 0 {
		return roster.Current{}, fmt.Errorf("%w: no transfers remaining in window %d", ErrInvalidInput, window.Week)
	}

	players := make([]roster.Player, 0, len(current.Players))
	replaced := false
	for _, p := range current.Players {
		if p.PlayerID == outPlayerID {
			// The incoming player inherits the armband the outgoing one wore.
			in.IsCaptain = p.IsCaptain
			in.IsViceCaptain = p.IsViceCaptain
			players = append(players, in)
			replaced = true
			continue
		}
		players = append(players, p)
	}
	if !replaced {
		return roster.Current{}, fmt.Errorf("%w: player %s is not in the roster", ErrInvalidInput, outPlayerID)
	}
	if err := roster.ValidatePlayers(players); err != nil {
		return roster.Current{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	current.Players = players
	current.TransfersRemaining--
	current.LastTransferAt = &now
	current.UpdatedAt = now

	if err := s.rosterRepo.UpsertCurrent(ctx, current); err != nil {
		return roster.Current{}, fmt.Errorf("upsert current roster: %w", err)
	}
	return current, nil
}

// SnapshotWeek freezes every live roster in a tournament as that week's
// immutable snapshot. Already-snapshotted users keep their first snapshot.
func (s *RosterService) SnapshotWeek(ctx context.Context, tournamentID string, week int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SnapshotWeek")
	defer span.End()

	if tournamentID == "" {
		return 0, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if week <= 0 {
		return 0, fmt.Errorf("%w: week must be greater than zero, got %d", ErrInvalidInput, week)
	}

	currents, err := s.rosterRepo.ListCurrentByTournament(ctx, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("list current rosters: %w", err)
	}

	now := s.now().UTC()
	created := 0
	for _, current := range currents {
		snapshot := roster.Snapshot{
			UserID:       current.UserID,
			TournamentID: tournamentID,
			Week:         week,
			Players:      current.Players,
			CreatedAt:    now,
		}
		if err := s.rosterRepo.CreateSnapshot(ctx, snapshot); err != nil {
			return created, fmt.Errorf("snapshot roster for user %s: %w", current.UserID, err)
		}
		created++
	}
	return created, nil
}
