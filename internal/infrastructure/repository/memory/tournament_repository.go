package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
)

type TournamentRepository struct {
	mu    sync.RWMutex
	items map[string]tournament.Tournament
}

func NewTournamentRepository(tournaments []tournament.Tournament) *TournamentRepository {
	items := make(map[string]tournament.Tournament, len(tournaments))
	for _, t := range tournaments {
		items[t.ID] = cloneTournament(t)
	}
	return &TournamentRepository{items: items}
}

func (r *TournamentRepository) GetByID(_ context.Context, id string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return tournament.Tournament{}, false, nil
	}
	return cloneTournament(t), true, nil
}

func (r *TournamentRepository) GetActive(_ context.Context) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active tournament.Tournament
	found := false
	for _, t := range r.items {
		if t.Status != tournament.StatusActive {
			continue
		}
		if !found || t.StartsAt.After(active.StartsAt) {
			active = t
			found = true
		}
	}
	if !found {
		return tournament.Tournament{}, false, nil
	}
	return cloneTournament(active), true, nil
}

func (r *TournamentRepository) List(_ context.Context) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, cloneTournament(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *TournamentRepository) Upsert(_ context.Context, t tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[t.ID]
	if ok {
		// Windows are managed by ReplaceWindows; keep them on plain upserts.
		t.Windows = existing.Windows
	}
	r.items[t.ID] = cloneTournament(t)
	return nil
}

func (r *TournamentRepository) ReplaceWindows(_ context.Context, tournamentID string, windows []tournament.TransferWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[tournamentID]
	if !ok {
		return nil
	}
	t.Windows = append([]tournament.TransferWindow(nil), windows...)
	r.items[tournamentID] = t
	return nil
}

func cloneTournament(t tournament.Tournament) tournament.Tournament {
	t.Windows = append([]tournament.TransferWindow(nil), t.Windows...)
	return t
}
