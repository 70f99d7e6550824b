package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/crickarena/fantasy-cricket/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Master
}

func NewPlayerRepository(players []player.Master) *PlayerRepository {
	items := make(map[string]player.Master, len(players))
	for _, p := range players {
		items[p.ID] = clonePlayer(p)
	}
	return &PlayerRepository{items: items}
}

func (r *PlayerRepository) GetByID(_ context.Context, id string) (player.Master, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return player.Master{}, false, nil
	}
	return clonePlayer(p), true, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Master, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Master, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, clonePlayer(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) Upsert(_ context.Context, items []player.Master) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range items {
		r.items[p.ID] = clonePlayer(p)
	}
	return nil
}

func (r *PlayerRepository) AddAlternateName(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return nil
	}
	for _, existing := range p.AlternateNames {
		if existing == name {
			return nil
		}
	}
	p.AlternateNames = append(p.AlternateNames, name)
	r.items[id] = p
	return nil
}

func clonePlayer(p player.Master) player.Master {
	p.AlternateNames = append([]string(nil), p.AlternateNames...)
	return p
}
