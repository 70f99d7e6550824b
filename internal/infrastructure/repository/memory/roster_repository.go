package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
)

type RosterRepository struct {
	mu        sync.RWMutex
	snapshots map[string]roster.Snapshot
	currents  map[string]roster.Current
}

func NewRosterRepository(snapshots []roster.Snapshot, currents []roster.Current) *RosterRepository {
	snapItems := make(map[string]roster.Snapshot, len(snapshots))
	for _, s := range snapshots {
		snapItems[snapshotKey(s.UserID, s.TournamentID, s.Week)] = cloneSnapshot(s)
	}
	curItems := make(map[string]roster.Current, len(currents))
	for _, c := range currents {
		curItems[currentKey(c.UserID, c.TournamentID)] = cloneCurrent(c)
	}
	return &RosterRepository{snapshots: snapItems, currents: curItems}
}

func (r *RosterRepository) GetSnapshot(_ context.Context, userID, tournamentID string, week int) (roster.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[snapshotKey(userID, tournamentID, week)]
	if !ok {
		return roster.Snapshot{}, false, nil
	}
	return cloneSnapshot(s), true, nil
}

func (r *RosterRepository) CreateSnapshot(_ context.Context, snapshot roster.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := snapshotKey(snapshot.UserID, snapshot.TournamentID, snapshot.Week)
	if _, exists := r.snapshots[key]; exists {
		// Snapshots are append-only; the first write wins.
		return nil
	}
	r.snapshots[key] = cloneSnapshot(snapshot)
	return nil
}

func (r *RosterRepository) ListSnapshotsByWeek(_ context.Context, tournamentID string, week int) ([]roster.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Snapshot, 0, 8)
	for _, s := range r.snapshots {
		if s.TournamentID == tournamentID && s.Week == week {
			out = append(out, cloneSnapshot(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *RosterRepository) GetCurrent(_ context.Context, userID, tournamentID string) (roster.Current, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.currents[currentKey(userID, tournamentID)]
	if !ok {
		return roster.Current{}, false, nil
	}
	return cloneCurrent(c), true, nil
}

func (r *RosterRepository) UpsertCurrent(_ context.Context, current roster.Current) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currents[currentKey(current.UserID, current.TournamentID)] = cloneCurrent(current)
	return nil
}

func (r *RosterRepository) ListCurrentByTournament(_ context.Context, tournamentID string) ([]roster.Current, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Current, 0, 8)
	for _, c := range r.currents {
		if c.TournamentID == tournamentID {
			out = append(out, cloneCurrent(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *RosterRepository) ListUserIDs(_ context.Context, tournamentID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, 8)
	for _, c := range r.currents {
		if c.TournamentID == tournamentID {
			seen[c.UserID] = struct{}{}
		}
	}
	for _, s := range r.snapshots {
		if s.TournamentID == tournamentID {
			seen[s.UserID] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func snapshotKey(userID, tournamentID string, week int) string {
	return fmt.Sprintf("%s/%s/%d", userID, tournamentID, week)
}

func currentKey(userID, tournamentID string) string {
	return userID + "/" + tournamentID
}

func cloneSnapshot(s roster.Snapshot) roster.Snapshot {
	s.Players = append([]roster.Player(nil), s.Players...)
	return s
}

func cloneCurrent(c roster.Current) roster.Current {
	c.Players = append([]roster.Player(nil), c.Players...)
	if c.LastTransferAt != nil {
		at := *c.LastTransferAt
		c.LastTransferAt = &at
	}
	return c
}
