package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
)

type PerformanceRepository struct {
	mu   sync.RWMutex
	rows map[string][]performance.Row
}

func NewPerformanceRepository(rows []performance.Row) *PerformanceRepository {
	items := make(map[string][]performance.Row)
	for _, row := range rows {
		key := weekBucket(row.TournamentID, row.Week)
		items[key] = append(items[key], cloneRow(row))
	}
	return &PerformanceRepository{rows: items}
}

func (r *PerformanceRepository) ListByTournament(_ context.Context, tournamentID string) ([]performance.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]performance.Row, 0, 16)
	for _, bucket := range r.rows {
		for _, row := range bucket {
			if row.TournamentID == tournamentID {
				out = append(out, cloneRow(row))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	return out, nil
}

func (r *PerformanceRepository) ListByTournamentWeek(_ context.Context, tournamentID string, week int) ([]performance.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.rows[weekBucket(tournamentID, week)]
	out := make([]performance.Row, 0, len(bucket))
	for _, row := range bucket {
		out = append(out, cloneRow(row))
	}
	return out, nil
}

func (r *PerformanceRepository) ReplaceWeek(_ context.Context, tournamentID string, week int, rows []performance.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := make([]performance.Row, 0, len(rows))
	for _, row := range rows {
		bucket = append(bucket, cloneRow(row))
	}
	r.rows[weekBucket(tournamentID, week)] = bucket
	return nil
}

func weekBucket(tournamentID string, week int) string {
	return fmt.Sprintf("%s/%d", tournamentID, week)
}

func cloneRow(row performance.Row) performance.Row {
	if row.Raw != nil {
		raw := make(map[string]string, len(row.Raw))
		for k, v := range row.Raw {
			raw[k] = v
		}
		row.Raw = raw
	}
	return row
}
