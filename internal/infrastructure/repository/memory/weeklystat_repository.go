package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
)

type WeeklyStatRepository struct {
	mu        sync.RWMutex
	items     map[string]weeklystat.Stat
	standings map[string][]weeklystat.OverallStanding
}

func NewWeeklyStatRepository(stats []weeklystat.Stat) *WeeklyStatRepository {
	items := make(map[string]weeklystat.Stat, len(stats))
	for _, s := range stats {
		items[s.Key.String()] = cloneStat(s)
	}
	return &WeeklyStatRepository{
		items:     items,
		standings: make(map[string][]weeklystat.OverallStanding),
	}
}

func (r *WeeklyStatRepository) GetByKey(_ context.Context, key weeklystat.Key) (weeklystat.Stat, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[key.String()]
	if !ok {
		return weeklystat.Stat{}, false, nil
	}
	return cloneStat(s), true, nil
}

func (r *WeeklyStatRepository) Upsert(_ context.Context, stat weeklystat.Stat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[stat.Key.String()] = cloneStat(stat)
	return nil
}

func (r *WeeklyStatRepository) ListByTournamentWeek(_ context.Context, tournamentID string, week int) ([]weeklystat.Stat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weeklystat.Stat, 0, 8)
	for _, s := range r.items {
		if s.Key.TournamentID == tournamentID && s.Key.Week == week {
			out = append(out, cloneStat(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Key.UserID < out[j].Key.UserID
	})
	return out, nil
}

func (r *WeeklyStatRepository) UpdateRank(_ context.Context, key weeklystat.Key, rank int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[key.String()]
	if !ok {
		return nil
	}
	s.Rank = rank
	r.items[key.String()] = s
	return nil
}

func (r *WeeklyStatRepository) AwardCapBonus(_ context.Context, key weeklystat.Key, bonus float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[key.String()]
	if !ok {
		s = weeklystat.Stat{
			Key:              key,
			TotalPoints:      bonus,
			Breakdown:        []weeklystat.BreakdownEntry{},
			CapPoints:        bonus,
			CapPointsAwarded: true,
			CalculatedAt:     time.Now().UTC(),
		}
		r.items[key.String()] = s
		return true, nil
	}
	if s.CapPointsAwarded {
		return false, nil
	}

	s.TotalPoints += bonus
	s.CapPoints = bonus
	s.CapPointsAwarded = true
	s.CalculatedAt = time.Now().UTC()
	r.items[key.String()] = s
	return true, nil
}

func (r *WeeklyStatRepository) ListTotalsByTournament(_ context.Context, tournamentID string) ([]weeklystat.OverallStanding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]float64, 8)
	for _, s := range r.items {
		if s.Key.TournamentID == tournamentID {
			totals[s.Key.UserID] += s.TotalPoints
		}
	}

	out := make([]weeklystat.OverallStanding, 0, len(totals))
	for userID, points := range totals {
		out = append(out, weeklystat.OverallStanding{
			TournamentID: tournamentID,
			UserID:       userID,
			TotalPoints:  points,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *WeeklyStatRepository) ReplaceOverallStandings(_ context.Context, tournamentID string, standings []weeklystat.OverallStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.standings[tournamentID] = append([]weeklystat.OverallStanding(nil), standings...)
	return nil
}

func (r *WeeklyStatRepository) ListOverallStandings(_ context.Context, tournamentID string) ([]weeklystat.OverallStanding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]weeklystat.OverallStanding(nil), r.standings[tournamentID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func cloneStat(s weeklystat.Stat) weeklystat.Stat {
	s.Breakdown = append([]weeklystat.BreakdownEntry(nil), s.Breakdown...)
	s.ProcessedMatchIDs = append([]string(nil), s.ProcessedMatchIDs...)
	return s
}
