package postgres

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lib/pq"

	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
)

type weeklyStatTableModel struct {
	ID                 int64          `db:"id"`
	StatKey            string         `db:"stat_key"`
	UserID             string         `db:"user_id"`
	TournamentPublicID string         `db:"tournament_public_id"`
	Week               int            `db:"week"`
	TotalPoints        float64        `db:"total_points"`
	Breakdown          []byte         `db:"breakdown"`
	Rank               int            `db:"rank"`
	ProcessedMatchIDs  pq.StringArray `db:"processed_match_ids"`
	CapPoints          float64        `db:"cap_points"`
	CapPointsAwarded   bool           `db:"cap_points_awarded"`
	CalculatedAt       int64          `db:"calculated_at"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

type weeklyStatInsertModel struct {
	StatKey            string         `db:"stat_key"`
	UserID             string         `db:"user_id"`
	TournamentPublicID string         `db:"tournament_public_id"`
	Week               int            `db:"week"`
	TotalPoints        float64        `db:"total_points"`
	Breakdown          []byte         `db:"breakdown"`
	Rank               int            `db:"rank"`
	ProcessedMatchIDs  pq.StringArray `db:"processed_match_ids"`
	CapPoints          float64        `db:"cap_points"`
	CapPointsAwarded   bool           `db:"cap_points_awarded"`
	CalculatedAt       int64          `db:"calculated_at"`
}

type overallStandingTableModel struct {
	ID                 int64     `db:"id"`
	TournamentPublicID string    `db:"tournament_public_id"`
	UserID             string    `db:"user_id"`
	TotalPoints        float64   `db:"total_points"`
	Rank               int       `db:"rank"`
	CalculatedAt       int64     `db:"calculated_at"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type overallStandingInsertModel struct {
	TournamentPublicID string  `db:"tournament_public_id"`
	UserID             string  `db:"user_id"`
	TotalPoints        float64 `db:"total_points"`
	Rank               int     `db:"rank"`
	CalculatedAt       int64   `db:"calculated_at"`
}

type breakdownEntryDoc struct {
	PlayerID    string  `json:"player_id"`
	PlayerName  string  `json:"player_name"`
	MatchID     string  `json:"match_id"`
	BasePoints  float64 `json:"base_points"`
	Multiplier  float64 `json:"multiplier"`
	FinalPoints float64 `json:"final_points"`
}

func marshalBreakdown(entries []weeklystat.BreakdownEntry) ([]byte, error) {
	docs := make([]breakdownEntryDoc, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, breakdownEntryDoc(entry))
	}
	encoded, err := sonic.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal stat breakdown: %w", err)
	}
	return encoded, nil
}

func unmarshalBreakdown(raw []byte) ([]weeklystat.BreakdownEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var docs []breakdownEntryDoc
	if err := sonic.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal stat breakdown: %w", err)
	}
	out := make([]weeklystat.BreakdownEntry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, weeklystat.BreakdownEntry(doc))
	}
	return out, nil
}

func weeklyStatToDomain(row weeklyStatTableModel) (weeklystat.Stat, error) {
	key, err := weeklystat.ParseKey(row.StatKey)
	if err != nil {
		return weeklystat.Stat{}, fmt.Errorf("parse stored stat key: %w", err)
	}
	breakdown, err := unmarshalBreakdown(row.Breakdown)
	if err != nil {
		return weeklystat.Stat{}, err
	}
	return weeklystat.Stat{
		Key:               key,
		TotalPoints:       row.TotalPoints,
		Breakdown:         breakdown,
		Rank:              row.Rank,
		ProcessedMatchIDs: append([]string(nil), row.ProcessedMatchIDs...),
		CapPoints:         row.CapPoints,
		CapPointsAwarded:  row.CapPointsAwarded,
		CalculatedAt:      unixToTime(row.CalculatedAt),
	}, nil
}
