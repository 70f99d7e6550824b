package performance

import "time"

// Row is one tabular performance record from the external sheet or the
// cricket stats API: a player's total fantasy points in one match.
type Row struct {
	TournamentID string
	Week         int
	MatchID      string
	PlayerName   string
	TotalPoints  float64

	// Raw keeps the remaining source columns keyed by header name for
	// audit and manual review.
	Raw map[string]string

	SyncedAt time.Time
}

// Match groups a match's rows for aggregation.
type Match struct {
	MatchID string
	Rows    []Row
}

// GroupByMatch buckets rows by match id, preserving first-seen match order.
func GroupByMatch(rows []Row) []Match {
	byID := make(map[string]int, len(rows))
	out := make([]Match, 0, 8)
	for _, row := range rows {
		idx, ok := byID[row.MatchID]
		if !ok {
			idx = len(out)
			byID[row.MatchID] = idx
			out = append(out, Match{MatchID: row.MatchID})
		}
		out[idx].Rows = append(out[idx].Rows, row)
	}
	return out
}
