package weeklystat

import "time"

// BreakdownEntry records how one roster player contributed to a weekly total.
// Multipliers are applied per match, so a captain appears once per match
// played rather than once per week.
type BreakdownEntry struct {
	PlayerID    string
	PlayerName  string
	MatchID     string
	BasePoints  float64
	Multiplier  float64
	FinalPoints float64
}

// Stat is the aggregate point record for one user in one tournament week.
// It is recomputed and replaced wholesale by the aggregator; only Rank and
// the cap bonus fields are mutated in place by other writers.
type Stat struct {
	Key               Key
	TotalPoints       float64
	Breakdown         []BreakdownEntry
	Rank              int
	ProcessedMatchIDs []string
	CapPoints         float64
	CapPointsAwarded  bool
	CalculatedAt      time.Time
}

// OverallStanding is the cross-week total for one user in a tournament.
type OverallStanding struct {
	TournamentID string
	UserID       string
	TotalPoints  float64
	Rank         int
	CalculatedAt time.Time
}
