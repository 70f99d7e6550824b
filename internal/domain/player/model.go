package player

import "time"

// Master is the canonical record for a real-world player. AlternateNames
// carries the spellings used by external data sources so that performance
// rows can be resolved many-to-one onto a single id.
type Master struct {
	ID             string
	Name           string
	AlternateNames []string
	Role           string
	Team           string

	MatchesPlayed int
	TotalRuns     int
	TotalWickets  int
	CareerPoints  float64

	UpdatedAt time.Time
}
