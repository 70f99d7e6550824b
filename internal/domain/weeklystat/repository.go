package weeklystat

import "context"

// Repository describes weekly stat persistence needs from use cases.
type Repository interface {
	GetByKey(ctx context.Context, key Key) (Stat, bool, error)
	Upsert(ctx context.Context, stat Stat) error
	ListByTournamentWeek(ctx context.Context, tournamentID string, week int) ([]Stat, error)
	UpdateRank(ctx context.Context, key Key, rank int) error

	// AwardCapBonus adds the bonus and flips cap_points_awarded in a single
	// conditional write. It reports false when the bonus was already awarded
	// for the key. A missing stat row is created holding only the bonus.
	AwardCapBonus(ctx context.Context, key Key, bonus float64) (bool, error)

	ListTotalsByTournament(ctx context.Context, tournamentID string) ([]OverallStanding, error)
	ReplaceOverallStandings(ctx context.Context, tournamentID string, standings []OverallStanding) error
	ListOverallStandings(ctx context.Context, tournamentID string) ([]OverallStanding, error)
}
