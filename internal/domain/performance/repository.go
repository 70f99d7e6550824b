package performance

import "context"

// Repository describes performance row persistence needs from use cases.
// ReplaceWeek swaps a week's rows wholesale, matching the source sheet's
// recompute-and-replace semantics.
type Repository interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]Row, error)
	ListByTournamentWeek(ctx context.Context, tournamentID string, week int) ([]Row, error)
	ReplaceWeek(ctx context.Context, tournamentID string, week int, rows []Row) error
}
