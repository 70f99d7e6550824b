package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Tournament, bool, error)
	GetActive(ctx context.Context) (Tournament, bool, error)
	List(ctx context.Context) ([]Tournament, error)
	Upsert(ctx context.Context, t Tournament) error

	// ReplaceWindows swaps the full ordered window list for a tournament.
	ReplaceWindows(ctx context.Context, tournamentID string, windows []TransferWindow) error
}
