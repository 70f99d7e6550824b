package roster

import "context"

// Repository describes roster persistence needs from use cases.
// Snapshots are append-only: CreateSnapshot must not overwrite an existing
// (user, tournament, week) record.
type Repository interface {
	GetSnapshot(ctx context.Context, userID, tournamentID string, week int) (Snapshot, bool, error)
	CreateSnapshot(ctx context.Context, snapshot Snapshot) error
	ListSnapshotsByWeek(ctx context.Context, tournamentID string, week int) ([]Snapshot, error)

	GetCurrent(ctx context.Context, userID, tournamentID string) (Current, bool, error)
	UpsertCurrent(ctx context.Context, current Current) error
	ListCurrentByTournament(ctx context.Context, tournamentID string) ([]Current, error)

	// ListUserIDs returns every user known to the tournament, whether via a
	// snapshot or a live roster.
	ListUserIDs(ctx context.Context, tournamentID string) ([]string, error)
}
