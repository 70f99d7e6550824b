package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	qb "github.com/crickarena/fantasy-cricket/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetSnapshot(ctx context.Context, userID, tournamentID string, week int) (roster.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("roster_snapshots").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return roster.Snapshot{}, false, fmt.Errorf("build get roster snapshot query: %w", err)
	}

	var row rosterSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Snapshot{}, false, nil
		}
		return roster.Snapshot{}, false, fmt.Errorf("get roster snapshot: %w", err)
	}

	snapshot, err := snapshotToDomain(row)
	if err != nil {
		return roster.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (r *RosterRepository) CreateSnapshot(ctx context.Context, snapshot roster.Snapshot) error {
	players, err := marshalRosterPlayers(snapshot.Players)
	if err != nil {
		return err
	}

	insertModel := rosterSnapshotInsertModel{
		UserID:             snapshot.UserID,
		TournamentPublicID: snapshot.TournamentID,
		Week:               snapshot.Week,
		Players:            players,
		CapturedAt:         timeToUnix(snapshot.CreatedAt),
	}
	// Snapshots are append-only; a concurrent duplicate write loses silently.
	query, args, err := qb.InsertModel("roster_snapshots", insertModel,
		"ON CONFLICT (user_id, tournament_public_id, week) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build create roster snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create roster snapshot: %w", err)
	}
	return nil
}

func (r *RosterRepository) ListSnapshotsByWeek(ctx context.Context, tournamentID string, week int) ([]roster.Snapshot, error) {
	query, args, err := qb.Select("*").From("roster_snapshots").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("week", week),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list roster snapshots query: %w", err)
	}

	var rows []rosterSnapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list roster snapshots: %w", err)
	}

	out := make([]roster.Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshot, err := snapshotToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func (r *RosterRepository) GetCurrent(ctx context.Context, userID, tournamentID string) (roster.Current, bool, error) {
	query, args, err := qb.Select("*").From("current_rosters").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("tournament_public_id", tournamentID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return roster.Current{}, false, fmt.Errorf("build get current roster query: %w", err)
	}

	var row currentRosterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Current{}, false, nil
		}
		return roster.Current{}, false, fmt.Errorf("get current roster: %w", err)
	}

	current, err := currentToDomain(row)
	if err != nil {
		return roster.Current{}, false, err
	}
	return current, true, nil
}

func (r *RosterRepository) UpsertCurrent(ctx context.Context, current roster.Current) error {
	players, err := marshalRosterPlayers(current.Players)
	if err != nil {
		return err
	}

	insertModel := currentRosterInsertModel{
		UserID:             current.UserID,
		TournamentPublicID: current.TournamentID,
		Players:            players,
		TransfersRemaining: current.TransfersRemaining,
		LastTransferAt:     nullableUnix(current.LastTransferAt),
	}
	query, args, err := qb.InsertModel("current_rosters", insertModel, `ON CONFLICT (user_id, tournament_public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    players = EXCLUDED.players,
    transfers_remaining = EXCLUDED.transfers_remaining,
    last_transfer_at = EXCLUDED.last_transfer_at,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert current roster query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert current roster: %w", err)
	}
	return nil
}

func (r *RosterRepository) ListCurrentByTournament(ctx context.Context, tournamentID string) ([]roster.Current, error) {
	query, args, err := qb.Select("*").From("current_rosters").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list current rosters query: %w", err)
	}

	var rows []currentRosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list current rosters: %w", err)
	}

	out := make([]roster.Current, 0, len(rows))
	for _, row := range rows {
		current, err := currentToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, current)
	}
	return out, nil
}

func (r *RosterRepository) ListUserIDs(ctx context.Context, tournamentID string) ([]string, error) {
	query := `SELECT user_id FROM current_rosters WHERE tournament_public_id = $1 AND deleted_at IS NULL
UNION
SELECT user_id FROM roster_snapshots WHERE tournament_public_id = $1
ORDER BY user_id`

	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, tournamentID); err != nil {
		return nil, fmt.Errorf("list tournament user ids: %w", err)
	}
	return userIDs, nil
}

func snapshotToDomain(row rosterSnapshotTableModel) (roster.Snapshot, error) {
	players, err := unmarshalRosterPlayers(row.Players)
	if err != nil {
		return roster.Snapshot{}, err
	}
	return roster.Snapshot{
		UserID:       row.UserID,
		TournamentID: row.TournamentPublicID,
		Week:         row.Week,
		Players:      players,
		CreatedAt:    unixToTime(row.CapturedAt),
	}, nil
}

func currentToDomain(row currentRosterTableModel) (roster.Current, error) {
	players, err := unmarshalRosterPlayers(row.Players)
	if err != nil {
		return roster.Current{}, err
	}
	return roster.Current{
		UserID:             row.UserID,
		TournamentID:       row.TournamentPublicID,
		Players:            players,
		TransfersRemaining: row.TransfersRemaining,
		LastTransferAt:     nullUnixToTimePtr(row.LastTransferAt),
		UpdatedAt:          row.UpdatedAt,
	}, nil
}
