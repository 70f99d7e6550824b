package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
	qb "github.com/crickarena/fantasy-cricket/internal/platform/querybuilder"
)

type PerformanceRepository struct {
	db *sqlx.DB
}

func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

func (r *PerformanceRepository) ListByTournament(ctx context.Context, tournamentID string) ([]performance.Row, error) {
	query, args, err := qb.Select("*").From("player_performances").
		Where(qb.Eq("tournament_public_id", tournamentID)).
		OrderBy("week", "match_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list performances query: %w", err)
	}
	return r.selectRows(ctx, query, args)
}

func (r *PerformanceRepository) ListByTournamentWeek(ctx context.Context, tournamentID string, week int) ([]performance.Row, error) {
	query, args, err := qb.Select("*").From("player_performances").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("week", week),
		).
		OrderBy("match_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list week performances query: %w", err)
	}
	return r.selectRows(ctx, query, args)
}

// ReplaceWeek swaps the week's rows wholesale inside one transaction,
// mirroring the sheet's recompute-and-replace semantics.
func (r *PerformanceRepository) ReplaceWeek(ctx context.Context, tournamentID string, week int, rows []performance.Row) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace week performances: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.DeleteFrom("player_performances").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear week performances query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear week performances: %w", err)
	}

	for _, row := range rows {
		raw, err := sonic.Marshal(row.Raw)
		if err != nil {
			return fmt.Errorf("marshal performance row cells: %w", err)
		}
		insertModel := performanceRowInsertModel{
			TournamentPublicID: tournamentID,
			Week:               week,
			MatchID:            row.MatchID,
			PlayerName:         row.PlayerName,
			TotalPoints:        row.TotalPoints,
			Raw:                raw,
			SyncedAt:           timeToUnix(row.SyncedAt),
		}
		query, args, err := qb.InsertModel("player_performances", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert performance row query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert performance row player=%s match=%s: %w", row.PlayerName, row.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace week performances tx: %w", err)
	}
	return nil
}

func (r *PerformanceRepository) selectRows(ctx context.Context, query string, args []any) ([]performance.Row, error) {
	var rows []performanceRowTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select performance rows: %w", err)
	}

	out := make([]performance.Row, 0, len(rows))
	for _, row := range rows {
		mapped, err := performanceRowToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}
