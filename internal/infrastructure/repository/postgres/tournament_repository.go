package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
	qb "github.com/crickarena/fantasy-cricket/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament by id: %w", err)
	}

	windows, err := r.listWindows(ctx, row.PublicID)
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return tournamentToDomain(row, windows), true, nil
}

func (r *TournamentRepository) GetActive(ctx context.Context) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(
			qb.Eq("status", string(tournament.StatusActive)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("starts_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get active tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get active tournament: %w", err)
	}

	windows, err := r.listWindows(ctx, row.PublicID)
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return tournamentToDomain(row, windows), true, nil
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(qb.IsNull("deleted_at")).
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		windows, err := r.listWindows(ctx, row.PublicID)
		if err != nil {
			return nil, err
		}
		out = append(out, tournamentToDomain(row, windows))
	}
	return out, nil
}

func (r *TournamentRepository) Upsert(ctx context.Context, t tournament.Tournament) error {
	insertModel := tournamentInsertModel{
		PublicID:             t.ID,
		Name:                 t.Name,
		ExternalSeriesRef:    t.ExternalSeriesRef,
		StartsAt:             timeToUnix(t.StartsAt),
		EndsAt:               timeToUnix(t.EndsAt),
		RegistrationDeadline: timeToUnix(t.RegistrationDeadline),
		Status:               string(t.Status),
	}
	query, args, err := qb.InsertModel("tournaments", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    name = EXCLUDED.name,
    external_series_ref = EXCLUDED.external_series_ref,
    starts_at = EXCLUDED.starts_at,
    ends_at = EXCLUDED.ends_at,
    registration_deadline = EXCLUDED.registration_deadline,
    status = EXCLUDED.status,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert tournament query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament: %w", err)
	}
	return nil
}

func (r *TournamentRepository) ReplaceWindows(ctx context.Context, tournamentID string, windows []tournament.TransferWindow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace transfer windows: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update("transfer_windows").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear transfer windows query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear transfer windows: %w", err)
	}

	for _, window := range windows {
		insertModel := transferWindowInsertModel{
			TournamentPublicID: tournamentID,
			Week:               window.Week,
			StartsAt:           timeToUnix(window.StartsAt),
			EndsAt:             timeToUnix(window.EndsAt),
			Status:             string(window.Status),
		}
		query, args, err := qb.InsertModel("transfer_windows", insertModel, `ON CONFLICT (tournament_public_id, week) WHERE deleted_at IS NULL
DO UPDATE SET
    starts_at = EXCLUDED.starts_at,
    ends_at = EXCLUDED.ends_at,
    status = EXCLUDED.status,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert transfer window query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert transfer window week=%d: %w", window.Week, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace transfer windows tx: %w", err)
	}
	return nil
}

func (r *TournamentRepository) listWindows(ctx context.Context, tournamentID string) ([]transferWindowTableModel, error) {
	query, args, err := qb.Select("*").From("transfer_windows").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transfer windows query: %w", err)
	}

	var rows []transferWindowTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transfer windows: %w", err)
	}
	return rows, nil
}
