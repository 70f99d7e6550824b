package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/crickarena/fantasy-cricket/internal/domain/player"
	qb "github.com/crickarena/fantasy-cricket/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (player.Master, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return player.Master{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Master{}, false, nil
		}
		return player.Master{}, false, fmt.Errorf("get player by id: %w", err)
	}
	return playerToDomain(row), true, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Master, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.IsNull("deleted_at")).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]player.Master, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerToDomain(row))
	}
	return out, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, items []player.Master) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := playerInsertModel{
			PublicID:       item.ID,
			Name:           item.Name,
			AlternateNames: pq.StringArray(item.AlternateNames),
			Role:           item.Role,
			Team:           item.Team,
			MatchesPlayed:  item.MatchesPlayed,
			TotalRuns:      item.TotalRuns,
			TotalWickets:   item.TotalWickets,
			CareerPoints:   item.CareerPoints,
		}
		query, args, err := qb.InsertModel("players", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    name = EXCLUDED.name,
    alternate_names = EXCLUDED.alternate_names,
    role = EXCLUDED.role,
    team = EXCLUDED.team,
    matches_played = EXCLUDED.matches_played,
    total_runs = EXCLUDED.total_runs,
    total_wickets = EXCLUDED.total_wickets,
    career_points = EXCLUDED.career_points,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player id=%s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert players tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) AddAlternateName(ctx context.Context, id, name string) error {
	query := `UPDATE players
SET alternate_names = array_append(alternate_names, $2), updated_at = NOW()
WHERE public_id = $1 AND deleted_at IS NULL AND NOT ($2 = ANY(alternate_names))`

	if _, err := r.db.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("add player alternate name: %w", err)
	}
	return nil
}
