package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
	qb "github.com/crickarena/fantasy-cricket/internal/platform/querybuilder"
)

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

type rawPayloadTableModel struct {
	ID        int64     `db:"id"`
	Source    string    `db:"source"`
	Ref       string    `db:"ref"`
	Body      []byte    `db:"body"`
	FetchedAt int64     `db:"fetched_at"`
	CreatedAt time.Time `db:"created_at"`
}

type rawPayloadInsertModel struct {
	Source    string `db:"source"`
	Ref       string `db:"ref"`
	Body      []byte `db:"body"`
	FetchedAt int64  `db:"fetched_at"`
}

func (r *RawDataRepository) Store(ctx context.Context, payloads []rawdata.Payload) error {
	for _, payload := range payloads {
		insertModel := rawPayloadInsertModel{
			Source:    payload.Source,
			Ref:       payload.Ref,
			Body:      payload.Body,
			FetchedAt: timeToUnix(payload.FetchedAt),
		}
		query, args, err := qb.InsertModel("raw_payloads", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert raw payload query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert raw payload source=%s ref=%s: %w", payload.Source, payload.Ref, err)
		}
	}
	return nil
}

func (r *RawDataRepository) ListBySource(ctx context.Context, source string, limit int) ([]rawdata.Payload, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := qb.Select("*").From("raw_payloads").
		Where(qb.Eq("source", source)).
		OrderBy("fetched_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list raw payloads query: %w", err)
	}

	var rows []rawPayloadTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list raw payloads: %w", err)
	}

	out := make([]rawdata.Payload, 0, len(rows))
	for _, row := range rows {
		out = append(out, rawdata.Payload{
			Source:    row.Source,
			Ref:       row.Ref,
			Body:      row.Body,
			FetchedAt: unixToTime(row.FetchedAt),
		})
	}
	return out, nil
}
