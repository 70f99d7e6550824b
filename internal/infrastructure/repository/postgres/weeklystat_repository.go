package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/crickarena/fantasy-cricket/internal/domain/weeklystat"
	qb "github.com/crickarena/fantasy-cricket/internal/platform/querybuilder"
)

type WeeklyStatRepository struct {
	db *sqlx.DB
}

func NewWeeklyStatRepository(db *sqlx.DB) *WeeklyStatRepository {
	return &WeeklyStatRepository{db: db}
}

func (r *WeeklyStatRepository) GetByKey(ctx context.Context, key weeklystat.Key) (weeklystat.Stat, bool, error) {
	query, args, err := qb.Select("*").From("weekly_stats").
		Where(qb.Eq("stat_key", key.String())).
		ToSQL()
	if err != nil {
		return weeklystat.Stat{}, false, fmt.Errorf("build get weekly stat query: %w", err)
	}

	var row weeklyStatTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return weeklystat.Stat{}, false, nil
		}
		return weeklystat.Stat{}, false, fmt.Errorf("get weekly stat: %w", err)
	}

	stat, err := weeklyStatToDomain(row)
	if err != nil {
		return weeklystat.Stat{}, false, err
	}
	return stat, true, nil
}

func (r *WeeklyStatRepository) Upsert(ctx context.Context, stat weeklystat.Stat) error {
	breakdown, err := marshalBreakdown(stat.Breakdown)
	if err != nil {
		return err
	}

	insertModel := weeklyStatInsertModel{
		StatKey:            stat.Key.String(),
		UserID:             stat.Key.UserID,
		TournamentPublicID: stat.Key.TournamentID,
		Week:               stat.Key.Week,
		TotalPoints:        stat.TotalPoints,
		Breakdown:          breakdown,
		Rank:               stat.Rank,
		ProcessedMatchIDs:  pq.StringArray(stat.ProcessedMatchIDs),
		CapPoints:          stat.CapPoints,
		CapPointsAwarded:   stat.CapPointsAwarded,
		CalculatedAt:       timeToUnix(stat.CalculatedAt),
	}
	query, args, err := qb.InsertModel("weekly_stats", insertModel, `ON CONFLICT (stat_key)
DO UPDATE SET
    total_points = EXCLUDED.total_points,
    breakdown = EXCLUDED.breakdown,
    rank = EXCLUDED.rank,
    processed_match_ids = EXCLUDED.processed_match_ids,
    cap_points = EXCLUDED.cap_points,
    cap_points_awarded = EXCLUDED.cap_points_awarded,
    calculated_at = EXCLUDED.calculated_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert weekly stat query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert weekly stat: %w", err)
	}
	return nil
}

func (r *WeeklyStatRepository) ListByTournamentWeek(ctx context.Context, tournamentID string, week int) ([]weeklystat.Stat, error) {
	query, args, err := qb.Select("*").From("weekly_stats").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("week", week),
		).
		OrderBy("total_points DESC", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekly stats query: %w", err)
	}

	var rows []weeklyStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly stats: %w", err)
	}

	out := make([]weeklystat.Stat, 0, len(rows))
	for _, row := range rows {
		stat, err := weeklyStatToDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, stat)
	}
	return out, nil
}

func (r *WeeklyStatRepository) UpdateRank(ctx context.Context, key weeklystat.Key, rank int) error {
	query, args, err := qb.Update("weekly_stats").
		Set("rank", rank).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("stat_key", key.String())).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update weekly stat rank query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update weekly stat rank: %w", err)
	}
	return nil
}

// AwardCapBonus is a single conditional write: the insert covers users with
// no stat row yet, and the conflict update only fires while
// cap_points_awarded is still false. Zero rows affected means the bonus was
// already granted, so concurrent award runs cannot double-pay.
func (r *WeeklyStatRepository) AwardCapBonus(ctx context.Context, key weeklystat.Key, bonus float64) (bool, error) {
	insertModel := weeklyStatInsertModel{
		StatKey:            key.String(),
		UserID:             key.UserID,
		TournamentPublicID: key.TournamentID,
		Week:               key.Week,
		TotalPoints:        bonus,
		Breakdown:          []byte("[]"),
		ProcessedMatchIDs:  pq.StringArray{},
		CapPoints:          bonus,
		CapPointsAwarded:   true,
		CalculatedAt:       time.Now().Unix(),
	}
	query, args, err := qb.InsertModel("weekly_stats", insertModel, `ON CONFLICT (stat_key)
DO UPDATE SET
    total_points = weekly_stats.total_points + EXCLUDED.cap_points,
    cap_points = EXCLUDED.cap_points,
    cap_points_awarded = TRUE,
    calculated_at = EXCLUDED.calculated_at,
    updated_at = NOW()
WHERE weekly_stats.cap_points_awarded = FALSE`)
	if err != nil {
		return false, fmt.Errorf("build award cap bonus query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("award cap bonus: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award cap bonus rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *WeeklyStatRepository) ListTotalsByTournament(ctx context.Context, tournamentID string) ([]weeklystat.OverallStanding, error) {
	query, args, err := qb.Select("user_id", "SUM(total_points) AS total_points").
		From("weekly_stats").
		Where(qb.Eq("tournament_public_id", tournamentID)).
		GroupBy("user_id").
		OrderBy("total_points DESC", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekly stat totals query: %w", err)
	}

	var rows []struct {
		UserID      string  `db:"user_id"`
		TotalPoints float64 `db:"total_points"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly stat totals: %w", err)
	}

	out := make([]weeklystat.OverallStanding, 0, len(rows))
	for _, row := range rows {
		out = append(out, weeklystat.OverallStanding{
			TournamentID: tournamentID,
			UserID:       row.UserID,
			TotalPoints:  row.TotalPoints,
		})
	}
	return out, nil
}

func (r *WeeklyStatRepository) ReplaceOverallStandings(ctx context.Context, tournamentID string, standings []weeklystat.OverallStanding) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace overall standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.DeleteFrom("overall_standings").
		Where(qb.Eq("tournament_public_id", tournamentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear overall standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear overall standings: %w", err)
	}

	for _, standing := range standings {
		insertModel := overallStandingInsertModel{
			TournamentPublicID: tournamentID,
			UserID:             standing.UserID,
			TotalPoints:        standing.TotalPoints,
			Rank:               standing.Rank,
			CalculatedAt:       timeToUnix(standing.CalculatedAt),
		}
		query, args, err := qb.InsertModel("overall_standings", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert overall standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert overall standing user_id=%s: %w", standing.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace overall standings tx: %w", err)
	}
	return nil
}

func (r *WeeklyStatRepository) ListOverallStandings(ctx context.Context, tournamentID string) ([]weeklystat.OverallStanding, error) {
	query, args, err := qb.Select("*").From("overall_standings").
		Where(qb.Eq("tournament_public_id", tournamentID)).
		OrderBy("rank", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list overall standings query: %w", err)
	}

	var rows []overallStandingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list overall standings: %w", err)
	}

	out := make([]weeklystat.OverallStanding, 0, len(rows))
	for _, row := range rows {
		out = append(out, weeklystat.OverallStanding{
			TournamentID: row.TournamentPublicID,
			UserID:       row.UserID,
			TotalPoints:  row.TotalPoints,
			Rank:         row.Rank,
			CalculatedAt: unixToTime(row.CalculatedAt),
		})
	}
	return out, nil
}
