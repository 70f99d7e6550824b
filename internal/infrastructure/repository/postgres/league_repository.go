package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/crickarena/fantasy-cricket/internal/domain/league"
	qb "github.com/crickarena/fantasy-cricket/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, id string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}
	return leagueToDomain(row), true, nil
}

func (r *LeagueRepository) ListByMember(ctx context.Context, userID string) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Expr("? = ANY(member_ids)", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by member query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues by member: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueToDomain(row))
	}
	return out, nil
}

func (r *LeagueRepository) Upsert(ctx context.Context, l league.League) error {
	insertModel := leagueInsertModel{
		PublicID:           l.ID,
		TournamentPublicID: l.TournamentID,
		Name:               l.Name,
		CreatorID:          l.CreatorID,
		MemberIDs:          pq.StringArray(l.MemberIDs),
	}
	query, args, err := qb.InsertModel("leagues", insertModel, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    name = EXCLUDED.name,
    member_ids = EXCLUDED.member_ids,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert league: %w", err)
	}
	return nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, leagueID, userID string) error {
	query := `UPDATE leagues
SET member_ids = array_append(member_ids, $2), updated_at = NOW()
WHERE public_id = $1 AND deleted_at IS NULL AND NOT ($2 = ANY(member_ids))`

	if _, err := r.db.ExecContext(ctx, query, leagueID, userID); err != nil {
		return fmt.Errorf("add league member: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetInvite(ctx context.Context, inviteID string) (league.Invite, bool, error) {
	query, args, err := qb.Select("*").From("league_invites").
		Where(
			qb.Eq("public_id", inviteID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return league.Invite{}, false, fmt.Errorf("build get league invite query: %w", err)
	}

	var row leagueInviteTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Invite{}, false, nil
		}
		return league.Invite{}, false, fmt.Errorf("get league invite: %w", err)
	}
	return inviteToDomain(row), true, nil
}

func (r *LeagueRepository) ListInvitesByInvitee(ctx context.Context, inviteeID string, status league.InviteStatus) ([]league.Invite, error) {
	conditions := []qb.Condition{
		qb.Eq("invitee_id", inviteeID),
		qb.IsNull("deleted_at"),
	}
	if status != "" {
		conditions = append(conditions, qb.Eq("status", string(status)))
	}

	query, args, err := qb.Select("*").From("league_invites").
		Where(conditions...).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league invites query: %w", err)
	}

	var rows []leagueInviteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league invites: %w", err)
	}

	out := make([]league.Invite, 0, len(rows))
	for _, row := range rows {
		out = append(out, inviteToDomain(row))
	}
	return out, nil
}

func (r *LeagueRepository) CreateInvite(ctx context.Context, invite league.Invite) error {
	insertModel := leagueInviteInsertModel{
		PublicID:       invite.ID,
		LeaguePublicID: invite.LeagueID,
		InviteeID:      invite.InviteeID,
		InviterID:      invite.InviterID,
		Status:         string(invite.Status),
	}
	query, args, err := qb.InsertModel("league_invites", insertModel,
		"ON CONFLICT (league_public_id, invitee_id) WHERE deleted_at IS NULL DO NOTHING")
	if err != nil {
		return fmt.Errorf("build create league invite query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create league invite: %w", err)
	}
	return nil
}

func (r *LeagueRepository) UpdateInviteStatus(ctx context.Context, inviteID string, status league.InviteStatus) error {
	query, args, err := qb.Update("league_invites").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", inviteID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league invite status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update league invite status: %w", err)
	}
	return nil
}
