package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/crickarena/fantasy-cricket/internal/domain/league"
)

type leagueTableModel struct {
	ID                 int64          `db:"id"`
	PublicID           string         `db:"public_id"`
	TournamentPublicID string         `db:"tournament_public_id"`
	Name               string         `db:"name"`
	CreatorID          string         `db:"creator_id"`
	MemberIDs          pq.StringArray `db:"member_ids"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
	DeletedAt          *time.Time     `db:"deleted_at"`
}

type leagueInsertModel struct {
	PublicID           string         `db:"public_id"`
	TournamentPublicID string         `db:"tournament_public_id"`
	Name               string         `db:"name"`
	CreatorID          string         `db:"creator_id"`
	MemberIDs          pq.StringArray `db:"member_ids"`
}

type leagueInviteTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	LeaguePublicID string     `db:"league_public_id"`
	InviteeID      string     `db:"invitee_id"`
	InviterID      string     `db:"inviter_id"`
	Status         string     `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type leagueInviteInsertModel struct {
	PublicID       string `db:"public_id"`
	LeaguePublicID string `db:"league_public_id"`
	InviteeID      string `db:"invitee_id"`
	InviterID      string `db:"inviter_id"`
	Status         string `db:"status"`
}

func leagueToDomain(row leagueTableModel) league.League {
	return league.League{
		ID:           row.PublicID,
		TournamentID: row.TournamentPublicID,
		Name:         row.Name,
		CreatorID:    row.CreatorID,
		MemberIDs:    append([]string(nil), row.MemberIDs...),
		CreatedAt:    row.CreatedAt,
	}
}

func inviteToDomain(row leagueInviteTableModel) league.Invite {
	return league.Invite{
		ID:        row.PublicID,
		LeagueID:  row.LeaguePublicID,
		InviteeID: row.InviteeID,
		InviterID: row.InviterID,
		Status:    league.InviteStatus(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
