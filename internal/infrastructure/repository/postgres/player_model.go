package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/crickarena/fantasy-cricket/internal/domain/player"
)

type playerTableModel struct {
	ID             int64          `db:"id"`
	PublicID       string         `db:"public_id"`
	Name           string         `db:"name"`
	AlternateNames pq.StringArray `db:"alternate_names"`
	Role           string         `db:"role"`
	Team           string         `db:"team"`
	MatchesPlayed  int            `db:"matches_played"`
	TotalRuns      int            `db:"total_runs"`
	TotalWickets   int            `db:"total_wickets"`
	CareerPoints   float64        `db:"career_points"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

type playerInsertModel struct {
	PublicID       string         `db:"public_id"`
	Name           string         `db:"name"`
	AlternateNames pq.StringArray `db:"alternate_names"`
	Role           string         `db:"role"`
	Team           string         `db:"team"`
	MatchesPlayed  int            `db:"matches_played"`
	TotalRuns      int            `db:"total_runs"`
	TotalWickets   int            `db:"total_wickets"`
	CareerPoints   float64        `db:"career_points"`
}

func playerToDomain(row playerTableModel) player.Master {
	return player.Master{
		ID:             row.PublicID,
		Name:           row.Name,
		AlternateNames: append([]string(nil), row.AlternateNames...),
		Role:           row.Role,
		Team:           row.Team,
		MatchesPlayed:  row.MatchesPlayed,
		TotalRuns:      row.TotalRuns,
		TotalWickets:   row.TotalWickets,
		CareerPoints:   row.CareerPoints,
		UpdatedAt:      row.UpdatedAt,
	}
}
