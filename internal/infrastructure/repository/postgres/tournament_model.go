package postgres

import (
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
)

type tournamentTableModel struct {
	ID                   int64      `db:"id"`
	PublicID             string     `db:"public_id"`
	Name                 string     `db:"name"`
	ExternalSeriesRef    string     `db:"external_series_ref"`
	StartsAt             int64      `db:"starts_at"`
	EndsAt               int64      `db:"ends_at"`
	RegistrationDeadline int64      `db:"registration_deadline"`
	Status               string     `db:"status"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
	DeletedAt            *time.Time `db:"deleted_at"`
}

type tournamentInsertModel struct {
	PublicID             string `db:"public_id"`
	Name                 string `db:"name"`
	ExternalSeriesRef    string `db:"external_series_ref"`
	StartsAt             int64  `db:"starts_at"`
	EndsAt               int64  `db:"ends_at"`
	RegistrationDeadline int64  `db:"registration_deadline"`
	Status               string `db:"status"`
}

type transferWindowTableModel struct {
	ID                 int64      `db:"id"`
	TournamentPublicID string     `db:"tournament_public_id"`
	Week               int        `db:"week"`
	StartsAt           int64      `db:"starts_at"`
	EndsAt             int64      `db:"ends_at"`
	Status             string     `db:"status"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}

type transferWindowInsertModel struct {
	TournamentPublicID string `db:"tournament_public_id"`
	Week               int    `db:"week"`
	StartsAt           int64  `db:"starts_at"`
	EndsAt             int64  `db:"ends_at"`
	Status             string `db:"status"`
}

func tournamentToDomain(row tournamentTableModel, windows []transferWindowTableModel) tournament.Tournament {
	out := tournament.Tournament{
		ID:                   row.PublicID,
		Name:                 row.Name,
		ExternalSeriesRef:    row.ExternalSeriesRef,
		StartsAt:             unixToTime(row.StartsAt),
		EndsAt:               unixToTime(row.EndsAt),
		RegistrationDeadline: unixToTime(row.RegistrationDeadline),
		Status:               tournament.Status(row.Status),
	}
	for _, window := range windows {
		out.Windows = append(out.Windows, tournament.TransferWindow{
			Week:     window.Week,
			StartsAt: unixToTime(window.StartsAt),
			EndsAt:   unixToTime(window.EndsAt),
			Status:   tournament.Status(window.Status),
		})
	}
	return out
}
