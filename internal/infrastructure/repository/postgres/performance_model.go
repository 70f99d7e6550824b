package postgres

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/crickarena/fantasy-cricket/internal/domain/performance"
)

type performanceRowTableModel struct {
	ID                 int64     `db:"id"`
	TournamentPublicID string    `db:"tournament_public_id"`
	Week               int       `db:"week"`
	MatchID            string    `db:"match_id"`
	PlayerName         string    `db:"player_name"`
	TotalPoints        float64   `db:"total_points"`
	Raw                []byte    `db:"raw"`
	SyncedAt           int64     `db:"synced_at"`
	CreatedAt          time.Time `db:"created_at"`
}

type performanceRowInsertModel struct {
	TournamentPublicID string  `db:"tournament_public_id"`
	Week               int     `db:"week"`
	MatchID            string  `db:"match_id"`
	PlayerName         string  `db:"player_name"`
	TotalPoints        float64 `db:"total_points"`
	Raw                []byte  `db:"raw"`
	SyncedAt           int64   `db:"synced_at"`
}

func performanceRowToDomain(row performanceRowTableModel) (performance.Row, error) {
	var raw map[string]string
	if len(row.Raw) > 0 {
		if err := sonic.Unmarshal(row.Raw, &raw); err != nil {
			return performance.Row{}, fmt.Errorf("unmarshal performance row cells: %w", err)
		}
	}
	return performance.Row{
		TournamentID: row.TournamentPublicID,
		Week:         row.Week,
		MatchID:      row.MatchID,
		PlayerName:   row.PlayerName,
		TotalPoints:  row.TotalPoints,
		Raw:          raw,
		SyncedAt:     unixToTime(row.SyncedAt),
	}, nil
}
