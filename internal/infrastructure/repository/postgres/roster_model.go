package postgres

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
)

type rosterSnapshotTableModel struct {
	ID                 int64     `db:"id"`
	UserID             string    `db:"user_id"`
	TournamentPublicID string    `db:"tournament_public_id"`
	Week               int       `db:"week"`
	Players            []byte    `db:"players"`
	CapturedAt         int64     `db:"captured_at"`
	CreatedAt          time.Time `db:"created_at"`
}

type rosterSnapshotInsertModel struct {
	UserID             string `db:"user_id"`
	TournamentPublicID string `db:"tournament_public_id"`
	Week               int    `db:"week"`
	Players            []byte `db:"players"`
	CapturedAt         int64  `db:"captured_at"`
}

type currentRosterTableModel struct {
	ID                 int64      `db:"id"`
	UserID             string     `db:"user_id"`
	TournamentPublicID string     `db:"tournament_public_id"`
	Players            []byte     `db:"players"`
	TransfersRemaining int        `db:"transfers_remaining"`
	LastTransferAt     *int64     `db:"last_transfer_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}

type currentRosterInsertModel struct {
	UserID             string `db:"user_id"`
	TournamentPublicID string `db:"tournament_public_id"`
	Players            []byte `db:"players"`
	TransfersRemaining int    `db:"transfers_remaining"`
	LastTransferAt     *int64 `db:"last_transfer_at"`
}

// rosterPlayerDoc is the JSONB shape for one selected player. It is a
// persistence detail, kept separate from the domain struct so column and
// document naming can evolve independently.
type rosterPlayerDoc struct {
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	IsCaptain     bool   `json:"is_captain"`
	IsViceCaptain bool   `json:"is_vice_captain"`
}

func marshalRosterPlayers(players []roster.Player) ([]byte, error) {
	docs := make([]rosterPlayerDoc, 0, len(players))
	for _, p := range players {
		docs = append(docs, rosterPlayerDoc{
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			Role:          string(p.Role),
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}
	encoded, err := sonic.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal roster players: %w", err)
	}
	return encoded, nil
}

func unmarshalRosterPlayers(raw []byte) ([]roster.Player, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var docs []rosterPlayerDoc
	if err := sonic.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal roster players: %w", err)
	}
	out := make([]roster.Player, 0, len(docs))
	for _, doc := range docs {
		out = append(out, roster.Player{
			PlayerID:      doc.PlayerID,
			Name:          doc.Name,
			Role:          roster.Role(doc.Role),
			IsCaptain:     doc.IsCaptain,
			IsViceCaptain: doc.IsViceCaptain,
		})
	}
	return out, nil
}
