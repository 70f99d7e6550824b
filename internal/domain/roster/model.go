package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const SquadSize = 11

var (
	ErrInvalidSquadSize  = errors.New("invalid squad size")
	ErrNoCaptain         = errors.New("roster must name exactly one captain")
	ErrNoViceCaptain     = errors.New("roster must name exactly one vice-captain")
	ErrCaptainIsVice     = errors.New("captain and vice-captain must differ")
	ErrDuplicatePlayer   = errors.New("duplicate player in roster")
	ErrUnknownPlayerRole = errors.New("unknown player role")
)

type Role string

const (
	RoleBatter       Role = "batter"
	RoleBowler       Role = "bowler"
	RoleAllRounder   Role = "all_rounder"
	RoleWicketKeeper Role = "wicket_keeper"
)

var AllRoles = map[Role]struct{}{
	RoleBatter:       {},
	RoleBowler:       {},
	RoleAllRounder:   {},
	RoleWicketKeeper: {},
}

// Player is one selected player inside a user's roster.
type Player struct {
	PlayerID      string
	Name          string
	Role          Role
	IsCaptain     bool
	IsViceCaptain bool
}

// Snapshot is the immutable record of a user's roster for a specific week.
// A later edit creates a new snapshot for the new week rather than mutating
// history.
type Snapshot struct {
	UserID       string
	TournamentID string
	Week         int
	Players      []Player
	CreatedAt    time.Time
}

// Current is the mutable live roster, adjusted directly by transfer actions.
type Current struct {
	UserID             string
	TournamentID       string
	Players            []Player
	TransfersRemaining int
	LastTransferAt     *time.Time
	UpdatedAt          time.Time
}

// ValidatePlayers checks roster composition invariants shared by the live
// roster and snapshots.
func ValidatePlayers(players []Player) error {
	if len(players) != SquadSize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidSquadSize, SquadSize, len(players))
	}

	seen := make(map[string]struct{}, len(players))
	captains := 0
	vices := 0
	for _, p := range players {
		if strings.TrimSpace(p.PlayerID) == "" {
			return fmt.Errorf("player id is required")
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("player name is required for %s", p.PlayerID)
		}
		if _, ok := AllRoles[p.Role]; !ok {
			return fmt.Errorf("%w: %q for player %s", ErrUnknownPlayerRole, p.Role, p.PlayerID)
		}
		if _, exists := seen[p.PlayerID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.PlayerID)
		}
		seen[p.PlayerID] = struct{}{}

		if p.IsCaptain {
			captains++
			if p.IsViceCaptain {
				return fmt.Errorf("%w: %s", ErrCaptainIsVice, p.PlayerID)
			}
		}
		if p.IsViceCaptain {
			vices++
		}
	}

	if captains != 1 {
		return fmt.Errorf("%w: got %d", ErrNoCaptain, captains)
	}
	if vices != 1 {
		return fmt.Errorf("%w: got %d", ErrNoViceCaptain, vices)
	}

	return nil
}
