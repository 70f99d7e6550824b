package league

import (
	"fmt"
	"time"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
)

// League is a private group of users competing on the shared tournament
// leaderboard. Membership is plain set semantics.
type League struct {
	ID           string
	TournamentID string
	Name         string
	CreatorID    string
	MemberIDs    []string
	CreatedAt    time.Time
}

type Invite struct {
	ID        string
	LeagueID  string
	InviteeID string
	InviterID string
	Status    InviteStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l League) ValidateBasic() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.TournamentID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.CreatorID == "" {
		return fmt.Errorf("creator id is required")
	}
	return nil
}

func (l League) HasMember(userID string) bool {
	for _, id := range l.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
