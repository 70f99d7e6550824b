package league

import "context"

// Repository describes league and invite persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (League, bool, error)
	ListByMember(ctx context.Context, userID string) ([]League, error)
	Upsert(ctx context.Context, l League) error
	AddMember(ctx context.Context, leagueID, userID string) error

	GetInvite(ctx context.Context, inviteID string) (Invite, bool, error)
	ListInvitesByInvitee(ctx context.Context, inviteeID string, status InviteStatus) ([]Invite, error)
	CreateInvite(ctx context.Context, invite Invite) error
	UpdateInviteStatus(ctx context.Context, inviteID string, status InviteStatus) error
}
