package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/crickarena/fantasy-cricket/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	leagues map[string]league.League
	invites map[string]league.Invite
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	for _, l := range leagues {
		items[l.ID] = cloneLeague(l)
	}
	return &LeagueRepository{
		leagues: items,
		invites: make(map[string]league.Invite),
	}
}

func (r *LeagueRepository) GetByID(_ context.Context, id string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leagues[id]
	if !ok {
		return league.League{}, false, nil
	}
	return cloneLeague(l), true, nil
}

func (r *LeagueRepository) ListByMember(_ context.Context, userID string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, 4)
	for _, l := range r.leagues {
		if l.HasMember(userID) {
			out = append(out, cloneLeague(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) Upsert(_ context.Context, l league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leagues[l.ID] = cloneLeague(l)
	return nil
}

func (r *LeagueRepository) AddMember(_ context.Context, leagueID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leagues[leagueID]
	if !ok {
		return nil
	}
	if l.HasMember(userID) {
		return nil
	}
	l.MemberIDs = append(l.MemberIDs, userID)
	r.leagues[leagueID] = l
	return nil
}

func (r *LeagueRepository) GetInvite(_ context.Context, inviteID string) (league.Invite, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invite, ok := r.invites[inviteID]
	if !ok {
		return league.Invite{}, false, nil
	}
	return invite, true, nil
}

func (r *LeagueRepository) ListInvitesByInvitee(_ context.Context, inviteeID string, status league.InviteStatus) ([]league.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.Invite, 0, 4)
	for _, invite := range r.invites {
		if invite.InviteeID != inviteeID {
			continue
		}
		if status != "" && invite.Status != status {
			continue
		}
		out = append(out, invite)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *LeagueRepository) CreateInvite(_ context.Context, invite league.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.invites {
		if existing.LeagueID == invite.LeagueID && existing.InviteeID == invite.InviteeID {
			// One invite per league and invitee; later duplicates lose.
			return nil
		}
	}
	r.invites[invite.ID] = invite
	return nil
}

func (r *LeagueRepository) UpdateInviteStatus(_ context.Context, inviteID string, status league.InviteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invite, ok := r.invites[inviteID]
	if !ok {
		return nil
	}
	invite.Status = status
	r.invites[inviteID] = invite
	return nil
}

func cloneLeague(l league.League) league.League {
	l.MemberIDs = append([]string(nil), l.MemberIDs...)
	return l
}
