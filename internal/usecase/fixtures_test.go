package usecase

import (
	"time"

	"github.com/crickarena/fantasy-cricket/internal/domain/player"
	"github.com/crickarena/fantasy-cricket/internal/domain/roster"
	"github.com/crickarena/fantasy-cricket/internal/domain/tournament"
)

const (
	testTournamentID = "ipl-2026"
	testUserID       = "user-1"
)

func testTournament() tournament.Tournament {
	start := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	return tournament.Tournament{
		ID:                   testTournamentID,
		Name:                 "Indian Premier League 2026",
		ExternalSeriesRef:    "series-ipl-2026",
		StartsAt:             start,
		EndsAt:               start.AddDate(0, 2, 0),
		RegistrationDeadline: start.Add(-24 * time.Hour),
		Status:               tournament.StatusActive,
		Windows: []tournament.TransferWindow{
			{Week: 1, StartsAt: start, EndsAt: start.AddDate(0, 0, 7), Status: tournament.StatusCompleted},
			{Week: 2, StartsAt: start.AddDate(0, 0, 7), EndsAt: start.AddDate(0, 0, 14), Status: tournament.StatusActive},
			{Week: 3, StartsAt: start.AddDate(0, 0, 14), EndsAt: start.AddDate(0, 0, 21), Status: tournament.StatusUpcoming},
		},
	}
}

// testSquad is a valid eleven with Kohli as captain and Bumrah as vice.
func testSquad() []roster.Player {
	return []roster.Player{
		{PlayerID: "pl-kohli", Name: "Virat Kohli", Role: roster.RoleBatter, IsCaptain: true},
		{PlayerID: "pl-bumrah", Name: "Jasprit Bumrah", Role: roster.RoleBowler, IsViceCaptain: true},
		{PlayerID: "pl-sharma", Name: "Rohit Sharma", Role: roster.RoleBatter},
		{PlayerID: "pl-gill", Name: "Shubman Gill", Role: roster.RoleBatter},
		{PlayerID: "pl-yadav", Name: "Suryakumar Yadav", Role: roster.RoleBatter},
		{PlayerID: "pl-rahul", Name: "KL Rahul", Role: roster.RoleWicketKeeper},
		{PlayerID: "pl-pandya", Name: "Hardik Pandya", Role: roster.RoleAllRounder},
		{PlayerID: "pl-jadeja", Name: "Ravindra Jadeja", Role: roster.RoleAllRounder},
		{PlayerID: "pl-siraj", Name: "Mohammed Siraj", Role: roster.RoleBowler},
		{PlayerID: "pl-kuldeep", Name: "Kuldeep Yadav", Role: roster.RoleBowler},
		{PlayerID: "pl-jaiswal", Name: "Yashasvi Jaiswal", Role: roster.RoleBatter},
	}
}

func testMasters() []player.Master {
	masters := make([]player.Master, 0, 11)
	for _, p := range testSquad() {
		masters = append(masters, player.Master{
			ID:   p.PlayerID,
			Name: p.Name,
			Role: string(p.Role),
		})
	}
	// Aliases as the sheet spells them.
	masters[0].AlternateNames = []string{"V Kohli"}
	masters[1].AlternateNames = []string{"J Bumrah"}
	return masters
}

func snapshotFor(userID string, week int, players []roster.Player) roster.Snapshot {
	return roster.Snapshot{
		UserID:       userID,
		TournamentID: testTournamentID,
		Week:         week,
		Players:      players,
		CreatedAt:    time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC),
	}
}

func currentFor(userID string, players []roster.Player) roster.Current {
	return roster.Current{
		UserID:             userID,
		TournamentID:       testTournamentID,
		Players:            players,
		TransfersRemaining: 2,
		UpdatedAt:          time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC),
	}
}
