package weeklystat

import (
	"fmt"
	"strconv"
	"strings"
)

const keySeparator = "_"

// Key identifies one user's aggregate for one tournament week.
// Its string form `{userID}_{tournamentID}_{week}` is the document id used
// by every producer and consumer; NewKey is the only place the format is
// decided, so the parts must not contain the separator.
type Key struct {
	UserID       string
	TournamentID string
	Week         int
}

func NewKey(userID, tournamentID string, week int) (Key, error) {
	userID = strings.TrimSpace(userID)
	tournamentID = strings.TrimSpace(tournamentID)

	if userID == "" {
		return Key{}, fmt.Errorf("user id is required")
	}
	if tournamentID == "" {
		return Key{}, fmt.Errorf("tournament id is required")
	}
	if week <= 0 {
		return Key{}, fmt.Errorf("week must be greater than zero, got %d", week)
	}
	if strings.Contains(userID, keySeparator) {
		return Key{}, fmt.Errorf("user id %q must not contain %q", userID, keySeparator)
	}
	if strings.Contains(tournamentID, keySeparator) {
		return Key{}, fmt.Errorf("tournament id %q must not contain %q", tournamentID, keySeparator)
	}

	return Key{UserID: userID, TournamentID: tournamentID, Week: week}, nil
}

func (k Key) String() string {
	return k.UserID + keySeparator + k.TournamentID + keySeparator + strconv.Itoa(k.Week)
}

func ParseKey(raw string) (Key, error) {
	parts := strings.Split(strings.TrimSpace(raw), keySeparator)
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("invalid weekly stat key %q: expected 3 parts, got %d", raw, len(parts))
	}

	week, err := strconv.Atoi(parts[2])
	if err != nil {
		return Key{}, fmt.Errorf("invalid week in key %q: %w", raw, err)
	}

	return NewKey(parts[0], parts[1], week)
}
