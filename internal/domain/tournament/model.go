package tournament

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var AllStatuses = map[Status]struct{}{
	StatusUpcoming:  {},
	StatusActive:    {},
	StatusCompleted: {},
}

// TransferWindow is a scheduled period, identified by a week number unique
// within its tournament, during which users may change their rosters.
type TransferWindow struct {
	Week     int
	StartsAt time.Time
	EndsAt   time.Time
	Status   Status
}

type Tournament struct {
	ID                   string
	Name                 string
	ExternalSeriesRef    string
	StartsAt             time.Time
	EndsAt               time.Time
	RegistrationDeadline time.Time
	Status               Status
	Windows              []TransferWindow
}

func (t Tournament) ValidateBasic() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tournament name is required")
	}
	if _, ok := AllStatuses[t.Status]; !ok {
		return fmt.Errorf("unknown tournament status %q", t.Status)
	}

	seen := make(map[int]struct{}, len(t.Windows))
	for _, window := range t.Windows {
		if window.Week <= 0 {
			return fmt.Errorf("window week must be greater than zero, got %d", window.Week)
		}
		if _, exists := seen[window.Week]; exists {
			return fmt.Errorf("duplicate transfer window week %d", window.Week)
		}
		seen[window.Week] = struct{}{}
		if _, ok := AllStatuses[window.Status]; !ok {
			return fmt.Errorf("unknown window status %q for week %d", window.Status, window.Week)
		}
	}

	return nil
}

// ActiveWindow returns the single active transfer window, if any.
func (t Tournament) ActiveWindow() (TransferWindow, bool) {
	for _, window := range t.Windows {
		if window.Status == StatusActive {
			return window, true
		}
	}
	return TransferWindow{}, false
}
