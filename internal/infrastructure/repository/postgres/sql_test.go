package postgres

import (
	"database/sql"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to be not-found")
	}
	if isNotFound(sql.ErrConnDone) {
		t.Fatalf("expected other errors to not be not-found")
	}
}

func TestUnixTimeRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second).UTC()
	if got := unixToTime(timeToUnix(now)); !got.Equal(now) {
		t.Fatalf("round trip mismatch: got=%v want=%v", got, now)
	}

	if !unixToTime(0).IsZero() {
		t.Fatalf("expected zero time for zero unix value")
	}
	if timeToUnix(time.Time{}) != 0 {
		t.Fatalf("expected zero unix value for zero time")
	}
}

func TestNullableUnix(t *testing.T) {
	t.Parallel()

	if nullableUnix(nil) != nil {
		t.Fatalf("expected nil for nil time")
	}

	now := time.Now().Truncate(time.Second).UTC()
	unix := nullableUnix(&now)
	if unix == nil || *unix != now.Unix() {
		t.Fatalf("unexpected unix value: %v", unix)
	}

	back := nullUnixToTimePtr(unix)
	if back == nil || !back.Equal(now) {
		t.Fatalf("round trip mismatch: got=%v want=%v", back, now)
	}
	if nullUnixToTimePtr(nil) != nil {
		t.Fatalf("expected nil for nil unix value")
	}
}
