package postgres

import (
	"database/sql"
	"time"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func unixToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.Unix(value, 0).UTC()
}

func timeToUnix(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.Unix()
}

func nullableUnix(value *time.Time) *int64 {
	if value == nil || value.IsZero() {
		return nil
	}
	unix := value.Unix()
	return &unix
}

func nullUnixToTimePtr(value *int64) *time.Time {
	if value == nil || *value <= 0 {
		return nil
	}
	t := time.Unix(*value, 0).UTC()
	return &t
}
