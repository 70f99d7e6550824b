package rawdata

import "time"

// Payload is an upstream response kept verbatim for audit and replay.
type Payload struct {
	Source    string
	Ref       string
	Body      []byte
	FetchedAt time.Time
}
