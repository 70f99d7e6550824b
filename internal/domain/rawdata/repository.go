package rawdata

import "context"

type Repository interface {
	Store(ctx context.Context, payloads []Payload) error
	ListBySource(ctx context.Context, source string, limit int) ([]Payload, error)
}
