package player

import "context"

// Repository describes player master persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Master, bool, error)
	List(ctx context.Context) ([]Master, error)
	Upsert(ctx context.Context, items []Master) error

	// AddAlternateName appends an alias when an external source spells a
	// known player differently. Duplicates are ignored.
	AddAlternateName(ctx context.Context, id, name string) error
}
