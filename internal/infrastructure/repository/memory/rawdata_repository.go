package memory

import (
	"context"
	"sync"

	"github.com/crickarena/fantasy-cricket/internal/domain/rawdata"
)

type RawDataRepository struct {
	mu    sync.RWMutex
	items []rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{}
}

func (r *RawDataRepository) Store(_ context.Context, payloads []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range payloads {
		p.Body = append([]byte(nil), p.Body...)
		r.items = append(r.items, p)
	}
	return nil
}

func (r *RawDataRepository) ListBySource(_ context.Context, source string, limit int) ([]rawdata.Payload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	out := make([]rawdata.Payload, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		p := r.items[i]
		if p.Source != source {
			continue
		}
		p.Body = append([]byte(nil), p.Body...)
		out = append(out, p)
	}
	return out, nil
}
