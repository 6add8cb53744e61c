package backend

import (
	"context"
	"sync/atomic"

	"github.com/use-agent/velocity/models"
)

// Discard accepts every write without sending it anywhere. Product IDs are
// assigned sequentially. Used for dry runs.
type Discard struct {
	next atomic.Int64
}

func (d *Discard) CreateProduct(context.Context, models.ProductInput) (int, error) {
	return int(d.next.Add(1)), nil
}

func (d *Discard) SavePrice(_ context.Context, p models.VerifiedPrice) error {
	if !p.Valid() {
		return models.NewValidationError("refusing to persist unverified price")
	}
	return nil
}

func (d *Discard) SaveSentiment(_ context.Context, s models.VerifiedSentiment) error {
	if !s.Valid() {
		return models.NewValidationError("refusing to persist unverified sentiment")
	}
	return nil
}

func (d *Discard) SendLog(context.Context, models.LogEntry) error { return nil }
