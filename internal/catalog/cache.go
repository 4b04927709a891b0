package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

// Snapshot is the catalog as fetched from the backend at one point in time.
type Snapshot struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// Cache is an optional shared layer in front of the backend fetch, so several
// terminals against the same backend do not hammer it on every screen entry.
type Cache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
