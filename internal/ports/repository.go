package ports

import (
	"context"

	"klineDataCore/internal/domain"
)

// DataCoreRepository caches analyzed snapshots, one per timeframe.
// Saving a snapshot replaces the previous one for the same timeframe.
type DataCoreRepository interface {
	// Get retrieves the snapshot for a timeframe.
	// Returns nil, nil if nothing is cached.
	Get(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error)
	// Save stores root under root.Timeframe.
	Save(ctx context.Context, root *domain.DataCoreRoot) error
	// Clear removes every cached snapshot.
	Clear(ctx context.Context) error
	// Close releases the underlying connection.
	Close() error
}
