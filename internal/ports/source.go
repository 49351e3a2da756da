package ports

import (
	"context"

	"klineDataCore/internal/domain"
)

// KlineSource fetches raw (not yet analyzed) candle snapshots.
// This abstraction allows switching between the cache API and a direct exchange connection.
type KlineSource interface {
	// FetchDataCoreRoot retrieves the candles of every tracked symbol for a timeframe.
	FetchDataCoreRoot(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error)
	// Name identifies the source in logs and snapshot audits.
	Name() string
}
