package pipeline

import (
	"context"
	"fmt"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"
)

// Enriched is the analysis output of one symbol.
type Enriched struct {
	Candles   []domain.Candle
	OpenTimes []int64
	Result    domain.IndicatorResult
}

// Enrich converts candles to a series, computes every indicator and attaches the
// values to the trailing candles the series was trimmed to.
//
// If the number of retained candles differs from the indicator index count, or any
// indicator array has a different length, nothing is returned and the error wraps
// ErrMisalignedSeries. The input candles are never modified.
func (s *IndicatorService) Enrich(ctx context.Context, symbol string, candles []domain.Candle, timeframe domain.Timeframe) (*Enriched, error) {
	series := domain.NewPriceSeries(candles, timeframe)
	result := s.CalculateAll(ctx, series)
	openTimes := s.OpenTimes(series)

	start := len(candles) - len(openTimes)
	if start < 0 {
		start = 0
	}
	aligned := candles[start:]

	if err := checkAlignment(aligned, openTimes, result); err != nil {
		s.logger.Error(ctx, err, "Dropping symbol with misaligned indicators", map[string]interface{}{
			"symbol":        symbol,
			"sourceCandles": len(candles),
			"candles":       len(aligned),
			"openTimes":     len(openTimes),
		})
		return nil, fmt.Errorf("symbol %s: %w", symbol, err)
	}

	if len(aligned) > 0 && aligned[0].OpenTime != openTimes[0] {
		s.logger.Warn(ctx, "First open time differs between candles and indicators", map[string]interface{}{
			"symbol":         symbol,
			"candleOpenTime": aligned[0].OpenTime,
			"seriesOpenTime": openTimes[0],
		})
	}

	enriched := make([]domain.Candle, len(aligned))
	for i, c := range aligned {
		values := make(map[string]float64, len(result))
		for key, arr := range result {
			values[key] = arr[i]
		}
		c.Indicators = values
		enriched[i] = c
	}

	s.logger.Debug(ctx, "Symbol enriched", map[string]interface{}{
		"symbol":     symbol,
		"candles":    len(enriched),
		"indicators": len(result),
	})

	return &Enriched{Candles: enriched, OpenTimes: openTimes, Result: result}, nil
}

func checkAlignment(candles []domain.Candle, openTimes []int64, result domain.IndicatorResult) error {
	if len(candles) != len(openTimes) {
		return fmt.Errorf("%w: %d candles vs %d open times", ports.ErrMisalignedSeries, len(candles), len(openTimes))
	}
	for key, values := range result {
		if len(values) != len(openTimes) {
			return fmt.Errorf("%w: %s has %d values for %d candles", ports.ErrMisalignedSeries, key, len(values), len(openTimes))
		}
	}
	return nil
}
