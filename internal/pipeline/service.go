// Package pipeline runs the indicator catalogue over candle series and attaches
// the results back onto the candles.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"
)

// DefaultMaxCandles is the number of trailing candles kept for analysis.
const DefaultMaxCandles = 400

// Observer receives pipeline events, typically to feed metrics. Implementations
// must be safe for concurrent use.
type Observer interface {
	IndicatorFailed(name string)
	IndicatorDuration(name string, d time.Duration)
}

// IndicatorService runs every catalogue entry over one series at a time.
// It holds no per-call state and may be shared between goroutines.
type IndicatorService struct {
	logger     ports.Logger
	catalogue  []Entry
	transforms map[Transform]CalcFunc
	maxCandles int
	observer   Observer
}

// Option customizes an IndicatorService.
type Option func(*IndicatorService)

// WithCatalogue replaces the default catalogue.
func WithCatalogue(entries []Entry) Option {
	return func(s *IndicatorService) {
		s.catalogue = append([]Entry(nil), entries...)
	}
}

// WithTransform registers an additional transform (or replaces a built-in one)
// for this service only.
func WithTransform(t Transform, fn CalcFunc) Option {
	return func(s *IndicatorService) {
		s.transforms[t] = fn
	}
}

// WithMaxCandles overrides the number of trailing candles retained.
func WithMaxCandles(n int) Option {
	return func(s *IndicatorService) {
		if n > 0 {
			s.maxCandles = n
		}
	}
}

// WithObserver registers an observer for failures and timings.
func WithObserver(o Observer) Option {
	return func(s *IndicatorService) {
		s.observer = o
	}
}

// NewIndicatorService creates a service running DefaultCatalogue unless overridden.
func NewIndicatorService(logger ports.Logger, opts ...Option) (*IndicatorService, error) {
	if logger == nil {
		return nil, fmt.Errorf("missing required logger for IndicatorService")
	}
	s := &IndicatorService{
		logger:     logger,
		catalogue:  DefaultCatalogue(),
		transforms: make(map[Transform]CalcFunc, len(registry)),
		maxCandles: DefaultMaxCandles,
	}
	for t, fn := range registry {
		s.transforms[t] = fn
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MaxCandles returns the retained series length.
func (s *IndicatorService) MaxCandles() int {
	return s.maxCandles
}

// Trim keeps the trailing MaxCandles entries of every array in series.
// The timeframe passes through unchanged.
func (s *IndicatorService) Trim(series domain.PriceSeries) domain.PriceSeries {
	n := series.Len()
	if n <= s.maxCandles {
		return series
	}
	start := n - s.maxCandles

	series.OpenTime = series.OpenTime[start:]
	series.OpenPrice = trimTail(series.OpenPrice, start)
	series.HighPrice = trimTail(series.HighPrice, start)
	series.LowPrice = trimTail(series.LowPrice, start)
	series.ClosePrice = trimTail(series.ClosePrice, start)
	series.Volume = trimTail(series.Volume, start)
	series.OpenInterest = trimTail(series.OpenInterest, start)
	series.FundingRate = trimTail(series.FundingRate, start)
	series.VolumeDelta = trimTail(series.VolumeDelta, start)
	return series
}

func trimTail(values []float64, start int) []float64 {
	if values == nil {
		return nil
	}
	if start >= len(values) {
		return values[:0]
	}
	return values[start:]
}

// CalculateAll trims series and runs the catalogue in order, merging every
// entry's output into one map. An entry that fails is logged and left out.
func (s *IndicatorService) CalculateAll(ctx context.Context, series domain.PriceSeries) domain.IndicatorResult {
	trimmed := s.Trim(series)
	result := make(domain.IndicatorResult)

	for _, entry := range s.catalogue {
		started := time.Now()
		out, err := entry.calculateWith(s.transforms, trimmed)
		if s.observer != nil {
			s.observer.IndicatorDuration(entry.Name, time.Since(started))
		}
		if err != nil {
			s.logger.Error(ctx, err, "Indicator calculation failed", map[string]interface{}{
				"indicator": entry.Name,
				"transform": string(entry.Transform),
				"timeframe": trimmed.Timeframe.String(),
			})
			if s.observer != nil {
				s.observer.IndicatorFailed(entry.Name)
			}
			continue
		}
		result.Merge(out)
	}
	return result
}

// OpenTimes returns the open times of the trimmed series.
func (s *IndicatorService) OpenTimes(series domain.PriceSeries) []int64 {
	return s.Trim(series).OpenTime
}
