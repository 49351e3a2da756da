package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"klineDataCore/config"
	"klineDataCore/internal/domain"
	"klineDataCore/internal/pipeline"
	"klineDataCore/internal/ports"
)

// Recorder receives service level measurements.
type Recorder interface {
	SymbolProcessed(d time.Duration)
	SymbolDropped(reason string)
	RefreshFinished(timeframe, result string)
	CacheLookup(timeframe, result string)
}

type noopRecorder struct{}

func (noopRecorder) SymbolProcessed(time.Duration)  {}
func (noopRecorder) SymbolDropped(string)           {}
func (noopRecorder) RefreshFinished(string, string) {}
func (noopRecorder) CacheLookup(string, string)     {}

// KlineService serves analyzed snapshots per timeframe. Snapshots come from the
// cache while fresh and are otherwise fetched, enriched and cached again.
type KlineService struct {
	cfg       *config.Config
	logger    ports.Logger
	source    ports.KlineSource
	repo      ports.DataCoreRepository // nil disables caching
	pipeline  *pipeline.IndicatorService
	recorder  Recorder
	now       func() time.Time
	newRunID  func() string
	onRefresh func(root *domain.DataCoreRoot)
}

// Option customizes a KlineService.
type Option func(*KlineService)

// WithRepository enables the snapshot cache.
func WithRepository(repo ports.DataCoreRepository) Option {
	return func(s *KlineService) { s.repo = repo }
}

// WithRecorder registers a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *KlineService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *KlineService) { s.now = now }
}

// WithRefreshHook is called with every snapshot produced by a refresh.
func WithRefreshHook(fn func(root *domain.DataCoreRoot)) Option {
	return func(s *KlineService) { s.onRefresh = fn }
}

// NewKlineService creates the application service.
func NewKlineService(
	cfg *config.Config,
	logger ports.Logger,
	source ports.KlineSource,
	indicators *pipeline.IndicatorService,
	opts ...Option,
) (*KlineService, error) {
	if cfg == nil || logger == nil || source == nil || indicators == nil {
		return nil, fmt.Errorf("missing required dependencies for KlineService")
	}
	if cfg.PipelineWorkers <= 0 {
		return nil, fmt.Errorf("configuration PipelineWorkers must be positive")
	}
	if len(cfg.Timeframes) == 0 {
		return nil, fmt.Errorf("configuration Timeframes must not be empty")
	}

	s := &KlineService{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		pipeline: indicators,
		recorder: noopRecorder{},
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// isFresh reports whether root may still be served: closeTime + staleThreshold >= now.
func (s *KlineService) isFresh(root *domain.DataCoreRoot) bool {
	expires := time.UnixMilli(root.CloseTime).Add(s.cfg.StaleThreshold)
	return !expires.Before(s.now())
}

// GetDataCoreRoot returns the analyzed snapshot of timeframe, refreshing it when the
// cached copy is missing or stale. Cache read failures fall back to a refresh.
func (s *KlineService) GetDataCoreRoot(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error) {
	if s.repo != nil {
		cached, err := s.repo.Get(ctx, timeframe)
		switch {
		case err != nil:
			s.recorder.CacheLookup(timeframe.String(), "error")
			s.logger.Warn(ctx, "Snapshot cache read failed, fetching from source", map[string]interface{}{
				"timeframe": timeframe.String(),
				"error":     err.Error(),
			})
		case cached == nil:
			s.recorder.CacheLookup(timeframe.String(), "miss")
		case s.isFresh(cached):
			s.recorder.CacheLookup(timeframe.String(), "hit")
			s.logger.Debug(ctx, "Serving cached snapshot", map[string]interface{}{
				"timeframe": timeframe.String(),
				"closeTime": cached.CloseTime,
			})
			return cached, nil
		default:
			s.recorder.CacheLookup(timeframe.String(), "stale")
			s.logger.Info(ctx, "Cached snapshot is stale", map[string]interface{}{
				"timeframe": timeframe.String(),
				"closeTime": cached.CloseTime,
			})
		}
	}
	return s.Refresh(ctx, timeframe)
}

// Refresh fetches timeframe from the source, enriches it and stores it in the cache.
// A failed cache write is logged and does not fail the refresh.
func (s *KlineService) Refresh(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error) {
	root, err := s.refresh(ctx, timeframe)
	if err != nil {
		s.recorder.RefreshFinished(timeframe.String(), "error")
		return nil, err
	}
	s.recorder.RefreshFinished(timeframe.String(), "ok")
	if s.onRefresh != nil {
		s.onRefresh(root)
	}
	return root, nil
}

func (s *KlineService) refresh(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error) {
	raw, err := s.source.FetchDataCoreRoot(ctx, timeframe)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch snapshot", map[string]interface{}{
			"timeframe": timeframe.String(),
			"source":    s.source.Name(),
		})
		return nil, fmt.Errorf("failed to fetch %s snapshot: %w", timeframe, err)
	}

	root, err := s.AnalyzeAndPrepare(ctx, raw)
	if err != nil {
		return nil, err
	}
	if len(root.Data) == 0 {
		err := fmt.Errorf("%w: every symbol of %s was dropped", ports.ErrEmptySnapshot, timeframe)
		s.logger.Error(ctx, err, "Nothing left to cache")
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, root); err != nil {
			s.logger.Error(ctx, err, "Failed to cache snapshot", map[string]interface{}{
				"timeframe": root.Timeframe,
			})
		}
	}
	return root, nil
}

// AnalyzeAndPrepare enriches every symbol of root with the indicator catalogue.
// Symbols run in parallel on at most PipelineWorkers goroutines and keep their input
// order. A symbol that fails is left out and listed in the audit. root is not modified.
func (s *KlineService) AnalyzeAndPrepare(ctx context.Context, root *domain.DataCoreRoot) (*domain.DataCoreRoot, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ports.ErrInvalidRequest)
	}
	timeframe := domain.Timeframe(root.Timeframe)
	if !timeframe.IsValid() {
		s.logger.Warn(ctx, "Snapshot has an unknown timeframe, time based indicators will be skipped", map[string]interface{}{
			"timeframe": root.Timeframe,
		})
	}

	enriched := make([]*domain.KlineData, len(root.Data))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.PipelineWorkers)

	for i, kd := range root.Data {
		i, kd := i, kd
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			out, err := s.pipeline.Enrich(gctx, kd.Symbol, kd.Data, timeframe)
			s.recorder.SymbolProcessed(time.Since(started))
			if err != nil {
				reason := "error"
				if errors.Is(err, ports.ErrMisalignedSeries) {
					reason = "misaligned"
				}
				s.recorder.SymbolDropped(reason)
				return nil
			}
			enriched[i] = &domain.KlineData{Symbol: kd.Symbol, Data: out.Candles}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
	}

	out := &domain.DataCoreRoot{
		Timeframe: root.Timeframe,
		CloseTime: root.CloseTime,
		Audit:     root.Audit,
		Data:      make([]domain.KlineData, 0, len(enriched)),
	}
	out.Audit.DroppedSymbols = append([]string(nil), root.Audit.DroppedSymbols...)
	for i, kd := range enriched {
		if kd == nil {
			out.Audit.DroppedSymbols = append(out.Audit.DroppedSymbols, root.Data[i].Symbol)
			continue
		}
		out.Data = append(out.Data, *kd)
	}
	out.Audit.SymbolCount = len(out.Data)
	out.Audit.AnalyzedAt = s.now().UnixMilli()
	if id, ok := ports.RunIDFromContext(ctx); ok {
		out.Audit.RunID = id
	}

	s.logger.Info(ctx, "Snapshot analyzed", map[string]interface{}{
		"timeframe": out.Timeframe,
		"symbols":   len(out.Data),
		"dropped":   len(out.Audit.DroppedSymbols) - len(root.Audit.DroppedSymbols),
	})
	return out, nil
}

// RefreshAll brings every configured timeframe up to date under one run id.
// It returns the first error after attempting all timeframes.
func (s *KlineService) RefreshAll(ctx context.Context) error {
	runID := s.newRunID()
	ctx = ports.WithRunID(ctx, runID)
	s.logger.Debug(ctx, "Refresh cycle started", map[string]interface{}{"timeframes": len(s.cfg.Timeframes)})

	var firstErr error
	for _, tf := range s.cfg.Timeframes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.GetDataCoreRoot(ctx, tf); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run refreshes all timeframes immediately and then every RefreshInterval until ctx
// is cancelled or SIGINT/SIGTERM is received.
func (s *KlineService) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting kline data service...", map[string]interface{}{
		"source":     s.source.Name(),
		"timeframes": len(s.cfg.Timeframes),
		"interval":   s.cfg.RefreshInterval.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	interval := s.cfg.RefreshInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RefreshAll(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn(ctx, "Refresh cycle finished with errors", map[string]interface{}{"error": err.Error()})
		}

		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Kline data service stopped.")
			return nil
		case <-ticker.C:
		}
	}
}
