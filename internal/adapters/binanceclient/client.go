package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	maxKlineLimit = 1500
)

// Client implements ports.KlineSource by building snapshots from Binance futures klines.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	symbols       []string
	limit         int
	now           func() time.Time
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	BaseURL    string // overrides the production/testnet URL when set
	Symbols    []string
	Limit      int // klines requested per symbol
	Logger     ports.Logger
	Now        func() time.Time
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols configured for Binance source", ports.ErrConfigurationError)
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Debug(context.Background(), "Binance keys not set, using public endpoints only")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	switch {
	case cfg.BaseURL != "":
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance kline source configured", map[string]interface{}{
		"baseURL": client.BaseURL,
		"symbols": len(cfg.Symbols),
	})

	limit := cfg.Limit
	if limit <= 0 || limit > maxKlineLimit {
		limit = 500
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	symbols := make([]string, len(cfg.Symbols))
	for i, s := range cfg.Symbols {
		symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		symbols:       symbols,
		limit:         limit,
		now:           now,
	}, nil
}

// Name identifies the source in snapshot audits.
func (c *Client) Name() string {
	return "binance"
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature or API key
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1120, -1121: // Parameter errors, invalid interval or symbol
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Ping checks connectivity to the futures API.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, err, "Ping")
	}
	return nil
}

// GetCandles returns the closed klines of symbol as candles, oldest first, and the
// close time of the last one.
func (c *Client) GetCandles(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Candle, int64, error) {
	op := "GetCandles"
	klines, err := c.futuresClient.NewKlinesService().
		Symbol(symbol).
		Interval(timeframe.String()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, 0, c.handleError(ctx, err, op)
	}

	nowMs := c.now().UnixMilli()
	candles := make([]domain.Candle, 0, len(klines))
	var closeTime int64
	for _, bk := range klines {
		if bk == nil || bk.CloseTime >= nowMs {
			continue // still forming
		}
		candle, err := translateBinanceKline(bk)
		if err != nil {
			return nil, 0, c.handleError(ctx, fmt.Errorf("failed to translate kline of %s: %w", symbol, err), op)
		}
		candles = append(candles, candle)
		closeTime = bk.CloseTime
	}
	return candles, closeTime, nil
}

// FetchDataCoreRoot builds a snapshot of every configured symbol. Symbols that fail
// are logged and left out; the call fails only when none could be fetched.
func (c *Client) FetchDataCoreRoot(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error) {
	if !timeframe.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTimeframe, timeframe)
	}

	root := &domain.DataCoreRoot{
		Timeframe: timeframe.String(),
		Audit: domain.Audit{
			Source:    c.Name(),
			FetchedAt: c.now().UnixMilli(),
		},
	}

	var lastErr error
	for _, symbol := range c.symbols {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
		}
		candles, closeTime, err := c.GetCandles(ctx, symbol, timeframe, c.limit)
		if err != nil {
			lastErr = err
			root.Audit.DroppedSymbols = append(root.Audit.DroppedSymbols, symbol)
			continue
		}
		if len(candles) == 0 {
			root.Audit.DroppedSymbols = append(root.Audit.DroppedSymbols, symbol)
			continue
		}
		if closeTime > root.CloseTime {
			root.CloseTime = closeTime
		}
		root.Data = append(root.Data, domain.KlineData{Symbol: symbol, Data: candles})
	}

	if len(root.Data) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w: binance %s", ports.ErrEmptySnapshot, timeframe)
	}
	root.Audit.SymbolCount = len(root.Data)

	c.logger.Info(ctx, "Snapshot built from Binance", map[string]interface{}{
		"timeframe": root.Timeframe,
		"closeTime": root.CloseTime,
		"symbols":   len(root.Data),
		"dropped":   len(root.Audit.DroppedSymbols),
	})
	return root, nil
}

// translateBinanceKline keeps prices as the exchange's decimal strings and derives
// the volume delta as taker buy volume minus taker sell volume.
func translateBinanceKline(bk *futures.Kline) (domain.Candle, error) {
	vol, err := decimal.NewFromString(bk.Volume)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}
	takerBuy, err := decimal.NewFromString(bk.TakerBuyBaseAssetVolume)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing taker buy volume '%s': %w", bk.TakerBuyBaseAssetVolume, err)
	}
	for name, v := range map[string]string{"open": bk.Open, "high": bk.High, "low": bk.Low, "close": bk.Close} {
		if _, err := decimal.NewFromString(v); err != nil {
			return domain.Candle{}, fmt.Errorf("parsing %s price '%s': %w", name, v, err)
		}
	}

	return domain.Candle{
		OpenTime:    bk.OpenTime,
		Open:        bk.Open,
		High:        bk.High,
		Low:         bk.Low,
		Close:       bk.Close,
		Volume:      bk.Volume,
		VolumeDelta: takerBuy.Mul(decimal.NewFromInt(2)).Sub(vol).String(),
	}, nil
}

var _ ports.KlineSource = (*Client)(nil)
