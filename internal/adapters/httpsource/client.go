// Package httpsource fetches ready-made candle snapshots from the kline cache API.
package httpsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"
)

const cacheEndpoint = "/get-cache/"

// Config configures the HTTP source.
type Config struct {
	PrimaryURL        string
	SecondaryURL      string
	PrimaryTimeframes []domain.Timeframe // served by PrimaryURL, the rest by SecondaryURL
	Token             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSec    float64
	RetryInterval     time.Duration // initial backoff interval
	HTTPClient        *http.Client
	Logger            ports.Logger
}

// Client implements ports.KlineSource over HTTP.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	primaryURL    string
	secondaryURL  string
	primary       map[domain.Timeframe]bool
	token         string
	maxRetries    int
	retryInterval time.Duration
	logger        ports.Logger
}

// NewClient validates cfg and creates the client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for HTTP source")
	}
	if cfg.PrimaryURL == "" && cfg.SecondaryURL == "" {
		return nil, fmt.Errorf("%w: no kline API URL configured", ports.ErrConfigurationError)
	}
	if cfg.Token == "" {
		cfg.Logger.Warn(context.Background(), "Kline API token is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	primary := make(map[domain.Timeframe]bool, len(cfg.PrimaryTimeframes))
	for _, tf := range cfg.PrimaryTimeframes {
		primary[tf] = true
	}

	return &Client{
		httpClient:    httpClient,
		limiter:       rate.NewLimiter(limit, 1),
		primaryURL:    strings.TrimRight(cfg.PrimaryURL, "/"),
		secondaryURL:  strings.TrimRight(cfg.SecondaryURL, "/"),
		primary:       primary,
		token:         cfg.Token,
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
		logger:        cfg.Logger,
	}, nil
}

// Name identifies the source in snapshot audits.
func (c *Client) Name() string {
	return "http"
}

// baseURL picks the API serving timeframe, falling back to whichever URL is set.
func (c *Client) baseURL(timeframe domain.Timeframe) string {
	if c.primary[timeframe] && c.primaryURL != "" {
		return c.primaryURL
	}
	if c.secondaryURL != "" {
		return c.secondaryURL
	}
	return c.primaryURL
}

// FetchDataCoreRoot downloads the cached snapshot of timeframe.
func (c *Client) FetchDataCoreRoot(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error) {
	url := c.baseURL(timeframe) + cacheEndpoint + timeframe.String()

	var root *domain.DataCoreRoot
	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ports.ErrContextCanceled, err))
		}
		r, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		root = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		c.logger.Warn(ctx, "Kline API request failed, retrying", map[string]interface{}{
			"url":     url,
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	})
	if err != nil {
		c.logger.Error(ctx, err, "Kline API request failed", map[string]interface{}{
			"url":       url,
			"timeframe": timeframe.String(),
			"attempts":  attempt,
		})
		return nil, err
	}

	if len(root.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrEmptySnapshot, url)
	}
	if root.Timeframe == "" {
		root.Timeframe = timeframe.String()
	}
	root.Audit.Source = c.Name()
	root.Audit.FetchedAt = time.Now().UnixMilli()
	root.Audit.SymbolCount = len(root.Data)

	c.logger.Info(ctx, "Snapshot fetched", map[string]interface{}{
		"url":       url,
		"timeframe": root.Timeframe,
		"closeTime": root.CloseTime,
		"symbols":   len(root.Data),
	})
	return root, nil
}

// get performs one request. Errors not worth retrying are wrapped in backoff.Permanent.
func (c *Client) get(ctx context.Context, url string) (*domain.DataCoreRoot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ports.ErrInvalidRequest, err))
	}
	req.Header.Set("X-Auth-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", ports.ErrContextCanceled, err))
		}
		return nil, fmt.Errorf("%w: %v", ports.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, backoff.Permanent(fmt.Errorf("%w: status %d", ports.ErrAuthenticationFailed, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ports.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ports.ErrSourceUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, backoff.Permanent(fmt.Errorf("%w: status %d: %s", ports.ErrInvalidRequest, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var root domain.DataCoreRoot
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, backoff.Permanent(fmt.Errorf("%w: empty body", ports.ErrEmptySnapshot))
		}
		return nil, backoff.Permanent(fmt.Errorf("failed to decode snapshot: %w", err))
	}
	return &root, nil
}

var _ ports.KlineSource = (*Client)(nil)
