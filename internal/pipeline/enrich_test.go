package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"
)

func TestEnrich_TrimsAndAttaches(t *testing.T) {
	svc, logger := newService(t)
	candles := uptrendCandles(500)

	out, err := svc.Enrich(context.Background(), "BTCUSDT", candles, domain.Timeframe1h)
	require.NoError(t, err)

	require.Len(t, out.Candles, 400)
	assert.Len(t, out.OpenTimes, 400)
	assert.Equal(t, candles[100].OpenTime, out.Candles[0].OpenTime)
	assert.Equal(t, candles[100].Close, out.Candles[0].Close)
	assert.Equal(t, out.OpenTimes[0], out.Candles[0].OpenTime)
	assert.Empty(t, logger.warnMsgs)

	for i, c := range out.Candles {
		assert.Len(t, c.Indicators, len(out.Result), "candle %d", i)
	}
	last := out.Candles[399]
	assert.Equal(t, out.Result["rsi"][399], last.Indicator("rsi"))
	assert.Equal(t, out.Result["ema_50"][399], last.Indicator("ema_50"))

	assert.Nil(t, candles[100].Indicators, "source candles are not modified")
}

// Sixty rising hourly candles: RSI pins at 100 and ADX reports a strong trend.
func TestEnrich_UptrendScenario(t *testing.T) {
	svc, _ := newService(t)

	out, err := svc.Enrich(context.Background(), "ETHUSDT", uptrendCandles(60), domain.Timeframe1h)
	require.NoError(t, err)
	require.Len(t, out.Candles, 60)

	last := out.Candles[59]
	assert.Equal(t, 100.0, last.Indicator("rsi"))
	assert.Greater(t, last.Indicator("adx"), 25.0)
	assert.Equal(t, 100.0, last.Indicator("adx"))
	assert.Equal(t, 1.0, last.Indicator("isAboveEma50"))
	assert.Equal(t, 0.0, last.Indicator("isBelowEma50"))
}

func TestEnrich_MisalignedResultDropsSymbol(t *testing.T) {
	svc, logger := newService(t,
		WithTransform("short", func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
			return domain.IndicatorResult{"short": make([]float64, s.Len()-1)}, nil
		}),
		WithCatalogue([]Entry{
			{Name: "RSI_14", Transform: TransformRSI, Params: Params{Length: 14}},
			{Name: "Short", Transform: "short"},
		}),
	)

	out, err := svc.Enrich(context.Background(), "SOLUSDT", uptrendCandles(50), domain.Timeframe1h)

	assert.Nil(t, out)
	assert.ErrorIs(t, err, ports.ErrMisalignedSeries)
	assert.Contains(t, err.Error(), "SOLUSDT")
	require.NotEmpty(t, logger.errorMsgs)
	assert.Equal(t, "SOLUSDT", logger.errorFields[len(logger.errorFields)-1]["symbol"])
}

func TestEnrich_EmptyCandles(t *testing.T) {
	svc, _ := newService(t)

	out, err := svc.Enrich(context.Background(), "XRPUSDT", nil, domain.Timeframe1h)
	require.NoError(t, err)
	assert.Empty(t, out.Candles)
}
