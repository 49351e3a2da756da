package indicators

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klineDataCore/internal/domain"
)

func TestEMAWithStates_Keys(t *testing.T) {
	r := EMAWithStates(wavySeries(200, "1h"), 50, 5)

	for _, key := range []string{
		"ema_50", "ema_50_slope",
		"isCrossedUpEma50", "isCrossedDownEma50", "isAboveEma50", "isBelowEma50",
	} {
		assert.Contains(t, r, key)
	}
	assert.Equal(t, 49, countNaN(r["ema_50"]))
	assert.Equal(t, 54, countNaN(r["ema_50_slope"]))
}

func TestRollingVWAPWithStates(t *testing.T) {
	s := wavySeries(100, "1h")
	r, err := RollingVWAPWithStates(s, []float64{1, 2, 3})
	require.NoError(t, err)

	for _, key := range []string{"rvwap", "rvwap_slope", "isAboveRVWAP", "isCrossedUpRVWAP", "isBetweenRvwapBands"} {
		assert.Contains(t, r, key)
	}
	for i, v := range r["isBetweenRvwapBands"] {
		inside := s.ClosePrice[i] >= r["rvwap_lower_band_1"][i] && s.ClosePrice[i] <= r["rvwap_upper_band_1"][i]
		assert.Equal(t, inside, v == 1, "index %d", i)
	}

	s.Timeframe = "7h"
	_, err = RollingVWAPWithStates(s, []float64{1})
	assert.Error(t, err)
}

func TestAnchoredVWAPWithStates(t *testing.T) {
	s := wavySeries(60, "4h")
	w := AnchoredVWAPWithStates(s, AnchorWeek, 1)
	m := AnchoredVWAPWithStates(s, AnchorMonth, 1)

	assert.Contains(t, w, "isAboveW_AVWAP")
	assert.Contains(t, w, "w_avwap_slope")
	assert.Contains(t, m, "isCrossedDownM_AVWAP")
	assert.Contains(t, m, "m_avwap_upper_band")
}

func TestOBVWithEMA(t *testing.T) {
	s := wavySeries(80, "1h")
	r := OBVWithEMA(s, 20)

	require.Contains(t, r, "obv_ema_20")
	for i := range r["obv"] {
		above, below := r["isObvAboveEma"][i], r["isObvBelowEma"][i]
		assert.False(t, above == 1 && below == 1, "index %d", i)
		if i < 19 {
			assert.Zero(t, above+below, "no flags before the EMA is defined")
		}
	}
}

func TestMACDAnalysis_Flags(t *testing.T) {
	s := wavySeries(200, "1h")
	r := MACDAnalysis(s, 12, 26, 9)
	hist := r["macd_histogram"]

	var ups, downs int
	for i := range hist {
		if i < 34 {
			for _, key := range []string{"isHistAboveZero", "isHistCrossedUp", "isMacdCrossedUpSignal"} {
				assert.Zero(t, r[key][i], "%s[%d] while histogram undefined", key, i)
			}
			continue
		}
		assert.Equal(t, hist[i] > 0, r["isHistAboveZero"][i] == 1, "index %d", i)
		if r["isHistCrossedUp"][i] == 1 {
			ups++
			assert.True(t, hist[i-1] < 0 && hist[i] > 0)
			assert.Equal(t, 1.0, r["isMacdCrossedUpSignal"][i], "histogram zero-cross is a signal cross")
		}
		if r["isHistCrossedDown"][i] == 1 {
			downs++
			assert.Equal(t, 1.0, r["isMacdCrossedDownSignal"][i])
		}
	}
	assert.Positive(t, ups, "oscillating series crosses up at least once")
	assert.Positive(t, downs)
}

func TestZScoreAnalysis_SkipsAbsentFields(t *testing.T) {
	s := uptrendSeries(80)
	s.VolumeDelta = make([]float64, 80)
	for i := range s.VolumeDelta {
		s.VolumeDelta[i] = math.Sin(float64(i))
	}

	r := ZScoreAnalysis(s)

	assert.Len(t, r, 6)
	assert.Contains(t, r, "closePrice_z_score")
	assert.Contains(t, r, "closePrice_z_score_slope")
	assert.Contains(t, r, "volumeDelta_z_score")
	assert.NotContains(t, r, "openInterest_z_score")
	assert.NotContains(t, r, "fundingRate_z_score_slope")
	assert.Equal(t, 80, countNaN(r["volume_z_score"]), "constant volume has zero deviation")
	assert.Equal(t, 54, countNaN(r["closePrice_z_score_slope"]))
}

// Every composite must keep its outputs aligned with the input and keep flags binary.
func TestComposites_LengthAndFlagValues(t *testing.T) {
	s := wavySeries(150, domain.Timeframe15m)
	s.OpenInterest = make([]float64, 150)
	for i := range s.OpenInterest {
		s.OpenInterest[i] = 1e6 + 1e3*math.Cos(float64(i)/9)
	}

	rv, err := RollingVWAPWithStates(s, []float64{1, 2, 3})
	require.NoError(t, err)

	results := []domain.IndicatorResult{
		EMAWithStates(s, 50, 5),
		KAMAWithStates(s, 10, 2, 30),
		rv,
		AnchoredVWAPWithStates(s, AnchorWeek, 1),
		OBVWithEMA(s, 20),
		CMF(s, 20),
		VZO(s, 14, 21),
		MACDAnalysis(s, 12, 26, 9),
		RSI(s, 14),
		ADX(s, 14),
		Bollinger(s, 20, 2),
		Keltner(s, 20, 2, 10),
		CHV(s, 10, 10),
		HighestHigh(s, []int{50, 100}),
		LowestLow(s, []int{50, 100}),
		CandlePatterns(s),
		ZScoreAnalysis(s),
	}

	for _, r := range results {
		for key, values := range r {
			assert.Len(t, values, 150, key)
			if strings.HasPrefix(key, "is") {
				for i, v := range values {
					assert.True(t, v == 0 || v == 1, "%s[%d] = %v", key, i, v)
				}
			}
			for i, v := range values {
				assert.False(t, math.IsInf(v, 0), "%s[%d] is infinite", key, i)
			}
		}
	}
}
