package indicators

import (
	"math"
	"strconv"
	"strings"

	"klineDataCore/internal/domain"
)

// LineSlopePeriod is the slope period applied to the VWAP lines.
const LineSlopePeriod = 5

// EMAWithStates returns "ema_{L}", "ema_{L}_slope" and the line states of close
// against the EMA with suffix "Ema{L}".
func EMAWithStates(s domain.PriceSeries, length, slopePeriod int) domain.IndicatorResult {
	ema := EMA(s.ClosePrice, length)
	l := strconv.Itoa(length)

	result := LineStates(s, ema, "Ema"+l)
	result["ema_"+l] = ema
	result["ema_"+l+"_slope"] = Slope(ema, slopePeriod)
	return result
}

// KAMAWithStates returns "kama" and its line states with suffix "KAMA".
func KAMAWithStates(s domain.PriceSeries, length, fast, slow int) domain.IndicatorResult {
	result := KAMA(s, length, fast, slow)
	result.Merge(LineStates(s, result["kama"], "KAMA"))
	return result
}

// RollingVWAPWithStates returns the rolling VWAP and bands, its slope, the line
// states with suffix "RVWAP" and isBetweenRvwapBands, set when the close lies
// within the band of the first multiplier.
func RollingVWAPWithStates(s domain.PriceSeries, stdevMults []float64) (domain.IndicatorResult, error) {
	result, err := RollingVWAP(s, stdevMults)
	if err != nil {
		return nil, err
	}
	rvwap := result["rvwap"]
	result.Merge(LineStates(s, rvwap, "RVWAP"))
	result["rvwap_slope"] = Slope(rvwap, LineSlopePeriod)

	if len(stdevMults) > 0 {
		key := MultiplierKey(stdevMults[0])
		result["isBetweenRvwapBands"] = between(s.ClosePrice,
			result["rvwap_lower_band_"+key], result["rvwap_upper_band_"+key])
	}
	return result, nil
}

// AnchoredVWAPWithStates returns the anchored VWAP and bands, its slope and the
// line states with suffix "W_AVWAP" or "M_AVWAP".
func AnchoredVWAPWithStates(s domain.PriceSeries, anchor Anchor, stdevMult float64) domain.IndicatorResult {
	result := AnchoredVWAP(s, anchor, stdevMult)
	line := result[anchor.Prefix()+"_avwap"]
	result.Merge(LineStates(s, line, strings.ToUpper(string(anchor))+"_AVWAP"))
	result[anchor.Prefix()+"_avwap_slope"] = Slope(line, LineSlopePeriod)
	return result
}

// OBVWithEMA returns "obv", "obv_ema_{L}" and the isObvAboveEma / isObvBelowEma flags.
func OBVWithEMA(s domain.PriceSeries, emaLength int) domain.IndicatorResult {
	result := OBV(s)
	obv := result["obv"]
	ema := EMA(obv, emaLength)

	above := make([]float64, len(obv))
	below := make([]float64, len(obv))
	for i := range obv {
		if math.IsNaN(obv[i]) || math.IsNaN(ema[i]) {
			continue
		}
		if obv[i] > ema[i] {
			above[i] = 1
		} else if obv[i] < ema[i] {
			below[i] = 1
		}
	}

	result["obv_ema_"+strconv.Itoa(emaLength)] = ema
	result["isObvAboveEma"] = above
	result["isObvBelowEma"] = below
	return result
}

// MACDAnalysis returns MACD with histogram zero-line and signal-cross flags:
// isHistAboveZero, isHistCrossedUp, isHistCrossedDown, isMacdCrossedUpSignal and
// isMacdCrossedDownSignal. Bars whose histogram or previous histogram is
// undefined keep every flag at 0.
func MACDAnalysis(s domain.PriceSeries, fast, slow, signal int) domain.IndicatorResult {
	result := MACD(s, fast, slow, signal)
	macd, sig, hist := result["macd"], result["macd_signal"], result["macd_histogram"]

	n := len(macd)
	histAbove := make([]float64, n)
	histUp := make([]float64, n)
	histDown := make([]float64, n)
	macdUp := make([]float64, n)
	macdDown := make([]float64, n)

	for i := 1; i < n; i++ {
		h, hPrev := hist[i], hist[i-1]
		if math.IsNaN(h) || math.IsNaN(hPrev) {
			continue
		}
		if h > 0 {
			histAbove[i] = 1
		}
		if hPrev < 0 && h > 0 {
			histUp[i] = 1
		}
		if hPrev > 0 && h < 0 {
			histDown[i] = 1
		}
		if macd[i-1] < sig[i-1] && macd[i] > sig[i] {
			macdUp[i] = 1
		}
		if macd[i-1] > sig[i-1] && macd[i] < sig[i] {
			macdDown[i] = 1
		}
	}

	result["isHistAboveZero"] = histAbove
	result["isHistCrossedUp"] = histUp
	result["isHistCrossedDown"] = histDown
	result["isMacdCrossedUpSignal"] = macdUp
	result["isMacdCrossedDownSignal"] = macdDown
	return result
}

// between flags bars where lower <= v <= upper.
func between(values, lower, upper []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i < len(lower) && i < len(upper) && v >= lower[i] && v <= upper[i] {
			out[i] = 1
		}
	}
	return out
}
