package indicators

import (
	"math"

	"klineDataCore/internal/domain"
)

// Bollinger returns "bb_basis", "bb_upper", "bb_lower" and "bb_width" around
// SMA(close, length) with bands mult population deviations away.
func Bollinger(s domain.PriceSeries, length int, mult float64) domain.IndicatorResult {
	n := len(s.ClosePrice)
	basis := SMA(s.ClosePrice, length)
	std := StDev(s.ClosePrice, length)

	upper := nanSlice(n)
	lower := nanSlice(n)
	width := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(basis[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = basis[i] + mult*std[i]
		lower[i] = basis[i] - mult*std[i]
		if basis[i] != 0 {
			width[i] = (upper[i] - lower[i]) / basis[i]
		}
	}

	return domain.IndicatorResult{
		"bb_basis": basis,
		"bb_upper": upper,
		"bb_lower": lower,
		"bb_width": width,
	}
}

// Keltner returns the Keltner channel around EMA(close, length) with bands
// mult ATR(atrLength) away. The ATR itself is returned under "atr".
func Keltner(s domain.PriceSeries, length int, mult float64, atrLength int) domain.IndicatorResult {
	n := len(s.ClosePrice)
	middle := EMA(s.ClosePrice, length)
	atr := ATR(s, atrLength)["atr"]

	upper := nanSlice(n)
	lower := nanSlice(n)
	width := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(middle[i]) || math.IsNaN(atr[i]) {
			continue
		}
		band := atr[i] * mult
		upper[i] = middle[i] + band
		lower[i] = middle[i] - band
		if middle[i] != 0 {
			width[i] = (upper[i] - lower[i]) / middle[i]
		}
	}

	return domain.IndicatorResult{
		"kc_middle": middle,
		"kc_upper":  upper,
		"kc_lower":  lower,
		"kc_width":  width,
		"atr":       atr,
	}
}

// CHV returns Chaikin volatility under "chv": the percent change over period bars
// of EMA(high-low, length).
func CHV(s domain.PriceSeries, length, period int) domain.IndicatorResult {
	n := len(s.ClosePrice)
	spread := make([]float64, n)
	for i := range spread {
		spread[i] = s.HighPrice[i] - s.LowPrice[i]
	}
	vi := EMA(spread, length)

	chv := nanSlice(n)
	for i := max(length+period, period); i < n; i++ {
		cur, prev := vi[i], vi[i-period]
		if math.IsNaN(cur) || math.IsNaN(prev) || prev == 0 {
			continue
		}
		chv[i] = 100 * (cur - prev) / prev
	}
	return domain.IndicatorResult{"chv": chv}
}
