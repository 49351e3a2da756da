package indicators

import (
	"math"

	"klineDataCore/internal/domain"
)

const dojiBodyRatio = 0.1

// CandlePatterns flags doji, bullish/bearish engulfing, hammer and pin bar candles
// using only body and shadow geometry. Series shorter than two bars yield no keys.
func CandlePatterns(s domain.PriceSeries) domain.IndicatorResult {
	n := len(s.ClosePrice)
	if n < 2 {
		return domain.IndicatorResult{}
	}
	open, high, low, closes := s.OpenPrice, s.HighPrice, s.LowPrice, s.ClosePrice

	doji := make([]float64, n)
	bullEngulf := make([]float64, n)
	bearEngulf := make([]float64, n)
	hammer := make([]float64, n)
	pinbar := make([]float64, n)

	for i := 1; i < n; i++ {
		body := math.Abs(closes[i] - open[i])
		rng := high[i] - low[i]
		upperShadow := high[i] - math.Max(open[i], closes[i])
		lowerShadow := math.Min(open[i], closes[i]) - low[i]

		if rng > 0 && body < rng*dojiBodyRatio {
			doji[i] = 1
		}

		prevRed := open[i-1] > closes[i-1]
		prevGreen := closes[i-1] > open[i-1]
		curGreen := closes[i] > open[i]
		curRed := open[i] > closes[i]

		if prevRed && curGreen && closes[i] > open[i-1] && open[i] < closes[i-1] {
			bullEngulf[i] = 1
		}
		if prevGreen && curRed && open[i] > closes[i-1] && closes[i] < open[i-1] {
			bearEngulf[i] = 1
		}

		if lowerShadow > body*2 && upperShadow < body {
			hammer[i] = 1
		}
		if upperShadow > body*2 && lowerShadow < body {
			pinbar[i] = 1
		}
	}

	return domain.IndicatorResult{
		"is_doji":              doji,
		"is_bullish_engulfing": bullEngulf,
		"is_bearish_engulfing": bearEngulf,
		"is_hammer":            hammer,
		"is_pinbar":            pinbar,
	}
}
