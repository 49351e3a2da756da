package indicators

import (
	"math"

	"klineDataCore/internal/domain"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|); TR[0] is NaN.
func TrueRange(s domain.PriceSeries) []float64 {
	n := len(s.ClosePrice)
	tr := nanSlice(n)
	for i := 1; i < n; i++ {
		high, low := s.HighPrice[i], s.LowPrice[i]
		prevClose := s.ClosePrice[i-1]
		tr[i] = math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
	}
	return tr
}

// ATR is the Wilder-smoothed true range, returned under "atr".
func ATR(s domain.PriceSeries, length int) domain.IndicatorResult {
	return domain.IndicatorResult{"atr": WilderSmooth(TrueRange(s), length)}
}

// DirectionalMovement returns +DM and -DM. Only the larger positive move counts;
// index 0 is NaN like the true range so all three smooth over the same window.
func DirectionalMovement(s domain.PriceSeries) (plusDM, minusDM []float64) {
	n := len(s.ClosePrice)
	plusDM = nanSlice(n)
	minusDM = nanSlice(n)
	for i := 1; i < n; i++ {
		up := s.HighPrice[i] - s.HighPrice[i-1]
		down := s.LowPrice[i-1] - s.LowPrice[i]

		plusDM[i], minusDM[i] = 0, 0
		if math.IsNaN(up) || math.IsNaN(down) {
			plusDM[i], minusDM[i] = math.NaN(), math.NaN()
			continue
		}
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}
	return plusDM, minusDM
}

// ADX returns "adx", "di_plus" and "di_minus".
func ADX(s domain.PriceSeries, length int) domain.IndicatorResult {
	n := len(s.ClosePrice)
	plusDM, minusDM := DirectionalMovement(s)
	atr := WilderSmooth(TrueRange(s), length)
	plusSmooth := WilderSmooth(plusDM, length)
	minusSmooth := WilderSmooth(minusDM, length)

	diPlus := nanSlice(n)
	diMinus := nanSlice(n)
	dx := nanSlice(n)
	for i := max(length, 0); i < n; i++ {
		if atr[i] == 0 || math.IsNaN(atr[i]) {
			continue
		}
		diPlus[i] = 100 * plusSmooth[i] / atr[i]
		diMinus[i] = 100 * minusSmooth[i] / atr[i]

		sum := diPlus[i] + diMinus[i]
		if sum == 0 || math.IsNaN(sum) {
			continue
		}
		dx[i] = 100 * math.Abs(diPlus[i]-diMinus[i]) / sum
	}

	return domain.IndicatorResult{
		"adx":      WilderSmooth(dx, length),
		"di_plus":  diPlus,
		"di_minus": diMinus,
	}
}

// RSI returns the Wilder relative strength index under "rsi".
// A window without losses reads 100, a window without any movement reads 50.
func RSI(s domain.PriceSeries, length int) domain.IndicatorResult {
	closes := s.ClosePrice
	n := len(closes)
	gains := nanSlice(n)
	losses := nanSlice(n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		gains[i] = math.Max(change, 0)
		losses[i] = math.Max(-change, 0)
	}

	avgGain := WilderSmooth(gains, length)
	avgLoss := WilderSmooth(losses, length)

	rsi := nanSlice(n)
	for i := range rsi {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
		case l == 0 && g == 0:
			rsi[i] = 50
		case l == 0:
			rsi[i] = 100
		default:
			rsi[i] = 100 - 100/(1+g/l)
		}
	}
	return domain.IndicatorResult{"rsi": rsi}
}

// MACD returns "macd", "macd_signal" and "macd_histogram".
func MACD(s domain.PriceSeries, fast, slow, signal int) domain.IndicatorResult {
	fastEMA := EMA(s.ClosePrice, fast)
	slowEMA := EMA(s.ClosePrice, slow)

	macd := make([]float64, len(s.ClosePrice))
	for i := range macd {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig := EMA(macd, signal)

	hist := make([]float64, len(macd))
	for i := range hist {
		hist[i] = macd[i] - sig[i]
	}

	return domain.IndicatorResult{
		"macd":           macd,
		"macd_signal":    sig,
		"macd_histogram": hist,
	}
}

// KAMA returns Kaufman's adaptive moving average of close under "kama".
// The efficiency ratio over length bars scales the smoothing constant between
// the fast and slow EMA constants.
func KAMA(s domain.PriceSeries, length, fast, slow int) domain.IndicatorResult {
	closes := s.ClosePrice
	n := len(closes)
	kama := nanSlice(n)
	if length <= 0 || n <= length {
		return domain.IndicatorResult{"kama": kama}
	}

	fastSC := 2.0 / float64(fast+1)
	slowSC := 2.0 / float64(slow+1)

	kama[length-1] = closes[length-1]
	for i := length; i < n; i++ {
		change := math.Abs(closes[i] - closes[i-length])
		volatility := 0.0
		for j := i - length + 1; j <= i; j++ {
			volatility += math.Abs(closes[j] - closes[j-1])
		}

		er := 0.0
		if volatility != 0 {
			er = change / volatility
		}
		sc := math.Pow(er*(fastSC-slowSC)+slowSC, 2)
		kama[i] = kama[i-1] + sc*(closes[i]-kama[i-1])
	}
	return domain.IndicatorResult{"kama": kama}
}
