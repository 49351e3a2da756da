package indicators

import (
	"math"

	"klineDataCore/internal/domain"
)

// OBV returns on-balance volume under "obv". obv[0] is volume[0]; once a NaN
// enters the running total every later value is NaN.
func OBV(s domain.PriceSeries) domain.IndicatorResult {
	n := len(s.ClosePrice)
	obv := make([]float64, n)
	if n == 0 {
		return domain.IndicatorResult{"obv": obv}
	}

	obv[0] = s.Volume[0]
	for i := 1; i < n; i++ {
		prev, vol := obv[i-1], s.Volume[i]
		if math.IsNaN(prev) || math.IsNaN(vol) {
			obv[i] = math.NaN()
			continue
		}
		switch {
		case s.ClosePrice[i] > s.ClosePrice[i-1]:
			obv[i] = prev + vol
		case s.ClosePrice[i] < s.ClosePrice[i-1]:
			obv[i] = prev - vol
		default:
			obv[i] = prev
		}
	}
	return domain.IndicatorResult{"obv": obv}
}

// NetVolume signs each bar's volume by the close direction. Bars with any
// undefined input contribute 0.
func NetVolume(s domain.PriceSeries) []float64 {
	n := len(s.ClosePrice)
	nv := make([]float64, n)
	for i := 1; i < n; i++ {
		cur, prev, vol := s.ClosePrice[i], s.ClosePrice[i-1], s.Volume[i]
		if math.IsNaN(cur) || math.IsNaN(prev) || math.IsNaN(vol) {
			continue
		}
		switch {
		case cur > prev:
			nv[i] = vol
		case cur < prev:
			nv[i] = -vol
		}
	}
	return nv
}

// VZO returns the volume zone oscillator under "vzo":
// 100 * EMA(cumulative net volume, length) / EMA(cumulative volume, vzoLength).
func VZO(s domain.PriceSeries, length, vzoLength int) domain.IndicatorResult {
	n := len(s.ClosePrice)
	nv := NetVolume(s)

	cumNV := make([]float64, n)
	cumVol := make([]float64, n)
	sumNV, sumVol := 0.0, 0.0
	for i := 0; i < n; i++ {
		sumNV += nv[i]
		sumVol += s.Volume[i]
		cumNV[i] = sumNV
		cumVol[i] = sumVol
	}

	vce := EMA(cumVol, vzoLength)
	vne := EMA(cumNV, length)

	vzo := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(vce[i]) || vce[i] == 0 {
			continue
		}
		vzo[i] = 100 * vne[i] / vce[i]
	}
	return domain.IndicatorResult{"vzo": vzo}
}

// CMF returns Chaikin money flow under "cmf": the sum of money-flow volume over
// the trailing length bars divided by the summed volume.
func CMF(s domain.PriceSeries, length int) domain.IndicatorResult {
	n := len(s.ClosePrice)
	mfv := make([]float64, n)
	for i := 0; i < n; i++ {
		high, low, closePrice := s.HighPrice[i], s.LowPrice[i], s.ClosePrice[i]
		rng := high - low
		if rng == 0 {
			mfv[i] = 0 * s.Volume[i] // keeps NaN volume undefined
			continue
		}
		mfv[i] = ((closePrice - low) - (high - closePrice)) / rng * s.Volume[i]
	}

	avgMFV := SMA(mfv, length)
	avgVol := SMA(s.Volume, length)

	cmf := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(avgVol[i]) || avgVol[i] == 0 {
			continue
		}
		cmf[i] = avgMFV[i] / avgVol[i]
	}
	return domain.IndicatorResult{"cmf": cmf}
}
