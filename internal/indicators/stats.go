package indicators

import "math"

// StDev computes the population standard deviation over the trailing length values.
// Window alignment matches SMA.
func StDev(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 {
		return out
	}
	mean := SMA(values, length)
	for i := length - 1; i < len(values); i++ {
		if math.IsNaN(mean[i]) {
			continue
		}
		sumSq := 0.0
		for _, v := range values[i-length+1 : i+1] {
			d := v - mean[i]
			sumSq += d * d
		}
		out[i] = math.Sqrt(sumSq / float64(length))
	}
	return out
}

// ZScore computes (value - rolling mean) / rolling stdev over window.
// Zero or undefined deviation yields NaN.
func ZScore(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	mean := SMA(values, window)
	std := StDev(values, window)
	for i := window - 1; i < len(values); i++ {
		if std[i] == 0 || math.IsNaN(std[i]) {
			continue
		}
		out[i] = (values[i] - mean[i]) / std[i]
	}
	return out
}

// RollingMax returns the highest value of each trailing window of period values.
func RollingMax(values []float64, period int) []float64 {
	return rollingExtreme(values, period, math.Max)
}

// RollingMin returns the lowest value of each trailing window of period values.
func RollingMin(values []float64, period int) []float64 {
	return rollingExtreme(values, period, math.Min)
}

func rollingExtreme(values []float64, period int, pick func(a, b float64) float64) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		ext := values[i-period+1]
		for _, v := range values[i-period+2 : i+1] {
			ext = pick(ext, v)
		}
		out[i] = ext
	}
	return out
}
