// Package indicators implements the numeric transforms behind the indicator catalogue.
//
// Every function is pure and returns arrays with the same length as its input.
// NaN marks an undefined value (warm-up or guarded arithmetic) and propagates
// through further arithmetic.
package indicators

import "math"

// SMA computes the simple moving average over the trailing length values.
// A NaN anywhere in the window makes that output NaN.
func SMA(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 {
		return out
	}
	for i := length - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-length+1 : i+1] {
			sum += v
		}
		out[i] = sum / float64(length)
	}
	return out
}

// EMA computes the exponential moving average with k = 2/(length+1), seeded with
// the SMA of the first fully defined window.
func EMA(values []float64, length int) []float64 {
	k := 2.0 / float64(length+1)
	return smooth(values, length, func(prev, v float64) float64 {
		return v*k + prev*(1-k)
	})
}

// WilderSmooth computes Wilder's running moving average (RMA), seeded like EMA:
// out[i] = (out[i-1]*(length-1) + values[i]) / length.
func WilderSmooth(values []float64, length int) []float64 {
	n := float64(length)
	return smooth(values, length, func(prev, v float64) float64 {
		return (prev*(n-1) + v) / n
	})
}

// smooth seeds at the first window of length defined values and applies step
// from there on. Leading NaNs (an upstream warm-up) shift the seed forward.
func smooth(values []float64, length int, step func(prev, v float64) float64) []float64 {
	out := nanSlice(len(values))
	if length <= 0 {
		return out
	}
	seed := firstFullWindow(values, length)
	if seed < 0 {
		return out
	}

	sum := 0.0
	for _, v := range values[seed-length+1 : seed+1] {
		sum += v
	}
	out[seed] = sum / float64(length)

	for i := seed + 1; i < len(values); i++ {
		out[i] = step(out[i-1], values[i])
	}
	return out
}

// firstFullWindow returns the first index closing a window of length defined
// values, or -1 when there is none.
func firstFullWindow(values []float64, length int) int {
	run := 0
	for i, v := range values {
		if math.IsNaN(v) {
			run = 0
			continue
		}
		run++
		if run >= length {
			return i
		}
	}
	return -1
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
