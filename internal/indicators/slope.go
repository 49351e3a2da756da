package indicators

// Slope returns the average change per bar over the last period bars:
// (values[i] - values[i-period]) / period.
func Slope(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period; i < len(values); i++ {
		out[i] = (values[i] - values[i-period]) / float64(period)
	}
	return out
}
