package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceSeries is the column-oriented view of a candle slice. All arrays share the
// same length and index. Optional fields are nil when no candle carries them.
type PriceSeries struct {
	Timeframe    Timeframe
	OpenTime     []int64
	OpenPrice    []float64
	HighPrice    []float64
	LowPrice     []float64
	ClosePrice   []float64
	Volume       []float64
	OpenInterest []float64
	FundingRate  []float64
	VolumeDelta  []float64
}

// IndicatorResult maps an output key (e.g. "rsi", "bb_upper") to one value per input index.
type IndicatorResult map[string][]float64

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int {
	return len(s.OpenTime)
}

// Merge copies every key of other into r, overwriting existing keys.
func (r IndicatorResult) Merge(other IndicatorResult) {
	for k, v := range other {
		r[k] = v
	}
}

// NewPriceSeries converts candles into a PriceSeries. Values that are absent or do not
// parse as decimals become NaN.
func NewPriceSeries(candles []Candle, timeframe Timeframe) PriceSeries {
	n := len(candles)
	s := PriceSeries{
		Timeframe:  timeframe,
		OpenTime:   make([]int64, n),
		OpenPrice:  make([]float64, n),
		HighPrice:  make([]float64, n),
		LowPrice:   make([]float64, n),
		ClosePrice: make([]float64, n),
		Volume:     make([]float64, n),
	}

	var hasOI, hasFR, hasVD bool
	for i, c := range candles {
		s.OpenTime[i] = c.OpenTime
		s.OpenPrice[i] = ParseNumber(c.Open)
		s.HighPrice[i] = ParseNumber(c.High)
		s.LowPrice[i] = ParseNumber(c.Low)
		s.ClosePrice[i] = ParseNumber(c.Close)
		s.Volume[i] = ParseNumber(c.Volume)
		hasOI = hasOI || c.OpenInterest != ""
		hasFR = hasFR || c.FundingRate != ""
		hasVD = hasVD || c.VolumeDelta != ""
	}

	if hasOI {
		s.OpenInterest = parseColumn(candles, func(c Candle) string { return c.OpenInterest })
	}
	if hasFR {
		s.FundingRate = parseColumn(candles, func(c Candle) string { return c.FundingRate })
	}
	if hasVD {
		s.VolumeDelta = parseColumn(candles, func(c Candle) string { return c.VolumeDelta })
	}
	return s
}

// ParseNumber parses a decimal string, returning NaN when it is empty or malformed.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return math.NaN()
	}
	return d.InexactFloat64()
}

func parseColumn(candles []Candle, field func(Candle) string) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = ParseNumber(field(c))
	}
	return out
}
