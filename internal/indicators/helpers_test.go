package indicators

import (
	"math"
	"time"

	"klineDataCore/internal/domain"
)

var seriesStart = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC) // a Tuesday

// uptrendSeries builds n hourly candles with close rising 0.5 per bar from 100,
// high/low one point around the close and constant volume.
func uptrendSeries(n int) domain.PriceSeries {
	s := newSeries(n, domain.Timeframe1h, time.Hour)
	for i := 0; i < n; i++ {
		c := 100 + 0.5*float64(i)
		s.ClosePrice[i] = c
		s.OpenPrice[i] = c - 0.25
		s.HighPrice[i] = c + 1
		s.LowPrice[i] = c - 1
		s.Volume[i] = 1000
	}
	return s
}

// wavySeries builds n candles whose prices oscillate, so smoothers disagree.
func wavySeries(n int, tf domain.Timeframe) domain.PriceSeries {
	s := newSeries(n, tf, tf.Duration())
	for i := 0; i < n; i++ {
		x := float64(i)
		c := 100 + 10*math.Sin(x/5) + 0.3*x
		s.ClosePrice[i] = c
		s.OpenPrice[i] = c - 2*math.Cos(x/3)
		s.HighPrice[i] = math.Max(c, s.OpenPrice[i]) + 1 + math.Abs(math.Sin(x))
		s.LowPrice[i] = math.Min(c, s.OpenPrice[i]) - 1 - math.Abs(math.Cos(x))
		s.Volume[i] = 500 + 300*math.Abs(math.Sin(x/7))
	}
	return s
}

func newSeries(n int, tf domain.Timeframe, step time.Duration) domain.PriceSeries {
	s := domain.PriceSeries{
		Timeframe:  tf,
		OpenTime:   make([]int64, n),
		OpenPrice:  make([]float64, n),
		HighPrice:  make([]float64, n),
		LowPrice:   make([]float64, n),
		ClosePrice: make([]float64, n),
		Volume:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.OpenTime[i] = seriesStart.Add(time.Duration(i) * step).UnixMilli()
	}
	return s
}

func countNaN(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
