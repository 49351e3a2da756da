package indicators

import (
	"math"

	"klineDataCore/internal/domain"
)

// LineStates classifies the close price against line on every bar, producing
// isCrossedUp{suffix}, isCrossedDown{suffix}, isAbove{suffix} and isBelow{suffix}.
//
// Flags are always 0 or 1. Bars where line[i] or line[i-1] is undefined stay 0.
// Above/below require both the open and the close strictly on one side.
func LineStates(s domain.PriceSeries, line []float64, suffix string) domain.IndicatorResult {
	n := len(s.ClosePrice)
	crossedUp := make([]float64, n)
	crossedDown := make([]float64, n)
	above := make([]float64, n)
	below := make([]float64, n)

	for i := 1; i < n && i < len(line); i++ {
		cur, prev := line[i], line[i-1]
		if math.IsNaN(cur) || math.IsNaN(prev) {
			continue
		}
		closePrice, openPrice := s.ClosePrice[i], s.OpenPrice[i]
		prevClose := s.ClosePrice[i-1]

		if prevClose < prev && closePrice > cur {
			crossedUp[i] = 1
		}
		if prevClose > prev && closePrice < cur {
			crossedDown[i] = 1
		}
		if closePrice > cur && openPrice > cur {
			above[i] = 1
		}
		if closePrice < cur && openPrice < cur {
			below[i] = 1
		}
	}

	return domain.IndicatorResult{
		"isCrossedUp" + suffix:   crossedUp,
		"isCrossedDown" + suffix: crossedDown,
		"isAbove" + suffix:       above,
		"isBelow" + suffix:       below,
	}
}
