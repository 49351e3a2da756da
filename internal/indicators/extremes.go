package indicators

import (
	"strconv"

	"klineDataCore/internal/domain"
)

// HighestHigh returns "highest_{p}" (rolling max of high) for every period p.
func HighestHigh(s domain.PriceSeries, periods []int) domain.IndicatorResult {
	result := make(domain.IndicatorResult, len(periods))
	for _, p := range periods {
		result["highest_"+strconv.Itoa(p)] = RollingMax(s.HighPrice, p)
	}
	return result
}

// LowestLow returns "lowest_{p}" (rolling min of low) for every period p.
func LowestLow(s domain.PriceSeries, periods []int) domain.IndicatorResult {
	result := make(domain.IndicatorResult, len(periods))
	for _, p := range periods {
		result["lowest_"+strconv.Itoa(p)] = RollingMin(s.LowPrice, p)
	}
	return result
}
