package indicators

import "klineDataCore/internal/domain"

const (
	ZScoreWindow      = 50
	ZScoreSlopePeriod = 5
)

// ZScoreAnalysis computes "{field}_z_score" and "{field}_z_score_slope" for close
// price, volume, volume delta, open interest and funding rate. Fields that are
// absent or empty on the series are skipped.
func ZScoreAnalysis(s domain.PriceSeries) domain.IndicatorResult {
	fields := []struct {
		name   string
		values []float64
	}{
		{"closePrice", s.ClosePrice},
		{"volume", s.Volume},
		{"volumeDelta", s.VolumeDelta},
		{"openInterest", s.OpenInterest},
		{"fundingRate", s.FundingRate},
	}

	result := domain.IndicatorResult{}
	for _, f := range fields {
		if len(f.values) == 0 {
			continue
		}
		z := ZScore(f.values, ZScoreWindow)
		result[f.name+"_z_score"] = z
		result[f.name+"_z_score_slope"] = Slope(z, ZScoreSlopePeriod)
	}
	return result
}
