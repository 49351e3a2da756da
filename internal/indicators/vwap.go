package indicators

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"klineDataCore/internal/domain"
)

// Anchor selects the calendar period after which an anchored VWAP restarts.
type Anchor string

const (
	AnchorWeek  Anchor = "W"
	AnchorMonth Anchor = "M"
)

// IsValid reports whether a is a supported anchor.
func (a Anchor) IsValid() bool {
	return a == AnchorWeek || a == AnchorMonth
}

// Prefix is the lower-case key prefix of the anchor ("w" or "m").
func (a Anchor) Prefix() string {
	return strings.ToLower(string(a))
}

// isNewPeriod reports whether cur starts a new anchor period relative to prev.
// Weeks are ISO weeks starting on Monday, so gaps across month or year ends are handled.
func (a Anchor) isNewPeriod(cur, prev time.Time) bool {
	switch a {
	case AnchorWeek:
		cy, cw := cur.ISOWeek()
		py, pw := prev.ISOWeek()
		return cy != py || cw != pw
	case AnchorMonth:
		return cur.Year() != prev.Year() || cur.Month() != prev.Month()
	}
	return false
}

// vwapAccumulator keeps the volume weighted sums of the typical price.
type vwapAccumulator struct {
	srcVol    float64
	vol       float64
	srcSrcVol float64
}

func (acc *vwapAccumulator) add(src, vol float64) {
	acc.srcVol += src * vol
	acc.vol += vol
	acc.srcSrcVol += src * src * vol
}

func (acc *vwapAccumulator) remove(src, vol float64) {
	acc.srcVol -= src * vol
	acc.vol -= vol
	acc.srcSrcVol -= src * src * vol
}

// value returns the VWAP and its volume weighted deviation. The variance is
// clamped at zero before the square root. ok is false without positive volume.
func (acc *vwapAccumulator) value() (vwap, stdev float64, ok bool) {
	if !(acc.vol > 0) {
		return math.NaN(), math.NaN(), false
	}
	vwap = acc.srcVol / acc.vol
	variance := math.Max(0, acc.srcSrcVol/acc.vol-vwap*vwap)
	return vwap, math.Sqrt(variance), true
}

func typicalPrice(s domain.PriceSeries, i int) float64 {
	return (s.HighPrice[i] + s.LowPrice[i] + s.ClosePrice[i]) / 3
}

// AnchoredVWAP returns "{w|m}_avwap" with its "_upper_band" and "_lower_band"
// stdevMult deviations away. Sums restart on the first bar of each anchor period.
// Open times are interpreted in UTC.
func AnchoredVWAP(s domain.PriceSeries, anchor Anchor, stdevMult float64) domain.IndicatorResult {
	n := len(s.ClosePrice)
	prefix := anchor.Prefix()
	vwap := nanSlice(n)
	upper := nanSlice(n)
	lower := nanSlice(n)

	var acc vwapAccumulator
	for i := 0; i < n; i++ {
		if i > 0 {
			cur := time.UnixMilli(s.OpenTime[i]).UTC()
			prev := time.UnixMilli(s.OpenTime[i-1]).UTC()
			if anchor.isNewPeriod(cur, prev) {
				acc = vwapAccumulator{}
			}
		}
		acc.add(typicalPrice(s, i), s.Volume[i])

		v, std, ok := acc.value()
		if !ok {
			continue
		}
		vwap[i] = v
		upper[i] = v + std*stdevMult
		lower[i] = v - std*stdevMult
	}

	return domain.IndicatorResult{
		prefix + "_avwap":            vwap,
		prefix + "_avwap_upper_band": upper,
		prefix + "_avwap_lower_band": lower,
	}
}

// RollingWindow maps a candle timeframe to the time span covered by the rolling VWAP.
func RollingWindow(tf domain.Timeframe) (time.Duration, error) {
	d := tf.Duration()
	if d == 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownTimeframe, tf)
	}
	const day = 24 * time.Hour
	switch {
	case d <= time.Minute:
		return time.Hour, nil
	case d <= 5*time.Minute:
		return 4 * time.Hour, nil
	case d <= time.Hour:
		return day, nil
	case d <= 4*time.Hour:
		return 3 * day, nil
	case d <= 12*time.Hour:
		return 7 * day, nil
	case d <= day:
		return 30 * day, nil
	default:
		return 90 * day, nil
	}
}

// MultiplierKey formats a band multiplier for use in output keys (2.5 -> "2_5").
func MultiplierKey(mult float64) string {
	return strings.Replace(strconv.FormatFloat(mult, 'f', -1, 64), ".", "_", 1)
}

// RollingVWAP returns the time-windowed VWAP under "rvwap" plus
// "rvwap_upper_band_{m}", "rvwap_lower_band_{m}" and "rvwap_width_{m}" for each
// multiplier. The window length comes from the series timeframe.
//
// The window is a two-pointer scan: each bar is added once and evicted once, so
// the whole series costs O(N).
func RollingVWAP(s domain.PriceSeries, stdevMults []float64) (domain.IndicatorResult, error) {
	window, err := RollingWindow(s.Timeframe)
	if err != nil {
		return nil, err
	}
	windowMs := window.Milliseconds()

	n := len(s.ClosePrice)
	rvwap := nanSlice(n)
	std := nanSlice(n)

	var acc vwapAccumulator
	left := 0
	for i := 0; i < n; i++ {
		acc.add(typicalPrice(s, i), s.Volume[i])
		for left < i && s.OpenTime[left] < s.OpenTime[i]-windowMs {
			acc.remove(typicalPrice(s, left), s.Volume[left])
			left++
		}
		if v, sd, ok := acc.value(); ok {
			rvwap[i] = v
			std[i] = sd
		}
	}

	result := domain.IndicatorResult{"rvwap": rvwap}
	for _, mult := range stdevMults {
		upper := nanSlice(n)
		lower := nanSlice(n)
		width := nanSlice(n)
		for i := 0; i < n; i++ {
			if math.IsNaN(rvwap[i]) || math.IsNaN(std[i]) {
				continue
			}
			upper[i] = rvwap[i] + std[i]*mult
			lower[i] = rvwap[i] - std[i]*mult
			if rvwap[i] != 0 {
				width[i] = (upper[i] - lower[i]) / rvwap[i]
			}
		}
		key := MultiplierKey(mult)
		result["rvwap_upper_band_"+key] = upper
		result["rvwap_lower_band_"+key] = lower
		result["rvwap_width_"+key] = width
	}
	return result, nil
}
