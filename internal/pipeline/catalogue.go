package pipeline

import (
	"fmt"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/indicators"
	"klineDataCore/internal/ports"
)

// Transform identifies one calculation in the registry.
type Transform string

const (
	TransformEMAStates      Transform = "ema_states"
	TransformKAMAStates     Transform = "kama_states"
	TransformRVWAPStates    Transform = "rvwap_states"
	TransformAVWAPStates    Transform = "avwap_states"
	TransformOBVEMA         Transform = "obv_ema"
	TransformCMF            Transform = "cmf"
	TransformVZO            Transform = "vzo"
	TransformMACDAnalysis   Transform = "macd_analysis"
	TransformRSI            Transform = "rsi"
	TransformADX            Transform = "adx"
	TransformATR            Transform = "atr"
	TransformBollinger      Transform = "bollinger"
	TransformKeltner        Transform = "keltner"
	TransformCHV            Transform = "chv"
	TransformHighestHigh    Transform = "highest_high"
	TransformLowestLow      Transform = "lowest_low"
	TransformCandlePatterns Transform = "candle_patterns"
	TransformZScoreAnalysis Transform = "zscore_analysis"
)

// Params is the fixed parameter set of one catalogue entry. Each transform
// reads only the fields it needs.
type Params struct {
	Length      int
	SlopePeriod int
	Fast        int
	Slow        int
	Signal      int
	Period      int
	ATRLength   int
	Mult        float64
	Mults       []float64
	Periods     []int
	Anchor      indicators.Anchor
}

// Entry is one row of the indicator catalogue.
type Entry struct {
	Name      string
	Transform Transform
	Params    Params
}

// CalcFunc computes one transform for the given parameters.
type CalcFunc func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error)

var registry = map[Transform]CalcFunc{
	TransformEMAStates: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length, "slope period", p.SlopePeriod); err != nil {
			return nil, err
		}
		return indicators.EMAWithStates(s, p.Length, p.SlopePeriod), nil
	},
	TransformKAMAStates: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length, "fast", p.Fast, "slow", p.Slow); err != nil {
			return nil, err
		}
		return indicators.KAMAWithStates(s, p.Length, p.Fast, p.Slow), nil
	},
	TransformRVWAPStates: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		return indicators.RollingVWAPWithStates(s, p.Mults)
	},
	TransformAVWAPStates: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if !p.Anchor.IsValid() {
			return nil, fmt.Errorf("%w: anchor %q", ports.ErrInvalidParams, p.Anchor)
		}
		return indicators.AnchoredVWAPWithStates(s, p.Anchor, p.Mult), nil
	},
	TransformOBVEMA: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length); err != nil {
			return nil, err
		}
		return indicators.OBVWithEMA(s, p.Length), nil
	},
	TransformCMF: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length); err != nil {
			return nil, err
		}
		return indicators.CMF(s, p.Length), nil
	},
	TransformVZO: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length, "period", p.Period); err != nil {
			return nil, err
		}
		return indicators.VZO(s, p.Length, p.Period), nil
	},
	TransformMACDAnalysis: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("fast", p.Fast, "slow", p.Slow, "signal", p.Signal); err != nil {
			return nil, err
		}
		return indicators.MACDAnalysis(s, p.Fast, p.Slow, p.Signal), nil
	},
	TransformRSI: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length); err != nil {
			return nil, err
		}
		return indicators.RSI(s, p.Length), nil
	},
	TransformADX: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length); err != nil {
			return nil, err
		}
		return indicators.ADX(s, p.Length), nil
	},
	TransformATR: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length); err != nil {
			return nil, err
		}
		return indicators.ATR(s, p.Length), nil
	},
	TransformBollinger: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length); err != nil {
			return nil, err
		}
		return indicators.Bollinger(s, p.Length, p.Mult), nil
	},
	TransformKeltner: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length, "atr length", p.ATRLength); err != nil {
			return nil, err
		}
		return indicators.Keltner(s, p.Length, p.Mult, p.ATRLength), nil
	},
	TransformCHV: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positive("length", p.Length, "period", p.Period); err != nil {
			return nil, err
		}
		return indicators.CHV(s, p.Length, p.Period), nil
	},
	TransformHighestHigh: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positivePeriods(p.Periods); err != nil {
			return nil, err
		}
		return indicators.HighestHigh(s, p.Periods), nil
	},
	TransformLowestLow: func(s domain.PriceSeries, p Params) (domain.IndicatorResult, error) {
		if err := positivePeriods(p.Periods); err != nil {
			return nil, err
		}
		return indicators.LowestLow(s, p.Periods), nil
	},
	TransformCandlePatterns: func(s domain.PriceSeries, _ Params) (domain.IndicatorResult, error) {
		return indicators.CandlePatterns(s), nil
	},
	TransformZScoreAnalysis: func(s domain.PriceSeries, _ Params) (domain.IndicatorResult, error) {
		return indicators.ZScoreAnalysis(s), nil
	},
}

// DefaultCatalogue returns the ordered list of indicators computed for every symbol.
// Later entries overwrite keys of earlier ones (Keltner's "atr" for instance).
func DefaultCatalogue() []Entry {
	return []Entry{
		{Name: "EMA_50", Transform: TransformEMAStates, Params: Params{Length: 50, SlopePeriod: 5}},
		{Name: "EMA_100", Transform: TransformEMAStates, Params: Params{Length: 100, SlopePeriod: 5}},
		{Name: "EMA_150", Transform: TransformEMAStates, Params: Params{Length: 150, SlopePeriod: 5}},
		{Name: "KAMA", Transform: TransformKAMAStates, Params: Params{Length: 10, Fast: 2, Slow: 30}},
		{Name: "RVWAP", Transform: TransformRVWAPStates, Params: Params{Mults: []float64{1, 2, 3}}},
		{Name: "W_AVWAP", Transform: TransformAVWAPStates, Params: Params{Anchor: indicators.AnchorWeek, Mult: 1.0}},
		{Name: "M_AVWAP", Transform: TransformAVWAPStates, Params: Params{Anchor: indicators.AnchorMonth, Mult: 1.0}},
		{Name: "OBV_EMA_20", Transform: TransformOBVEMA, Params: Params{Length: 20}},
		{Name: "CMF_20", Transform: TransformCMF, Params: Params{Length: 20}},
		{Name: "VZO", Transform: TransformVZO, Params: Params{Length: 14, Period: 21}},
		{Name: "MACD", Transform: TransformMACDAnalysis, Params: Params{Fast: 12, Slow: 26, Signal: 9}},
		{Name: "RSI_14", Transform: TransformRSI, Params: Params{Length: 14}},
		{Name: "ADX_14", Transform: TransformADX, Params: Params{Length: 14}},
		{Name: "Bollinger_20_2", Transform: TransformBollinger, Params: Params{Length: 20, Mult: 2.0}},
		{Name: "Keltner_20_2_10", Transform: TransformKeltner, Params: Params{Length: 20, Mult: 2.0, ATRLength: 10}},
		{Name: "CHV_10_10", Transform: TransformCHV, Params: Params{Length: 10, Period: 10}},
		{Name: "HighestHigh", Transform: TransformHighestHigh, Params: Params{Periods: []int{50, 100}}},
		{Name: "LowestLow", Transform: TransformLowestLow, Params: Params{Periods: []int{50, 100}}},
		{Name: "CandlePatterns", Transform: TransformCandlePatterns},
		{Name: "ZScoreAnalysis", Transform: TransformZScoreAnalysis},
	}
}

// Calculate runs the entry's transform from the built-in registry over s.
func (e Entry) Calculate(s domain.PriceSeries) (domain.IndicatorResult, error) {
	return e.calculateWith(registry, s)
}

// calculateWith looks the transform up in transforms and runs it. A panic inside
// the transform is returned as ErrIndicatorPanic.
func (e Entry) calculateWith(transforms map[Transform]CalcFunc, s domain.PriceSeries) (result domain.IndicatorResult, err error) {
	calc, ok := transforms[e.Transform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ports.ErrUnknownTransform, e.Transform)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ports.ErrIndicatorPanic, r)
		}
	}()
	return calc(s, e.Params)
}

// positive checks name/value pairs, e.g. positive("length", 14, "period", 5).
func positive(pairs ...interface{}) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v, _ := pairs[i+1].(int); v <= 0 {
			return fmt.Errorf("%w: %v must be positive, got %v", ports.ErrInvalidParams, pairs[i], pairs[i+1])
		}
	}
	return nil
}

func positivePeriods(periods []int) error {
	if len(periods) == 0 {
		return fmt.Errorf("%w: no periods", ports.ErrInvalidParams)
	}
	for _, p := range periods {
		if p <= 0 {
			return fmt.Errorf("%w: period must be positive, got %d", ports.ErrInvalidParams, p)
		}
	}
	return nil
}
