package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Candle is one OHLCV bar as delivered by an upstream source. Prices and volumes
// are kept as decimal strings so no precision is lost before analysis.
//
// After enrichment, Indicators holds one value per indicator key for this bar.
// NaN marks an undefined (warm-up) value; flags are 0 or 1.
type Candle struct {
	OpenTime     int64 // Unix milliseconds
	Open         string
	High         string
	Low          string
	Close        string
	Volume       string
	OpenInterest string // Optional
	FundingRate  string // Optional
	VolumeDelta  string // Optional
	Indicators   map[string]float64
}

const (
	fieldOpenTime     = "openTime"
	fieldOpen         = "open"
	fieldHigh         = "high"
	fieldLow          = "low"
	fieldClose        = "close"
	fieldVolume       = "volume"
	fieldOpenInterest = "openInterest"
	fieldFundingRate  = "fundingRate"
	fieldVolumeDelta  = "volumeDelta"
)

// Indicator returns the value stored under key, or NaN when absent.
func (c Candle) Indicator(key string) float64 {
	if v, ok := c.Indicators[key]; ok {
		return v
	}
	return math.NaN()
}

// MarshalJSON flattens indicator values onto the candle object.
// Non-finite values are written as null.
func (c Candle) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 9+len(c.Indicators))
	for k, v := range c.Indicators {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	out[fieldOpenTime] = c.OpenTime
	out[fieldOpen] = c.Open
	out[fieldHigh] = c.High
	out[fieldLow] = c.Low
	out[fieldClose] = c.Close
	out[fieldVolume] = c.Volume
	if c.OpenInterest != "" {
		out[fieldOpenInterest] = c.OpenInterest
	}
	if c.FundingRate != "" {
		out[fieldFundingRate] = c.FundingRate
	}
	if c.VolumeDelta != "" {
		out[fieldVolumeDelta] = c.VolumeDelta
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts numeric fields encoded either as JSON strings or numbers.
// Every unknown numeric (or null) field is treated as an indicator value.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Candle{}
	for key, msg := range raw {
		var err error
		switch key {
		case fieldOpenTime:
			c.OpenTime, err = rawInt64(msg)
		case fieldOpen:
			c.Open, err = rawString(msg)
		case fieldHigh:
			c.High, err = rawString(msg)
		case fieldLow:
			c.Low, err = rawString(msg)
		case fieldClose:
			c.Close, err = rawString(msg)
		case fieldVolume:
			c.Volume, err = rawString(msg)
		case fieldOpenInterest:
			c.OpenInterest, err = rawString(msg)
		case fieldFundingRate:
			c.FundingRate, err = rawString(msg)
		case fieldVolumeDelta:
			c.VolumeDelta, err = rawString(msg)
		default:
			var v *float64
			if json.Unmarshal(msg, &v) != nil {
				continue // not an indicator value
			}
			if c.Indicators == nil {
				c.Indicators = make(map[string]float64)
			}
			if v == nil {
				c.Indicators[key] = math.NaN()
			} else {
				c.Indicators[key] = *v
			}
		}
		if err != nil {
			return fmt.Errorf("candle field %s: %w", key, err)
		}
	}
	return nil
}

func rawString(msg json.RawMessage) (string, error) {
	msg = bytes.TrimSpace(msg)
	if bytes.Equal(msg, []byte("null")) {
		return "", nil
	}
	if len(msg) > 0 && msg[0] == '"' {
		var s string
		err := json.Unmarshal(msg, &s)
		return s, err
	}
	return string(msg), nil
}

func rawInt64(msg json.RawMessage) (int64, error) {
	s, err := rawString(msg)
	if err != nil || s == "" {
		return 0, err
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
