package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandle_MarshalJSON_FlattensIndicators(t *testing.T) {
	c := Candle{
		OpenTime: 1700000000000,
		Open:     "1.5",
		High:     "2",
		Low:      "1",
		Close:    "1.75",
		Volume:   "100",
		Indicators: map[string]float64{
			"rsi":         55.5,
			"ema_50":      math.NaN(),
			"isAboveKAMA": 1,
		},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "1.5", raw["open"])
	assert.Equal(t, 55.5, raw["rsi"])
	assert.Equal(t, 1.0, raw["isAboveKAMA"])
	assert.Contains(t, raw, "ema_50")
	assert.Nil(t, raw["ema_50"], "NaN must be encoded as null")
	assert.NotContains(t, raw, "openInterest", "empty optional fields are omitted")
}

func TestCandle_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, c Candle)
	}{
		{
			name:  "string encoded numbers",
			input: `{"openTime":"1700000000000","open":"1","high":"2","low":"0.5","close":"1.5","volume":"10","fundingRate":"0.0001"}`,
			check: func(t *testing.T, c Candle) {
				assert.Equal(t, int64(1700000000000), c.OpenTime)
				assert.Equal(t, "0.5", c.Low)
				assert.Equal(t, "0.0001", c.FundingRate)
				assert.Empty(t, c.Indicators)
			},
		},
		{
			name:  "numeric prices",
			input: `{"openTime":1700000000000,"open":1.25,"high":2,"low":1,"close":1.5,"volume":300}`,
			check: func(t *testing.T, c Candle) {
				assert.Equal(t, "1.25", c.Open)
				assert.Equal(t, "300", c.Volume)
			},
		},
		{
			name:  "indicator fields with nulls",
			input: `{"openTime":1,"open":"1","high":"1","low":"1","close":"1","volume":"1","rsi":42,"macd":null,"label":"x"}`,
			check: func(t *testing.T, c Candle) {
				assert.Equal(t, 42.0, c.Indicators["rsi"])
				assert.True(t, math.IsNaN(c.Indicators["macd"]))
				assert.NotContains(t, c.Indicators, "label")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Candle
			require.NoError(t, json.Unmarshal([]byte(tt.input), &c))
			tt.check(t, c)
		})
	}
}

func TestCandle_RoundTrip(t *testing.T) {
	in := Candle{
		OpenTime:    1700000000000,
		Open:        "10",
		High:        "12",
		Low:         "9",
		Close:       "11",
		Volume:      "1000",
		VolumeDelta: "-25.5",
		Indicators:  map[string]float64{"obv": 1000, "obv_ema_20": math.NaN()},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Candle
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, in.OpenTime, out.OpenTime)
	assert.Equal(t, in.VolumeDelta, out.VolumeDelta)
	assert.Equal(t, 1000.0, out.Indicator("obv"))
	assert.True(t, math.IsNaN(out.Indicator("obv_ema_20")))
	assert.True(t, math.IsNaN(out.Indicator("missing")))
}
