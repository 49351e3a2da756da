package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBollinger(t *testing.T) {
	t.Run("constant close collapses the bands", func(t *testing.T) {
		s := uptrendSeries(30)
		for i := range s.ClosePrice {
			s.ClosePrice[i] = 10
		}
		bb := Bollinger(s, 20, 2)
		assert.Equal(t, 19, countNaN(bb["bb_basis"]))
		assert.Equal(t, 10.0, bb["bb_upper"][25])
		assert.Equal(t, 10.0, bb["bb_lower"][25])
		assert.Equal(t, 0.0, bb["bb_width"][25])
	})

	t.Run("zero basis gives NaN width", func(t *testing.T) {
		s := uptrendSeries(4)
		s.ClosePrice = []float64{-1, 1, -1, 1}
		bb := Bollinger(s, 2, 2)
		assert.Equal(t, 0.0, bb["bb_basis"][1])
		assert.True(t, math.IsNaN(bb["bb_width"][1]))
		assert.False(t, math.IsInf(bb["bb_width"][1], 0))
	})

	t.Run("bands are symmetric", func(t *testing.T) {
		bb := Bollinger(wavySeries(60, "1h"), 20, 2)
		for i := 19; i < 60; i++ {
			assert.InDelta(t, bb["bb_upper"][i]-bb["bb_basis"][i], bb["bb_basis"][i]-bb["bb_lower"][i], 1e-9)
		}
	})
}

func TestKeltner(t *testing.T) {
	s := uptrendSeries(60)
	kc := Keltner(s, 20, 2, 10)

	for _, key := range []string{"kc_middle", "kc_upper", "kc_lower", "kc_width", "atr"} {
		require.Contains(t, kc, key)
		assert.Len(t, kc[key], 60)
	}
	// ATR(10) of a constant 2-point true range
	assert.Equal(t, 2.0, kc["atr"][30])
	assert.InDelta(t, kc["kc_middle"][30]+4, kc["kc_upper"][30], 1e-9)
	assert.InDelta(t, kc["kc_middle"][30]-4, kc["kc_lower"][30], 1e-9)
}

func TestCHV(t *testing.T) {
	s := wavySeries(60, "1h")
	chv := CHV(s, 10, 10)["chv"]

	require.Len(t, chv, 60)
	for i := 0; i < 20; i++ {
		assert.True(t, math.IsNaN(chv[i]), "chv[%d] before length+period", i)
	}
	for i := 20; i < 60; i++ {
		assert.False(t, math.IsNaN(chv[i]), "chv[%d]", i)
	}
}
