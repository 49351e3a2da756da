package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStDev_Population(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := StDev(values, 8)

	assert.Equal(t, 7, countNaN(got))
	assert.InDelta(t, 2.0, got[7], 1e-12)
}

func TestZScore(t *testing.T) {
	t.Run("constant series yields NaN not Inf", func(t *testing.T) {
		values := make([]float64, 60)
		for i := range values {
			values[i] = 42
		}
		got := ZScore(values, 50)
		for i, v := range got {
			assert.False(t, math.IsInf(v, 0), "index %d", i)
			assert.True(t, math.IsNaN(v), "index %d", i)
		}
	})

	t.Run("known value", func(t *testing.T) {
		values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
		got := ZScore(values, 8)
		// mean 5, stdev 2
		assert.InDelta(t, 2.0, got[7], 1e-12)
	})

	t.Run("shorter than window", func(t *testing.T) {
		got := ZScore([]float64{1, 2, 3}, 50)
		assert.Len(t, got, 3)
		assert.Equal(t, 3, countNaN(got))
	})
}

func TestRollingMaxMin(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}

	maxes := RollingMax(values, 3)
	mins := RollingMin(values, 3)

	assert.True(t, math.IsNaN(maxes[0]))
	assert.True(t, math.IsNaN(maxes[1]))
	assert.Equal(t, []float64{4, 4, 5, 9, 9, 9}, maxes[2:])
	assert.Equal(t, []float64{1, 1, 1, 1, 2, 2}, mins[2:])
}

func TestHighestHighLowestLow(t *testing.T) {
	s := wavySeries(120, "1h")

	high := HighestHigh(s, []int{50, 100})
	low := LowestLow(s, []int{50, 100})

	assert.Contains(t, high, "highest_50")
	assert.Contains(t, high, "highest_100")
	assert.Contains(t, low, "lowest_50")
	assert.Contains(t, low, "lowest_100")
	assert.Equal(t, 99, countNaN(high["highest_100"]))

	for i := 99; i < 120; i++ {
		assert.GreaterOrEqual(t, high["highest_50"][i], s.HighPrice[i])
		assert.LessOrEqual(t, low["lowest_50"][i], s.LowPrice[i])
		assert.GreaterOrEqual(t, high["highest_100"][i], high["highest_50"][i])
	}
}

func TestSlope(t *testing.T) {
	got := Slope([]float64{1, 2, 4, 7, 11, math.NaN(), 20}, 2)

	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 1.5, got[2])
	assert.Equal(t, 2.5, got[3])
	assert.Equal(t, 3.5, got[4])
	assert.True(t, math.IsNaN(got[5]))
	assert.Equal(t, 4.5, got[6])
}
