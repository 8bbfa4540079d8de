package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

var day0 = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func seriesOf(values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{Date: day0.AddDate(0, 0, i), Value: v}
	}
	return s
}

func TestDescribe_Example(t *testing.T) {
	s, err := Describe(seriesOf(100, 105, 98, 110, 120))
	require.NoError(t, err)

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 106.6, s.Mean, 1e-9)
	assert.Equal(t, 105.0, s.Median)
	assert.Equal(t, 98.0, s.Min)
	assert.Equal(t, 120.0, s.Max)
	assert.InDelta(t, 4.5, s.Slope, 1e-9)
	assert.Equal(t, TrendIncreasing, s.Trend)
	assert.InDelta(t, 20, s.ChangePercentage, 1e-9)
	assert.True(t, s.ChangeDefined)
	assert.Equal(t, SignificanceHigh, s.Significance)
	assert.Greater(t, s.RSquared, 0.0)
	assert.LessOrEqual(t, s.RSquared, 1.0)
}

func TestDescribe_StrictlyIncreasing(t *testing.T) {
	s, err := Describe(seriesOf(10, 20, 30, 40))
	require.NoError(t, err)
	assert.Equal(t, TrendIncreasing, s.Trend)
	assert.Greater(t, s.ChangePercentage, 0.0)
	assert.InDelta(t, 1.0, s.RSquared, 1e-9)
	assert.Equal(t, 25.0, s.Median)
}

func TestDescribe_Constant(t *testing.T) {
	s, err := Describe(seriesOf(7, 7, 7, 7, 7))
	require.NoError(t, err)
	assert.Equal(t, TrendStable, s.Trend)
	assert.Equal(t, 0.0, s.ChangePercentage)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, SignificanceLow, s.Significance)
}

func TestDescribe_Decreasing(t *testing.T) {
	s, err := Describe(seriesOf(50, 40, 30))
	require.NoError(t, err)
	assert.Equal(t, TrendDecreasing, s.Trend)
	assert.InDelta(t, -40, s.ChangePercentage, 1e-9)
}

func TestDescribe_Empty(t *testing.T) {
	_, err := Describe(nil)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)
}

func TestDescribe_SinglePoint(t *testing.T) {
	s, err := Describe(seriesOf(42))
	require.NoError(t, err)
	assert.True(t, s.InsufficientData)
	assert.Equal(t, TrendStable, s.Trend)
	assert.Equal(t, 42.0, s.Intercept)
}

func TestDescribe_FirstZeroChangeUndefined(t *testing.T) {
	s, err := Describe(seriesOf(0, 5, 10))
	require.NoError(t, err)
	assert.False(t, s.ChangeDefined)
	assert.Equal(t, 0.0, s.ChangePercentage)
	assert.Equal(t, TrendIncreasing, s.Trend)
}

func TestDescribe_RelativeSlope(t *testing.T) {
	// ratios in 0..1 rising 0.008 a day: stable in absolute mode
	s := seriesOf(0.50, 0.508, 0.516, 0.524, 0.532)

	abs, err := NewEngine(DefaultConfig()).Describe(s)
	require.NoError(t, err)
	assert.Equal(t, TrendStable, abs.Trend)

	cfg := DefaultConfig()
	cfg.RelativeSlope = true
	rel, err := NewEngine(cfg).Describe(s)
	require.NoError(t, err)
	assert.Equal(t, TrendIncreasing, rel.Trend)
}

func TestDescribe_DoesNotReorderInput(t *testing.T) {
	s := seriesOf(3, 1, 2)
	_, err := Describe(s)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, s.Values())
}
