package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

func TestCorrelate(t *testing.T) {
	e := NewEngine(DefaultConfig())

	t.Run("self correlation", func(t *testing.T) {
		x := []float64{1, 3, 2, 5, 8, 13}
		c, err := e.Correlate(x, x)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, c.Coefficient, 1e-9)
		assert.Equal(t, CorrelationSignificant, c.Significance)
		assert.Equal(t, 6, c.SampleSize)
	})

	t.Run("inverse", func(t *testing.T) {
		c, err := e.Correlate([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, c.Coefficient, 1e-9)
	})

	t.Run("constant series is zero not NaN", func(t *testing.T) {
		c, err := e.Correlate([]float64{5, 5, 5}, []float64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 0.0, c.Coefficient)
		assert.False(t, math.IsNaN(c.Coefficient))
		assert.Equal(t, CorrelationLow, c.Significance)
	})

	t.Run("weak", func(t *testing.T) {
		c, err := e.Correlate([]float64{1, 2, 3, 4, 5, 6}, []float64{2, 1, 2, 1, 2, 1.5})
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(c.Coefficient), 0.3)
		assert.Equal(t, CorrelationLow, c.Significance)
	})

	t.Run("single pair", func(t *testing.T) {
		c, err := e.Correlate([]float64{1}, []float64{2})
		require.NoError(t, err)
		assert.Equal(t, 0.0, c.Coefficient)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := e.Correlate([]float64{1, 2}, []float64{1})
		assert.ErrorIs(t, err, nutrition.ErrInvalidInput)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := e.Correlate(nil, nil)
		assert.ErrorIs(t, err, nutrition.ErrInvalidInput)
	})
}
