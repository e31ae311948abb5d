package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	v, err := Mean([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = Mean(nil)
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestSum(t *testing.T) {
	v, err := Sum([]float64{1.5, 2.5, -1})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = Sum([]float64{})
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestStdDev(t *testing.T) {
	v, err := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 2.1380899352993950, v, 1e-12)

	v, err = StdDev([]float64{42})
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = StdDev(nil)
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestMedian(t *testing.T) {
	v, err := Median([]float64{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Median([]float64{40, 10, 30, 20})
	require.NoError(t, err)
	assert.Equal(t, 25.0, v)

	_, err = Median(nil)
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestSlope(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{3, 5, 7, 9, 11} // y = 2x + 1 exactly
	v, err := Slope(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-12)

	_, err = Slope([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.Error(t, err, "constant x values leave the slope undefined")

	_, err = Slope([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = Slope(nil, nil)
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"mean", "sum", "stddev", "median"} {
		f, ok := ByName(name)
		assert.True(t, ok, name)
		assert.NotNil(t, f, name)
	}
	_, ok := ByName("mode")
	assert.False(t, ok)
}
