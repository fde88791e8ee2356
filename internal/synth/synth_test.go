package synth

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/fraudscope/internal/dataset"
	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// TestGenerateShape tests the column layout and the fraud count.
func TestGenerateShape(t *testing.T) {
	d, err := Generate(500, 0.02, 1)
	require.NoError(t, err)

	assert.Equal(t, 500, d.Len())
	assert.Equal(t, 30, d.NumFeatures())
	assert.Equal(t, "Time", d.Columns[0])
	assert.Equal(t, "V1", d.Columns[1])
	assert.Equal(t, "V28", d.Columns[28])
	assert.Equal(t, "Amount", d.Columns[29])
	assert.Equal(t, "Class", d.Label)
	assert.Equal(t, map[int]int{0: 490, 1: 10}, d.ClassCounts())

	for i := 1; i < d.Len(); i++ {
		assert.LessOrEqual(t, d.X[i-1][0], d.X[i][0], "time must not decrease")
	}
	for _, row := range d.X {
		assert.Positive(t, row[29])
	}
}

// TestGenerateDeterministic tests that the seed fixes the output.
func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(50, 0.1, 7)
	require.NoError(t, err)
	b, err := Generate(50, 0.1, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// TestGenerateAtLeastOneFraud tests the lower bound on the minority.
func TestGenerateAtLeastOneFraud(t *testing.T) {
	d, err := Generate(10, 0.001, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, d.ClassCounts()[1])
}

// TestGenerateInvalid tests the rejected arguments.
func TestGenerateInvalid(t *testing.T) {
	_, err := Generate(1, 0.1, 0)
	assert.True(t, model.IsInvalidInput(err))
	_, err = Generate(10, 0, 0)
	assert.True(t, model.IsInvalidInput(err))
	_, err = Generate(10, 1, 0)
	assert.True(t, model.IsInvalidInput(err))
}

// TestWriteCSVRoundTrip tests that written data loads back.
func TestWriteCSVRoundTrip(t *testing.T) {
	d, err := Generate(40, 0.25, 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, d))

	back, err := dataset.Read(context.Background(), &buf, dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, d.Columns, back.Columns)
	assert.Equal(t, d.Y, back.Y)
	require.Equal(t, d.Len(), back.Len())
	for i := range d.X {
		assert.InDeltaSlice(t, d.X[i], back.X[i], 1e-6)
	}
}

// TestGenerateIndependentOfSplit tests that a split drawn with the generator's
// seed leaves fraud rows in the train part.
func TestGenerateIndependentOfSplit(t *testing.T) {
	for _, n := range []int{120, 300, 1000} {
		d, err := Generate(n, 0.1, 0)
		require.NoError(t, err)

		train, test, err := dataset.Split(d, 0.3, 0)
		require.NoError(t, err)
		assert.Positive(t, train.ClassCounts()[1], "n=%d: train has no fraud", n)
		assert.Equal(t, n, train.Len()+test.Len())
	}
}
