package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

const sample = `Time,V1,Amount,Class
0,-1.35,149.62,0
0,1.19,2.69,0
1,-1.35,378.66,1
2,-0.96,123.5,0
`

// TestLoad tests reading a creditcard-shaped file from disk.
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creditcard.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	d, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Time", "V1", "Amount"}, d.Columns)
	assert.Equal(t, "Class", d.Label)
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, 3, d.NumFeatures())
	assert.Equal(t, []float64{1, -1.35, 378.66}, d.X[2])
	assert.Equal(t, []int{0, 0, 1, 0}, d.Y)
	assert.Equal(t, map[int]int{0: 3, 1: 1}, d.ClassCounts())
}

// TestReadNamedLabel tests that a label column need not be last.
func TestReadNamedLabel(t *testing.T) {
	in := "Class,a,b\n1,2,3\n0,4,5\n"
	d, err := Read(context.Background(), strings.NewReader(in), Options{Label: "Class"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.Columns)
	assert.Equal(t, []int{1, 0}, d.Y)
	assert.Equal(t, [][]float64{{2, 3}, {4, 5}}, d.X)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		opts  Options
		check func(error) bool
	}{
		{"header only", "a,Class\n", Options{}, func(err error) bool { return err != nil }},
		{"non numeric", "a,Class\nx,0\n", Options{}, model.IsInvalidInput},
		{"bad label", "a,Class\n1,2\n", Options{}, model.IsInvalidInput},
		{"missing label", "a,b\n1,0\n", Options{Label: "Class"}, model.IsInvalidInput},
		{"single column", "Class\n1\n", Options{}, model.IsInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), strings.NewReader(tt.in), tt.opts)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestColumn(t *testing.T) {
	d, err := Read(context.Background(), strings.NewReader(sample), Options{})
	require.NoError(t, err)

	amount, err := d.Column("Amount")
	require.NoError(t, err)
	assert.Equal(t, []float64{149.62, 2.69, 378.66, 123.5}, amount)

	label, err := d.Column("Class")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 0}, label)

	_, err = d.Column("V99")
	assert.True(t, model.IsInvalidInput(err))
}

func TestFrameAndHead(t *testing.T) {
	d, err := Read(context.Background(), strings.NewReader(sample), Options{})
	require.NoError(t, err)

	df := d.Frame()
	assert.Equal(t, []string{"Time", "V1", "Amount", "Class"}, df.Names())
	assert.Equal(t, 4, df.Nrow())

	head := d.Head(2)
	assert.Contains(t, head, "Amount")
	assert.Contains(t, head, "149.62")
	assert.NotContains(t, head, "378.66")
}

func TestFromArrays(t *testing.T) {
	d, err := FromArrays([]string{"a"}, "", [][]float64{{1}, {2}}, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, d.Label)

	_, err = FromArrays([]string{"a", "b"}, "Class", [][]float64{{1}}, []int{0})
	assert.True(t, model.IsInvalidInput(err))
}

// TestSplit tests sizes, disjointness and determinism of the shuffle split.
func TestSplit(t *testing.T) {
	x := make([][]float64, 10)
	y := make([]int, 10)
	for i := range x {
		x[i] = []float64{float64(i)}
		y[i] = i % 2
	}
	d, err := FromArrays([]string{"id"}, "Class", x, y)
	require.NoError(t, err)

	train, test, err := Split(d, 0.3, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, test.Len())

	seen := map[float64]bool{}
	for _, part := range []*Dataset{train, test} {
		for i, row := range part.X {
			assert.False(t, seen[row[0]], "row %v appears twice", row[0])
			seen[row[0]] = true
			assert.Equal(t, int(row[0])%2, part.Y[i])
		}
	}
	assert.Len(t, seen, 10)

	train2, _, err := Split(d, 0.3, 0)
	require.NoError(t, err)
	assert.Equal(t, train.X, train2.X)
}

// TestStratifiedSplit tests that both parts keep the class proportions.
func TestStratifiedSplit(t *testing.T) {
	x := make([][]float64, 300)
	y := make([]int, 300)
	for i := range x {
		x[i] = []float64{float64(i)}
		if i >= 285 {
			y[i] = 1
		}
	}
	d, err := FromArrays([]string{"id"}, "Class", x, y)
	require.NoError(t, err)

	train, test, err := StratifiedSplit(d, 0.3, 0)
	require.NoError(t, err)
	assert.Equal(t, 90, test.Len())
	assert.Equal(t, 210, train.Len())
	assert.Equal(t, map[int]int{0: 86, 1: 4}, test.ClassCounts())
	assert.Equal(t, map[int]int{0: 199, 1: 11}, train.ClassCounts())

	seen := map[float64]bool{}
	for _, part := range []*Dataset{train, test} {
		for i, row := range part.X {
			assert.False(t, seen[row[0]], "row %v appears twice", row[0])
			seen[row[0]] = true
			assert.Equal(t, y[int(row[0])], part.Y[i])
		}
	}
	assert.Len(t, seen, 300)

	train2, test2, err := StratifiedSplit(d, 0.3, 0)
	require.NoError(t, err)
	assert.Equal(t, train.X, train2.X)
	assert.Equal(t, test.X, test2.X)
}

// TestStratifiedSplitKeepsMinority tests that a tiny class is never moved
// wholly into the test part.
func TestStratifiedSplitKeepsMinority(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	y := []int{0, 0, 0, 0, 1, 1}
	d, err := FromArrays([]string{"id"}, "Class", x, y)
	require.NoError(t, err)

	for seed := int64(0); seed < 10; seed++ {
		train, test, err := StratifiedSplit(d, 0.5, seed)
		require.NoError(t, err)
		assert.Equal(t, 3, test.Len())
		assert.Equal(t, 1, train.ClassCounts()[1])
		assert.Equal(t, 1, test.ClassCounts()[1])
	}

	_, _, err = StratifiedSplit(d, 1, 0)
	assert.True(t, model.IsInvalidInput(err))
}

func TestSplitErrors(t *testing.T) {
	d, err := FromArrays([]string{"a"}, "Class", [][]float64{{1}}, []int{0})
	require.NoError(t, err)

	for _, ratio := range []float64{0, 1, -0.1} {
		_, _, err := Split(d, ratio, 0)
		assert.True(t, model.IsInvalidInput(err), "ratio %v", ratio)
	}
	_, _, err = Split(d, 0.5, 0)
	assert.True(t, model.IsInvalidInput(err))
}
