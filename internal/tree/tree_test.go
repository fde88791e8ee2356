package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// TestFitSingleSplit tests that a threshold on one feature separates the classes.
func TestFitSingleSplit(t *testing.T) {
	x := [][]float64{{1, 9}, {2, 3}, {3, 7}, {10, 1}, {11, 8}, {12, 2}}
	y := []int{0, 0, 0, 1, 1, 1}

	c := New(Options{})
	require.NoError(t, c.Fit(x, y, nil, nil))

	root := c.Nodes()[0]
	assert.Equal(t, 0, root.Feature)
	assert.InDelta(t, 6.5, root.Threshold, 1e-12)
	assert.Equal(t, 1, c.Depth())

	proba, err := c.PredictProba([][]float64{{0, 0}, {20, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, proba)
}

// TestMaxDepthLimitsGrowth tests that XOR needs depth 2 and is truncated at 1.
func TestMaxDepthLimitsGrowth(t *testing.T) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0, 1}}
	y := []int{0, 1, 1, 0, 1}

	shallow := New(Options{MaxDepth: 1})
	require.NoError(t, shallow.Fit(x, y, nil, nil))
	assert.LessOrEqual(t, shallow.Depth(), 1)

	deep := New(Options{MaxDepth: 2})
	require.NoError(t, deep.Fit(x, y, nil, nil))
	proba, err := deep.PredictProba([][]float64{{0, 1}, {1, 0}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0}, proba)
}

// TestPureNodeIsLeaf tests that a single-class set never splits.
func TestPureNodeIsLeaf(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.Fit([][]float64{{1}, {2}, {3}}, []int{1, 1, 1}, nil, nil))
	assert.Len(t, c.Nodes(), 1)
	assert.Equal(t, 1.0, c.Nodes()[0].Proba)
}

// TestBootstrapIndex tests fitting on a subset with duplicates.
func TestBootstrapIndex(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []int{0, 0, 1, 1}
	c := New(Options{})
	require.NoError(t, c.Fit(x, y, []int{0, 0, 3, 3}, nil))
	assert.Equal(t, 4, c.Nodes()[0].Samples)
	assert.InDelta(t, 1.5, c.Nodes()[0].Threshold, 1e-12)
}

func TestMinSamplesLeaf(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []int{1, 0, 0, 0, 0}
	c := New(Options{MinSamplesLeaf: 2})
	require.NoError(t, c.Fit(x, y, nil, nil))
	for _, n := range c.Nodes() {
		assert.GreaterOrEqual(t, n.Samples, 2)
	}
}

// TestMaxFeaturesDeterministic tests that the same rng seed gives the same tree.
func TestMaxFeaturesDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := make([][]float64, 200)
	y := make([]int, 200)
	for i := range x {
		x[i] = []float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()}
		if x[i][2]+x[i][3] > 1 {
			y[i] = 1
		}
	}

	a := New(Options{MaxDepth: 3, MaxFeatures: 2})
	b := New(Options{MaxDepth: 3, MaxFeatures: 2})
	require.NoError(t, a.Fit(x, y, nil, rand.New(rand.NewSource(9))))
	require.NoError(t, b.Fit(x, y, nil, rand.New(rand.NewSource(9))))
	assert.Equal(t, a.Nodes(), b.Nodes())
}

// TestMaxFeaturesFallsBack tests that a node still splits when the drawn
// features are all constant.
func TestMaxFeaturesFallsBack(t *testing.T) {
	x := make([][]float64, 8)
	y := make([]int, 8)
	for i := range x {
		x[i] = []float64{1, 1, 1, 1, float64(i)}
		if i >= 4 {
			y[i] = 1
		}
	}

	for seed := int64(0); seed < 20; seed++ {
		c := New(Options{MaxDepth: 2, MaxFeatures: 1})
		require.NoError(t, c.Fit(x, y, nil, rand.New(rand.NewSource(seed))))
		root := c.Nodes()[0]
		assert.Equal(t, 4, root.Feature, "seed %d", seed)
		assert.InDelta(t, 3.5, root.Threshold, 1e-12, "seed %d", seed)
	}
}

func TestFeatureImportances(t *testing.T) {
	x := [][]float64{{5, 0}, {5, 1}, {5, 2}, {5, 3}}
	y := []int{0, 0, 1, 1}
	c := New(Options{})
	require.NoError(t, c.Fit(x, y, nil, nil))
	assert.Equal(t, []float64{0, 1}, c.FeatureImportances())
}

func TestPredictErrors(t *testing.T) {
	c := New(Options{})
	_, err := c.PredictProba([][]float64{{1}})
	assert.True(t, model.IsNotFitted(err))

	require.NoError(t, c.Fit([][]float64{{1, 2}, {3, 4}}, []int{0, 1}, nil, nil))
	_, err = c.PredictProba([][]float64{{1}})
	assert.True(t, model.IsInvalidInput(err))

	assert.True(t, model.IsEmpty(c.Fit([][]float64{{1}}, []int{0}, []int{}, nil)))
}
