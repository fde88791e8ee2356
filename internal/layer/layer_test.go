// Package layer provides unit tests for neural network layers.
package layer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/fraudscope/internal/activations"
)

func newTestDense(in, out int, act activations.Activation) *Dense {
	return NewDense(in, out, act, rand.New(rand.NewSource(1)))
}

// TestDenseForward tests Wx+b with hand-set parameters.
func TestDenseForward(t *testing.T) {
	d := newTestDense(2, 2, activations.Sigmoid{})
	// W = [[1 0] [0 1]], b = [0.5 -0.5]
	d.SetParams([]float64{1, 0, 0, 1, 0.5, -0.5})

	out := d.Forward([]float64{1.0, 2.0})

	require.Len(t, out, 2)
	assert.InDelta(t, activations.Logistic(1.5), out[0], 1e-12)
	assert.InDelta(t, activations.Logistic(1.5), out[1], 1e-12)
	assert.Equal(t, 1.0, d.Weight(0, 0))
	assert.Equal(t, -0.5, d.Bias(1))
}

// TestDenseBackwardAccumulates tests that gradients sum across samples
// until ZeroGrad.
func TestDenseBackwardAccumulates(t *testing.T) {
	d := newTestDense(2, 1, activations.Identity{})
	d.SetParams([]float64{2, 3, 0})

	d.Forward([]float64{1, 1})
	gradIn := d.Backward([]float64{1})
	assert.Equal(t, []float64{2, 3}, gradIn)

	d.Forward([]float64{2, 0})
	d.Backward([]float64{1})

	// dW = x1 + x2, db = 1 + 1
	assert.Equal(t, []float64{3, 1, 2}, d.Gradients())

	d.ZeroGrad()
	assert.Equal(t, []float64{0, 0, 0}, d.Gradients())
}

// TestDenseGradientNumeric checks weight gradients against finite differences.
func TestDenseGradientNumeric(t *testing.T) {
	d := newTestDense(3, 2, activations.Sigmoid{})
	x := []float64{0.2, -0.7, 1.1}

	// L = sum(outputs)
	lossAt := func() float64 {
		var s float64
		for _, v := range d.Forward(x) {
			s += v
		}
		return s
	}

	d.ZeroGrad()
	d.Forward(x)
	d.Backward([]float64{1, 1})
	analytic := append([]float64(nil), d.Gradients()...)

	const h = 1e-6
	params := d.Params()
	for i := range params {
		orig := params[i]
		params[i] = orig + h
		up := lossAt()
		params[i] = orig - h
		down := lossAt()
		params[i] = orig
		assert.InDelta(t, (up-down)/(2*h), analytic[i], 1e-6, "param %d", i)
	}
}

func TestDenseInit(t *testing.T) {
	d := newTestDense(30, 1, activations.Identity{})
	limit := math.Sqrt(6.0 / 31.0)
	for i := 0; i < d.NumWeights(); i++ {
		assert.LessOrEqual(t, math.Abs(d.Params()[i]), limit)
	}
	assert.Equal(t, 0.0, d.Bias(0))
	assert.Equal(t, 30, d.InSize())
	assert.Equal(t, 1, d.OutSize())
}
