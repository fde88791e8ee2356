// Package layer provides neural network layer implementations.
package layer

import (
	"math"
	"math/rand"

	"github.com/FlavioCFOliveira/fraudscope/internal/activations"
)

// Layer is a neural network layer.
// Backward accumulates parameter gradients until ZeroGrad is called,
// so a mini-batch is a sequence of Forward/Backward pairs followed by one step.
type Layer interface {
	Forward(x []float64) []float64
	Backward(grad []float64) []float64

	// Params and Gradients return the live backing slices, not copies.
	Params() []float64
	Gradients() []float64
	ZeroGrad()

	// NumWeights is the length of the prefix of Params subject to weight decay.
	NumWeights() int
}

// Dense is a fully connected layer.
// Weights and bias share one contiguous slice: weights occupy [0, out*in)
// in row-major order and biases the trailing out entries.
type Dense struct {
	params  []float64
	grads   []float64
	act     activations.Activation
	inSize  int
	outSize int

	inputBuf  []float64
	preActBuf []float64
	outputBuf []float64
	gradInBuf []float64
}

// NewDense creates a dense layer with Xavier/Glorot uniform weights drawn from rng
// and zero biases.
func NewDense(in, out int, act activations.Activation, rng *rand.Rand) *Dense {
	params := make([]float64, out*in+out)

	scale := math.Sqrt(6.0 / (float64(in) + float64(out)))
	for i := 0; i < out*in; i++ {
		params[i] = (rng.Float64()*2 - 1) * scale
	}

	return &Dense{
		params:    params,
		grads:     make([]float64, len(params)),
		act:       act,
		inSize:    in,
		outSize:   out,
		inputBuf:  make([]float64, in),
		preActBuf: make([]float64, out),
		outputBuf: make([]float64, out),
		gradInBuf: make([]float64, in),
	}
}

// Forward computes act(Wx + b). The returned slice is reused by the next call.
func (d *Dense) Forward(x []float64) []float64 {
	copy(d.inputBuf, x)

	in := d.inSize
	biases := d.params[d.outSize*in:]
	for o := 0; o < d.outSize; o++ {
		sum := biases[o]
		row := d.params[o*in : (o+1)*in]
		for i, w := range row {
			sum += w * d.inputBuf[i]
		}
		d.preActBuf[o] = sum
		d.outputBuf[o] = d.act.Activate(sum)
	}
	return d.outputBuf
}

// Backward adds this sample's parameter gradients to the accumulator
// and returns dL/dx for the previous layer.
func (d *Dense) Backward(grad []float64) []float64 {
	in := d.inSize
	gradB := d.grads[d.outSize*in:]

	for i := range d.gradInBuf {
		d.gradInBuf[i] = 0
	}

	for o := 0; o < d.outSize; o++ {
		dz := grad[o] * d.act.Derivative(d.preActBuf[o])
		gradB[o] += dz

		row := d.params[o*in : (o+1)*in]
		gradRow := d.grads[o*in : (o+1)*in]
		for i := 0; i < in; i++ {
			gradRow[i] += dz * d.inputBuf[i]
			d.gradInBuf[i] += dz * row[i]
		}
	}
	return d.gradInBuf
}

func (d *Dense) Params() []float64 { return d.params }
func (d *Dense) Gradients() []float64 { return d.grads }
func (d *Dense) NumWeights() int { return d.outSize * d.inSize }

// ZeroGrad clears the gradient accumulator.
func (d *Dense) ZeroGrad() {
	for i := range d.grads {
		d.grads[i] = 0
	}
}

// SetParams copies params into the layer.
func (d *Dense) SetParams(params []float64) {
	copy(d.params, params)
}

// Weight returns the weight connecting input col to output row.
func (d *Dense) Weight(row, col int) float64 {
	return d.params[row*d.inSize+col]
}

// Bias returns the bias of output idx.
func (d *Dense) Bias(idx int) float64 {
	return d.params[d.outSize*d.inSize+idx]
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int { return d.inSize }

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int { return d.outSize }
