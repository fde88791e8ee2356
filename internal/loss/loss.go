// Package loss provides the training objectives used by the logistic model.
package loss

import "math"

// BackwardInPlacer is an optional interface for loss functions that support
// in-place gradient computation to avoid allocations.
type BackwardInPlacer interface {
	BackwardInPlace(yPred, yTrue, grad []float64)
}

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64

	// Backward computes the gradient of the loss w.r.t. prediction.
	Backward(yPred, yTrue []float64) []float64
}

// BCEWithLogits is binary cross entropy evaluated on raw logits.
// The sigmoid is folded into the loss so saturated scores never hit log(0).
type BCEWithLogits struct{}

// Forward computes mean(max(z,0) - z*y + log(1+exp(-|z|)))
func (BCEWithLogits) Forward(logits, yTrue []float64) float64 {
	n := len(logits)
	if n != len(yTrue) {
		panic("BCEWithLogits: prediction and target must have same length")
	}
	if n == 0 {
		return 0
	}

	var sum float64
	for i, z := range logits {
		sum += math.Max(z, 0) - z*yTrue[i] + math.Log1p(math.Exp(-math.Abs(z)))
	}
	return sum / float64(n)
}

// Backward computes dL/dz = (sigmoid(z) - y) / n
func (b BCEWithLogits) Backward(logits, yTrue []float64) []float64 {
	grad := make([]float64, len(logits))
	b.BackwardInPlace(logits, yTrue, grad)
	return grad
}

// BackwardInPlace computes the gradient into grad.
func (BCEWithLogits) BackwardInPlace(logits, yTrue, grad []float64) {
	n := len(logits)
	if n != len(yTrue) || n != len(grad) {
		panic("BCEWithLogits: slices must have same length")
	}

	for i, z := range logits {
		grad[i] = (sigmoid(z) - yTrue[i]) / float64(n)
	}
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// L2Penalty returns 0.5*lambda*sum(w^2) for the given weights.
func L2Penalty(weights []float64, lambda float64) float64 {
	if lambda == 0 {
		return 0
	}
	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	return 0.5 * lambda * sum
}
