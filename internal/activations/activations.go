// Package activations provides the element-wise functions applied by dense layers.
package activations

import "math"

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x) given the pre-activation x
	Derivative(x float64) float64

	// Name identifies the activation in training logs.
	Name() string
}

// Identity passes the pre-activation through unchanged.
// Paired with a logits loss it gives a numerically stable logistic unit.
type Identity struct{}

// Activate returns x
func (Identity) Activate(x float64) float64 { return x }

// Derivative returns 1
func (Identity) Derivative(float64) float64 { return 1 }

// Name returns "identity".
func (Identity) Name() string { return "identity" }

// Sigmoid activation function.
type Sigmoid struct{}

// Activate computes sigmoid(x)
func (Sigmoid) Activate(x float64) float64 {
	return Logistic(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (Sigmoid) Derivative(x float64) float64 {
	s := Logistic(x)
	return s * (1 - s)
}

// Name returns "sigmoid".
func (Sigmoid) Name() string { return "sigmoid" }

// Logistic computes 1/(1+exp(-x)) without overflowing for large |x|.
func Logistic(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
