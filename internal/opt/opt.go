// Package opt provides optimization algorithms.
package opt

import "math"

// Optimizer updates parameters in place from their gradients.
// group identifies a parameter block (one per layer) so stateful
// optimizers can keep separate moments for each block.
type Optimizer interface {
	Step(group int, params, gradients []float64)

	// State exposes tunable hyper-parameters, keyed by name.
	State() map[string]any
	SetState(state map[string]any)
}

// SGD (Stochastic Gradient Descent) optimizer.
type SGD struct {
	LearningRate float64
}

// Step updates params in-place: params = params - lr * gradients
func (s *SGD) Step(_ int, params, gradients []float64) {
	for i := range params {
		params[i] -= s.LearningRate * gradients[i]
	}
}

func (s *SGD) State() map[string]any {
	return map[string]any{"LearningRate": s.LearningRate}
}

func (s *SGD) SetState(state map[string]any) {
	if lr, ok := state["LearningRate"].(float64); ok {
		s.LearningRate = lr
	}
}

// Adam optimizer with bias-corrected first and second moments.
type Adam struct {
	LearningRate float64
	Beta1        float64 // Exponential decay rate for first moment
	Beta2        float64 // Exponential decay rate for second moment
	Epsilon      float64 // Small constant for numerical stability

	m map[int][]float64
	v map[int][]float64
	t map[int]int
}

// NewAdam creates a new Adam optimizer with default values.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		m:            make(map[int][]float64),
		v:            make(map[int][]float64),
		t:            make(map[int]int),
	}
}

// Step applies one Adam update to the parameter block.
func (a *Adam) Step(group int, params, gradients []float64) {
	if a.m == nil {
		a.m = make(map[int][]float64)
		a.v = make(map[int][]float64)
		a.t = make(map[int]int)
	}
	m, ok := a.m[group]
	if !ok || len(m) != len(params) {
		m = make([]float64, len(params))
		a.m[group] = m
		a.v[group] = make([]float64, len(params))
		a.t[group] = 0
	}
	v := a.v[group]
	a.t[group]++
	step := float64(a.t[group])

	c1 := 1 - math.Pow(a.Beta1, step)
	c2 := 1 - math.Pow(a.Beta2, step)
	for i, g := range gradients {
		m[i] = a.Beta1*m[i] + (1-a.Beta1)*g
		v[i] = a.Beta2*v[i] + (1-a.Beta2)*g*g
		mHat := m[i] / c1
		vHat := v[i] / c2
		params[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}

func (a *Adam) State() map[string]any {
	return map[string]any{
		"LearningRate": a.LearningRate,
		"Beta1":        a.Beta1,
		"Beta2":        a.Beta2,
	}
}

func (a *Adam) SetState(state map[string]any) {
	if lr, ok := state["LearningRate"].(float64); ok {
		a.LearningRate = lr
	}
	if b, ok := state["Beta1"].(float64); ok {
		a.Beta1 = b
	}
	if b, ok := state["Beta2"].(float64); ok {
		a.Beta2 = b
	}
}
