// Package model defines the classifier contract shared by every fraud model.
package model

import "context"

// Classifier is a binary classifier over dense float features.
// Labels are 0 (normal) and 1 (fraud).
type Classifier interface {
	Name() string
	Fit(ctx context.Context, x [][]float64, y []int) error
	// PredictProba returns P(class=1) for every row.
	PredictProba(x [][]float64) ([]float64, error)
	Predict(x [][]float64) ([]int, error)
}

// Threshold labels a row as fraud when its probability is strictly above t.
func Threshold(proba []float64, t float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p > t {
			out[i] = 1
		}
	}
	return out
}

// CheckXY validates a training set: non-empty, consistent widths and 0/1 labels.
// It returns the feature count.
func CheckXY(module string, x [][]float64, y []int) (int, error) {
	if len(x) == 0 {
		return 0, NewDomainError(module, ErrorCodeEmpty, "no training samples")
	}
	if len(x) != len(y) {
		return 0, Errorf(module, ErrorCodeInvalidInput, "%d samples but %d labels", len(x), len(y))
	}
	p := len(x[0])
	if p == 0 {
		return 0, NewDomainError(module, ErrorCodeInvalidInput, "samples have no features")
	}
	for i, row := range x {
		if len(row) != p {
			return 0, Errorf(module, ErrorCodeInvalidInput, "row %d has %d features, want %d", i, len(row), p)
		}
		if y[i] != 0 && y[i] != 1 {
			return 0, Errorf(module, ErrorCodeInvalidInput, "row %d has label %d, want 0 or 1", i, y[i])
		}
	}
	return p, nil
}

// CheckWidth validates prediction input against the fitted feature count.
func CheckWidth(module string, x [][]float64, p int) error {
	for i, row := range x {
		if len(row) != p {
			return Errorf(module, ErrorCodeInvalidInput, "row %d has %d features, model was fitted on %d", i, len(row), p)
		}
	}
	return nil
}
