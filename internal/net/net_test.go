// Package net provides unit tests for network training.
package net

import (
	"bytes"
	"context"
	"encoding/csv"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/fraudscope/internal/activations"
	"github.com/FlavioCFOliveira/fraudscope/internal/layer"
	"github.com/FlavioCFOliveira/fraudscope/internal/loss"
	"github.com/FlavioCFOliveira/fraudscope/internal/opt"
)

func newLogisticNet(in int, optimizer opt.Optimizer) *Network {
	rng := rand.New(rand.NewSource(7))
	return New(
		[]layer.Layer{layer.NewDense(in, 1, activations.Identity{}, rng)},
		loss.BCEWithLogits{},
		optimizer,
	)
}

// andData is the AND truth table, which a single logistic unit can separate.
func andData() ([][]float64, [][]float64) {
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := [][]float64{{0}, {0}, {0}, {1}}
	return x, y
}

// TestNetworkForward tests forward pass output size.
func TestNetworkForward(t *testing.T) {
	n := newLogisticNet(3, &opt.SGD{LearningRate: 0.1})
	out := n.Forward([]float64{1, 2, 3})
	assert.Len(t, out, 1)
}

// TestTrainBatchReducesLoss tests that repeated batch steps lower the loss.
func TestTrainBatchReducesLoss(t *testing.T) {
	n := newLogisticNet(2, &opt.SGD{LearningRate: 0.5})
	x, y := andData()

	first := n.TrainBatch(x, y)
	var last float64
	for i := 0; i < 500; i++ {
		last = n.TrainBatch(x, y)
	}
	assert.Less(t, last, first)
	assert.Zero(t, n.TrainBatch(nil, nil))
}

// TestFitLearnsAND tests that Fit separates the AND table.
func TestFitLearnsAND(t *testing.T) {
	n := newLogisticNet(2, opt.NewAdam(0.1))
	x, y := andData()

	hist, err := n.Fit(context.Background(), x, y, FitConfig{
		Epochs:    2000,
		BatchSize: 2,
		Rand:      rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	require.Len(t, hist.Loss, 2000)

	for i := range x {
		p := activations.Logistic(n.Forward(x[i])[0])
		if y[i][0] == 1 {
			assert.Greater(t, p, 0.5, "sample %v", x[i])
		} else {
			assert.Less(t, p, 0.5, "sample %v", x[i])
		}
	}
}

// TestFitEarlyStopping tests that a plateau ends training before Epochs.
func TestFitEarlyStopping(t *testing.T) {
	n := newLogisticNet(2, &opt.SGD{LearningRate: 0})
	x, y := andData()
	es := NewEarlyStopping(3, 1e-9)

	hist, err := n.Fit(context.Background(), x, y, FitConfig{
		Epochs:    100,
		Callbacks: []Callback{es},
	})
	require.NoError(t, err)
	assert.True(t, hist.Stopped)
	assert.Len(t, hist.Loss, 4)
	assert.Equal(t, 3, es.StoppedEpoch())
}

// TestFitWeightDecayShrinksWeights tests that L2 pulls weights towards zero.
func TestFitWeightDecayShrinksWeights(t *testing.T) {
	x, y := andData()
	run := func(decay float64) float64 {
		n := newLogisticNet(2, opt.NewAdam(0.05))
		n.WeightDecay = decay
		_, err := n.Fit(context.Background(), x, y, FitConfig{Epochs: 500})
		require.NoError(t, err)
		w := n.Layers()[0].Params()
		return w[0]*w[0] + w[1]*w[1]
	}
	assert.Less(t, run(0.5), run(0))
}

func TestFitValidation(t *testing.T) {
	n := newLogisticNet(2, &opt.SGD{LearningRate: 0.1})
	ctx := context.Background()

	_, err := n.Fit(ctx, [][]float64{{1, 2}}, nil, FitConfig{Epochs: 1})
	assert.Error(t, err)
	_, err = n.Fit(ctx, nil, nil, FitConfig{Epochs: 1})
	assert.Error(t, err)
	_, err = n.Fit(ctx, [][]float64{{1, 2}}, [][]float64{{1}}, FitConfig{})
	assert.Error(t, err)
}

func TestFitContextCancelled(t *testing.T) {
	n := newLogisticNet(2, &opt.SGD{LearningRate: 0.1})
	x, y := andData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Fit(ctx, x, y, FitConfig{Epochs: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestCSVLogger tests that history rows follow the header.
func TestCSVLogger(t *testing.T) {
	var buf bytes.Buffer
	n := newLogisticNet(2, &opt.SGD{LearningRate: 0.1})
	x, y := andData()

	_, err := n.Fit(context.Background(), x, y, FitConfig{
		Epochs:    2,
		Callbacks: []Callback{NewCSVLogger(&buf)},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"epoch", "loss", "time_seconds"}, records[0])
	assert.Equal(t, "0", records[1][0])
	assert.Equal(t, "1", records[2][0])
}

// TestSchedulerCallback tests that the learning rate decays once per epoch.
func TestSchedulerCallback(t *testing.T) {
	adam := opt.NewAdam(0.1)
	n := newLogisticNet(2, adam)
	x, y := andData()

	cb := NewSchedulerCallback(opt.NewExponentialLR(adam, 0.5, 0))
	_, err := n.Fit(context.Background(), x, y, FitConfig{Epochs: 3, Callbacks: []Callback{cb}})
	require.NoError(t, err)
	assert.InDelta(t, 0.0125, adam.LearningRate, 1e-12)
}
