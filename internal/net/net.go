// Package net wires layers, a loss and an optimizer into a trainable network.
package net

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/FlavioCFOliveira/fraudscope/internal/layer"
	"github.com/FlavioCFOliveira/fraudscope/internal/loss"
	"github.com/FlavioCFOliveira/fraudscope/internal/opt"
)

// Network is a collection of layers that can be forwarded and backwarded.
type Network struct {
	layers []layer.Layer
	loss   loss.Loss
	opt    opt.Optimizer

	// WeightDecay is the L2 coefficient applied to weights (not biases).
	WeightDecay float64

	// Pre-allocated gradient buffer for training
	lossGradBuf []float64
}

// New creates a new neural network with the given layers.
func New(layers []layer.Layer, l loss.Loss, optimizer opt.Optimizer) *Network {
	return &Network{
		layers: layers,
		loss:   l,
		opt:    optimizer,
	}
}

// Forward performs a forward pass through all layers.
// The returned slice belongs to the last layer and is overwritten by the next call.
func (n *Network) Forward(x []float64) []float64 {
	curr := x
	for _, l := range n.layers {
		curr = l.Forward(curr)
	}
	return curr
}

// Backward performs a backward pass through all layers.
func (n *Network) Backward(grad []float64) []float64 {
	curr := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		curr = n.layers[i].Backward(curr)
	}
	return curr
}

// TrainBatch runs forward/backward over the batch, averages the accumulated
// gradients, adds weight decay and applies one optimizer step.
// It returns the mean data loss of the batch.
func (n *Network) TrainBatch(batchX, batchY [][]float64) float64 {
	batchSize := len(batchX)
	if batchSize == 0 {
		return 0
	}

	for _, l := range n.layers {
		l.ZeroGrad()
	}

	var total float64
	for i := range batchX {
		yPred := n.Forward(batchX[i])
		total += n.loss.Forward(yPred, batchY[i])

		if cap(n.lossGradBuf) < len(yPred) {
			n.lossGradBuf = make([]float64, len(yPred))
		}
		grad := n.lossGradBuf[:len(yPred)]
		if inPlace, ok := n.loss.(loss.BackwardInPlacer); ok {
			inPlace.BackwardInPlace(yPred, batchY[i], grad)
		} else {
			grad = n.loss.Backward(yPred, batchY[i])
		}
		n.Backward(grad)
	}

	scale := 1 / float64(batchSize)
	for g, l := range n.layers {
		grads := l.Gradients()
		params := l.Params()
		for i := range grads {
			grads[i] *= scale
		}
		if n.WeightDecay > 0 {
			for i := 0; i < l.NumWeights(); i++ {
				grads[i] += n.WeightDecay * params[i]
			}
		}
		n.opt.Step(g, params, grads)
	}
	return total * scale
}

// FitConfig controls Fit.
type FitConfig struct {
	Epochs    int
	BatchSize int
	// Rand shuffles the sample order each epoch. Nil keeps the input order.
	Rand      *rand.Rand
	Callbacks []Callback
}

// History is the per-epoch mean loss, including weight decay.
type History struct {
	Loss    []float64
	Stopped bool
}

// Fit trains the network for up to cfg.Epochs passes over (x, y).
// It stops early when a callback implementing Stopper reports true
// and returns ctx.Err() if the context is cancelled between batches.
func (n *Network) Fit(ctx context.Context, x, y [][]float64, cfg FitConfig) (*History, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit: %d samples but %d targets", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, errors.New("fit: no samples")
	}
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("fit: epochs must be positive, got %d", cfg.Epochs)
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > len(x) {
		batchSize = len(x)
	}

	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	batchX := make([][]float64, 0, batchSize)
	batchY := make([][]float64, 0, batchSize)

	for _, cb := range cfg.Callbacks {
		if err := cb.OnTrainBegin(n); err != nil {
			return nil, fmt.Errorf("fit: train begin: %w", err)
		}
	}

	hist := &History{}
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if cfg.Rand != nil {
			cfg.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var sum float64
		batches := 0
		for start := 0; start < len(order); start += batchSize {
			if err := ctx.Err(); err != nil {
				return hist, err
			}
			end := min(start+batchSize, len(order))
			batchX, batchY = batchX[:0], batchY[:0]
			for _, idx := range order[start:end] {
				batchX = append(batchX, x[idx])
				batchY = append(batchY, y[idx])
			}
			sum += n.TrainBatch(batchX, batchY)
			batches++
		}

		epochLoss := sum/float64(batches) + n.penalty()
		hist.Loss = append(hist.Loss, epochLoss)

		for _, cb := range cfg.Callbacks {
			if err := cb.OnEpochEnd(epoch, epochLoss, n); err != nil {
				return hist, fmt.Errorf("fit: epoch %d: %w", epoch, err)
			}
		}
		if stopRequested(cfg.Callbacks) {
			hist.Stopped = true
			break
		}
	}

	for _, cb := range cfg.Callbacks {
		if err := cb.OnTrainEnd(n); err != nil {
			return hist, fmt.Errorf("fit: train end: %w", err)
		}
	}
	return hist, nil
}

func (n *Network) penalty() float64 {
	if n.WeightDecay == 0 {
		return 0
	}
	var p float64
	for _, l := range n.layers {
		p += loss.L2Penalty(l.Params()[:l.NumWeights()], n.WeightDecay)
	}
	return p
}

func stopRequested(callbacks []Callback) bool {
	for _, cb := range callbacks {
		if s, ok := cb.(Stopper); ok && s.ShouldStop() {
			return true
		}
	}
	return false
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}
