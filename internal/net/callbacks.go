package net

import (
	"log/slog"
	"math"

	"github.com/FlavioCFOliveira/fraudscope/internal/opt"
)

// Callback receives training lifecycle events. Returning an error aborts Fit.
type Callback interface {
	OnTrainBegin(n *Network) error
	OnEpochEnd(epoch int, loss float64, n *Network) error
	OnTrainEnd(n *Network) error
}

// Stopper is implemented by callbacks that can end training early.
type Stopper interface {
	ShouldStop() bool
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (BaseCallback) OnTrainBegin(*Network) error { return nil }
func (BaseCallback) OnEpochEnd(int, float64, *Network) error { return nil }
func (BaseCallback) OnTrainEnd(*Network) error { return nil }

// SchedulerCallback steps a learning rate scheduler after every epoch.
type SchedulerCallback struct {
	BaseCallback
	scheduler opt.Scheduler
}

func NewSchedulerCallback(scheduler opt.Scheduler) *SchedulerCallback {
	return &SchedulerCallback{scheduler: scheduler}
}

func (c *SchedulerCallback) OnEpochEnd(int, float64, *Network) error {
	c.scheduler.Step()
	return nil
}

// EarlyStopping stops training when the epoch loss has not improved by more
// than Threshold for Patience consecutive epochs.
type EarlyStopping struct {
	BaseCallback
	Patience  int
	Threshold float64

	bestLoss     float64
	numBadEpochs int
	stopped      bool
	stoppedAt    int
}

func NewEarlyStopping(patience int, threshold float64) *EarlyStopping {
	return &EarlyStopping{
		Patience:  patience,
		Threshold: threshold,
		bestLoss:  math.MaxFloat64,
	}
}

func (c *EarlyStopping) OnTrainBegin(*Network) error {
	c.bestLoss = math.MaxFloat64
	c.numBadEpochs = 0
	c.stopped = false
	return nil
}

func (c *EarlyStopping) OnEpochEnd(epoch int, loss float64, _ *Network) error {
	if loss < c.bestLoss-c.Threshold {
		c.bestLoss = loss
		c.numBadEpochs = 0
	} else {
		c.numBadEpochs++
	}

	if c.numBadEpochs >= c.Patience {
		c.stopped = true
		c.stoppedAt = epoch
	}
	return nil
}

func (c *EarlyStopping) ShouldStop() bool { return c.stopped }

// StoppedEpoch returns the epoch at which training was halted, or -1.
func (c *EarlyStopping) StoppedEpoch() int {
	if !c.stopped {
		return -1
	}
	return c.stoppedAt
}

// Logger logs training progress every Interval epochs.
type Logger struct {
	BaseCallback
	Log      *slog.Logger
	Interval int
	Model    string
}

func (c Logger) OnEpochEnd(epoch int, loss float64, _ *Network) error {
	if c.Log != nil && c.Interval > 0 && epoch%c.Interval == 0 {
		c.Log.Debug("epoch finished", "model", c.Model, "epoch", epoch, "loss", loss)
	}
	return nil
}
