package opt

// Scheduler adjusts an optimizer's learning rate between epochs.
type Scheduler interface {
	Step()
	LR() float64
}

// ExponentialLR decays the learning rate by gamma every epoch, never below MinLR.
type ExponentialLR struct {
	optimizer Optimizer
	gamma     float64
	minLR     float64
}

func NewExponentialLR(optimizer Optimizer, gamma, minLR float64) *ExponentialLR {
	return &ExponentialLR{
		optimizer: optimizer,
		gamma:     gamma,
		minLR:     minLR,
	}
}

func (s *ExponentialLR) Step() {
	state := s.optimizer.State()
	lr, ok := state["LearningRate"].(float64)
	if !ok {
		return
	}
	lr *= s.gamma
	if lr < s.minLR {
		lr = s.minLR
	}
	state["LearningRate"] = lr
	s.optimizer.SetState(state)
}

func (s *ExponentialLR) LR() float64 {
	if lr, ok := s.optimizer.State()["LearningRate"].(float64); ok {
		return lr
	}
	return 0
}
