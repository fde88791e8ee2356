// Package linear provides an L2-regularised logistic regression trained
// with the nn core: one dense unit, a logits cross-entropy loss and Adam.
package linear

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/FlavioCFOliveira/fraudscope/internal/activations"
	"github.com/FlavioCFOliveira/fraudscope/internal/layer"
	"github.com/FlavioCFOliveira/fraudscope/internal/loss"
	"github.com/FlavioCFOliveira/fraudscope/internal/model"
	"github.com/FlavioCFOliveira/fraudscope/internal/net"
	"github.com/FlavioCFOliveira/fraudscope/internal/opt"
)

// Config holds logistic regression hyper-parameters.
type Config struct {
	// MaxIter caps the number of epochs.
	MaxIter      int     `yaml:"max_iter"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	// LRDecay multiplies the learning rate after every epoch (1 disables it).
	LRDecay float64 `yaml:"lr_decay"`
	// C is the inverse regularisation strength, as in scikit-learn.
	C float64 `yaml:"c"`
	// Tol and Patience drive early stopping on the epoch loss.
	Tol      float64 `yaml:"tol"`
	Patience int     `yaml:"patience"`
	Seed     int64   `yaml:"seed"`
}

// DefaultConfig mirrors LogisticRegression(random_state=0, max_iter=1e5).
func DefaultConfig() Config {
	return Config{
		MaxIter:      100000,
		BatchSize:    256,
		LearningRate: 0.01,
		LRDecay:      0.98,
		C:            1.0,
		Tol:          1e-5,
		Patience:     5,
	}
}

// LogisticRegression is a binary logistic classifier on standardised features.
type LogisticRegression struct {
	cfg Config

	// Log receives per-epoch debug lines; nil disables them.
	Log *slog.Logger
	// History, when set, receives the epoch loss log as CSV.
	History io.Writer

	scaler  *Scaler
	network *net.Network
	dense   *layer.Dense
	epochs  int
}

var _ model.Classifier = (*LogisticRegression)(nil)

// New creates an unfitted logistic regression.
func New(cfg Config) *LogisticRegression {
	return &LogisticRegression{cfg: cfg}
}

func (m *LogisticRegression) Name() string { return "logistic_regression" }

// Fit standardises x, then minimises mean log-loss + ||w||^2 / (2*C*n).
// That objective is scikit-learn's C-weighted sum divided by n.
func (m *LogisticRegression) Fit(ctx context.Context, x [][]float64, y []int) error {
	p, err := model.CheckXY(model.ModuleLinear, x, y)
	if err != nil {
		return err
	}
	if m.cfg.MaxIter <= 0 {
		return model.Errorf(model.ModuleLinear, model.ErrorCodeInvalidInput, "max_iter must be positive, got %d", m.cfg.MaxIter)
	}

	scaler, err := FitScaler(x)
	if err != nil {
		return err
	}
	xs, err := scaler.TransformAll(x)
	if err != nil {
		return err
	}
	ys := make([][]float64, len(y))
	for i, label := range y {
		ys[i] = []float64{float64(label)}
	}

	rng := rand.New(rand.NewSource(m.cfg.Seed))
	dense := layer.NewDense(p, 1, activations.Identity{}, rng)
	adam := opt.NewAdam(m.cfg.LearningRate)
	network := net.New([]layer.Layer{dense}, loss.BCEWithLogits{}, adam)
	if m.cfg.C > 0 {
		network.WeightDecay = 1 / (m.cfg.C * float64(len(x)))
	}

	callbacks := []net.Callback{
		net.Logger{Log: m.Log, Interval: 10, Model: m.Name()},
	}
	if m.cfg.Patience > 0 {
		callbacks = append(callbacks, net.NewEarlyStopping(m.cfg.Patience, m.cfg.Tol))
	}
	if m.cfg.LRDecay > 0 && m.cfg.LRDecay < 1 {
		callbacks = append(callbacks, net.NewSchedulerCallback(opt.NewExponentialLR(adam, m.cfg.LRDecay, m.cfg.LearningRate*1e-3)))
	}
	if m.History != nil {
		callbacks = append(callbacks, net.NewCSVLogger(m.History))
	}

	hist, err := network.Fit(ctx, xs, ys, net.FitConfig{
		Epochs:    m.cfg.MaxIter,
		BatchSize: m.cfg.BatchSize,
		Rand:      rng,
		Callbacks: callbacks,
	})
	if err != nil {
		return fmt.Errorf("logistic regression: %w", err)
	}

	m.scaler = scaler
	m.network = network
	m.dense = dense
	m.epochs = len(hist.Loss)
	if m.Log != nil {
		m.Log.Info("logistic regression converged",
			"epochs", m.epochs,
			"early_stopped", hist.Stopped,
			"final_loss", hist.Loss[len(hist.Loss)-1])
	}
	return nil
}

// DecisionFunction returns the raw logit w·z + b for every row.
func (m *LogisticRegression) DecisionFunction(x [][]float64) ([]float64, error) {
	if m.network == nil {
		return nil, model.NewDomainError(model.ModuleLinear, model.ErrorCodeNotFitted, "logistic regression is not fitted")
	}
	if err := model.CheckWidth(model.ModuleLinear, x, len(m.scaler.Mean)); err != nil {
		return nil, err
	}
	zs, err := m.scaler.TransformAll(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, z := range zs {
		out[i] = m.network.Forward(z)[0]
	}
	return out, nil
}

// PredictProba returns sigmoid(DecisionFunction).
func (m *LogisticRegression) PredictProba(x [][]float64) ([]float64, error) {
	out, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	for i, z := range out {
		out[i] = activations.Logistic(z)
	}
	return out, nil
}

// Predict labels rows as fraud when P(fraud) > 0.5.
func (m *LogisticRegression) Predict(x [][]float64) ([]int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	return model.Threshold(proba, 0.5), nil
}

// Coefficients returns the weights mapped back to the unscaled feature space
// and the matching intercept.
func (m *LogisticRegression) Coefficients() (coef []float64, intercept float64, err error) {
	if m.dense == nil {
		return nil, 0, model.NewDomainError(model.ModuleLinear, model.ErrorCodeNotFitted, "logistic regression is not fitted")
	}
	p := m.dense.InSize()
	coef = make([]float64, p)
	intercept = m.dense.Bias(0)
	for j := 0; j < p; j++ {
		w := m.dense.Weight(0, j)
		coef[j] = w / m.scaler.Scale[j]
		intercept -= w * m.scaler.Mean[j] / m.scaler.Scale[j]
	}
	return coef, intercept, nil
}

// Epochs returns the number of epochs the last Fit ran.
func (m *LogisticRegression) Epochs() int { return m.epochs }
