// Package fraudscope exposes the dataset, resampling, model and scoring
// building blocks for use as a library.
package fraudscope

import (
	"context"

	"github.com/FlavioCFOliveira/fraudscope/internal/analysis"
	"github.com/FlavioCFOliveira/fraudscope/internal/config"
	"github.com/FlavioCFOliveira/fraudscope/internal/dataset"
	"github.com/FlavioCFOliveira/fraudscope/internal/forest"
	"github.com/FlavioCFOliveira/fraudscope/internal/linear"
	"github.com/FlavioCFOliveira/fraudscope/internal/metrics"
	"github.com/FlavioCFOliveira/fraudscope/internal/model"
	"github.com/FlavioCFOliveira/fraudscope/internal/smote"
)

// Re-export common types for easier access
type (
	Dataset            = dataset.Dataset
	Classifier         = model.Classifier
	RandomForest       = forest.RandomForest
	ForestConfig       = forest.Config
	LogisticRegression = linear.LogisticRegression
	LogisticConfig     = linear.Config
	SMOTE              = smote.SMOTE
	Resampled          = smote.Result
	Report             = metrics.Report
	Config             = config.Config
	Runner             = analysis.Runner
	DomainError        = model.DomainError
)

// Data
func Load(ctx context.Context, path string) (*Dataset, error) {
	return dataset.Load(ctx, path, dataset.Options{})
}

func Split(d *Dataset, testRatio float64, seed int64) (train, test *Dataset, err error) {
	return dataset.Split(d, testRatio, seed)
}

// Resampling
func NewSMOTE(seed int64) *SMOTE {
	return smote.New(seed)
}

// Models
func NewRandomForest(cfg ForestConfig) *RandomForest {
	return forest.New(cfg)
}

func DefaultForestConfig() ForestConfig {
	return forest.DefaultConfig()
}

func NewLogisticRegression(cfg LogisticConfig) *LogisticRegression {
	return linear.New(cfg)
}

func DefaultLogisticConfig() LogisticConfig {
	return linear.DefaultConfig()
}

// Scoring
func Evaluate(actual, predicted []int) (Report, error) {
	return metrics.Evaluate(actual, predicted)
}

// Full analysis
func DefaultConfig() *Config {
	return config.Default()
}

func NewRunner(cfg *Config) *Runner {
	return analysis.NewRunner(cfg)
}
