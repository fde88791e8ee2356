// Package config loads the analysis settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FlavioCFOliveira/fraudscope/internal/dataset"
	"github.com/FlavioCFOliveira/fraudscope/internal/forest"
	"github.com/FlavioCFOliveira/fraudscope/internal/linear"
	"github.com/FlavioCFOliveira/fraudscope/internal/smote"
)

// Model names accepted in Models.
const (
	ModelRandomForest       = "random_forest"
	ModelLogisticRegression = "logistic_regression"
)

// KnownModels lists every classifier the analysis can fit, in run order.
var KnownModels = []string{ModelRandomForest, ModelLogisticRegression}

// Config is the full analysis configuration.
type Config struct {
	Data     DataConfig    `yaml:"data"`
	Explore  ExploreConfig `yaml:"explore"`
	SMOTE    SMOTEConfig   `yaml:"smote"`
	Split    SplitConfig   `yaml:"split"`
	Models   []string      `yaml:"models"`
	Forest   forest.Config `yaml:"forest"`
	Logistic linear.Config `yaml:"logistic"`
	Log      LogConfig     `yaml:"log"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// DataConfig locates the input CSV.
type DataConfig struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label"`
}

// ExploreConfig controls the descriptive output.
type ExploreConfig struct {
	HeadRows int `yaml:"head_rows"`
	// HistogramColumns are plotted when present in the data.
	HistogramColumns []string `yaml:"histogram_columns"`
	HistogramBins    int      `yaml:"histogram_bins"`
	// CorrelationThreshold selects corr_columns by |r| with the label.
	CorrelationThreshold float64 `yaml:"correlation_threshold"`
	// FullMatrix prints the whole correlation matrix, not only the label column.
	FullMatrix bool `yaml:"full_matrix"`
}

// SMOTEConfig configures oversampling.
type SMOTEConfig struct {
	Enabled bool  `yaml:"enabled"`
	K       int   `yaml:"k"`
	Seed    int64 `yaml:"seed"`
	Workers int   `yaml:"workers"`
}

// SplitConfig configures the train/test split.
type SplitConfig struct {
	TestSize float64 `yaml:"test_size"`
	Seed     int64   `yaml:"seed"`
	// ResampleBeforeSplit oversamples the full dataset and then splits it.
	// When false only the training split is oversampled.
	ResampleBeforeSplit bool `yaml:"resample_before_split"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	// Out is the textfile path; empty disables the export.
	Out string `yaml:"out"`
}

// Default returns the settings of the reference analysis.
func Default() *Config {
	return &Config{
		Data: DataConfig{Label: dataset.DefaultLabel},
		Explore: ExploreConfig{
			HeadRows:             5,
			HistogramColumns:     []string{"Amount", "Time"},
			HistogramBins:        20,
			CorrelationThreshold: 0.1,
		},
		SMOTE: SMOTEConfig{Enabled: true, K: smote.DefaultK},
		Split: SplitConfig{
			TestSize:            0.3,
			ResampleBeforeSplit: true,
		},
		Models:   slices.Clone(KnownModels),
		Forest:   forest.DefaultConfig(),
		Logistic: linear.DefaultConfig(),
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("split.test_size must be in (0,1), got %v", c.Split.TestSize))
	}
	if c.SMOTE.Enabled && c.SMOTE.K < 1 {
		errs = append(errs, fmt.Errorf("smote.k must be at least 1, got %d", c.SMOTE.K))
	}
	if c.Explore.HistogramBins < 1 {
		errs = append(errs, fmt.Errorf("explore.histogram_bins must be at least 1, got %d", c.Explore.HistogramBins))
	}
	if c.Explore.HeadRows < 0 {
		errs = append(errs, fmt.Errorf("explore.head_rows must not be negative, got %d", c.Explore.HeadRows))
	}
	if c.Explore.CorrelationThreshold < 0 || c.Explore.CorrelationThreshold >= 1 {
		errs = append(errs, fmt.Errorf("explore.correlation_threshold must be in [0,1), got %v", c.Explore.CorrelationThreshold))
	}
	if len(c.Models) == 0 {
		errs = append(errs, errors.New("models must name at least one classifier"))
	}
	for _, m := range c.Models {
		if !slices.Contains(KnownModels, m) {
			errs = append(errs, fmt.Errorf("unknown model %q (known: %s)", m, strings.Join(KnownModels, ", ")))
		}
	}
	if c.Forest.Trees < 1 {
		errs = append(errs, fmt.Errorf("forest.trees must be at least 1, got %d", c.Forest.Trees))
	}
	if c.Forest.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("forest.max_depth must not be negative, got %d", c.Forest.MaxDepth))
	}
	if c.Logistic.MaxIter < 1 {
		errs = append(errs, fmt.Errorf("logistic.max_iter must be at least 1, got %d", c.Logistic.MaxIter))
	}
	if c.Logistic.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("logistic.batch_size must be at least 1, got %d", c.Logistic.BatchSize))
	}
	if c.Logistic.LearningRate <= 0 {
		errs = append(errs, fmt.Errorf("logistic.learning_rate must be positive, got %v", c.Logistic.LearningRate))
	}
	if c.Logistic.C <= 0 {
		errs = append(errs, fmt.Errorf("logistic.c must be positive, got %v", c.Logistic.C))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Enabled reports whether the named model is selected.
func (c *Config) Enabled(name string) bool { return slices.Contains(c.Models, name) }
