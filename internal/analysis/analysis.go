// Package analysis runs the fraud analysis end to end: load, explore,
// rebalance, split, then fit and score each classifier.
package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/FlavioCFOliveira/fraudscope/internal/config"
	"github.com/FlavioCFOliveira/fraudscope/internal/dataset"
	"github.com/FlavioCFOliveira/fraudscope/internal/explore"
	"github.com/FlavioCFOliveira/fraudscope/internal/forest"
	"github.com/FlavioCFOliveira/fraudscope/internal/linear"
	"github.com/FlavioCFOliveira/fraudscope/internal/metrics"
	"github.com/FlavioCFOliveira/fraudscope/internal/model"
	"github.com/FlavioCFOliveira/fraudscope/internal/smote"
)

const histogramWidth = 40

// Runner executes an analysis described by Config. Tables and scores are
// written to Out; progress goes to Logger.
type Runner struct {
	Config   *config.Config
	Logger   *slog.Logger
	Out      io.Writer
	Recorder *metrics.Recorder
	// HistoryDir, when set, receives one epoch-loss CSV per iterative model.
	HistoryDir string
}

// ModelResult is one classifier's score on the test split.
type ModelResult struct {
	Name        string
	Report      metrics.Report
	FitDuration time.Duration
}

// Result summarises a run.
type Result struct {
	Rows            int
	Features        int
	Counts          map[int]int
	ResampledCounts map[int]int
	Synthetic       int
	// CorrColumns are the features correlated with the label on the
	// balanced data, strongest first.
	CorrColumns []explore.LabelCorrelation
	TrainRows   int
	TestRows    int
	Models      []ModelResult
}

// NewRunner returns a Runner writing to stdout with the default logger.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		Config:   cfg,
		Logger:   slog.Default(),
		Out:      os.Stdout,
		Recorder: metrics.NewRecorder(),
	}
}

func (r *Runner) init() error {
	if r.Config == nil {
		r.Config = config.Default()
	}
	if err := r.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	if r.Out == nil {
		r.Out = io.Discard
	}
	if r.Recorder == nil {
		r.Recorder = metrics.NewRecorder()
	}
	return nil
}

// Run executes every step and returns the scores of the enabled models.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.init(); err != nil {
		return nil, err
	}
	cfg := r.Config

	d, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{Rows: d.Len(), Features: d.NumFeatures(), Counts: d.ClassCounts()}
	if err := r.explore(d); err != nil {
		return nil, err
	}
	r.baseline(d)

	var train, test *dataset.Dataset
	if cfg.Split.ResampleBeforeSplit {
		balanced, err := r.resample(ctx, d, res)
		if err != nil {
			return nil, err
		}
		if train, test, err = dataset.Split(balanced, cfg.Split.TestSize, cfg.Split.Seed); err != nil {
			return nil, fmt.Errorf("split resampled data: %w", err)
		}
	} else {
		// Stratified so the train part keeps fraud rows for SMOTE.
		if train, test, err = dataset.StratifiedSplit(d, cfg.Split.TestSize, cfg.Split.Seed); err != nil {
			return nil, fmt.Errorf("split data: %w", err)
		}
		if train, err = r.resample(ctx, train, res); err != nil {
			return nil, err
		}
	}
	res.TrainRows, res.TestRows = train.Len(), test.Len()
	fmt.Fprintf(r.Out, "Train shape: (%d, %d), Test shape: (%d, %d)\n\n",
		train.Len(), train.NumFeatures(), test.Len(), test.NumFeatures())

	for _, name := range config.KnownModels {
		if !cfg.Enabled(name) {
			continue
		}
		mr, err := r.fitAndScore(ctx, name, train, test)
		if err != nil {
			return nil, err
		}
		res.Models = append(res.Models, mr)
	}

	if cfg.Metrics.Out != "" {
		if err := r.Recorder.WriteTextfile(cfg.Metrics.Out); err != nil {
			return nil, fmt.Errorf("write metrics: %w", err)
		}
		r.Logger.Info("metrics written", "path", cfg.Metrics.Out)
	}
	return res, nil
}

// Explore runs the descriptive steps only: load, summaries, class counts,
// histograms and the correlation with the label on the raw data.
func (r *Runner) Explore(ctx context.Context) (*Result, error) {
	if err := r.init(); err != nil {
		return nil, err
	}
	d, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.explore(d); err != nil {
		return nil, err
	}
	return &Result{Rows: d.Len(), Features: d.NumFeatures(), Counts: d.ClassCounts()}, nil
}

func (r *Runner) load(ctx context.Context) (*dataset.Dataset, error) {
	path := r.Config.Data.Path
	if path == "" {
		return nil, model.NewDomainError(model.ModuleAnalysis, model.ErrorCodeInvalidInput, "no data path configured")
	}
	start := time.Now()
	d, err := dataset.Load(ctx, path, dataset.Options{Label: r.Config.Data.Label})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	r.Logger.Info("dataset loaded",
		"path", path,
		"rows", d.Len(),
		"features", d.NumFeatures(),
		"duration", time.Since(start))
	r.Recorder.ObserveCounts("raw", d.ClassCounts())
	return d, nil
}

func (r *Runner) explore(d *dataset.Dataset) error {
	cfg := r.Config.Explore

	fmt.Fprintf(r.Out, "Data shape: (%d, %d)\n", d.Len(), d.NumFeatures()+1)
	if cfg.HeadRows > 0 {
		fmt.Fprintln(r.Out, d.Head(cfg.HeadRows))
	}

	summaries, err := explore.Describe(d)
	if err != nil {
		return fmt.Errorf("describe: %w", err)
	}
	explore.RenderDescribe(r.Out, summaries)

	counts := d.ClassCounts()
	fmt.Fprintf(r.Out, "Percentile of fraud transactions: %v\n", float64(counts[1])/float64(d.Len()))
	explore.RenderClassCounts(r.Out, "Count plot for transactions", counts)

	for _, col := range cfg.HistogramColumns {
		values, err := d.Column(col)
		if err != nil {
			r.Logger.Debug("histogram column not present", "column", col)
			continue
		}
		h, err := explore.Histogram(col, values, cfg.HistogramBins)
		if err != nil {
			return fmt.Errorf("histogram %s: %w", col, err)
		}
		explore.RenderHistogram(r.Out, "Distribution of Transaction "+col, h, histogramWidth)
	}

	corr, err := explore.CorrelationMatrix(d)
	if err != nil {
		return fmt.Errorf("correlation: %w", err)
	}
	r.renderCorrelation("Imbalanced Correlation Matrix", corr)
	return nil
}

func (r *Runner) renderCorrelation(title string, corr *explore.Correlation) {
	if r.Config.Explore.FullMatrix {
		explore.RenderMatrix(r.Out, title, corr)
		return
	}
	explore.RenderLabelCorrelations(r.Out, title+" (correlation with "+corr.Names[len(corr.Names)-1]+")", corr.WithLabel())
}

// baseline logs the shape of a split of the imbalanced data, which is the
// comparison point for the resampled split.
func (r *Runner) baseline(d *dataset.Dataset) {
	train, test, err := dataset.Split(d, r.Config.Split.TestSize, r.Config.Split.Seed)
	if err != nil {
		r.Logger.Debug("baseline split skipped", "error", err)
		return
	}
	r.Logger.Debug("baseline split",
		"train_rows", train.Len(),
		"train_fraud", train.ClassCounts()[1],
		"test_rows", test.Len(),
		"test_fraud", test.ClassCounts()[1])
}

// resample balances d with SMOTE, prints the new class counts and the
// balanced correlation with the label, and records corr_columns in res.
// With SMOTE disabled d is returned as is.
func (r *Runner) resample(ctx context.Context, d *dataset.Dataset, res *Result) (*dataset.Dataset, error) {
	cfg := r.Config.SMOTE
	if !cfg.Enabled {
		r.Logger.Info("resampling disabled")
		res.ResampledCounts = d.ClassCounts()
		return d, nil
	}

	start := time.Now()
	s := &smote.SMOTE{K: cfg.K, Seed: cfg.Seed, Workers: cfg.Workers}
	out, err := s.FitResample(ctx, d.X, d.Y)
	if err != nil {
		return nil, fmt.Errorf("smote: %w", err)
	}
	balanced, err := dataset.FromArrays(d.Columns, d.Label, out.X, out.Y)
	if err != nil {
		return nil, fmt.Errorf("smote: %w", err)
	}
	r.Logger.Info("resampled with smote",
		"minority", out.Minority,
		"synthetic", out.Synthetic,
		"k", out.K,
		"duration", time.Since(start))

	counts := balanced.ClassCounts()
	res.ResampledCounts = counts
	res.Synthetic = out.Synthetic
	r.Recorder.ObserveCounts("resampled", counts)

	fmt.Fprintf(r.Out, "Counter({0: %d, 1: %d})\n", counts[0], counts[1])
	explore.RenderClassCounts(r.Out, "Count plot for Class after resampling", counts)

	corr, err := explore.CorrelationMatrix(balanced)
	if err != nil {
		return nil, fmt.Errorf("balanced correlation: %w", err)
	}
	r.renderCorrelation("Balanced Correlation Matrix", corr)

	res.CorrColumns = corr.LabelCorrelations(r.Config.Explore.CorrelationThreshold)
	explore.RenderLabelCorrelations(r.Out,
		fmt.Sprintf("corr_columns (|r| > %v)", r.Config.Explore.CorrelationThreshold),
		res.CorrColumns)
	return balanced, nil
}

func (r *Runner) newClassifier(name string) (model.Classifier, io.Closer, error) {
	switch name {
	case config.ModelRandomForest:
		return forest.New(r.Config.Forest), nil, nil
	case config.ModelLogisticRegression:
		lr := linear.New(r.Config.Logistic)
		lr.Log = r.Logger
		if r.HistoryDir == "" {
			return lr, nil, nil
		}
		f, err := os.Create(filepath.Join(r.HistoryDir, name+"_history.csv"))
		if err != nil {
			return nil, nil, fmt.Errorf("create training history: %w", err)
		}
		lr.History = f
		return lr, f, nil
	default:
		return nil, nil, model.Errorf(model.ModuleAnalysis, model.ErrorCodeInvalidInput, "unknown model %q", name)
	}
}

func (r *Runner) fitAndScore(ctx context.Context, name string, train, test *dataset.Dataset) (ModelResult, error) {
	clf, closer, err := r.newClassifier(name)
	if err != nil {
		return ModelResult{}, err
	}
	if closer != nil {
		defer closer.Close()
	}

	r.Logger.Info("fitting model", "model", name, "rows", train.Len())
	start := time.Now()
	if err := clf.Fit(ctx, train.X, train.Y); err != nil {
		return ModelResult{}, fmt.Errorf("fit %s: %w", name, err)
	}
	elapsed := time.Since(start)
	r.Logger.Info("model fitted", "model", name, "duration", elapsed)

	pred, err := clf.Predict(test.X)
	if err != nil {
		return ModelResult{}, fmt.Errorf("predict %s: %w", name, err)
	}
	rep, err := metrics.Evaluate(test.Y, pred)
	if err != nil {
		return ModelResult{}, fmt.Errorf("evaluate %s: %w", name, err)
	}

	metrics.Render(r.Out, name, rep)
	fmt.Fprintln(r.Out)
	r.Recorder.Observe(name, rep, elapsed)
	return ModelResult{Name: name, Report: rep, FitDuration: elapsed}, nil
}
