// Package forest implements a bagged ensemble of CART trees.
package forest

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
	"github.com/FlavioCFOliveira/fraudscope/internal/tree"
)

// Config holds random forest hyper-parameters.
type Config struct {
	Trees           int `yaml:"trees"`
	MaxDepth        int `yaml:"max_depth"`
	MinSamplesSplit int `yaml:"min_samples_split"`
	MinSamplesLeaf  int `yaml:"min_samples_leaf"`
	// MaxFeatures per split; 0 selects floor(sqrt(p)).
	MaxFeatures int   `yaml:"max_features"`
	Bootstrap   bool  `yaml:"bootstrap"`
	Seed        int64 `yaml:"seed"`
	// Workers bounds concurrent tree fits; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig mirrors RandomForestClassifier(max_depth=2, random_state=0).
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MaxDepth:        2,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
}

// RandomForest averages the class-1 probability of independently grown trees.
type RandomForest struct {
	cfg       Config
	trees     []*tree.Classifier
	nFeatures int
}

var _ model.Classifier = (*RandomForest)(nil)

// New creates an unfitted forest.
func New(cfg Config) *RandomForest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	return &RandomForest{cfg: cfg}
}

func (f *RandomForest) Name() string { return "random_forest" }

// Fit grows cfg.Trees trees concurrently. Tree i draws its bootstrap sample
// and feature subsets from a source seeded with Seed+i, so the fitted forest
// does not depend on Workers.
func (f *RandomForest) Fit(ctx context.Context, x [][]float64, y []int) error {
	p, err := model.CheckXY(model.ModuleForest, x, y)
	if err != nil {
		return err
	}

	maxFeatures := f.cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(p))))
	}
	opts := tree.Options{
		MaxDepth:        f.cfg.MaxDepth,
		MinSamplesSplit: f.cfg.MinSamplesSplit,
		MinSamplesLeaf:  f.cfg.MinSamplesLeaf,
		MaxFeatures:     maxFeatures,
	}

	workers := f.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*tree.Classifier, f.cfg.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(f.cfg.Seed + int64(i)))

			var idx []int
			if f.cfg.Bootstrap {
				idx = make([]int, len(x))
				for k := range idx {
					idx[k] = rng.Intn(len(x))
				}
			}

			t := tree.New(opts)
			if err := t.Fit(x, y, idx, rng); err != nil {
				return err
			}
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.trees = trees
	f.nFeatures = p
	return nil
}

// PredictProba returns the mean of the per-tree fraud probabilities.
func (f *RandomForest) PredictProba(x [][]float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, model.NewDomainError(model.ModuleForest, model.ErrorCodeNotFitted, "forest is not fitted")
	}
	if err := model.CheckWidth(model.ModuleForest, x, f.nFeatures); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i, row := range x {
		var sum float64
		for _, t := range f.trees {
			sum += t.ProbaRow(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// Predict labels rows as fraud when the mean probability exceeds 0.5.
func (f *RandomForest) Predict(x [][]float64) ([]int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return nil, err
	}
	return model.Threshold(proba, 0.5), nil
}

// FeatureImportances averages the normalised Gini importances of all trees.
func (f *RandomForest) FeatureImportances() []float64 {
	imp := make([]float64, f.nFeatures)
	if len(f.trees) == 0 {
		return imp
	}
	for _, t := range f.trees {
		for i, v := range t.FeatureImportances() {
			imp[i] += v
		}
	}
	for i := range imp {
		imp[i] /= float64(len(f.trees))
	}
	return imp
}

// Trees returns the fitted trees.
func (f *RandomForest) Trees() []*tree.Classifier { return f.trees }
