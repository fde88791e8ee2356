// Package explore computes the summary statistics, distributions and
// correlations printed before any model is fitted.
package explore

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/FlavioCFOliveira/fraudscope/internal/dataset"
	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// Summary holds the describe() statistics of one column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe summarises every feature column and the label.
func Describe(d *dataset.Dataset) ([]Summary, error) {
	if d.Len() == 0 {
		return nil, model.NewDomainError(model.ModuleExplore, model.ErrorCodeEmpty, "dataset has no rows")
	}
	names := append(slices.Clone(d.Columns), d.Label)
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		values, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Summarize(name, values))
	}
	return out, nil
}

// Summarize computes count, mean, sample standard deviation, extremes and
// linearly interpolated quartiles of values. values must not be empty.
func Summarize(name string, values []float64) Summary {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Summary{
		Column: name,
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
	}
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	} else {
		s.Std = math.NaN()
	}
	return s
}

// quantile interpolates between the two closest ranks at position (n-1)*p.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
