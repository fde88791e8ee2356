package explore

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// Hist is an equal-width histogram. Bin i covers [Edges[i], Edges[i+1]);
// the last bin is closed so the maximum is counted.
type Hist struct {
	Column string
	Edges  []float64
	Counts []int
}

// Histogram bins values into the given number of equal-width bins over
// [min, max]. Constant input yields a single bin.
func Histogram(column string, values []float64, bins int) (*Hist, error) {
	if len(values) == 0 {
		return nil, model.Errorf(model.ModuleExplore, model.ErrorCodeEmpty, "no values to bin for %q", column)
	}
	if bins < 1 {
		return nil, model.Errorf(model.ModuleExplore, model.ErrorCodeInvalidInput, "bins must be positive, got %d", bins)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		bins = 1
	}

	edges := make([]float64, bins+1)
	if lo == hi {
		edges[0], edges[1] = lo, hi
	} else {
		floats.Span(edges, lo, hi)
		edges[bins] = hi
	}

	// stat.Histogram wants every value strictly below the last divider.
	dividers := slices.Clone(edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	raw := stat.Histogram(nil, dividers, sorted, nil)
	counts := make([]int, bins)
	for i, c := range raw {
		counts[i] = int(c)
	}
	return &Hist{Column: column, Edges: edges, Counts: counts}, nil
}
