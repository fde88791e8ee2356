package explore

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/FlavioCFOliveira/fraudscope/internal/dataset"
	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// Correlation is a Pearson correlation matrix over the feature columns
// followed by the label column.
type Correlation struct {
	Names  []string
	Matrix *mat.SymDense
}

// CorrelationMatrix computes pairwise Pearson coefficients. Entries involving
// a constant column are NaN.
func CorrelationMatrix(d *dataset.Dataset) (*Correlation, error) {
	if d.Len() < 2 {
		return nil, model.Errorf(model.ModuleExplore, model.ErrorCodeEmpty, "need at least 2 rows for correlation, got %d", d.Len())
	}
	p := d.NumFeatures() + 1
	data := make([]float64, 0, d.Len()*p)
	for i, row := range d.X {
		data = append(data, row...)
		data = append(data, float64(d.Y[i]))
	}
	x := mat.NewDense(d.Len(), p, data)

	corr := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(corr, x, nil)

	names := append(slices.Clone(d.Columns), d.Label)
	return &Correlation{Names: names, Matrix: corr}, nil
}

// At returns the coefficient between columns i and j.
func (c *Correlation) At(i, j int) float64 { return c.Matrix.At(i, j) }

// LabelCorrelation is one feature's correlation with the label.
type LabelCorrelation struct {
	Column string
	R      float64
}

// WithLabel returns every feature's correlation with the label, in column order.
func (c *Correlation) WithLabel() []LabelCorrelation {
	last := len(c.Names) - 1
	out := make([]LabelCorrelation, 0, last)
	for j := 0; j < last; j++ {
		out = append(out, LabelCorrelation{Column: c.Names[j], R: c.At(j, last)})
	}
	return out
}

// LabelCorrelations keeps the features whose absolute correlation with the
// label exceeds threshold, strongest first. NaN coefficients are dropped.
func (c *Correlation) LabelCorrelations(threshold float64) []LabelCorrelation {
	var out []LabelCorrelation
	for _, lc := range c.WithLabel() {
		if math.IsNaN(lc.R) || math.Abs(lc.R) <= threshold {
			continue
		}
		out = append(out, lc)
	}
	slices.SortStableFunc(out, func(a, b LabelCorrelation) int {
		return cmp.Compare(math.Abs(b.R), math.Abs(a.R))
	})
	return out
}
