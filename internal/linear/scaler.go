package linear

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// Scaler standardises features to zero mean and unit variance.
// Constant columns are only centred, so they map to zero on the data the
// scaler was fitted on.
type Scaler struct {
	Mean  []float64
	Scale []float64

	std      *preprocessing.StandardScaler
	constant []bool
}

// FitScaler fits a standard scaler on the rows of x.
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 {
		return nil, model.NewDomainError(model.ModuleLinear, model.ErrorCodeEmpty, "no rows to scale")
	}
	p := len(x[0])

	std := preprocessing.NewStandardScaler(true, true)
	if err := std.Fit(toDense(x, p)); err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}

	s := &Scaler{
		Mean:     make([]float64, p),
		Scale:    make([]float64, p),
		std:      std,
		constant: make([]bool, p),
	}
	for j := 0; j < p; j++ {
		s.constant[j] = true
		for _, row := range x[1:] {
			if row[j] != x[0][j] {
				s.constant[j] = false
				break
			}
		}
	}

	// Mean and Scale are read back from the fitted affine map:
	// z(0) = -mean/scale and z(1) - z(0) = 1/scale.
	unit := mat.NewDense(2, p, nil)
	for j := 0; j < p; j++ {
		unit.Set(1, j, 1)
	}
	z, err := std.Transform(unit)
	if err != nil {
		return nil, fmt.Errorf("read scaler parameters: %w", err)
	}
	for j := 0; j < p; j++ {
		step := z.At(1, j) - z.At(0, j)
		if s.constant[j] || step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
			s.constant[j] = true
			s.Mean[j] = x[0][j]
			s.Scale[j] = 1
			continue
		}
		s.Scale[j] = 1 / step
		s.Mean[j] = -z.At(0, j) * s.Scale[j]
	}
	return s, nil
}

// TransformAll returns standardised copies of every row.
func (s *Scaler) TransformAll(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	if len(x) == 0 {
		return out, nil
	}
	p := len(s.Mean)
	z, err := s.std.Transform(toDense(x, p))
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", err)
	}
	for i, row := range x {
		out[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			if s.constant[j] {
				out[i][j] = row[j] - s.Mean[j]
				continue
			}
			out[i][j] = z.At(i, j)
		}
	}
	return out, nil
}

func toDense(x [][]float64, p int) *mat.Dense {
	data := make([]float64, 0, len(x)*p)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(len(x), p, data)
}
