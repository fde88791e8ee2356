// Package synth generates transaction data shaped like the public
// credit-card fraud dataset, for tests and offline runs.
package synth

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"slices"
	"strconv"

	"github.com/FlavioCFOliveira/fraudscope/internal/dataset"
	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// Components is the number of anonymised V columns.
const Components = 28

// secondsSpan covers the two days recorded in the public dataset.
const secondsSpan = 172792

const labelStream int64 = 0x2545f4914f6cdd1d

// fraudShift moves fraud rows along the components that separate the
// classes in the public data.
var fraudShift = map[int]float64{
	3:  2.5,  // V4
	9:  -3.0, // V10
	10: 2.0,  // V11
	11: -3.0, // V12
	13: -4.0, // V14
	16: -3.5, // V17
}

// Columns returns Time, V1..V28 and Amount.
func Columns() []string {
	cols := make([]string, 0, Components+2)
	cols = append(cols, "Time")
	for i := 1; i <= Components; i++ {
		cols = append(cols, "V"+strconv.Itoa(i))
	}
	return append(cols, "Amount")
}

// Generate returns n rows of which round(n*fraudRate), but at least one,
// are fraud. Rows are ordered by Time.
func Generate(n int, fraudRate float64, seed int64) (*dataset.Dataset, error) {
	if n < 2 {
		return nil, model.Errorf(model.ModuleSynth, model.ErrorCodeInvalidInput, "need at least 2 rows, got %d", n)
	}
	if fraudRate <= 0 || fraudRate >= 1 {
		return nil, model.Errorf(model.ModuleSynth, model.ErrorCodeInvalidInput, "fraud rate must be in (0, 1), got %v", fraudRate)
	}
	frauds := int(math.Round(float64(n) * fraudRate))
	frauds = min(max(frauds, 1), n-1)

	// Labels come from their own stream so that fraud positions do not line
	// up with a split permutation drawn from the same seed.
	labels := rand.New(rand.NewSource(seed ^ labelStream))
	y := make([]int, n)
	for _, i := range labels.Perm(n)[:frauds] {
		y[i] = 1
	}

	rng := rand.New(rand.NewSource(seed))

	times := make([]float64, n)
	for i := range times {
		times[i] = math.Floor(rng.Float64() * secondsSpan)
	}
	slices.Sort(times)

	x := make([][]float64, n)
	for i := range x {
		row := make([]float64, Components+2)
		row[0] = times[i]
		for c := 0; c < Components; c++ {
			v := rng.NormFloat64()
			if y[i] == 1 {
				v += fraudShift[c]
			}
			row[c+1] = round(v, 6)
		}
		mu, sigma := 3.5, 1.2
		if y[i] == 1 {
			mu, sigma = 3.0, 1.6
		}
		row[Components+1] = round(math.Exp(mu+sigma*rng.NormFloat64()), 2)
		x[i] = row
	}
	return dataset.FromArrays(Columns(), dataset.DefaultLabel, x, y)
}

// WriteCSV writes d with a header row, features first and label last.
func WriteCSV(w io.Writer, d *dataset.Dataset) error {
	if err := d.Frame().WriteCSV(w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
