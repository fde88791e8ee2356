// Package dataset loads the transactions CSV into dense feature rows and labels.
package dataset

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// DefaultLabel is the label column of the credit-card fraud dataset.
const DefaultLabel = "Class"

// Dataset holds feature rows and 0/1 labels.
type Dataset struct {
	// Columns names the features, in row order.
	Columns []string
	Label   string
	X       [][]float64
	Y       []int
}

// Options configures Load.
type Options struct {
	// Label names the label column. Empty selects the last column.
	Label string
}

// Load reads a header CSV from path. Every column must be numeric;
// the label column must hold 0 or 1.
func Load(ctx context.Context, path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Read(ctx, f, opts)
}

// Read parses a header CSV from r.
func Read(ctx context.Context, r io.Reader, opts Options) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", df.Err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FromFrame(df, opts)
}

// FromFrame converts a gota frame whose columns are all numeric.
func FromFrame(df dataframe.DataFrame, opts Options) (*Dataset, error) {
	names := df.Names()
	if len(names) < 2 {
		return nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "need at least one feature and a label, got %d columns", len(names))
	}
	rows := df.Nrow()
	if rows == 0 {
		return nil, model.NewDomainError(model.ModuleDataset, model.ErrorCodeEmpty, "csv has no data rows")
	}

	label := opts.Label
	if label == "" {
		label = names[len(names)-1]
	}
	if !slices.Contains(names, label) {
		return nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "label column %q not found", label)
	}

	d := &Dataset{
		Label: label,
		X:     make([][]float64, rows),
		Y:     make([]int, rows),
	}
	for i := range d.X {
		d.X[i] = make([]float64, 0, len(names)-1)
	}

	for _, name := range names {
		values := df.Col(name).Float()
		for i, v := range values {
			if math.IsNaN(v) {
				return nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "row %d, column %q: value is not numeric", i+1, name)
			}
		}
		if name == label {
			for i, v := range values {
				if v != 0 && v != 1 {
					return nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "row %d: label %v is not 0 or 1", i+1, v)
				}
				d.Y[i] = int(v)
			}
			continue
		}
		d.Columns = append(d.Columns, name)
		for i, v := range values {
			d.X[i] = append(d.X[i], v)
		}
	}
	return d, nil
}

// FromArrays builds a dataset from in-memory rows, checking shapes and labels.
func FromArrays(columns []string, label string, x [][]float64, y []int) (*Dataset, error) {
	p, err := model.CheckXY(model.ModuleDataset, x, y)
	if err != nil {
		return nil, err
	}
	if p != len(columns) {
		return nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "%d column names for %d features", len(columns), p)
	}
	if label == "" {
		label = DefaultLabel
	}
	return &Dataset{Columns: columns, Label: label, X: x, Y: y}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.X) }

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int { return len(d.Columns) }

// ClassCounts counts rows per label.
func (d *Dataset) ClassCounts() map[int]int {
	counts := make(map[int]int, 2)
	for _, c := range d.Y {
		counts[c]++
	}
	return counts
}

// Column returns a copy of a feature column, or the label column as floats.
func (d *Dataset) Column(name string) ([]float64, error) {
	out := make([]float64, d.Len())
	if name == d.Label {
		for i, v := range d.Y {
			out[i] = float64(v)
		}
		return out, nil
	}
	j := slices.Index(d.Columns, name)
	if j < 0 {
		return nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "column %q not found", name)
	}
	for i, row := range d.X {
		out[i] = row[j]
	}
	return out, nil
}

// Frame rebuilds a gota frame holding the features followed by the label.
func (d *Dataset) Frame() dataframe.DataFrame {
	cols := make([]series.Series, 0, len(d.Columns)+1)
	for j, name := range d.Columns {
		values := make([]float64, d.Len())
		for i, row := range d.X {
			values[i] = row[j]
		}
		cols = append(cols, series.New(values, series.Float, name))
	}
	cols = append(cols, series.New(d.Y, series.Int, d.Label))
	return dataframe.New(cols...)
}

// Head renders the first n rows as a table.
func (d *Dataset) Head(n int) string {
	n = min(n, d.Len())
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return d.Subset(idx).Frame().String()
}

// Subset returns a dataset sharing the rows selected by idx.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{
		Columns: d.Columns,
		Label:   d.Label,
		X:       make([][]float64, len(idx)),
		Y:       make([]int, len(idx)),
	}
	for k, i := range idx {
		out.X[k] = d.X[i]
		out.Y[k] = d.Y[i]
	}
	return out
}
