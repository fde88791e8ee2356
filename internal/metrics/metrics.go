// Package metrics scores binary predictions against ground truth.
package metrics

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sjwhitworth/golearn/evaluation"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// ConfusionMatrix is laid out as [[TN FP] [FN TP]]: rows are actual
// labels, columns predicted labels.
type ConfusionMatrix [2][2]int

func (c ConfusionMatrix) TN() int { return c[0][0] }
func (c ConfusionMatrix) FP() int { return c[0][1] }
func (c ConfusionMatrix) FN() int { return c[1][0] }
func (c ConfusionMatrix) TP() int { return c[1][1] }

// Total returns the number of scored samples.
func (c ConfusionMatrix) Total() int { return c[0][0] + c[0][1] + c[1][0] + c[1][1] }

// Report holds the evaluation of one classifier on one split.
type Report struct {
	Confusion ConfusionMatrix
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Evaluate compares predictions with the true labels using golearn's
// evaluation functions. Ratios whose denominator is zero are reported as 0.
func Evaluate(actual, predicted []int) (Report, error) {
	if len(actual) == 0 {
		return Report{}, model.NewDomainError(model.ModuleMetrics, model.ErrorCodeEmpty, "no samples to evaluate")
	}
	if len(actual) != len(predicted) {
		return Report{}, model.Errorf(model.ModuleMetrics, model.ErrorCodeInvalidInput, "%d labels but %d predictions", len(actual), len(predicted))
	}

	var cm ConfusionMatrix
	for i, a := range actual {
		p := predicted[i]
		if (a != 0 && a != 1) || (p != 0 && p != 1) {
			return Report{}, model.Errorf(model.ModuleMetrics, model.ErrorCodeInvalidInput, "sample %d: labels must be 0 or 1, got actual=%d predicted=%d", i, a, p)
		}
		cm[a][p]++
	}

	gl := cm.golearn()
	return Report{
		Confusion: cm,
		Accuracy:  zeroIfNaN(evaluation.GetAccuracy(gl)),
		Precision: zeroIfNaN(evaluation.GetPrecision(fraudClass, gl)),
		Recall:    zeroIfNaN(evaluation.GetRecall(fraudClass, gl)),
		F1:        zeroIfNaN(evaluation.GetF1Score(fraudClass, gl)),
	}, nil
}

// fraudClass is the positive class label in golearn's string-keyed matrix.
const fraudClass = "1"

// golearn converts the matrix to evaluation's actual -> predicted -> count map.
func (c ConfusionMatrix) golearn() evaluation.ConfusionMatrix {
	out := make(evaluation.ConfusionMatrix, 2)
	for a := 0; a < 2; a++ {
		row := make(map[string]int, 2)
		for p := 0; p < 2; p++ {
			row[strconv.Itoa(p)] = c[a][p]
		}
		out[strconv.Itoa(a)] = row
	}
	return out
}

// zeroIfNaN maps the 0/0 ratios golearn returns for an empty denominator to 0.
func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Render prints the four score lines followed by the confusion matrix table.
func Render(w io.Writer, name string, r Report) {
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "accuracy: %v\n", r.Accuracy)
	fmt.Fprintf(w, "precision: %v\n", r.Precision)
	fmt.Fprintf(w, "recall: %v\n", r.Recall)
	fmt.Fprintf(w, "f1 score: %v\n", r.F1)

	cell := lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Actual \\ Predicted", "0", "1").
		StyleFunc(func(int, int) lipgloss.Style { return cell })
	for a := 0; a < 2; a++ {
		t.Row(strconv.Itoa(a), strconv.Itoa(r.Confusion[a][0]), strconv.Itoa(r.Confusion[a][1]))
	}
	fmt.Fprintln(w, t.Render())
}
