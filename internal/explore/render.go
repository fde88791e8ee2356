package explore

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ClassNames maps labels to the names used in the count plots.
var ClassNames = map[int]string{0: "Normal", 1: "Fraud"}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// RenderClassCounts prints the class count table with percentages.
func RenderClassCounts(w io.Writer, title string, counts map[int]int) {
	total := 0
	labels := make([]int, 0, len(counts))
	for label, n := range counts {
		total += n
		labels = append(labels, label)
	}
	slices.Sort(labels)

	t := newTable("Class", "Name", "Count", "Percent")
	for _, label := range labels {
		n := counts[label]
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		t.Row(strconv.Itoa(label), ClassNames[label], strconv.Itoa(n), fmt.Sprintf("%.3f%%", pct))
	}
	fmt.Fprintf(w, "%s\n%s\n", title, t.Render())
}

// RenderDescribe prints one row of statistics per column.
func RenderDescribe(w io.Writer, summaries []Summary) {
	t := newTable("column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, s := range summaries {
		t.Row(s.Column, strconv.Itoa(s.Count),
			formatFloat(s.Mean), formatFloat(s.Std), formatFloat(s.Min),
			formatFloat(s.Q25), formatFloat(s.Median), formatFloat(s.Q75), formatFloat(s.Max))
	}
	fmt.Fprintln(w, t.Render())
}

// RenderHistogram prints one bar per bin, scaled to width characters.
func RenderHistogram(w io.Writer, title string, h *Hist, width int) {
	peak := slices.Max(h.Counts)
	fmt.Fprintf(w, "%s\n", title)
	for i, c := range h.Counts {
		bar := 0
		if peak > 0 {
			bar = c * width / peak
		}
		if c > 0 && bar == 0 {
			bar = 1
		}
		fmt.Fprintf(w, "[%12.2f, %12.2f) %-*s %d\n", h.Edges[i], h.Edges[i+1], width, strings.Repeat("#", bar), c)
	}
}

// RenderLabelCorrelations prints features ranked by |r| with the label.
func RenderLabelCorrelations(w io.Writer, title string, cs []LabelCorrelation) {
	t := newTable("column", "r", "|r|")
	for _, c := range cs {
		abs := c.R
		if abs < 0 {
			abs = -abs
		}
		t.Row(c.Column, formatFloat(c.R), formatFloat(abs))
	}
	fmt.Fprintf(w, "%s\n%s\n", title, t.Render())
}

// RenderMatrix prints the full correlation matrix with two decimals.
func RenderMatrix(w io.Writer, title string, c *Correlation) {
	t := newTable(append([]string{""}, c.Names...)...)
	for i, name := range c.Names {
		row := make([]string, 0, len(c.Names)+1)
		row = append(row, name)
		for j := range c.Names {
			row = append(row, strconv.FormatFloat(c.At(i, j), 'f', 2, 64))
		}
		t.Row(row...)
	}
	fmt.Fprintf(w, "%s\n%s\n", title, t.Render())
}
