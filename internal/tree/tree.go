// Package tree implements a binary CART classifier split on Gini impurity.
package tree

import (
	"cmp"
	"math/rand"
	"slices"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// Options configures tree growth.
type Options struct {
	// MaxDepth limits the number of splits on any root-to-leaf path. 0 means unlimited.
	MaxDepth int
	// MinSamplesSplit is the smallest node that may be split (default 2).
	MinSamplesSplit int
	// MinSamplesLeaf is the smallest child a split may produce (default 1).
	MinSamplesLeaf int
	// MaxFeatures is the number of features drawn per split. 0 means all.
	MaxFeatures int
}

// Node is a flattened tree node. Leaves have Feature == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	// Proba is the fraction of class 1 among the node's training samples.
	Proba   float64
	Samples int
}

// Leaf reports whether the node is terminal.
func (n Node) Leaf() bool { return n.Feature < 0 }

// Classifier is a single decision tree.
type Classifier struct {
	opts      Options
	nodes     []Node
	nFeatures int
}

// New creates an unfitted tree.
func New(opts Options) *Classifier {
	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = 2
	}
	if opts.MinSamplesLeaf < 1 {
		opts.MinSamplesLeaf = 1
	}
	return &Classifier{opts: opts}
}

type sample struct {
	v float64
	y int
}

type frame struct {
	node  int
	idx   []int
	depth int
}

// Fit grows the tree on the rows of x selected by idx (duplicates allowed,
// as produced by bootstrap sampling). A nil idx uses every row.
// rng drives feature subsampling and may be nil when MaxFeatures is 0.
func (c *Classifier) Fit(x [][]float64, y []int, idx []int, rng *rand.Rand) error {
	p, err := model.CheckXY(model.ModuleTree, x, y)
	if err != nil {
		return err
	}
	if idx == nil {
		idx = make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
	}
	if len(idx) == 0 {
		return model.NewDomainError(model.ModuleTree, model.ErrorCodeEmpty, "empty sample index")
	}

	maxFeatures := c.opts.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > p {
		maxFeatures = p
	}
	if maxFeatures < p && rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	c.nFeatures = p
	c.nodes = c.nodes[:0]
	c.nodes = append(c.nodes, leafFor(idx, y))

	buf := make([]sample, len(idx))
	features := make([]int, p)
	for i := range features {
		features[i] = i
	}

	stack := []frame{{node: 0, idx: idx, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := c.nodes[f.node]
		if n.Proba == 0 || n.Proba == 1 {
			continue
		}
		if c.opts.MaxDepth > 0 && f.depth >= c.opts.MaxDepth {
			continue
		}
		if len(f.idx) < c.opts.MinSamplesSplit {
			continue
		}

		if maxFeatures < p {
			rng.Shuffle(len(features), func(i, j int) { features[i], features[j] = features[j], features[i] })
		}
		feat, thr, ok := c.bestSplit(x, y, f.idx, features[:maxFeatures], buf)
		// Keep drawing features until one splits the node.
		for k := maxFeatures; !ok && k < p; k++ {
			feat, thr, ok = c.bestSplit(x, y, f.idx, features[k:k+1], buf)
		}
		if !ok {
			continue
		}

		var left, right []int
		for _, i := range f.idx {
			if x[i][feat] <= thr {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}

		li := len(c.nodes)
		c.nodes = append(c.nodes, leafFor(left, y), leafFor(right, y))
		c.nodes[f.node].Feature = feat
		c.nodes[f.node].Threshold = thr
		c.nodes[f.node].Left = li
		c.nodes[f.node].Right = li + 1

		stack = append(stack,
			frame{node: li + 1, idx: right, depth: f.depth + 1},
			frame{node: li, idx: left, depth: f.depth + 1},
		)
	}
	return nil
}

func leafFor(idx []int, y []int) Node {
	pos := 0
	for _, i := range idx {
		pos += y[i]
	}
	proba := 0.0
	if len(idx) > 0 {
		proba = float64(pos) / float64(len(idx))
	}
	return Node{Feature: -1, Proba: proba, Samples: len(idx)}
}

// bestSplit returns the feature and threshold with the lowest weighted Gini
// impurity among the candidate features. ok is false when no candidate
// strictly improves on the parent.
func (c *Classifier) bestSplit(x [][]float64, y []int, idx, features []int, buf []sample) (feature int, threshold float64, ok bool) {
	n := len(idx)
	totalPos := 0
	for _, i := range idx {
		totalPos += y[i]
	}
	best := gini(totalPos, n) * float64(n)
	minLeaf := c.opts.MinSamplesLeaf

	s := buf[:n]
	for _, feat := range features {
		for k, i := range idx {
			s[k] = sample{v: x[i][feat], y: y[i]}
		}
		slices.SortFunc(s, func(a, b sample) int { return cmp.Compare(a.v, b.v) })
		if s[0].v == s[n-1].v {
			continue
		}

		leftPos := 0
		for k := 0; k < n-1; k++ {
			leftPos += s[k].y
			if s[k].v == s[k+1].v {
				continue
			}
			nl := k + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			score := gini(leftPos, nl)*float64(nl) + gini(totalPos-leftPos, nr)*float64(nr)
			if score < best-1e-12 {
				best = score
				feature = feat
				threshold = s[k].v + (s[k+1].v-s[k].v)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

// ProbaRow returns P(class=1) for one row. The tree must be fitted.
func (c *Classifier) ProbaRow(row []float64) float64 {
	i := 0
	for {
		n := c.nodes[i]
		if n.Leaf() {
			return n.Proba
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// PredictProba returns P(class=1) for every row.
func (c *Classifier) PredictProba(x [][]float64) ([]float64, error) {
	if len(c.nodes) == 0 {
		return nil, model.NewDomainError(model.ModuleTree, model.ErrorCodeNotFitted, "tree is not fitted")
	}
	if err := model.CheckWidth(model.ModuleTree, x, c.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = c.ProbaRow(row)
	}
	return out, nil
}

// Nodes returns the flattened tree; index 0 is the root.
func (c *Classifier) Nodes() []Node { return c.nodes }

// Depth returns the length of the longest root-to-leaf path.
func (c *Classifier) Depth() int {
	if len(c.nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := c.nodes[i]
		if n.Leaf() {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

// FeatureImportances returns the normalised total Gini decrease per feature.
func (c *Classifier) FeatureImportances() []float64 {
	imp := make([]float64, c.nFeatures)
	if len(c.nodes) == 0 {
		return imp
	}
	for _, n := range c.nodes {
		if n.Leaf() {
			continue
		}
		l, r := c.nodes[n.Left], c.nodes[n.Right]
		decrease := float64(n.Samples)*2*n.Proba*(1-n.Proba) -
			float64(l.Samples)*2*l.Proba*(1-l.Proba) -
			float64(r.Samples)*2*r.Proba*(1-r.Proba)
		imp[n.Feature] += decrease
	}
	var total float64
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	return imp
}
