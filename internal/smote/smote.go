// Package smote balances a binary dataset by synthesising minority samples
// on the segments between each minority point and its nearest minority neighbours.
package smote

import (
	"cmp"
	"context"
	"math/rand"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// DefaultK is the neighbour count used by imbalanced-learn.
const DefaultK = 5

// SMOTE is the synthetic minority oversampler.
type SMOTE struct {
	// K is the number of nearest minority neighbours to interpolate towards.
	K    int
	Seed int64
	// Workers bounds the concurrent neighbour searches; 0 uses GOMAXPROCS.
	Workers int
}

// New returns a SMOTE with the default neighbour count.
func New(seed int64) *SMOTE {
	return &SMOTE{K: DefaultK, Seed: seed}
}

// Result summarises a resampling run.
type Result struct {
	X         [][]float64
	Y         []int
	Minority  int
	Synthetic int
	K         int
}

// FitResample returns the original rows, unchanged and in order, followed by
// majority-minority synthetic minority rows, so both classes end up equal.
// Input that is already balanced is returned as a copy.
func (s *SMOTE) FitResample(ctx context.Context, x [][]float64, y []int) (*Result, error) {
	if _, err := model.CheckXY(model.ModuleSMOTE, x, y); err != nil {
		return nil, err
	}

	var byClass [2][]int
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	if len(byClass[0]) == 0 || len(byClass[1]) == 0 {
		return nil, model.NewDomainError(model.ModuleSMOTE, model.ErrorCodeInvalidInput, "need samples of both classes to resample")
	}

	minority := 1
	if len(byClass[0]) < len(byClass[1]) {
		minority = 0
	}
	minIdx := byClass[minority]
	need := len(byClass[1-minority]) - len(minIdx)

	res := &Result{
		X:        make([][]float64, len(x), len(x)+need),
		Y:        make([]int, len(y), len(y)+need),
		Minority: minority,
	}
	for i := range x {
		res.X[i] = slices.Clone(x[i])
	}
	copy(res.Y, y)
	if need == 0 {
		return res, nil
	}

	if len(minIdx) < 2 {
		return nil, model.Errorf(model.ModuleSMOTE, model.ErrorCodeInvalidInput, "minority class %d has %d sample, need at least 2", minority, len(minIdx))
	}
	k := s.K
	if k <= 0 {
		k = DefaultK
	}
	k = min(k, len(minIdx)-1)
	res.K = k

	neighbours, err := s.neighbours(ctx, x, minIdx, k)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(s.Seed))
	for n := 0; n < need; n++ {
		a := rng.Intn(len(minIdx))
		b := neighbours[a][rng.Intn(k)]
		gap := rng.Float64()

		base, other := x[minIdx[a]], x[minIdx[b]]
		synth := make([]float64, len(base))
		for j := range synth {
			synth[j] = base[j] + gap*(other[j]-base[j])
		}
		res.X = append(res.X, synth)
		res.Y = append(res.Y, minority)
	}
	res.Synthetic = need
	return res, nil
}

// neighbours returns, for each minority position, the positions (into minIdx)
// of its k nearest other minority samples by Euclidean distance.
// Ties are broken by position so the result is deterministic.
func (s *SMOTE) neighbours(ctx context.Context, x [][]float64, minIdx []int, k int) ([][]int, error) {
	m := len(minIdx)
	out := make([][]int, m)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (m + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < m; start += chunk {
		end := min(start+chunk, m)
		g.Go(func() error {
			type cand struct {
				pos  int
				dist float64
			}
			cands := make([]cand, 0, m-1)
			for a := start; a < end; a++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				cands = cands[:0]
				for b := 0; b < m; b++ {
					if b == a {
						continue
					}
					cands = append(cands, cand{pos: b, dist: floats.Distance(x[minIdx[a]], x[minIdx[b]], 2)})
				}
				slices.SortFunc(cands, func(p, q cand) int {
					if c := cmp.Compare(p.dist, q.dist); c != 0 {
						return c
					}
					return cmp.Compare(p.pos, q.pos)
				})
				nn := make([]int, k)
				for i := range nn {
					nn[i] = cands[i].pos
				}
				out[a] = nn
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
