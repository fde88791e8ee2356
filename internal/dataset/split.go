package dataset

import (
	"math"
	"math/rand"

	"github.com/FlavioCFOliveira/fraudscope/internal/model"
)

// Split shuffles the rows with a source seeded by seed and cuts them into
// train and test parts. The test part holds ceil(n*testRatio) rows.
func Split(d *Dataset, testRatio float64, seed int64) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "test ratio must be in (0, 1), got %v", testRatio)
	}
	n := d.Len()
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "cannot split %d rows with test ratio %v", n, testRatio)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return d.Subset(perm[nTest:]), d.Subset(perm[:nTest]), nil
}

// StratifiedSplit is Split with the test rows drawn per class, so both parts
// keep the class proportions. The test part holds ceil(n*testRatio) rows,
// shared between classes by largest remainder. A class with at least two
// rows always keeps one in the train part.
func StratifiedSplit(d *Dataset, testRatio float64, seed int64) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "test ratio must be in (0, 1), got %v", testRatio)
	}
	n := d.Len()
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "cannot split %d rows with test ratio %v", n, testRatio)
	}

	var byClass [2][]int
	for i, label := range d.Y {
		byClass[label] = append(byClass[label], i)
	}

	var take [2]int
	var frac [2]float64
	assigned := 0
	for c, idx := range byClass {
		exact := float64(len(idx)) * float64(nTest) / float64(n)
		take[c] = int(math.Floor(exact))
		frac[c] = exact - float64(take[c])
		assigned += take[c]
	}
	for assigned < nTest {
		c := 0
		if frac[1] > frac[0] {
			c = 1
		}
		frac[c] = -1
		take[c]++
		assigned++
	}
	for c, idx := range byClass {
		if len(idx) >= 2 && take[c] > len(idx)-1 {
			spill := take[c] - (len(idx) - 1)
			take[c] -= spill
			other := 1 - c
			take[other] = min(take[other]+spill, max(len(byClass[other])-1, 0))
		}
	}

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for c, idx := range byClass {
		perm := rng.Perm(len(idx))
		for k, p := range perm {
			if k < take[c] {
				testIdx = append(testIdx, idx[p])
			} else {
				trainIdx = append(trainIdx, idx[p])
			}
		}
	}
	if len(testIdx) == 0 || len(trainIdx) == 0 {
		return nil, nil, model.Errorf(model.ModuleDataset, model.ErrorCodeInvalidInput, "cannot stratify %d rows with test ratio %v", n, testRatio)
	}
	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })
	return d.Subset(trainIdx), d.Subset(testIdx), nil
}
