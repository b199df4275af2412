package train

import (
	"io"
	"math/rand"

	"github.com/gomlx/gomlx/types/tensor"
)

// batchDataset adapts encoded examples to the gomlx train.Dataset interface.
// Each Yield returns one [batchSize, maxSeqLen] token tensor and the matching
// [batchSize, 1] class tensor; io.EOF marks the end of an epoch. The trailing
// partial batch is always dropped so every step sees a full batch and graph
// shapes stay constant.
type batchDataset struct {
	name      string
	windows   [][]int32
	classes   []int64
	batchSize int

	rng  *rand.Rand
	perm []int
	pos  int
}

func newBatchDataset(name string, windows [][]int32, classes []int64, batchSize int, rng *rand.Rand) *batchDataset {
	ds := &batchDataset{
		name:      name,
		windows:   windows,
		classes:   classes,
		batchSize: batchSize,
		rng:       rng,
	}
	ds.Reset()
	return ds
}

func (ds *batchDataset) Name() string { return ds.name }

func (ds *batchDataset) Yield() (spec any, inputs []tensor.Tensor, labels []tensor.Tensor, err error) {
	if ds.pos+ds.batchSize > len(ds.perm) {
		return nil, nil, nil, io.EOF
	}

	tokens := make([][]int32, 0, ds.batchSize)
	classes := make([][]int64, 0, ds.batchSize)
	for _, idx := range ds.perm[ds.pos : ds.pos+ds.batchSize] {
		tokens = append(tokens, ds.windows[idx])
		classes = append(classes, []int64{ds.classes[idx]})
	}
	ds.pos += ds.batchSize

	inputs = []tensor.Tensor{tensor.FromValue(tokens)}
	labels = []tensor.Tensor{tensor.FromValue(classes)}
	return nil, inputs, labels, nil
}

func (ds *batchDataset) Reset() {
	ds.pos = 0
	ds.perm = make([]int, len(ds.windows))
	for i := range ds.perm {
		ds.perm[i] = i
	}
	if ds.rng != nil {
		ds.rng.Shuffle(len(ds.perm), func(i, j int) {
			ds.perm[i], ds.perm[j] = ds.perm[j], ds.perm[i]
		})
	}
}
