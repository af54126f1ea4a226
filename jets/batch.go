package jets

import (
	"fmt"
	"io"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Batcher adapts a Dataset to gomlx training loops. It walks the split
// sequentially in fixed-size batches; Yield returns io.EOF once the epoch is
// exhausted and Restart rewinds for the next one. The Dataset itself stays a
// pure Len/Get store; all batching lives here.
type Batcher struct {
	DS        *Dataset
	BatchSize int

	pos int
}

// NewBatcher creates a Batcher over ds. A batchSize of 0 defaults to 32.
func NewBatcher(ds *Dataset, batchSize int) *Batcher {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Batcher{DS: ds, BatchSize: batchSize}
}

// Name returns the dataset name for gomlx progress reporting.
func (b *Batcher) Name() string {
	return fmt.Sprintf("jets/%s/%s", b.DS.cfg.JetType, b.DS.cfg.Split)
}

// Yield returns the next batch as gomlx tensors: inputs are the particle
// blocks [batch, P, F], labels the per-jet features [batch, 1] when enabled.
// Implements the gomlx train.Dataset contract.
func (b *Batcher) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if b.pos >= b.DS.Len() {
		return nil, nil, nil, io.EOF
	}
	end := b.pos + b.BatchSize
	if end > b.DS.Len() {
		end = b.DS.Len()
	}
	indices := make([]int, 0, end-b.pos)
	for i := b.pos; i < end; i++ {
		indices = append(indices, i)
	}
	b.pos = end

	in, lab, err := b.Tensors(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	inputs = []*tensors.Tensor{in}
	if lab != nil {
		labels = []*tensors.Tensor{lab}
	}
	return nil, inputs, labels, nil
}

// Restart resets the batcher for a new epoch.
func (b *Batcher) Restart() error {
	b.pos = 0
	return nil
}

// Tensors reads the given record indices and returns them as gomlx tensors.
// The label tensor is nil when jet features are disabled.
func (b *Batcher) Tensors(indices []int) (*tensors.Tensor, *tensors.Tensor, error) {
	flat, err := MakeJetBatchFlat(b.DS, indices)
	if err != nil {
		return nil, nil, err
	}
	return flat.ToGomlxTensors()
}

// JetBatchFlat stores a batch in flat contiguous buffers along with the
// shape metadata needed to rebuild the nested layout.
type JetBatchFlat struct {
	Particles    []float32 // [BatchSize * NumParticles * NumFeatures]
	JetFeats     []float32 // [BatchSize], nil when jet features are disabled
	BatchSize    int
	NumParticles int
	NumFeatures  int
}

// MakeJetBatchFlat gathers the given records from ds into flat buffers.
func MakeJetBatchFlat(ds *Dataset, indices []int) (*JetBatchFlat, error) {
	p := ds.NumParticles()
	f := ds.NumFeatures()
	flat := &JetBatchFlat{
		Particles:    make([]float32, len(indices)*p*f),
		BatchSize:    len(indices),
		NumParticles: p,
		NumFeatures:  f,
	}
	for pos, idx := range indices {
		particles, jet, err := ds.Get(idx)
		if err != nil {
			return nil, err
		}
		copy(flat.Particles[pos*p*f:], particles)
		if jet != nil {
			if flat.JetFeats == nil {
				flat.JetFeats = make([]float32, len(indices))
			}
			flat.JetFeats[pos] = jet[0]
		}
	}
	return flat, nil
}

// ToGomlxTensors converts the flat batch into gomlx tensors. The particle
// tensor has shape [batch, P, F]; the jet-feature tensor [batch, 1] or nil.
func (b *JetBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.BatchSize == 0 {
		empty := make([][][]float32, 0)
		return tensors.FromAnyValue(empty), nil, nil
	}

	// Reshape the flat buffer into a nested 3D slice of views.
	data := make([][][]float32, b.BatchSize)
	idx := 0
	for i := 0; i < b.BatchSize; i++ {
		data[i] = make([][]float32, b.NumParticles)
		for j := 0; j < b.NumParticles; j++ {
			data[i][j] = b.Particles[idx : idx+b.NumFeatures]
			idx += b.NumFeatures
		}
	}
	inT := tensors.FromAnyValue(data)

	if b.JetFeats == nil {
		return inT, nil, nil
	}
	labels := make([][]float32, b.BatchSize)
	for i := 0; i < b.BatchSize; i++ {
		labels[i] = b.JetFeats[i : i+1]
	}
	return inT, tensors.FromAnyValue(labels), nil
}
