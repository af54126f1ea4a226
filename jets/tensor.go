package jets

import "fmt"

// Tensor3 is a dense [Jets][Particles][Features] float32 array stored in a
// flat contiguous row-major buffer. Keeping the data flat with explicit shape
// metadata makes the gob cache trivial and conversion to gomlx tensors a
// small reshape, at the cost of manual index arithmetic.
type Tensor3 struct {
	Data      []float32
	Jets      int
	Particles int
	Features  int
}

// NewTensor3 allocates a zeroed tensor of the given shape.
func NewTensor3(jets, particles, features int) *Tensor3 {
	return &Tensor3{
		Data:      make([]float32, jets*particles*features),
		Jets:      jets,
		Particles: particles,
		Features:  features,
	}
}

// At returns the value at [j, p, f].
func (t *Tensor3) At(j, p, f int) float32 {
	return t.Data[(j*t.Particles+p)*t.Features+f]
}

// Set stores v at [j, p, f].
func (t *Tensor3) Set(j, p, f int, v float32) {
	t.Data[(j*t.Particles+p)*t.Features+f] = v
}

// Particle returns the feature vector of particle p in jet j as a view into
// the backing buffer.
func (t *Tensor3) Particle(j, p int) []float32 {
	off := (j*t.Particles + p) * t.Features
	return t.Data[off : off+t.Features]
}

// Jet returns the Particles*Features block of jet j as a view into the
// backing buffer.
func (t *Tensor3) Jet(j int) []float32 {
	stride := t.Particles * t.Features
	return t.Data[j*stride : (j+1)*stride]
}

// Clone returns a deep copy.
func (t *Tensor3) Clone() *Tensor3 {
	out := &Tensor3{
		Data:      make([]float32, len(t.Data)),
		Jets:      t.Jets,
		Particles: t.Particles,
		Features:  t.Features,
	}
	copy(out.Data, t.Data)
	return out
}

// SliceJets returns the view [start, end) along the jet axis. The view shares
// the backing buffer with t; the pipeline only calls it after all in-place
// transforms have finished.
func (t *Tensor3) SliceJets(start, end int) *Tensor3 {
	stride := t.Particles * t.Features
	return &Tensor3{
		Data:      t.Data[start*stride : end*stride],
		Jets:      end - start,
		Particles: t.Particles,
		Features:  t.Features,
	}
}

// Column copies feature column f across all jets and particles into a new
// slice of length Jets*Particles.
func (t *Tensor3) Column(f int) []float32 {
	out := make([]float32, t.Jets*t.Particles)
	idx := 0
	for j := 0; j < t.Jets; j++ {
		for p := 0; p < t.Particles; p++ {
			out[idx] = t.At(j, p, f)
			idx++
		}
	}
	return out
}

func (t *Tensor3) String() string {
	return fmt.Sprintf("Tensor3[%d x %d x %d]", t.Jets, t.Particles, t.Features)
}
