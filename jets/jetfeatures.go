package jets

import "fmt"

// jetFeatures derives one scalar per jet from the pre-normalization tensor:
// the mask column summed over particles, divided by the post-adjustment
// particle count. Shape is conceptually [N, 1]; returned as a flat slice of
// length N.
func jetFeatures(t *Tensor3) ([]float32, error) {
	if t.Features < RawFeatures {
		return nil, fmt.Errorf("%w: jet features need the mask feature", ErrConfiguration)
	}
	out := make([]float32, t.Jets)
	for j := 0; j < t.Jets; j++ {
		var sum float32
		for p := 0; p < t.Particles; p++ {
			sum += t.At(j, p, FeatMask)
		}
		out[j] = sum / float32(t.Particles)
	}
	return out, nil
}
