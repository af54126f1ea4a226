package jets

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// addNoisePadding replaces zero-padded particle slots in the normalized
// tensor with bounded Gaussian noise. Draws are N(0, 1)/5 hard-clamped to
// [-1, 1] (so about five standard deviations fit the normalized range), with
// the pt column halved to match its narrower [-0.5, 0.5] range. Noise is
// zeroed wherever the mask marks a real particle and the mask column itself
// receives no noise, so real-particle slots come back bit-identical.
//
// Precondition: the mask feature was normalized with a -0.5 shift, leaving
// padding slots at exactly -0.5 and real particles at exactly +0.5. Config
// validation enforces this before the pipeline runs.
func addNoisePadding(t *Tensor3, seed int64) *Tensor3 {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(uint64(seed))}

	out := t.Clone()
	for j := 0; j < out.Jets; j++ {
		for p := 0; p < out.Particles; p++ {
			// mask+0.5 is exactly 0 for padding slots, 1 for real
			if out.At(j, p, FeatMask)+0.5 != 0 {
				continue
			}
			row := out.Particle(j, p)
			for i := 0; i < out.Features-1; i++ {
				n := float32(normal.Rand()) / 5
				if n > 1 {
					n = 1
				} else if n < -1 {
					n = -1
				}
				if i == FeatPt {
					n /= 2
				}
				row[i] += n
			}
		}
	}
	return out
}
