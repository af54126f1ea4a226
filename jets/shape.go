package jets

import "fmt"

// adjustShape truncates/pads the particle axis to the requested layout and
// optionally drops the trailing mask feature. It always returns a freshly
// allocated tensor so the raw loaded array is never aliased.
//
// With numParticles > 0 the result has exactly numParticles slots per jet:
// the first numParticles-numPadParticles are real (truncated from the raw
// 30), the rest all-zero padding. With numParticles == 0 all 30 slots are
// kept. Degenerate combinations are rejected by Config.validate before this
// runs, but the checks are repeated here so the function stands alone.
func adjustShape(t *Tensor3, numParticles, numPadParticles int, dropMask bool) (*Tensor3, error) {
	if numParticles > 0 && numParticles-numPadParticles <= 0 {
		return nil, fmt.Errorf("%w: %d particles with %d padded leaves none", ErrConfiguration, numParticles, numPadParticles)
	}
	if numParticles == 0 && numPadParticles > 0 {
		return nil, fmt.Errorf("%w: padding requires an explicit particle count", ErrConfiguration)
	}

	keep := t.Particles
	if n := numParticles - numPadParticles; 0 < n && n < t.Particles {
		keep = n
	}

	features := t.Features
	if dropMask {
		features = t.Features - 1
	}

	out := NewTensor3(t.Jets, keep+numPadParticles, features)
	for j := 0; j < t.Jets; j++ {
		for p := 0; p < keep; p++ {
			src := t.Particle(j, p)
			copy(out.Particle(j, p), src[:features])
		}
		// padded slots stay zero, including the mask flag
	}
	return out, nil
}
