package jets

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// NormStats holds the per-feature normalization parameters fitted over the
// whole pre-split dataset. It is immutable once fitted and is required to
// invert the transform, so the Dataset retains it for its lifetime.
type NormStats struct {
	// Maxes is the observed max absolute value per feature, always fitted
	// even for features that were not scaled.
	Maxes []float32

	// Norms and Shifts are the configured targets the fit was applied
	// with; nil entries mean that feature was passed through.
	Norms  []*float32
	Shifts []*float32

	// PtCutoff is the smallest normalized pt value strictly above the
	// column minimum. With many padding particles sharing the exact
	// minimum this captures the smallest real particle pt, used
	// downstream as the cutoff for separating real from noise-floor
	// particles.
	PtCutoff float32

	// HasMask records whether the fitted data carried the mask feature.
	HasMask bool
}

// normalizeFeatures fits and applies the per-feature transform in place:
// scale feature i by norms[i]/max|x_i| when norms[i] is non-nil, then add
// shifts[i] when non-nil and nonzero. A feature whose observed max is zero
// (constant zero column) is left unscaled so no NaN can enter the data; the
// shift still applies.
func normalizeFeatures(t *Tensor3, norms, shifts []*float32, log *zap.Logger) *NormStats {
	nf := t.Features

	maxes := make([]float32, nf)
	for j := 0; j < t.Jets; j++ {
		for p := 0; p < t.Particles; p++ {
			row := t.Particle(j, p)
			for i := 0; i < nf; i++ {
				if a := float32(math.Abs(float64(row[i]))); a > maxes[i] {
					maxes[i] = a
				}
			}
		}
	}
	log.Debug("fitted feature maxes", zap.Float32s("maxes", maxes))

	for i := 0; i < nf; i++ {
		scale := float32(1)
		if norms[i] != nil && maxes[i] != 0 {
			scale = *norms[i] / maxes[i]
		}
		shift := float32(0)
		if shifts[i] != nil {
			shift = *shifts[i]
		}
		if scale == 1 && shift == 0 {
			continue
		}
		for j := 0; j < t.Jets; j++ {
			for p := 0; p < t.Particles; p++ {
				row := t.Particle(j, p)
				row[i] = row[i]*scale + shift
			}
		}
	}

	stats := &NormStats{
		Maxes:    maxes,
		Norms:    append([]*float32(nil), norms[:nf]...),
		Shifts:   append([]*float32(nil), shifts[:nf]...),
		PtCutoff: ptCutoff(t),
		HasMask:  nf == RawFeatures,
	}
	log.Debug("fitted pt cutoff", zap.Float32("ptCutoff", stats.PtCutoff))
	return stats
}

// ptCutoff returns the second-smallest distinct value of the normalized pt
// column. If the column is constant the minimum itself is returned.
func ptCutoff(t *Tensor3) float32 {
	col := t.Column(FeatPt)
	sort.Slice(col, func(i, j int) bool { return col[i] < col[j] })
	for _, v := range col {
		if v > col[0] {
			return v
		}
	}
	return col[0]
}

// UnnormalizeOptions controls the inverse transform.
type UnnormalizeOptions struct {
	// SeparateMask returns the particle features and the mask column as
	// two values instead of one combined tensor.
	SeparateMask bool

	// RealData disables the synthetic-only cleanups below: real detector
	// data legitimately carries small negative reconstructed pt and its
	// mask is exact.
	RealData bool

	// ZeroMaskedParticles zeroes every feature of particles whose
	// unnormalized mask is below 0.5. Ignored for real data or when the
	// mask feature is absent.
	ZeroMaskedParticles bool

	// ZeroNegPt clamps negative pt values to zero. Ignored for real data.
	ZeroNegPt bool
}

// DefaultUnnormalizeOptions mirrors the usual generated-sample cleanup:
// mask returned separately, masked particles zeroed, negative pt clamped.
func DefaultUnnormalizeOptions() UnnormalizeOptions {
	return UnnormalizeOptions{
		SeparateMask:        true,
		ZeroMaskedParticles: true,
		ZeroNegPt:           true,
	}
}

// Unnormalize inverts the fitted transform on t: per feature, subtract the
// shift then undo the scaling (divide by the target norm, multiply by the
// observed max). The input is not modified; a new tensor is returned.
//
// When opts.SeparateMask is set the returned tensor carries only the
// non-mask features and the mask column is returned alongside it; otherwise
// the combined tensor is returned with a nil mask.
func (s *NormStats) Unnormalize(t *Tensor3, opts UnnormalizeOptions) (*Tensor3, []float32, error) {
	if t.Features != len(s.Maxes) {
		return nil, nil, fmt.Errorf("%w: tensor has %d features, stats fitted %d", ErrShape, t.Features, len(s.Maxes))
	}

	out := t.Clone()
	for i := 0; i < out.Features; i++ {
		shift := float32(0)
		if s.Shifts[i] != nil {
			shift = *s.Shifts[i]
		}
		scale := float32(1)
		if s.Norms[i] != nil && s.Maxes[i] != 0 {
			scale = s.Maxes[i] / *s.Norms[i]
		}
		if scale == 1 && shift == 0 {
			continue
		}
		for j := 0; j < out.Jets; j++ {
			for p := 0; p < out.Particles; p++ {
				row := out.Particle(j, p)
				row[i] = (row[i] - shift) * scale
			}
		}
	}

	var mask []float32
	if s.HasMask {
		mask = out.Column(FeatMask)
	}

	if !opts.RealData && opts.ZeroMaskedParticles && s.HasMask {
		for j := 0; j < out.Jets; j++ {
			for p := 0; p < out.Particles; p++ {
				if out.At(j, p, FeatMask) < 0.5 {
					row := out.Particle(j, p)
					for i := range row {
						row[i] = 0
					}
				}
			}
		}
	}
	if !opts.RealData && opts.ZeroNegPt {
		for j := 0; j < out.Jets; j++ {
			for p := 0; p < out.Particles; p++ {
				if out.At(j, p, FeatPt) < 0 {
					out.Set(j, p, FeatPt, 0)
				}
			}
		}
	}

	if opts.SeparateMask && s.HasMask {
		features := NewTensor3(out.Jets, out.Particles, out.Features-1)
		for j := 0; j < out.Jets; j++ {
			for p := 0; p < out.Particles; p++ {
				copy(features.Particle(j, p), out.Particle(j, p)[:out.Features-1])
			}
		}
		return features, mask, nil
	}
	return out, nil, nil
}
