package jets

import (
	"fmt"

	"go.uber.org/zap"
)

// Dataset holds one fully processed train or test split of the JetNet data.
// Construction runs the whole pipeline; once New returns, no field is
// mutated again, so Get is safe to call from multiple goroutines.
type Dataset struct {
	cfg   Config
	data  *Tensor3  // active split, [len, P, F]
	jet   []float32 // per-jet feature for the active split, nil if disabled
	stats *NormStats
}

// New loads, adjusts, normalizes and splits the dataset described by cfg.
// Any error aborts construction entirely; no partially initialized Dataset
// is ever returned.
func New(cfg Config) (*Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger

	log.Info("loading dataset", zap.String("jetType", cfg.JetType))
	raw, err := loadRaw(&cfg)
	if err != nil {
		return nil, err
	}

	data, err := adjustShape(raw, cfg.NumParticles, cfg.NumPadParticles, cfg.DropMask)
	if err != nil {
		return nil, err
	}
	log.Info("loaded dataset", zap.Stringer("shape", data))

	var jet []float32
	if cfg.UseJetFeatures {
		jet, err = jetFeatures(data)
		if err != nil {
			return nil, err
		}
	}

	log.Info("normalizing features")
	stats := normalizeFeatures(data, cfg.FeatureNorms, cfg.FeatureShifts, log)

	if cfg.NoisePadding {
		data = addNoisePadding(data, cfg.Seed)
	}

	tcut := int(float64(data.Jets) * cfg.TrainFraction)
	start, end := 0, tcut
	if cfg.Split == SplitTest {
		start, end = tcut, data.Jets
	}

	d := &Dataset{
		cfg:   cfg,
		data:  data.SliceJets(start, end),
		stats: stats,
	}
	if jet != nil {
		d.jet = jet[start:end]
	}
	log.Info("dataset processed",
		zap.String("split", string(cfg.Split)), zap.Int("jets", d.data.Jets))
	return d, nil
}

// Len returns the number of jets in the active split.
func (d *Dataset) Len() int {
	return d.data.Jets
}

// Get returns the particle-feature block of jet i as a flat row-major
// [NumParticles x NumFeatures] buffer, plus the per-jet feature vector when
// jet features are enabled (nil otherwise). Both are copies; mutating them
// does not affect the dataset.
func (d *Dataset) Get(i int) (particles []float32, jetFeature []float32, err error) {
	if i < 0 || i >= d.data.Jets {
		return nil, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, i, d.data.Jets)
	}
	particles = make([]float32, d.data.Particles*d.data.Features)
	copy(particles, d.data.Jet(i))
	if d.jet != nil {
		jetFeature = []float32{d.jet[i]}
	}
	return particles, jetFeature, nil
}

// NumParticles returns the particle count per jet after shape adjustment.
func (d *Dataset) NumParticles() int { return d.data.Particles }

// NumFeatures returns the feature count per particle (3 when the mask was
// dropped, 4 otherwise).
func (d *Dataset) NumFeatures() int { return d.data.Features }

// Stats returns the normalization parameters fitted over the full pre-split
// dataset. The returned value must be treated as read-only.
func (d *Dataset) Stats() *NormStats { return d.stats }

// PtCutoff returns the fitted pt cutoff statistic.
func (d *Dataset) PtCutoff() float32 { return d.stats.PtCutoff }
