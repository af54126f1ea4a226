package jets

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Split selects which side of the train/test cut a Dataset serves.
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

// Config holds the constructor options for a Dataset. The zero value is not
// usable on its own; JetType is required and the remaining fields receive the
// defaults below in validate.
type Config struct {
	// JetType names the dataset: "g" (gluon), "t" (top quark) or
	// "q" (light quark) in the published JetNet files. Any identifier is
	// accepted here so locally produced files can be loaded; the fetch
	// client enforces the published set.
	JetType string

	// DataDir is the directory holding (or receiving) the csv and gob
	// cache files. Defaults to ".".
	DataDir string

	// Fetcher obtains the raw csv when it is absent. If nil and no local
	// file exists, construction fails with ErrMissingData.
	Fetcher Fetcher

	// Download forces a rebuild from the csv even if the gob cache exists.
	// The csv itself is only fetched if missing.
	Download bool

	// NumParticles is the target particle count per jet; 0 keeps all 30.
	NumParticles int

	// NumPadParticles is how many of NumParticles should be all-zero
	// padding slots appended after truncation.
	NumPadParticles int

	// FeatureNorms is the target max absolute value per feature after
	// scaling, indexed by feature. A nil entry leaves that feature
	// unscaled. Defaults to [1, 1, 1, 1].
	FeatureNorms []*float32

	// FeatureShifts is added per feature after scaling. A nil or zero
	// entry leaves that feature unshifted. Defaults to [0, 0, -0.5, -0.5].
	FeatureShifts []*float32

	// DropMask removes the trailing mask feature, leaving 3 features per
	// particle. By default the mask is kept.
	DropMask bool

	// Split selects the train or test side of the cut. Defaults to train.
	Split Split

	// TrainFraction is the fraction of jets (a prefix, no shuffling)
	// assigned to the train split. Defaults to 0.7.
	TrainFraction float64

	// UseJetFeatures derives one scalar per jet (mean particle count from
	// the mask column) served alongside each record. Requires the mask.
	UseJetFeatures bool

	// NoisePadding replaces zero-padded particle slots with bounded
	// Gaussian noise after normalization. Requires the mask, and requires
	// the mask shift to be exactly -0.5 so the padder can tell real
	// particles from padding in the normalized data.
	NoisePadding bool

	// Seed drives the noise padding RNG. If zero, a time-based seed is
	// used.
	Seed int64

	// Logger receives pipeline progress. Defaults to a nop logger.
	Logger *zap.Logger
}

// ptr is a convenience for building FeatureNorms / FeatureShifts literals.
func ptr(v float32) *float32 { return &v }

// DefaultFeatureNorms returns the standard scaling targets: every feature
// scaled to max absolute value 1.
func DefaultFeatureNorms() []*float32 {
	return []*float32{ptr(1), ptr(1), ptr(1), ptr(1)}
}

// DefaultFeatureShifts returns the standard shifts: pt and mask moved from
// [0, 1] to [-0.5, 0.5], angular features untouched.
func DefaultFeatureShifts() []*float32 {
	return []*float32{ptr(0), ptr(0), ptr(-0.5), ptr(-0.5)}
}

// validate applies defaults and rejects inconsistent option combinations.
func (c *Config) validate() error {
	if c.JetType == "" {
		return fmt.Errorf("%w: JetType is required", ErrConfiguration)
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.FeatureNorms == nil {
		c.FeatureNorms = DefaultFeatureNorms()
	}
	if c.FeatureShifts == nil {
		c.FeatureShifts = DefaultFeatureShifts()
	}
	if len(c.FeatureNorms) < RawFeatures || len(c.FeatureShifts) < RawFeatures {
		return fmt.Errorf("%w: FeatureNorms and FeatureShifts need %d entries", ErrConfiguration, RawFeatures)
	}
	if c.NumParticles < 0 || c.NumParticles > RawParticles {
		return fmt.Errorf("%w: NumParticles %d outside [0, %d]", ErrConfiguration, c.NumParticles, RawParticles)
	}
	if c.NumPadParticles < 0 {
		return fmt.Errorf("%w: NumPadParticles %d is negative", ErrConfiguration, c.NumPadParticles)
	}
	if c.NumParticles > 0 && c.NumParticles-c.NumPadParticles <= 0 {
		return fmt.Errorf("%w: NumParticles %d minus NumPadParticles %d leaves no real particles",
			ErrConfiguration, c.NumParticles, c.NumPadParticles)
	}
	if c.NumParticles == 0 && c.NumPadParticles > 0 {
		return fmt.Errorf("%w: NumPadParticles requires an explicit NumParticles", ErrConfiguration)
	}
	if c.Split == "" {
		c.Split = SplitTrain
	}
	if c.Split != SplitTrain && c.Split != SplitTest {
		return fmt.Errorf("%w: unknown split %q", ErrConfiguration, c.Split)
	}
	if c.TrainFraction == 0 {
		c.TrainFraction = 0.7
	}
	if c.TrainFraction < 0 || c.TrainFraction > 1 {
		return fmt.Errorf("%w: TrainFraction %v outside [0, 1]", ErrConfiguration, c.TrainFraction)
	}
	if c.UseJetFeatures && c.DropMask {
		return fmt.Errorf("%w: jet features require the mask feature", ErrConfiguration)
	}
	if c.NoisePadding {
		if c.DropMask {
			return fmt.Errorf("%w: noise padding requires the mask feature", ErrConfiguration)
		}
		// The padder reconstructs the real-particle mask as mask+0.5,
		// which is only meaningful when the mask was shifted to ±0.5.
		s := c.FeatureShifts[FeatMask]
		if s == nil || *s != -0.5 {
			return fmt.Errorf("%w: noise padding requires a mask shift of -0.5", ErrConfiguration)
		}
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}
