package jets

// This package loads the JetNet particle jet dataset and presents it as a
// randomly-indexable set of examples suitable for model training.
//
// A jet is a fixed-size collection of particles, each particle carrying four
// features in a fixed order: eta, phi, pt and a binary mask flag (1 = real
// particle, 0 = zero-padded slot). The raw data ships as a whitespace or
// comma delimited csv of flat rows; the loader reshapes it row-major into
// [jets, 30, 4] and caches the result as a gob file so subsequent loads skip
// the csv parse entirely.
//
// Construction runs a fixed pipeline: load raw data, truncate/pad the
// particle axis, optionally derive per-jet features from the mask column,
// fit and apply per-feature max-abs scaling plus an additive shift, and
// optionally replace zero-padded slots with bounded Gaussian noise. The
// fitted normalization statistics are retained on the Dataset so generated
// samples can be mapped back to physical units with Unnormalize.
//
// Notes on gomlx tensors:
//   - The Dataset itself only exposes Len/Get over flat float32 buffers.
//     Batching and conversion into gomlx tensors live in the Batcher adapter
//     (batch.go), which implements gomlx's train.Dataset Yield contract the
//     same way the flat-batch helpers here convert via tensors.FromAnyValue.

// Fixed upstream layout of the raw JetNet files.
const (
	RawParticles = 30 // particles per jet in the raw csv
	RawFeatures  = 4  // eta, phi, pt, mask
)

// Feature indices within a particle record.
const (
	FeatEta  = 0
	FeatPhi  = 1
	FeatPt   = 2
	FeatMask = 3
)

// Fetcher obtains the raw csv for a jet type and saves it at dest. It is the
// single capability the loader needs from the download layer; the fetch
// package provides the Zenodo-backed implementation. After a successful call
// the file must exist at dest.
type Fetcher interface {
	Fetch(jetType, dest string) error
}
