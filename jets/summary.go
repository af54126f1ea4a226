package jets

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// FeatureSummary holds basic per-feature statistics over one split, computed
// on the post-pipeline (normalized) data.
type FeatureSummary struct {
	Feature int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Summarize computes per-feature summary statistics over the active split.
// Useful for sanity-checking normalization: every scaled feature should land
// inside its configured [-norm+shift, norm+shift] envelope.
func (d *Dataset) Summarize() ([]FeatureSummary, error) {
	out := make([]FeatureSummary, d.data.Features)
	for i := 0; i < d.data.Features; i++ {
		col := d.data.Column(i)
		vals := make(stats.Float64Data, len(col))
		for k, v := range col {
			vals[k] = float64(v)
		}

		min, err := vals.Min()
		if err != nil {
			return nil, fmt.Errorf("summarizing feature %d: %w", i, err)
		}
		max, _ := vals.Max()
		mean, _ := vals.Mean()
		std, _ := vals.StandardDeviation()
		out[i] = FeatureSummary{Feature: i, Min: min, Max: max, Mean: mean, StdDev: std}
	}
	return out, nil
}
