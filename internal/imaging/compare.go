package imaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// PlaneDiff summarizes how much one plane changed between two frames.
// Differences are measured in native code values.
type PlaneDiff struct {
	Plane           int     `json:"plane"`
	MeanAbsDiff     float64 `json:"mean_abs_diff"`
	MaxAbsDiff      float64 `json:"max_abs_diff"`
	SamplesChanged  int     `json:"samples_changed"`
	TotalSamples    int     `json:"total_samples"`
	PSNR            float64 `json:"psnr_db"`
	SimilarityScore float64 `json:"similarity_score"`
}

// CompareFrames reports per-plane differences between two frames of the same
// shape. A sample counts as changed when it differs by more than one code
// value. Identical planes report a PSNR of 0.
func CompareFrames(before, after *planes.Frame) ([]PlaneDiff, error) {
	if !planes.SameShape(before, after) {
		return nil, fmt.Errorf("cannot compare %dx%d %s with %dx%d %s",
			before.Width, before.Height, before.Format, after.Width, after.Height, after.Format)
	}

	peak := float64(before.Format.Peak())
	diffs := make([]PlaneDiff, len(before.Planes))
	for i := range before.Planes {
		a, b := before.Planes[i], after.Planes[i]
		abs := make([]float64, len(a.Pix))
		var sq float64
		changed := 0
		for j := range a.Pix {
			d := math.Abs(float64(a.Pix[j]) - float64(b.Pix[j]))
			abs[j] = d
			sq += d * d
			if d > 1 {
				changed++
			}
		}

		pd := PlaneDiff{
			Plane:        i,
			TotalSamples: len(abs),
		}
		if len(abs) > 0 {
			pd.MeanAbsDiff = math.Round(floats.Sum(abs)/float64(len(abs))*1000) / 1000
			pd.MaxAbsDiff = floats.Max(abs)
			pd.SamplesChanged = changed
			pd.SimilarityScore = math.Round((1-float64(changed)/float64(len(abs)))*1000) / 1000
			if mse := sq / float64(len(abs)); mse > 0 {
				pd.PSNR = math.Round(10*math.Log10(peak*peak/mse)*100) / 100
			}
		}
		diffs[i] = pd
	}
	return diffs, nil
}
