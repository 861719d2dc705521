package guided

import (
	"math"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// Corrective window used by the weighted and gradient solvers.
const (
	correctiveBoxRadius = 2
	correctiveSigma     = math.Sqrt2 / 2
)

// blurFunc is a local-averaging operator bound to a window.
type blurFunc func(*planes.Plane) *planes.Plane

// mainBlur returns the averaging operator for a plane of the given working
// radius: a box of half-width radius+1, or a Gaussian with σ = radius/√2.
func mainBlur(radius int, gauss bool) blurFunc {
	if gauss {
		sigma := float64(radius) / math.Sqrt2
		return func(p *planes.Plane) *planes.Plane { return planes.GaussBlur(p, sigma) }
	}
	return func(p *planes.Plane) *planes.Plane { return planes.BoxBlur(p, radius+1) }
}

// correctiveBlur returns the fixed small-window operator.
func correctiveBlur(gauss bool) blurFunc {
	if gauss {
		return func(p *planes.Plane) *planes.Plane { return planes.GaussBlur(p, correctiveSigma) }
	}
	return func(p *planes.Plane) *planes.Plane { return planes.BoxBlur(p, correctiveBoxRadius) }
}

// localStats carries the windowed statistics of one plane.
type localStats struct {
	meanP *planes.Plane
	meanI *planes.Plane
	varI  *planes.Plane
	covIp *planes.Plane

	// guide and guideSq feed the corrective small-window pass.
	guide   *planes.Plane
	guideSq *planes.Plane
	radius  int
}

// computeStats estimates local means, variance and covariance of the working
// planes under blur. Self-guided planes share meanI, corrIp and covIp with
// their input counterparts.
func computeStats(w workingPlanes, blur blurFunc) *localStats {
	meanP := blur(w.input)
	meanI := meanP
	if !w.selfGuided {
		meanI = blur(w.guide)
	}

	guideSq := planes.Square(w.guide)
	corrI := blur(guideSq)
	varI := variance(corrI, meanI)

	covIp := varI
	if !w.selfGuided {
		corrIp := blur(planes.Mul(w.guide, w.input))
		covIp = planes.MustMap(func(v []float32) float32 {
			return v[0] - float32(v[1]*v[2])
		}, corrIp, meanI, meanP)
	}

	return &localStats{
		meanP:   meanP,
		meanI:   meanI,
		varI:    varI,
		covIp:   covIp,
		guide:   w.guide,
		guideSq: guideSq,
		radius:  w.radius,
	}
}

// variance returns corr - mean².
func variance(corr, mean *planes.Plane) *planes.Plane {
	return planes.MustMap(func(v []float32) float32 {
		return v[0] - float32(v[1]*v[1])
	}, corr, mean)
}

// smallWindowVariance returns the guidance variance over the corrective
// window. A working radius of 1 reuses the main variance.
func (s *localStats) smallWindowVariance(corrective blurFunc) *planes.Plane {
	if s.radius == 1 {
		return s.varI
	}
	meanI := corrective(s.guide)
	corrI := corrective(s.guideSq)
	return variance(corrI, meanI)
}
