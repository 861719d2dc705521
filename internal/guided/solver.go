package guided

import (
	"context"
	"math"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// Stabilizers and the logistic sharpening constants. These are empirical
// values; changing them changes output.
const (
	weightEpsilon    = 1e-6
	sharpnessGain    = -4.0
	sharpnessEpsilon = 1e-6
)

// solver turns local statistics into per-pixel slope a and intercept b such
// that output ≈ a·guidance + b.
type solver interface {
	solve(ctx context.Context, s *localStats, eps float32) (a, b *planes.Plane, err error)
}

// newSolver selects the strategy for mode once per invocation.
func newSolver(mode Mode, corrective blurFunc) solver {
	switch mode {
	case ModeOriginal:
		return originalSolver{}
	case ModeWeighted:
		return weightedSolver{corrective: corrective}
	default:
		return gradientSolver{corrective: corrective}
	}
}

type originalSolver struct{}

func (originalSolver) solve(_ context.Context, s *localStats, eps float32) (*planes.Plane, *planes.Plane, error) {
	a := planes.MustMap(func(v []float32) float32 {
		return v[0] / (v[1] + eps)
	}, s.covIp, s.varI)
	return a, intercept(s, a), nil
}

type weightedSolver struct {
	corrective blurFunc
}

func (ws weightedSolver) solve(ctx context.Context, s *localStats, eps float32) (*planes.Plane, *planes.Plane, error) {
	// Phase 1: weight source and its full-plane reduction.
	w := s.smallWindowVariance(ws.corrective)
	stats := reduceWeightSource(w, false)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Phase 2: per-pixel evaluation with the reduction bound.
	weight := edgeWeight(w, stats)
	a := weightedSlope(s.covIp, s.varI, weight, eps)
	return a, intercept(s, a), nil
}

type gradientSolver struct {
	corrective blurFunc
}

func (gs gradientSolver) solve(ctx context.Context, s *localStats, eps float32) (*planes.Plane, *planes.Plane, error) {
	// Phase 1.
	w := gradientWeightSource(s.varI, s.smallWindowVariance(gs.corrective))
	stats := reduceWeightSource(w, true)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Phase 2.
	weight := edgeWeight(w, stats)
	a := gradientSlope(s.covIp, s.varI, w, weight, eps, stats)
	return a, intercept(s, a), nil
}

// weightStats are the full-plane reductions the weighted formulas depend on.
// They are computed once per plane before any per-pixel weight is evaluated.
type weightStats struct {
	// MeanInvDenom is the mean of 1/(W+1e-6).
	MeanInvDenom float64
	// Mean and Min are the mean and minimum of W itself; only filled for
	// the gradient solver.
	Mean float64
	Min  float64
}

// gradientWeightSource returns sqrt(varI·varI₁). Products that round below
// zero are clamped so the root stays real.
func gradientWeightSource(varI, varI1 *planes.Plane) *planes.Plane {
	return planes.MustMap(func(v []float32) float32 {
		prod := float64(v[0]) * float64(v[1])
		if prod < 0 {
			return 0
		}
		return float32(math.Sqrt(prod))
	}, varI, varI1)
}

// reduceWeightSource performs the full-plane reductions over the weight
// source W.
func reduceWeightSource(w *planes.Plane, extrema bool) weightStats {
	// Each plane is reduced over its own W; chroma never borrows luma scalars.
	denom := planes.MustMap(func(v []float32) float32 {
		return 1 / (v[0] + weightEpsilon)
	}, w)
	stats := weightStats{MeanInvDenom: planes.Mean(denom)}
	if extrema {
		ps := planes.PlaneStats(w)
		stats.Mean = ps.Mean
		stats.Min = ps.Min
	}
	return stats
}

// edgeWeight returns (W+1e-6)·mean(1/(W+1e-6)). The weight averages to about
// one and grows where the guidance has local structure.
func edgeWeight(w *planes.Plane, stats weightStats) *planes.Plane {
	mean := float32(stats.MeanInvDenom)
	return planes.MustMap(func(v []float32) float32 {
		return (v[0] + weightEpsilon) * mean
	}, w)
}

// weightedSlope returns covIp / (varI + ε/weight).
func weightedSlope(covIp, varI, weight *planes.Plane, eps float32) *planes.Plane {
	return planes.MustMap(func(v []float32) float32 {
		return v[0] / (v[1] + eps/v[2])
	}, covIp, varI, weight)
}

// gradientSlope returns
//
//	(covIp + (ε/weight)·(1 − 1/(1+exp(k·(W−μ))))) / (varI + ε/weight)
//
// with k = -4/(min(W) − μ − 1e-6) and μ = mean(W).
func gradientSlope(covIp, varI, w, weight *planes.Plane, eps float32, stats weightStats) *planes.Plane {
	k := sharpnessGain / (stats.Min - stats.Mean - sharpnessEpsilon)
	alpha := stats.Mean
	return planes.MustMap(func(v []float32) float32 {
		cov, vw, wt, vr := v[0], v[1], v[2], v[3]
		s := 1 / (1 + math.Exp(k*(float64(vw)-alpha)))
		reg := float64(eps) / float64(wt)
		return float32((float64(cov) + reg*(1-s)) / (float64(vr) + reg))
	}, covIp, w, weight, varI)
}

// intercept returns b = meanP − a·meanI.
func intercept(s *localStats, a *planes.Plane) *planes.Plane {
	return planes.MustMap(func(v []float32) float32 {
		return v[0] - float32(v[1]*v[2])
	}, s.meanP, a, s.meanI)
}
