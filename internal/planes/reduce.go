package planes

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of every sample in p. An empty plane has
// mean 0.
func Mean(p *Plane) float64 {
	if len(p.Pix) == 0 {
		return 0
	}
	return stat.Mean(p.Float64s(), nil)
}

// Min returns the smallest sample in p. An empty plane has minimum 0.
func Min(p *Plane) float64 {
	if len(p.Pix) == 0 {
		return 0
	}
	return floats.Min(p.Float64s())
}

// Max returns the largest sample in p. An empty plane has maximum 0.
func Max(p *Plane) float64 {
	if len(p.Pix) == 0 {
		return 0
	}
	return floats.Max(p.Float64s())
}

// Stats holds the full-plane reductions of a single plane.
type Stats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// PlaneStats computes mean, minimum and maximum in one widening pass.
func PlaneStats(p *Plane) Stats {
	if len(p.Pix) == 0 {
		return Stats{}
	}
	data := p.Float64s()
	return Stats{
		Mean: stat.Mean(data, nil),
		Min:  floats.Min(data),
		Max:  floats.Max(data),
	}
}
