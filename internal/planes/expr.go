package planes

import (
	"fmt"

	"github.com/anthonynsimon/bild/parallel"
)

// Map evaluates fn at every sample position of the inputs and returns the
// results as a new plane. All inputs must share the same dimensions. fn
// receives one value per input, in order; the slice is reused between calls
// and must not be retained.
func Map(fn func(v []float32) float32, inputs ...*Plane) (*Plane, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("map needs at least one input plane")
	}
	first := inputs[0]
	for i, p := range inputs[1:] {
		if !first.SameSize(p) {
			return nil, fmt.Errorf("map input %d is %dx%d, want %dx%d", i+1, p.Width, p.Height, first.Width, first.Height)
		}
	}

	out := NewPlane(first.Width, first.Height)
	parallel.Line(first.Height, func(start, end int) {
		vals := make([]float32, len(inputs))
		for i := start * first.Width; i < end*first.Width; i++ {
			for j, p := range inputs {
				vals[j] = p.Pix[i]
			}
			out.Pix[i] = fn(vals)
		}
	})
	return out, nil
}

// MustMap is Map for callers that have already checked plane sizes.
func MustMap(fn func(v []float32) float32, inputs ...*Plane) *Plane {
	out, err := Map(fn, inputs...)
	if err != nil {
		panic(err)
	}
	return out
}

// Mul returns the elementwise product of a and b.
func Mul(a, b *Plane) *Plane {
	return MustMap(func(v []float32) float32 { return float32(v[0] * v[1]) }, a, b)
}

// Square returns the elementwise square of a.
func Square(a *Plane) *Plane {
	return MustMap(func(v []float32) float32 { return float32(v[0] * v[0]) }, a)
}
