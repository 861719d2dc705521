package planes

import "fmt"

// Plane is a single channel of samples stored row-major.
type Plane struct {
	Width  int
	Height int
	Pix    []float32
}

// NewPlane allocates a zeroed plane of the given size.
func NewPlane(width, height int) *Plane {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Plane{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height),
	}
}

// NewPlaneFilled allocates a plane with every sample set to v.
func NewPlaneFilled(width, height int, v float32) *Plane {
	p := NewPlane(width, height)
	for i := range p.Pix {
		p.Pix[i] = v
	}
	return p
}

// At returns the sample at column x of row y.
func (p *Plane) At(x, y int) float32 {
	return p.Pix[y*p.Width+x]
}

// Set stores v at column x of row y.
func (p *Plane) Set(x, y int, v float32) {
	p.Pix[y*p.Width+x] = v
}

// Row returns the samples of row y. The slice aliases the plane storage.
func (p *Plane) Row(y int) []float32 {
	start := y * p.Width
	return p.Pix[start : start+p.Width]
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	out := &Plane{Width: p.Width, Height: p.Height, Pix: make([]float32, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// SameSize reports whether p and q have identical dimensions.
func (p *Plane) SameSize(q *Plane) bool {
	return p.Width == q.Width && p.Height == q.Height
}

// Float64s returns the samples widened to float64.
func (p *Plane) Float64s() []float64 {
	out := make([]float64, len(p.Pix))
	for i, v := range p.Pix {
		out[i] = float64(v)
	}
	return out
}

func (p *Plane) String() string {
	return fmt.Sprintf("plane %dx%d", p.Width, p.Height)
}
