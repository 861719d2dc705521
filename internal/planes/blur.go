package planes

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// BoxBlur returns the local mean of p over a (2*radius+1)² window.
//
// The filter is separable: a running sum across each row, then down each
// column. Samples outside the plane are mirrored back in (x=-1 reads x=0).
// A radius of 0 returns a copy.
func BoxBlur(p *Plane, radius int) *Plane {
	if radius <= 0 || len(p.Pix) == 0 {
		return p.Clone()
	}
	tmp := NewPlane(p.Width, p.Height)
	out := NewPlane(p.Width, p.Height)
	boxH(tmp, p, radius)
	boxV(out, tmp, radius)
	return out
}

func boxH(dst, src *Plane, radius int) {
	w := src.Width
	norm := 1 / float64(2*radius+1)
	parallel.Line(src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			in := src.Row(y)
			out := dst.Row(y)
			// Accumulate in float64 so constant inputs reproduce exactly.
			var sum float64
			for i := -radius; i <= radius; i++ {
				sum += float64(in[mirror(i, w)])
			}
			out[0] = float32(sum * norm)
			for x := 1; x < w; x++ {
				sum += float64(in[mirror(x+radius, w)]) - float64(in[mirror(x-radius-1, w)])
				out[x] = float32(sum * norm)
			}
		}
	})
}

func boxV(dst, src *Plane, radius int) {
	w, h := src.Width, src.Height
	norm := 1 / float64(2*radius+1)
	parallel.Line(w, func(start, end int) {
		for x := start; x < end; x++ {
			var sum float64
			for i := -radius; i <= radius; i++ {
				sum += float64(src.Pix[mirror(i, h)*w+x])
			}
			dst.Pix[x] = float32(sum * norm)
			for y := 1; y < h; y++ {
				sum += float64(src.Pix[mirror(y+radius, h)*w+x]) - float64(src.Pix[mirror(y-radius-1, h)*w+x])
				dst.Pix[y*w+x] = float32(sum * norm)
			}
		}
	})
}

// GaussianKernel returns a normalized, symmetric 1D kernel of half-width
// ceil(3*sigma).
func GaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussBlur convolves p with a separable Gaussian of standard deviation
// sigma. Borders are mirrored. A non-positive sigma returns a copy.
func GaussBlur(p *Plane, sigma float64) *Plane {
	if sigma <= 0 || len(p.Pix) == 0 {
		return p.Clone()
	}
	kernel := GaussianKernel(sigma)
	tmp := NewPlane(p.Width, p.Height)
	out := NewPlane(p.Width, p.Height)
	convolveH(tmp, p, kernel)
	convolveV(out, tmp, kernel)
	return out
}

func convolveH(dst, src *Plane, kernel []float64) {
	w := src.Width
	k := len(kernel) / 2
	parallel.Line(src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			in := src.Row(y)
			out := dst.Row(y)
			for x := 0; x < w; x++ {
				var sum float64
				for i := -k; i <= k; i++ {
					sum += float64(in[mirror(x+i, w)]) * kernel[i+k]
				}
				out[x] = float32(sum)
			}
		}
	})
}

func convolveV(dst, src *Plane, kernel []float64) {
	w, h := src.Width, src.Height
	k := len(kernel) / 2
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			out := dst.Row(y)
			for x := 0; x < w; x++ {
				var sum float64
				for i := -k; i <= k; i++ {
					sum += float64(src.Pix[mirror(y+i, h)*w+x]) * kernel[i+k]
				}
				out[x] = float32(sum)
			}
		}
	})
}

// mirror folds an out-of-range index back into [0, size-1], repeating the
// edge sample (-1 -> 0, size -> size-1). Windows wider than the plane keep
// folding.
func mirror(x, size int) int {
	if size == 1 {
		return 0
	}
	period := 2 * size
	x %= period
	if x < 0 {
		x += period
	}
	if x >= size {
		x = period - x - 1
	}
	return x
}
