package planes

import (
	"fmt"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// Scaler is a resampling kernel. Any imaging.ResampleFilter works; a filter
// with zero support is treated as point sampling.
type Scaler = imaging.ResampleFilter

// ScalerByName returns the resampling kernel with the given name.
func ScalerByName(name string) (Scaler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "point", "nearest", "nearestneighbor":
		return imaging.NearestNeighbor, nil
	case "bilinear", "linear":
		return imaging.Linear, nil
	case "box":
		return imaging.Box, nil
	case "bicubic", "catmullrom":
		return imaging.CatmullRom, nil
	case "mitchell", "mitchellnetravali":
		return imaging.MitchellNetravali, nil
	case "spline", "bspline":
		return imaging.BSpline, nil
	case "gaussian":
		return imaging.Gaussian, nil
	case "hermite":
		return imaging.Hermite, nil
	case "lanczos":
		return imaging.Lanczos, nil
	default:
		return Scaler{}, fmt.Errorf("unknown scaler: %s", name)
	}
}

// IsPoint reports whether s selects point sampling.
func IsPoint(s Scaler) bool {
	return s.Support <= 0 || s.Kernel == nil
}

type indexWeight struct {
	index  int
	weight float64
}

// precomputeWeights returns, for each destination sample, the source samples
// and normalized weights that contribute to it. Sample centers are aligned;
// on downscale the kernel is widened by the scale factor.
func precomputeWeights(dstSize, srcSize int, filter Scaler) [][]indexWeight {
	du := float64(srcSize) / float64(dstSize)
	out := make([][]indexWeight, dstSize)

	if IsPoint(filter) {
		for v := 0; v < dstSize; v++ {
			u := int(math.Floor((float64(v) + 0.5) * du))
			if u > srcSize-1 {
				u = srcSize - 1
			}
			out[v] = []indexWeight{{index: u, weight: 1}}
		}
		return out
	}

	scale := du
	if scale < 1 {
		scale = 1
	}
	ru := math.Ceil(scale * filter.Support)

	for v := 0; v < dstSize; v++ {
		fu := (float64(v)+0.5)*du - 0.5

		begin := int(math.Ceil(fu - ru))
		if begin < 0 {
			begin = 0
		}
		end := int(math.Floor(fu + ru))
		if end > srcSize-1 {
			end = srcSize - 1
		}

		var sum float64
		var weights []indexWeight
		for u := begin; u <= end; u++ {
			w := filter.Kernel((float64(u) - fu) / scale)
			if w != 0 {
				sum += w
				weights = append(weights, indexWeight{index: u, weight: w})
			}
		}
		if sum != 0 {
			for i := range weights {
				weights[i].weight /= sum
			}
		} else {
			nearest := int(math.Round(fu))
			if nearest < 0 {
				nearest = 0
			}
			if nearest > srcSize-1 {
				nearest = srcSize - 1
			}
			weights = []indexWeight{{index: nearest, weight: 1}}
		}
		out[v] = weights
	}
	return out
}

// Resize resamples p to width x height with the given kernel. Samples keep
// full float precision; no clamping is applied.
func Resize(p *Plane, width, height int, filter Scaler) *Plane {
	if width <= 0 || height <= 0 {
		return NewPlane(0, 0)
	}
	if p.Width == width && p.Height == height {
		return p.Clone()
	}
	tmp := resizeHorizontal(p, width, filter)
	return resizeVertical(tmp, height, filter)
}

func resizeHorizontal(src *Plane, width int, filter Scaler) *Plane {
	if src.Width == width {
		return src
	}
	dst := NewPlane(width, src.Height)
	weights := precomputeWeights(width, src.Width, filter)
	parallel.Line(src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			in := src.Row(y)
			out := dst.Row(y)
			for x := 0; x < width; x++ {
				var sum float64
				for _, w := range weights[x] {
					sum += float64(in[w.index]) * w.weight
				}
				out[x] = float32(sum)
			}
		}
	})
	return dst
}

func resizeVertical(src *Plane, height int, filter Scaler) *Plane {
	if src.Height == height {
		return src
	}
	dst := NewPlane(src.Width, height)
	weights := precomputeWeights(height, src.Height, filter)
	w := src.Width
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			out := dst.Row(y)
			for x := 0; x < w; x++ {
				var sum float64
				for _, iw := range weights[y] {
					sum += float64(src.Pix[iw.index*w+x]) * iw.weight
				}
				out[x] = float32(sum)
			}
		}
	})
	return dst
}
