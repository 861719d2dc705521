package guided

import (
	"math"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// reducedSize returns the working dimensions of plane i when statistics are
// computed at 1/ratio resolution. Chroma planes follow the reduced luma size
// so subsampling is preserved.
func reducedSize(format planes.Format, i, width, height, ratio int) (int, int) {
	w := int(math.Round(float64(width) / float64(ratio)))
	h := int(math.Round(float64(height) / float64(ratio)))
	w, h = format.PlaneSize(i, max(w, 1), max(h, 1))
	return max(w, 1), max(h, 1)
}

// reducedRadius scales a window half-width by 1/ratio.
func reducedRadius(radius, ratio int) int {
	return int(math.Round(float64(radius) / float64(ratio)))
}

// workingPlanes is the input and guidance of one plane at the resolution the
// statistics are computed at.
type workingPlanes struct {
	input  *planes.Plane
	guide  *planes.Plane
	radius int
	// selfGuided is true when guide and input are the same plane.
	selfGuided bool
}

// reduce applies the resolution reducer to one plane. With ratio 0 the planes
// are used as they are.
func reduce(input, guide *planes.Plane, selfGuided bool, radius, ratio int, w, h int, downscaler planes.Scaler) workingPlanes {
	if ratio == 0 {
		return workingPlanes{input: input, guide: guide, radius: radius, selfGuided: selfGuided}
	}
	p := planes.Resize(input, w, h, downscaler)
	g := p
	if !selfGuided {
		g = planes.Resize(guide, w, h, downscaler)
	}
	return workingPlanes{
		input:      p,
		guide:      g,
		radius:     reducedRadius(radius, ratio),
		selfGuided: selfGuided,
	}
}
