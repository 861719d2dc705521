package guided

import (
	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// composite smooths the coefficient maps, scales them back to the native
// plane size when the statistics ran reduced, and reconstructs
// q = mean(a)·guide + mean(b) against the native-resolution guide.
func composite(a, b, guide *planes.Plane, blur blurFunc, reduced bool, upscaler planes.Scaler) *planes.Plane {
	meanA := blur(a)
	meanB := blur(b)
	if reduced {
		meanA = planes.Resize(meanA, guide.Width, guide.Height, upscaler)
		meanB = planes.Resize(meanB, guide.Width, guide.Height, upscaler)
	}
	return planes.MustMap(func(v []float32) float32 {
		return float32(v[0]*v[1]) + v[2]
	}, meanA, guide, meanB)
}
