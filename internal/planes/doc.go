// Package planes provides the planar frame model and the numeric services the
// guided filter is built on.
//
// A Frame is an ordered set of planes. Every Plane stores its samples as
// float32 regardless of the frame's native storage: integer formats keep their
// integer code values (0-255 for 8-bit, 0-65535 for 16-bit) and are converted
// to normalized working precision by Promote and back by Restore.
//
// # Services
//
//   - Local averaging: BoxBlur and GaussBlur, separable, mirrored borders.
//   - Resampling: Resize with any imaging.ResampleFilter kernel.
//   - Full-plane reductions: Mean, Min and Max.
//   - Elementwise evaluation: Map and its helpers Mul and Square.
//   - Precision conversion: Promote and Restore.
//
// # Coordinate System
//
// Samples are stored row-major with (0,0) at the top-left corner. Pix[y*Width+x]
// addresses column x of row y.
//
// # Thread Safety
//
// Every operation returns a new Plane and never mutates its inputs, so planes
// may be shared freely between goroutines once they are built.
package planes
