// Package imaging adapts decoded image files to the planar frames the guided
// filter works on, and back.
//
// It provides a path-keyed ImageCache, conversion between image.Image and
// planes.Frame, image metadata, encoders for filter results, region previews
// and per-plane frame comparison.
//
// # Plane Layout
//
// The planar layout follows the decoded image type:
//   - JPEG (*image.YCbCr): three YUV planes with the file's chroma
//     subsampling, full range.
//   - Gray PNGs: one plane, 8 or 16 bit.
//   - Everything else: three RGB planes, 8 or 16 bit. Alpha is dropped.
//
// Decoded files are tagged full range.
//
// Converting a frame back to an image reverses the mapping, so a filtered
// JPEG is re-encoded from its YUV planes without a color round trip.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Conversions are stateless
// and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading or saving
//   - Empty images and frame layouts that have no image.Image equivalent
//   - Encoding errors during image output
package imaging
