package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// FrameSource pairs a decoded image with its planar representation.
type FrameSource struct {
	Path  string
	Image image.Image
	Frame *planes.Frame
}

var subsampling = map[image.YCbCrSubsampleRatio][2]int{
	image.YCbCrSubsampleRatio444: {0, 0},
	image.YCbCrSubsampleRatio422: {1, 0},
	image.YCbCrSubsampleRatio420: {1, 1},
	image.YCbCrSubsampleRatio440: {0, 1},
	image.YCbCrSubsampleRatio411: {2, 0},
	image.YCbCrSubsampleRatio410: {2, 1},
}

// FrameFromImage converts a decoded image to a planar frame.
//
// # Conversion
//
// Decoded files carry full-range code values, so every frame is tagged
// RangeFull.
//
//   - *image.YCbCr (JPEG): YUV, 8-bit, full range, native subsampling. Frames
//     whose size is not a multiple of the subsampling fall back to RGB.
//   - *image.Gray, *image.Gray16: single-plane gray, 8 or 16 bit.
//   - *image.RGBA64, *image.NRGBA64: RGB, 16 bit.
//   - Anything else: RGB, 8 bit, via imaging.Clone. Alpha is dropped.
func FrameFromImage(img image.Image) (*planes.Frame, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", w, h)
	}

	switch src := img.(type) {
	case *image.YCbCr:
		if f, ok := yuvFrame(src); ok {
			return f, nil
		}
	case *image.Gray:
		f := planes.NewFrame(planes.Gray8, w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				f.Planes[0].Set(x, y, float32(src.Pix[src.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)]))
			}
		}
		f.Range = planes.RangeFull
		return f, nil
	case *image.Gray16:
		f := planes.NewFrame(planes.Gray16, w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				f.Planes[0].Set(x, y, float32(src.Gray16At(x+bounds.Min.X, y+bounds.Min.Y).Y))
			}
		}
		f.Range = planes.RangeFull
		return f, nil
	case *image.RGBA64, *image.NRGBA64:
		f := planes.NewFrame(planes.RGB48, w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(src.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA64)
				f.Planes[0].Set(x, y, float32(c.R))
				f.Planes[1].Set(x, y, float32(c.G))
				f.Planes[2].Set(x, y, float32(c.B))
			}
		}
		f.Range = planes.RangeFull
		return f, nil
	}

	nrgba := imaging.Clone(img)
	f := planes.NewFrame(planes.RGB24, w, h)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			f.Planes[0].Set(x, y, float32(row[x*4]))
			f.Planes[1].Set(x, y, float32(row[x*4+1]))
			f.Planes[2].Set(x, y, float32(row[x*4+2]))
		}
	}
	f.Range = planes.RangeFull
	return f, nil
}

func yuvFrame(src *image.YCbCr) (*planes.Frame, bool) {
	ss, ok := subsampling[src.SubsampleRatio]
	if !ok {
		return nil, false
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w%(1<<ss[0]) != 0 || h%(1<<ss[1]) != 0 || bounds.Min.X%(1<<ss[0]) != 0 || bounds.Min.Y%(1<<ss[1]) != 0 {
		return nil, false
	}

	format := planes.Format{
		Family:        planes.FamilyYUV,
		SampleType:    planes.SampleInteger,
		BitsPerSample: 8,
		SubsamplingW:  ss[0],
		SubsamplingH:  ss[1],
	}
	f := planes.NewFrame(format, w, h)
	f.Range = planes.RangeFull

	luma := f.Planes[0]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			luma.Set(x, y, float32(src.Y[src.YOffset(x+bounds.Min.X, y+bounds.Min.Y)]))
		}
	}
	cb, cr := f.Planes[1], f.Planes[2]
	for y := 0; y < cb.Height; y++ {
		for x := 0; x < cb.Width; x++ {
			off := src.COffset(bounds.Min.X+x<<ss[0], bounds.Min.Y+y<<ss[1])
			cb.Set(x, y, float32(src.Cb[off]))
			cr.Set(x, y, float32(src.Cr[off]))
		}
	}
	return f, true
}

// ImageFromFrame converts an integer frame back to an image.Image. Only the
// layouts FrameFromImage produces are supported: 8/16-bit gray, 8/16-bit RGB
// and 8-bit YUV.
func ImageFromFrame(f *planes.Frame) (image.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Format.SampleType != planes.SampleInteger {
		return nil, fmt.Errorf("cannot encode %s frame", f.Format)
	}
	rect := image.Rect(0, 0, f.Width, f.Height)

	switch {
	case f.Format.Family == planes.FamilyGray && f.Format.BitsPerSample == 8:
		img := image.NewGray(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.Pix[img.PixOffset(x, y)] = uint8(f.Planes[0].At(x, y))
			}
		}
		return img, nil

	case f.Format.Family == planes.FamilyGray && f.Format.BitsPerSample == 16:
		img := image.NewGray16(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(f.Planes[0].At(x, y))})
			}
		}
		return img, nil

	case f.Format.Family == planes.FamilyRGB && f.Format.BitsPerSample == 8:
		img := image.NewNRGBA(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				i := img.PixOffset(x, y)
				img.Pix[i] = uint8(f.Planes[0].At(x, y))
				img.Pix[i+1] = uint8(f.Planes[1].At(x, y))
				img.Pix[i+2] = uint8(f.Planes[2].At(x, y))
				img.Pix[i+3] = 0xff
			}
		}
		return img, nil

	case f.Format.Family == planes.FamilyRGB && f.Format.BitsPerSample == 16:
		img := image.NewNRGBA64(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetNRGBA64(x, y, color.NRGBA64{
					R: uint16(f.Planes[0].At(x, y)),
					G: uint16(f.Planes[1].At(x, y)),
					B: uint16(f.Planes[2].At(x, y)),
					A: 0xffff,
				})
			}
		}
		return img, nil

	case f.Format.Family == planes.FamilyYUV && f.Format.BitsPerSample == 8:
		ratio, ok := ratioFor(f.Format.SubsamplingW, f.Format.SubsamplingH)
		if !ok {
			break
		}
		img := image.NewYCbCr(rect, ratio)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.Y[img.YOffset(x, y)] = uint8(f.Planes[0].At(x, y))
			}
		}
		cb, cr := f.Planes[1], f.Planes[2]
		for y := 0; y < cb.Height; y++ {
			for x := 0; x < cb.Width; x++ {
				off := img.COffset(x<<f.Format.SubsamplingW, y<<f.Format.SubsamplingH)
				img.Cb[off] = uint8(cb.At(x, y))
				img.Cr[off] = uint8(cr.At(x, y))
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("cannot encode %s frame", f.Format)
}

func ratioFor(ssw, ssh int) (image.YCbCrSubsampleRatio, bool) {
	for ratio, ss := range subsampling {
		if ss[0] == ssw && ss[1] == ssh {
			return ratio, true
		}
	}
	return 0, false
}
