package planes

import (
	"errors"
	"fmt"
	"strings"
)

// Family identifies how the planes of a frame are interpreted.
type Family int

const (
	FamilyGray Family = iota
	FamilyRGB
	FamilyYUV
)

func (f Family) String() string {
	switch f {
	case FamilyGray:
		return "gray"
	case FamilyRGB:
		return "rgb"
	case FamilyYUV:
		return "yuv"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// NumPlanes returns the plane count implied by the family.
func (f Family) NumPlanes() int {
	if f == FamilyGray {
		return 1
	}
	return 3
}

// SampleType is the native storage kind of a frame's samples.
type SampleType int

const (
	SampleInteger SampleType = iota
	SampleFloat
)

func (s SampleType) String() string {
	if s == SampleFloat {
		return "float"
	}
	return "integer"
}

// ColorRange is the dynamic-range class of a frame.
type ColorRange int

const (
	RangeUnspecified ColorRange = iota
	RangeLimited
	RangeFull
)

func (r ColorRange) String() string {
	switch r {
	case RangeLimited:
		return "limited"
	case RangeFull:
		return "full"
	default:
		return "unspecified"
	}
}

// IsFull reports whether r is the full range class.
func (r ColorRange) IsFull() bool {
	return r == RangeFull
}

// ParseColorRange accepts "limited", "full" or an empty string.
func ParseColorRange(s string) (ColorRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return RangeUnspecified, nil
	case "limited", "tv":
		return RangeLimited, nil
	case "full", "pc":
		return RangeFull, nil
	default:
		return RangeUnspecified, fmt.Errorf("unknown color range: %s", s)
	}
}

// Format describes the layout and native precision of a frame.
type Format struct {
	Family        Family
	SampleType    SampleType
	BitsPerSample int
	// SubsamplingW and SubsamplingH are log2 chroma subsampling factors.
	// They only apply to YUV frames.
	SubsamplingW int
	SubsamplingH int
}

// Common formats.
var (
	Gray8     = Format{Family: FamilyGray, SampleType: SampleInteger, BitsPerSample: 8}
	Gray16    = Format{Family: FamilyGray, SampleType: SampleInteger, BitsPerSample: 16}
	GrayS     = Format{Family: FamilyGray, SampleType: SampleFloat, BitsPerSample: 32}
	RGB24     = Format{Family: FamilyRGB, SampleType: SampleInteger, BitsPerSample: 8}
	RGB48     = Format{Family: FamilyRGB, SampleType: SampleInteger, BitsPerSample: 16}
	RGBS      = Format{Family: FamilyRGB, SampleType: SampleFloat, BitsPerSample: 32}
	YUV444P8  = Format{Family: FamilyYUV, SampleType: SampleInteger, BitsPerSample: 8}
	YUV420P8  = Format{Family: FamilyYUV, SampleType: SampleInteger, BitsPerSample: 8, SubsamplingW: 1, SubsamplingH: 1}
	YUV420P16 = Format{Family: FamilyYUV, SampleType: SampleInteger, BitsPerSample: 16, SubsamplingW: 1, SubsamplingH: 1}
)

// ErrUnsupportedFormat is returned for formats the working pipeline cannot represent.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Validate checks that the format can be promoted to float32 working precision.
func (f Format) Validate() error {
	switch f.Family {
	case FamilyGray, FamilyRGB, FamilyYUV:
	default:
		return fmt.Errorf("%w: unknown color family %d", ErrUnsupportedFormat, int(f.Family))
	}
	switch f.SampleType {
	case SampleInteger:
		if f.BitsPerSample < 8 || f.BitsPerSample > 16 {
			return fmt.Errorf("%w: %d-bit integer samples", ErrUnsupportedFormat, f.BitsPerSample)
		}
	case SampleFloat:
		if f.BitsPerSample != 32 {
			return fmt.Errorf("%w: %d-bit float samples", ErrUnsupportedFormat, f.BitsPerSample)
		}
	default:
		return fmt.Errorf("%w: unknown sample type %d", ErrUnsupportedFormat, int(f.SampleType))
	}
	if f.SubsamplingW < 0 || f.SubsamplingW > 2 || f.SubsamplingH < 0 || f.SubsamplingH > 2 {
		return fmt.Errorf("%w: subsampling %d,%d", ErrUnsupportedFormat, f.SubsamplingW, f.SubsamplingH)
	}
	if f.Family != FamilyYUV && (f.SubsamplingW != 0 || f.SubsamplingH != 0) {
		return fmt.Errorf("%w: subsampled %s", ErrUnsupportedFormat, f.Family)
	}
	return nil
}

// NumPlanes returns the number of planes in a frame of this format.
func (f Format) NumPlanes() int {
	return f.Family.NumPlanes()
}

// PlaneSize returns the dimensions of plane i for a frame of width x height.
func (f Format) PlaneSize(i, width, height int) (int, int) {
	if i == 0 || f.Family != FamilyYUV {
		return width, height
	}
	return width >> f.SubsamplingW, height >> f.SubsamplingH
}

// IsChroma reports whether plane i carries color difference samples.
func (f Format) IsChroma(i int) bool {
	return f.Family == FamilyYUV && i > 0
}

// Peak returns the largest native code value of an integer format.
func (f Format) Peak() float32 {
	return float32(int(1)<<f.BitsPerSample - 1)
}

func (f Format) String() string {
	name := fmt.Sprintf("%s %d-bit %s", f.Family, f.BitsPerSample, f.SampleType)
	if f.Family == FamilyYUV {
		name += fmt.Sprintf(" ss(%d,%d)", f.SubsamplingW, f.SubsamplingH)
	}
	return name
}

// Frame is a single image made of planes.
type Frame struct {
	Format Format
	Width  int
	Height int
	// Range is the frame's declared dynamic range; RangeUnspecified when the
	// source carried no such metadata.
	Range  ColorRange
	Planes []*Plane
}

// NewFrame allocates a zeroed frame with correctly sized planes.
func NewFrame(format Format, width, height int) *Frame {
	f := &Frame{Format: format, Width: width, Height: height}
	f.Planes = make([]*Plane, format.NumPlanes())
	for i := range f.Planes {
		w, h := format.PlaneSize(i, width, height)
		f.Planes[i] = NewPlane(w, h)
	}
	return f
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{Format: f.Format, Width: f.Width, Height: f.Height, Range: f.Range}
	out.Planes = make([]*Plane, len(f.Planes))
	for i, p := range f.Planes {
		out.Planes[i] = p.Clone()
	}
	return out
}

// NumPlanes returns the number of planes carried by the frame.
func (f *Frame) NumPlanes() int {
	return len(f.Planes)
}

// Validate checks that the frame has a supported, constant format and that
// each plane matches the dimensions its format implies.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrUnsupportedFormat)
	}
	if err := f.Format.Validate(); err != nil {
		return err
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: variable or empty dimensions %dx%d", ErrUnsupportedFormat, f.Width, f.Height)
	}
	if f.Format.Family == FamilyYUV {
		if f.Width%(1<<f.Format.SubsamplingW) != 0 || f.Height%(1<<f.Format.SubsamplingH) != 0 {
			return fmt.Errorf("%w: %dx%d not divisible by subsampling", ErrUnsupportedFormat, f.Width, f.Height)
		}
	}
	if len(f.Planes) != f.Format.NumPlanes() {
		return fmt.Errorf("%w: %d planes for %s", ErrUnsupportedFormat, len(f.Planes), f.Format)
	}
	for i, p := range f.Planes {
		w, h := f.Format.PlaneSize(i, f.Width, f.Height)
		if p == nil || p.Width != w || p.Height != h || len(p.Pix) != w*h {
			return fmt.Errorf("%w: plane %d does not match %dx%d", ErrUnsupportedFormat, i, w, h)
		}
	}
	return nil
}

// SameShape reports whether two frames have identical dimensions, plane
// count and subsampling.
func SameShape(a, b *Frame) bool {
	if a.Width != b.Width || a.Height != b.Height || len(a.Planes) != len(b.Planes) {
		return false
	}
	if a.Format.SubsamplingW != b.Format.SubsamplingW || a.Format.SubsamplingH != b.Format.SubsamplingH {
		return false
	}
	for i := range a.Planes {
		if !a.Planes[i].SameSize(b.Planes[i]) {
			return false
		}
	}
	return true
}
