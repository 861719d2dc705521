package planes

import (
	"fmt"
	"math"
)

// WorkingFormat returns f converted to 32-bit float samples.
func WorkingFormat(f Format) Format {
	f.SampleType = SampleFloat
	f.BitsPerSample = 32
	return f
}

// codeMapping describes the affine map from an integer code value to a
// working-precision sample: work = (code - offset) / scale.
type codeMapping struct {
	offset float64
	scale  float64
}

func mappingFor(f Format, plane int, r ColorRange) codeMapping {
	peak := float64(int(1)<<f.BitsPerSample - 1)
	half := float64(int(1) << (f.BitsPerSample - 1))
	shift := float64(int(1) << (f.BitsPerSample - 8))

	chroma := f.IsChroma(plane)
	if r.IsFull() || f.Family == FamilyRGB && r == RangeUnspecified {
		if chroma {
			return codeMapping{offset: half, scale: peak}
		}
		return codeMapping{offset: 0, scale: peak}
	}
	if chroma {
		return codeMapping{offset: half, scale: 224 * shift}
	}
	return codeMapping{offset: 16 * shift, scale: 219 * shift}
}

// Promote converts an integer frame to float32 working precision. Luma and
// RGB planes map the nominal range to [0,1], chroma planes to [-0.5,0.5].
// Float frames are copied unchanged.
func Promote(f *Frame) (*Frame, error) {
	if err := f.Format.Validate(); err != nil {
		return nil, err
	}
	if f.Format.SampleType == SampleFloat {
		return f.Clone(), nil
	}

	out := &Frame{Format: WorkingFormat(f.Format), Width: f.Width, Height: f.Height, Range: f.Range}
	out.Planes = make([]*Plane, len(f.Planes))
	for i, p := range f.Planes {
		m := mappingFor(f.Format, i, f.Range)
		q := NewPlane(p.Width, p.Height)
		for j, v := range p.Pix {
			q.Pix[j] = float32((float64(v) - m.offset) / m.scale)
		}
		out.Planes[i] = q
	}
	return out, nil
}

// Restore converts a working-precision frame back to the native format
// target, undoing Promote. Integer results are rounded half up and clamped to
// the native code range.
func Restore(f *Frame, target Format) (*Frame, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if f.Format.SampleType != SampleFloat {
		return nil, fmt.Errorf("restore expects working precision, got %s", f.Format)
	}
	if target.SampleType == SampleFloat {
		out := f.Clone()
		out.Format = target
		return out, nil
	}

	peak := float64(target.Peak())
	out := &Frame{Format: target, Width: f.Width, Height: f.Height, Range: f.Range}
	out.Planes = make([]*Plane, len(f.Planes))
	for i, p := range f.Planes {
		m := mappingFor(target, i, f.Range)
		q := NewPlane(p.Width, p.Height)
		for j, v := range p.Pix {
			code := math.Floor(float64(v)*m.scale + m.offset + 0.5)
			if code < 0 {
				code = 0
			} else if code > peak {
				code = peak
			}
			q.Pix[j] = float32(code)
		}
		out.Planes[i] = q
	}
	return out, nil
}
