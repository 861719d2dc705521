package planes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampFrame(format Format, width, height int) *Frame {
	f := NewFrame(format, width, height)
	peak := int(format.Peak())
	for _, p := range f.Planes {
		for i := range p.Pix {
			p.Pix[i] = float32((i * 257) % (peak + 1))
		}
	}
	return f
}

func TestPromote_Mappings(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		rng    ColorRange
		plane  int
		code   float32
		want   float32
	}{
		{"full luma black", YUV444P8, RangeFull, 0, 0, 0},
		{"full luma white", YUV444P8, RangeFull, 0, 255, 1},
		{"full chroma neutral", YUV444P8, RangeFull, 1, 128, 0},
		{"limited luma black", YUV444P8, RangeLimited, 0, 16, 0},
		{"limited luma white", YUV444P8, RangeLimited, 0, 235, 1},
		{"limited chroma max", YUV444P8, RangeLimited, 2, 240, 0.5},
		{"16-bit limited white", YUV420P16, RangeLimited, 0, 235 << 8, 1},
		{"rgb unspecified is full", RGB24, RangeUnspecified, 1, 255, 1},
		{"gray unspecified is limited", Gray8, RangeUnspecified, 0, 16, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(tt.format, 4, 4)
			f.Range = tt.rng
			f.Planes[tt.plane].Pix[0] = tt.code

			got, err := Promote(f)
			require.NoError(t, err)
			assert.Equal(t, SampleFloat, got.Format.SampleType)
			assert.Equal(t, 32, got.Format.BitsPerSample)
			assert.InDelta(t, tt.want, got.Planes[tt.plane].Pix[0], 1e-6)
		})
	}
}

func TestPromoteRestore_RoundTrip(t *testing.T) {
	for _, format := range []Format{Gray8, Gray16, RGB24, RGB48, YUV420P8, YUV420P16} {
		for _, rng := range []ColorRange{RangeUnspecified, RangeLimited, RangeFull} {
			src := rampFrame(format, 32, 16)
			src.Range = rng

			work, err := Promote(src)
			require.NoError(t, err)
			back, err := Restore(work, format)
			require.NoError(t, err)

			assert.Equal(t, format, back.Format)
			assert.Equal(t, rng, back.Range)
			for i := range src.Planes {
				require.Equal(t, src.Planes[i].Pix, back.Planes[i].Pix, "%s %s plane %d", format, rng, i)
			}
		}
	}
}

func TestRestore_ClampsAndRounds(t *testing.T) {
	work := NewFrame(WorkingFormat(Gray8), 4, 1)
	work.Range = RangeFull
	work.Planes[0].Pix = []float32{-0.5, 1.5, 127.5 / 255, 0.2}

	out, err := Restore(work, Gray8)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 255, 128, 51}, out.Planes[0].Pix)
}

func TestRestore_RejectsIntegerInput(t *testing.T) {
	_, err := Restore(NewFrame(Gray8, 2, 2), Gray8)
	assert.Error(t, err)
}

func TestPromote_FloatIsCopied(t *testing.T) {
	src := NewFrame(GrayS, 2, 2)
	src.Planes[0].Pix[0] = 0.75

	work, err := Promote(src)
	require.NoError(t, err)
	assert.Equal(t, src.Planes[0].Pix, work.Planes[0].Pix)
	assert.NotSame(t, src.Planes[0], work.Planes[0])

	back, err := Restore(work, GrayS)
	require.NoError(t, err)
	assert.Equal(t, float32(0.75), back.Planes[0].Pix[0])
}
