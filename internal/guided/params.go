package guided

import (
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// DefaultThreshold controls the default regulation when none is supplied.
const DefaultThreshold = 1.0 / 3.0

// Default radius model: 12 at 1280x720, growing by one for every 160 columns
// or 90 rows beyond that.
const (
	baseRadius      = 12
	baseWidth       = 1280
	baseHeight      = 720
	widthPerRadius  = 160
	heightPerRadius = 90
)

var (
	fullRangeDivisors    = []float64{220, 225, 225}
	limitedRangeDivisors = []float64{256}
)

// Options are the caller-facing filter parameters. Nil slices and zero values
// mean "use the default"; see Normalize for how each is resolved.
type Options struct {
	// Guidance is the guide image. Nil runs the filter self-guided.
	Guidance *planes.Frame

	// Radius is the per-plane window half-width. Nil derives it from the
	// frame size.
	Radius []int

	// Threshold sets the default regulation when Regulation is nil. Values
	// must lie in (0,1]. Nil means DefaultThreshold.
	Threshold []float64

	// Regulation is the per-plane ridge term ε.
	Regulation []float64

	Mode     Mode
	UseGauss bool

	// Planes lists the plane indices to filter. Nil filters every plane;
	// the others are copied through unchanged.
	Planes []int

	// Range overrides the dynamic range recorded on the input frame. The
	// resolved range selects the regulation divisors and also the working
	// precision mapping of both input and guidance, so an override changes
	// how integer code values are scaled to [0,1].
	Range planes.ColorRange

	// DownRatio computes the statistics at 1/DownRatio resolution. 0
	// disables the reduction.
	DownRatio int

	// Downscaler and Upscaler default to point and bilinear sampling.
	Downscaler *planes.Scaler
	Upscaler   *planes.Scaler
}

// DefaultOptions returns the documented defaults with every optional
// parameter spelled out.
func DefaultOptions() Options {
	down := imaging.NearestNeighbor
	up := imaging.Linear
	return Options{
		Threshold:  []float64{DefaultThreshold},
		Mode:       ModeGradient,
		Downscaler: &down,
		Upscaler:   &up,
	}
}

// Params is the fully resolved parameter record. Every per-plane slice has
// exactly one entry per plane of the input frame.
type Params struct {
	Radius     []int
	Regulation []float32
	Mode       Mode
	UseGauss   bool
	Process    []bool
	Range      planes.ColorRange
	DownRatio  int
	Downscaler planes.Scaler
	Upscaler   planes.Scaler
}

// Normalize validates the input frame and options and resolves every
// default. It returns a *ConfigurationError on invalid input.
func Normalize(src *planes.Frame, opts Options) (*Params, error) {
	if err := src.Validate(); err != nil {
		return nil, &ConfigurationError{Field: "input", Reason: "unsupported or variable format", Err: err}
	}
	if opts.Guidance != nil {
		if err := opts.Guidance.Validate(); err != nil {
			return nil, &ConfigurationError{Field: "guidance", Reason: "unsupported or variable format", Err: err}
		}
		if !planes.SameShape(src, opts.Guidance) {
			return nil, configErrorf("guidance", "shape %dx%d/%d planes does not match input %dx%d/%d planes",
				opts.Guidance.Width, opts.Guidance.Height, opts.Guidance.NumPlanes(),
				src.Width, src.Height, src.NumPlanes())
		}
	}

	n := src.NumPlanes()
	params := &Params{
		UseGauss:  opts.UseGauss,
		DownRatio: opts.DownRatio,
	}

	switch opts.Mode {
	case ModeDefault:
		params.Mode = ModeGradient
	case ModeOriginal, ModeWeighted, ModeGradient:
		params.Mode = opts.Mode
	default:
		return nil, configErrorf("mode", "unknown mode %d", int(opts.Mode))
	}

	process, err := resolvePlanes(opts.Planes, n)
	if err != nil {
		return nil, err
	}
	params.Process = process

	params.Range = resolveRange(src, opts.Range)

	regulation, err := resolveRegulation(opts, params.Range, n)
	if err != nil {
		return nil, err
	}
	params.Regulation = regulation

	radius, err := resolveRadius(src, opts.Radius, n)
	if err != nil {
		return nil, err
	}
	params.Radius = radius

	if opts.DownRatio != 0 && opts.DownRatio < 2 {
		return nil, configErrorf("down_ratio", "must be 0 or at least 2, got %d", opts.DownRatio)
	}

	params.Downscaler = imaging.NearestNeighbor
	if opts.Downscaler != nil {
		params.Downscaler = *opts.Downscaler
	}
	params.Upscaler = imaging.Linear
	if opts.Upscaler != nil {
		params.Upscaler = *opts.Upscaler
	}

	return params, nil
}

func resolvePlanes(selected []int, n int) ([]bool, error) {
	process := make([]bool, n)
	if selected == nil {
		for i := range process {
			process[i] = true
		}
		return process, nil
	}
	for _, idx := range selected {
		if idx < 0 || idx >= n {
			return nil, configErrorf("planes", "index %d out of range for %d planes", idx, n)
		}
		process[idx] = true
	}
	return process, nil
}

// resolveRange picks the explicit hint, then the frame metadata, then the
// family default (RGB is full range, everything else limited).
func resolveRange(src *planes.Frame, hint planes.ColorRange) planes.ColorRange {
	if hint != planes.RangeUnspecified {
		return hint
	}
	if src.Range != planes.RangeUnspecified {
		return src.Range
	}
	if src.Format.Family == planes.FamilyRGB {
		return planes.RangeFull
	}
	return planes.RangeLimited
}

func resolveRegulation(opts Options, r planes.ColorRange, n int) ([]float32, error) {
	if opts.Regulation != nil {
		eps, err := broadcast(opts.Regulation, n, "regulation")
		if err != nil {
			return nil, err
		}
		out := make([]float32, n)
		for i, v := range eps {
			if !(v > 0) || math.IsInf(v, 0) {
				return nil, configErrorf("regulation", "plane %d: must be a positive real, got %g", i, v)
			}
			out[i] = float32(v)
		}
		return out, nil
	}

	thresholds := opts.Threshold
	if thresholds == nil {
		thresholds = []float64{DefaultThreshold}
	}
	thr, err := broadcast(thresholds, n, "threshold")
	if err != nil {
		return nil, err
	}

	divisors := limitedRangeDivisors
	if r.IsFull() {
		divisors = fullRangeDivisors
	}
	div, _ := broadcast(divisors, n, "threshold")

	out := make([]float32, n)
	for i, t := range thr {
		if !(t > 0 && t <= 1) {
			return nil, configErrorf("threshold", "plane %d: must be in (0,1], got %g", i, t)
		}
		out[i] = float32(t / div[i])
	}
	return out, nil
}

func resolveRadius(src *planes.Frame, radius []int, n int) ([]int, error) {
	if radius == nil {
		luma := DefaultRadius(src.Width, src.Height)
		radius = []int{luma}
		if n > 1 {
			wc := float64(src.Width) / float64(int(1)<<src.Format.SubsamplingW)
			hc := float64(src.Height) / float64(int(1)<<src.Format.SubsamplingH)
			radius = append(radius, defaultRadius(wc, hc))
		}
	}
	out, err := broadcast(radius, n, "radius")
	if err != nil {
		return nil, err
	}
	for i, r := range out {
		if r < 0 {
			return nil, configErrorf("radius", "plane %d: must be non-negative, got %d", i, r)
		}
	}
	return out, nil
}

// DefaultRadius returns the window half-width used for a plane of the given
// size when no radius is configured. The result never drops below 12, so
// any frame within 1280x720 gets radius 12.
func DefaultRadius(width, height int) int {
	return defaultRadius(float64(width), float64(height))
}

func defaultRadius(width, height float64) int {
	r := math.Max(
		(width-baseWidth)/widthPerRadius+baseRadius,
		(height-baseHeight)/heightPerRadius+baseRadius,
	)
	return max(baseRadius, int(math.RoundToEven(r)))
}

// broadcast stretches vals to n entries by repeating the last value and
// truncates longer lists.
func broadcast[T any](vals []T, n int, field string) ([]T, error) {
	if len(vals) == 0 {
		return nil, configErrorf(field, "at least one value is required")
	}
	out := make([]T, n)
	for i := range out {
		if i < len(vals) {
			out[i] = vals[i]
		} else {
			out[i] = vals[len(vals)-1]
		}
	}
	return out, nil
}
