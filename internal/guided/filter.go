package guided

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// Filter runs the guided filter over src and returns a new frame in src's
// native format. Planes not selected by opts.Planes are copied bit for bit.
//
// Selected planes are processed concurrently. ctx is checked between the
// pipeline stages, so cancelling it abandons the frame before the per-pixel
// weighting phase runs.
func Filter(ctx context.Context, src *planes.Frame, opts Options) (*planes.Frame, error) {
	params, err := Normalize(src, opts)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, src, opts.Guidance, params)
}

// Apply runs the filter with a parameter record returned by Normalize for the
// same src and guidance. guidance may be nil for self-guided filtering.
func Apply(ctx context.Context, src, guidance *planes.Frame, params *Params) (*planes.Frame, error) {
	// Promote with the resolved range so precision mapping matches the
	// regulation divisors.
	work := &planes.Frame{Format: src.Format, Width: src.Width, Height: src.Height, Range: params.Range, Planes: src.Planes}
	p, err := planes.Promote(work)
	if err != nil {
		return nil, &ConfigurationError{Field: "input", Reason: "cannot promote to working precision", Err: err}
	}

	selfGuided := guidance == nil
	g := p
	if !selfGuided {
		gw := &planes.Frame{Format: guidance.Format, Width: guidance.Width, Height: guidance.Height, Range: params.Range, Planes: guidance.Planes}
		g, err = planes.Promote(gw)
		if err != nil {
			return nil, &ConfigurationError{Field: "guidance", Reason: "cannot promote to working precision", Err: err}
		}
	}

	out := p.Clone()
	eg, ctx := errgroup.WithContext(ctx)
	for i := range p.Planes {
		if !params.Process[i] {
			continue
		}
		i := i
		eg.Go(func() error {
			q, err := filterPlane(ctx, p, g, i, selfGuided, params)
			if err != nil {
				return fmt.Errorf("plane %d: %w", i, err)
			}
			out.Planes[i] = q
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	restored, err := planes.Restore(out, src.Format)
	if err != nil {
		return nil, err
	}
	restored.Range = src.Range
	for i, process := range params.Process {
		if !process {
			restored.Planes[i] = src.Planes[i].Clone()
		}
	}
	return restored, nil
}

// filterPlane runs the pipeline for plane i of the working frames.
func filterPlane(ctx context.Context, p, g *planes.Frame, i int, selfGuided bool, params *Params) (*planes.Plane, error) {
	input, guide := p.Planes[i], g.Planes[i]

	var w, h int
	if params.DownRatio > 0 {
		w, h = reducedSize(p.Format, i, p.Width, p.Height, params.DownRatio)
	}
	work := reduce(input, guide, selfGuided, params.Radius[i], params.DownRatio, w, h, params.Downscaler)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blur := mainBlur(work.radius, params.UseGauss)
	stats := computeStats(work, blur)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, b, err := newSolver(params.Mode, correctiveBlur(params.UseGauss)).solve(ctx, stats, params.Regulation[i])
	if err != nil {
		return nil, err
	}

	return composite(a, b, guide, blur, params.DownRatio > 0, params.Upscaler), nil
}
