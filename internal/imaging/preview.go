package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// Region defines a rectangle in luma pixel coordinates.
type Region struct {
	X1 int `json:"x1"` // inclusive
	Y1 int `json:"y1"` // inclusive
	X2 int `json:"x2"` // exclusive
	Y2 int `json:"y2"` // exclusive
}

// NamedRegion resolves a named region of a width x height frame.
//
// Supported names: full, top-left, top-right, bottom-left, bottom-right,
// top-half, bottom-half, left-half, right-half, center.
func NamedRegion(name string, w, h int) (Region, error) {
	midX, midY := w/2, h/2

	switch name {
	case "", "full":
		return Region{0, 0, w, h}, nil
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, w, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, h}, nil
	case "bottom-right":
		return Region{midX, midY, w, h}, nil
	case "top-half":
		return Region{0, 0, w, midY}, nil
	case "bottom-half":
		return Region{0, midY, w, h}, nil
	case "left-half":
		return Region{0, 0, midX, h}, nil
	case "right-half":
		return Region{midX, 0, w, h}, nil
	case "center":
		// Center 50% of the frame
		qW, qH := w/4, h/4
		return Region{qW, qH, w - qW, h - qH}, nil
	default:
		return Region{}, fmt.Errorf("unknown region: %s", name)
	}
}

// Preview encodes a region of a frame as base64 PNG, optionally rescaled with
// a Lanczos filter. Banding is easier to judge on an enlarged crop than on a
// full frame.
func Preview(f *planes.Frame, r Region, scale float64) (*EncodedFrame, error) {
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > f.Width || r.Y2 > f.Height {
		return nil, fmt.Errorf("preview region (%d,%d)-(%d,%d) outside frame bounds %dx%d",
			r.X1, r.Y1, r.X2, r.Y2, f.Width, f.Height)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid preview region: x1 must be < x2, y1 must be < y2")
	}

	img, err := ImageFromFrame(f)
	if err != nil {
		return nil, err
	}

	cropped := imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2))
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("preview scale %g collapses region to %dx%d", scale, newWidth, newHeight)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &EncodedFrame{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
