package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// EncodedFrame contains a frame encoded as base64 PNG.
type EncodedFrame struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG converts a native-precision frame to an image and encodes it as
// base64 PNG.
func EncodePNG(f *planes.Frame) (*EncodedFrame, error) {
	img, err := ImageFromFrame(f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode filtered image: %w", err)
	}

	return &EncodedFrame{
		Width:       f.Width,
		Height:      f.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes a native-precision frame to path. The output format is chosen
// from the file extension (png, jpg, gif, tif, bmp).
func Save(f *planes.Frame, path string) error {
	img, err := ImageFromFrame(f)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to save filtered image: %w", err)
	}
	return nil
}
