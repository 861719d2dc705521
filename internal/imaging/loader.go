package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ImageCache provides thread-safe caching of decoded images to avoid redundant
// disk reads when the same source or guidance file is filtered repeatedly.
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	frame, err := cache.LoadFrame("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. The image is cached
// using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadFrame loads an image and converts it to a planar frame.
func (c *ImageCache) LoadFrame(path string) (*FrameSource, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	frame, err := FrameFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &FrameSource{Path: path, Image: img, Frame: frame}, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Output files
// written over a cached path must be evicted so the next load sees them.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file and the planar frame
// it converts to.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the container format detected from the file extension.
	Format string `json:"format"`

	// ColorFamily is "gray", "rgb" or "yuv".
	ColorFamily string `json:"color_family"`

	// Planes is the number of planes the filter operates on.
	Planes int `json:"planes"`

	// BitsPerSample is the native precision of each plane.
	BitsPerSample int `json:"bits_per_sample"`

	// SubsamplingW and SubsamplingH are log2 chroma subsampling factors.
	SubsamplingW int `json:"subsampling_w"`
	SubsamplingH int `json:"subsampling_h"`

	// Range is the dynamic range recorded for the frame.
	Range string `json:"range"`

	// HasAlpha indicates the source carried an alpha channel. Alpha is not
	// filtered.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	src, err := cache.LoadFrame(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	switch src.Image.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.NYCbCrA:
		hasAlpha = true
	}

	f := src.Frame
	return &ImageInfo{
		Width:         f.Width,
		Height:        f.Height,
		Format:        formatFromExt(path),
		ColorFamily:   f.Format.Family.String(),
		Planes:        f.NumPlanes(),
		BitsPerSample: f.Format.BitsPerSample,
		SubsamplingW:  f.Format.SubsamplingW,
		SubsamplingH:  f.Format.SubsamplingH,
		Range:         f.Range.String(),
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// formatFromExt maps a file extension to a format name.
func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	default:
		return "unknown"
	}
}
