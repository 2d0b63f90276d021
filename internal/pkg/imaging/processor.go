package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Config for image processing
type Config struct {
	MaxWidth  int // longest allowed width after resize
	MaxHeight int
	Quality   int // JPEG quality 1-100
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:  1600,
		MaxHeight: 1600,
		Quality:   85,
	}
}

// Result is a processed photo ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Processor turns uploaded spot photos into bounded JPEGs.
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	def := DefaultConfig()
	if config.MaxWidth <= 0 {
		config.MaxWidth = def.MaxWidth
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = def.MaxHeight
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = def.Quality
	}
	return &Processor{config: config}
}

// NormalizeJPEG decodes any supported image, applies EXIF orientation,
// shrinks it to fit the configured box and re-encodes it as JPEG.
func (p *Processor) NormalizeJPEG(data []byte) (*Result, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var out image.Image = img
	b := img.Bounds()
	if b.Dx() > p.config.MaxWidth || b.Dy() > p.config.MaxHeight {
		out = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(p.config.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
	}, nil
}
