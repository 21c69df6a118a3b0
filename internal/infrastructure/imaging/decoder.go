package imaging

import (
	"bytes"
	"fmt"
	"image"

	// Registered formats for preview decoding.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"huddle/internal/core/domain"
)

// Decoder decodes raw uploads into images, rejecting oversized frames
// before full decode so a hostile upload cannot balloon memory.
type Decoder struct {
	maxPixels int
}

func NewDecoder(maxPixels int) *Decoder {
	if maxPixels <= 0 {
		maxPixels = 16384
	}
	return &Decoder{maxPixels: maxPixels}
}

func (d *Decoder) Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > d.maxPixels || cfg.Height > d.maxPixels {
		return nil, fmt.Errorf("%w: image dimensions %dx%d out of range", domain.ErrDecodeFailed, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}
	return img, nil
}
