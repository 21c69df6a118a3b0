package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"huddle/internal/core/domain"

	"golang.org/x/image/draw"
)

// Cropper cuts the requested region out of a preview and scales it to
// the fixed avatar size as an encoded JPEG.
type Cropper struct {
	size    int
	quality int
}

func NewCropper(size, quality int) *Cropper {
	if size <= 0 {
		size = 150
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Cropper{size: size, quality: quality}
}

func (c *Cropper) Render(src image.Image, region domain.CropRegion) (*domain.BinaryAsset, error) {
	bounds := src.Bounds()
	rect := c.regionRect(bounds, region)
	if rect.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", region, bounds)
	}

	dst := image.NewRGBA(image.Rect(0, 0, c.size, c.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, rect, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return &domain.BinaryAsset{Data: buf.Bytes(), ContentType: "image/jpeg"}, nil
}

// regionRect maps the requested region onto the image, clamping to the
// bounds. A zero region selects the largest centered square.
func (c *Cropper) regionRect(bounds image.Rectangle, region domain.CropRegion) image.Rectangle {
	if region.IsZero() {
		side := bounds.Dx()
		if bounds.Dy() < side {
			side = bounds.Dy()
		}
		x0 := bounds.Min.X + (bounds.Dx()-side)/2
		y0 := bounds.Min.Y + (bounds.Dy()-side)/2
		return image.Rect(x0, y0, x0+side, y0+side)
	}

	rect := image.Rect(
		bounds.Min.X+region.X,
		bounds.Min.Y+region.Y,
		bounds.Min.X+region.X+region.Width,
		bounds.Min.Y+region.Y+region.Height,
	)
	return rect.Intersect(bounds)
}
