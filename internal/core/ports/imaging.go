package ports

import (
	"image"

	"huddle/internal/core/domain"
)

// ImageDecoder turns an uploaded file into a displayable preview image.
type ImageDecoder interface {
	Decode(data []byte) (image.Image, error)
}

// CropRenderer renders a crop region of the preview to the fixed-size
// encoded avatar asset. Rendering is local; no network I/O.
type CropRenderer interface {
	Render(src image.Image, region domain.CropRegion) (*domain.BinaryAsset, error)
}
