package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"huddle/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecoder_DecodesPNG(t *testing.T) {
	d := NewDecoder(4096)

	img, err := d.Decode(encodePNG(t, 32, 24))
	assert.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestDecoder_RejectsGarbage(t *testing.T) {
	d := NewDecoder(4096)

	_, err := d.Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestDecoder_RejectsOversizedDimensions(t *testing.T) {
	d := NewDecoder(16)

	_, err := d.Decode(encodePNG(t, 32, 8))
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestCropper_ProducesFixedSizeJPEG(t *testing.T) {
	c := NewCropper(150, 85)
	src := image.NewRGBA(image.Rect(0, 0, 300, 200))

	asset, err := c.Render(src, domain.CropRegion{X: 10, Y: 10, Width: 100, Height: 100})
	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", asset.ContentType)

	decoded, err := jpeg.Decode(bytes.NewReader(asset.Data))
	assert.NoError(t, err)
	assert.Equal(t, 150, decoded.Bounds().Dx())
	assert.Equal(t, 150, decoded.Bounds().Dy())
}

func TestCropper_ZeroRegionUsesCenteredSquare(t *testing.T) {
	c := NewCropper(64, 85)
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))

	asset, err := c.Render(src, domain.CropRegion{})
	assert.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(asset.Data))
	assert.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 64, decoded.Bounds().Dy())
}

func TestCropper_ClampsRegionToBounds(t *testing.T) {
	c := NewCropper(64, 85)
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))

	// Region runs past the image edge; the overlap is still usable.
	_, err := c.Render(src, domain.CropRegion{X: 25, Y: 25, Width: 100, Height: 100})
	assert.NoError(t, err)
}

func TestCropper_RejectsRegionOutsideImage(t *testing.T) {
	c := NewCropper(64, 85)
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))

	_, err := c.Render(src, domain.CropRegion{X: 100, Y: 100, Width: 10, Height: 10})
	assert.Error(t, err)
}
