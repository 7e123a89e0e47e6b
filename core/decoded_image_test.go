package core

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpfaulkner/jxl-oneshot/encoder"
	"github.com/kpfaulkner/jxl-oneshot/frame"
)

func TestToImage(t *testing.T) {
	src := gradient(6, 3, true)
	data := encodeImage(t, src, &encoder.Options{Encoding: frame.ENCODING_PREDICTIVE})

	for _, tc := range []struct {
		format PixelFormat
		check  func(t *testing.T, img image.Image)
	}{
		{format: RGBA_8888, check: func(t *testing.T, img image.Image) {
			nrgba, ok := img.(*image.NRGBA)
			require.True(t, ok)
			assert.Equal(t, src.Pix, nrgba.Pix)
		}},
		{format: RGB_888, check: func(t *testing.T, img image.Image) {
			nrgba, ok := img.(*image.NRGBA)
			require.True(t, ok)
			c := src.NRGBAAt(5, 2)
			assert.Equal(t, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}, nrgba.NRGBAAt(5, 2))
		}},
		{format: RGBA_F16, check: func(t *testing.T, img image.Image) {
			nrgba64, ok := img.(*image.NRGBA64)
			require.True(t, ok)
			c := src.NRGBAAt(4, 1)
			got := nrgba64.NRGBA64At(4, 1)
			assert.InDelta(t, float64(c.R)*0x101, float64(got.R), 0x40)
			assert.InDelta(t, float64(c.A)*0x101, float64(got.A), 0x40)
		}},
		{format: RGB_F16, check: func(t *testing.T, img image.Image) {
			nrgba64, ok := img.(*image.NRGBA64)
			require.True(t, ok)
			assert.Equal(t, uint16(0xFFFF), nrgba64.NRGBA64At(0, 0).A)
		}},
	} {
		t.Run(tc.format.String(), func(t *testing.T) {
			status, decoded := Decode(data, tc.format)
			require.Equal(t, StatusOK, status)
			img, err := decoded.ToImage()
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 6, 3), img.Bounds())
			tc.check(t, img)
		})
	}
}

func TestToImageRejectsBadBuffers(t *testing.T) {
	_, err := (&DecodedImage{Width: 2, Height: 2, PixelFormat: RGB_888, Pixels: make([]byte, 11)}).ToImage()
	assert.Error(t, err)
	_, err = (&DecodedImage{Width: 1, Height: 1, PixelFormat: NoPixelFormat}).ToImage()
	assert.Error(t, err)
}

func TestUnitToUint16(t *testing.T) {
	assert.Equal(t, uint16(0), unitToUint16(-1))
	assert.Equal(t, uint16(0xFFFF), unitToUint16(2))
	assert.Equal(t, uint16(0x8000), unitToUint16(0.5))
}
