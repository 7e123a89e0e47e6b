package jxl_go

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpfaulkner/jxl-oneshot/encoder"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

func TestImageDecodeRegistered(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xFF
	}

	for _, tc := range []struct {
		name string
		opts *encoder.Options
	}{
		{name: "codestream", opts: nil},
		{name: "container", opts: &encoder.Options{Container: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encoder.Encode(&buf, src, tc.opts))

			cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, "jxl", format)
			assert.Equal(t, 3, cfg.Width)
			assert.Equal(t, 2, cfg.Height)

			img, format, err := image.Decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, "jxl", format)
			assert.Equal(t, src.Pix, img.(*image.NRGBA).Pix)
		})
	}
}

func TestDecodeKeepsFailureKind(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encoder.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil))
	data := buf.Bytes()

	_, err := Decode(bytes.NewReader(data[:len(data)-1]))
	assert.ErrorIs(t, err, jxlio.ErrNotEnoughInput)

	_, err = Decode(bytes.NewReader([]byte{0xFF, 0x0B, 0, 0}))
	assert.ErrorIs(t, err, jxlio.ErrInvalidStream)

	_, err = DecodeConfig(bytes.NewReader(data[:2]))
	assert.ErrorIs(t, err, jxlio.ErrNotEnoughInput)
}
