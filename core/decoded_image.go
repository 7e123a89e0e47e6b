package core

import (
	"encoding/binary"
	"errors"
	"image"

	"github.com/x448/float16"
)

// StreamInfo is the result of a probe. Width and Height are 0 unless Status
// is StatusOK.
type StreamInfo struct {
	Status         Status
	Width          uint32
	Height         uint32
	AlphaBits      uint32
	PixelsByteSize uint64
	ICCByteSize    uint64
}

// DecodedImage owns the pixel and ICC buffers produced by a decode.
type DecodedImage struct {
	Width       uint32
	Height      uint32
	PixelFormat PixelFormat
	Pixels      []byte
	ICC         []byte
}

// ToImage converts to a standard library image. 8 bit formats become
// *image.NRGBA, F16 formats *image.NRGBA64 with samples clamped to [0,1].
func (d *DecodedImage) ToImage() (image.Image, error) {
	if !d.PixelFormat.IsValid() {
		return nil, errors.New("decoded image has no pixel format")
	}
	width := int(d.Width)
	height := int(d.Height)
	if len(d.Pixels) != width*height*d.PixelFormat.BytesPerPixel() {
		return nil, errors.New("pixel buffer does not match image size")
	}
	channels := d.PixelFormat.Channels()
	rect := image.Rect(0, 0, width, height)

	if !d.PixelFormat.IsFloat() {
		img := image.NewNRGBA(rect)
		if channels == 4 {
			copy(img.Pix, d.Pixels)
			return img, nil
		}
		pos := 0
		for i := 0; i < width*height; i++ {
			img.Pix[i*4] = d.Pixels[pos]
			img.Pix[i*4+1] = d.Pixels[pos+1]
			img.Pix[i*4+2] = d.Pixels[pos+2]
			img.Pix[i*4+3] = 0xFF
			pos += 3
		}
		return img, nil
	}

	img := image.NewNRGBA64(rect)
	pos := 0
	for i := 0; i < width*height; i++ {
		for c := 0; c < 4; c++ {
			v := uint16(0xFFFF)
			if c < channels {
				f := float16.Frombits(binary.LittleEndian.Uint16(d.Pixels[pos:])).Float32()
				v = unitToUint16(f)
				pos += 2
			}
			binary.BigEndian.PutUint16(img.Pix[i*8+c*2:], v)
		}
	}
	return img, nil
}

func unitToUint16(f float32) uint16 {
	switch {
	case !(f > 0):
		// also catches NaN
		return 0
	case f >= 1:
		return 0xFFFF
	}
	return uint16(f*0xFFFF + 0.5)
}
