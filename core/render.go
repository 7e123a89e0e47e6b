package core

import (
	"encoding/binary"

	"github.com/x448/float16"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/frame"
	"github.com/kpfaulkner/jxl-oneshot/image"
)

const (
	opaque8   = 0xFF
	opaqueF16 = 0x3C00
)

// planeSampler yields an output sample for (y, x): an 8 bit value, or the
// bits of a binary16 value for float formats.
type planeSampler func(y int, x int) uint16

func newPlaneSampler(buf *image.ImageBuffer, bd *bundle.BitDepthHeader, floatOut bool) planeSampler {
	if buf.IsFloat() {
		fb := buf.FloatBuffer
		if floatOut {
			return func(y int, x int) uint16 {
				return float16.Fromfloat32(fb[y][x]).Bits()
			}
		}
		return func(y int, x int) uint16 {
			return uint16(floatTo8(fb[y][x]))
		}
	}

	// integer samples are range checked while decoding, so a table covers them
	maxValue := bd.MaxValue()
	lut := make([]uint16, maxValue+1)
	for v := range lut {
		if floatOut {
			lut[v] = float16.Fromfloat32(float32(v) / float32(maxValue)).Bits()
		} else {
			lut[v] = uint16((uint32(v)*255*2 + maxValue) / (2 * maxValue))
		}
	}
	ib := buf.IntBuffer
	return func(y int, x int) uint16 {
		return lut[ib[y][x]]
	}
}

func floatTo8(f float32) uint8 {
	switch {
	case !(f > 0):
		return 0
	case f >= 1:
		return 0xFF
	}
	return uint8(f*255 + 0.5)
}

// renderPixels interleaves the decoded frame planes into dst in the layout
// of format. dst must be exactly width*height*format.BytesPerPixel() bytes.
func renderPixels(f *frame.Frame, format PixelFormat, dst []byte) {
	header := f.GlobalMetadata
	buffers := f.Buffer
	floatOut := format.IsFloat()
	samplers := make([]planeSampler, format.Channels())

	if header.GetColourChannelCount() == 1 {
		grey := newPlaneSampler(&buffers[0], header.ChannelBitDepth(0), floatOut)
		samplers[0], samplers[1], samplers[2] = grey, grey, grey
	} else {
		for c := 0; c < 3; c++ {
			samplers[c] = newPlaneSampler(&buffers[c], header.ChannelBitDepth(c), floatOut)
		}
	}

	if format.HasAlpha() {
		if alpha := f.AlphaBuffer(); alpha != nil {
			eci := &header.ExtraChannelInfo[header.AlphaIndices[0]]
			samplers[3] = newPlaneSampler(alpha, &eci.BitDepth, floatOut)
		} else {
			opaque := uint16(opaque8)
			if floatOut {
				opaque = opaqueF16
			}
			samplers[3] = func(int, int) uint16 { return opaque }
		}
	}

	size := header.GetSize()
	pos := 0
	for y := 0; y < int(size.Height); y++ {
		for x := 0; x < int(size.Width); x++ {
			for _, s := range samplers {
				if floatOut {
					binary.LittleEndian.PutUint16(dst[pos:], s(y, x))
					pos += 2
				} else {
					dst[pos] = byte(s(y, x))
					pos++
				}
			}
		}
	}
}
