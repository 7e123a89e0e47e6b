package frame

import (
	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/image"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

const (
	OP_INDEX = 0x00
	OP_DIFF  = 0x40
	OP_LUMA  = 0x80
	OP_RUN   = 0xC0
	OP_RGB   = 0xFE
	OP_RGBA  = 0xFF

	OP_MASK = 0xC0

	maxRun = 62
)

type pixel struct {
	r, g, b, a uint8
}

func (p pixel) hash() int {
	return (int(p.r)*3 + int(p.g)*5 + int(p.b)*7 + int(p.a)*11) % 64
}

// decodePredictiveBody expands a QOI style op stream. Grey images carry the
// grey level in all three colour components.
func decodePredictiveBody(parent *bundle.ImageHeader, body []byte) ([]image.ImageBuffer, error) {
	if !SupportsPredictive(parent) {
		return nil, jxlio.Invalidf("predictive body not allowed for this image layout")
	}
	buffers, err := newChannelBuffers(parent)
	if err != nil {
		return nil, err
	}
	grey := parent.ColourEncoding.IsGray()
	hasAlpha := parent.HasAlpha()

	size := parent.GetSize()
	width := int(size.Width)
	total := int(size.Area())

	var index [64]pixel
	px := pixel{a: 255}
	pos := 0
	run := 0

	for i := 0; i < total; i++ {
		if run > 0 {
			run--
		} else {
			if pos >= len(body) {
				return nil, jxlio.Invalidf("predictive body ended after %d of %d pixels", i, total)
			}
			op := body[pos]
			pos++
			switch {
			case op == OP_RGB:
				if pos+3 > len(body) {
					return nil, jxlio.Invalidf("truncated RGB literal at pixel %d", i)
				}
				px.r, px.g, px.b = body[pos], body[pos+1], body[pos+2]
				pos += 3
			case op == OP_RGBA:
				if pos+4 > len(body) {
					return nil, jxlio.Invalidf("truncated RGBA literal at pixel %d", i)
				}
				px = pixel{body[pos], body[pos+1], body[pos+2], body[pos+3]}
				pos += 4
			case op&OP_MASK == OP_INDEX:
				px = index[op]
			case op&OP_MASK == OP_DIFF:
				px.r += (op>>4)&0x03 - 2
				px.g += (op>>2)&0x03 - 2
				px.b += op&0x03 - 2
			case op&OP_MASK == OP_LUMA:
				if pos >= len(body) {
					return nil, jxlio.Invalidf("truncated luma op at pixel %d", i)
				}
				b2 := body[pos]
				pos++
				dg := op&0x3f - 32
				px.r += dg + (b2>>4)&0x0f - 8
				px.g += dg
				px.b += dg + b2&0x0f - 8
			default:
				run = int(op & 0x3f)
				if i+run >= total {
					return nil, jxlio.Invalidf("run of %d past end of image at pixel %d", run+1, i)
				}
			}
			if grey && (px.r != px.g || px.g != px.b) {
				return nil, jxlio.Invalidf("non grey pixel in grey image at pixel %d", i)
			}
			if !hasAlpha && px.a != 255 {
				return nil, jxlio.Invalidf("translucent pixel in opaque image at pixel %d", i)
			}
			index[px.hash()] = px
		}

		y := i / width
		x := i % width
		if grey {
			buffers[0].IntBuffer[y][x] = int32(px.r)
		} else {
			buffers[0].IntBuffer[y][x] = int32(px.r)
			buffers[1].IntBuffer[y][x] = int32(px.g)
			buffers[2].IntBuffer[y][x] = int32(px.b)
		}
		if hasAlpha {
			buffers[len(buffers)-1].IntBuffer[y][x] = int32(px.a)
		}
	}

	if pos != len(body) {
		return nil, jxlio.Invalidf("%d unused bytes after predictive body", len(body)-pos)
	}
	return buffers, nil
}

// EncodePredictiveBody writes planes of 8 bit samples as a QOI style op stream.
func EncodePredictiveBody(parent *bundle.ImageHeader, buffers []image.ImageBuffer) ([]byte, error) {
	if !SupportsPredictive(parent) {
		return nil, jxlio.Invalidf("predictive body not allowed for this image layout")
	}
	grey := parent.ColourEncoding.IsGray()
	hasAlpha := parent.HasAlpha()
	size := parent.GetSize()
	width := int(size.Width)
	total := int(size.Area())

	var index [64]pixel
	prev := pixel{a: 255}
	out := make([]byte, 0, total)
	run := 0

	for i := 0; i < total; i++ {
		y := i / width
		x := i % width
		px := pixel{a: 255}
		if grey {
			v := uint8(buffers[0].IntBuffer[y][x])
			px.r, px.g, px.b = v, v, v
		} else {
			px.r = uint8(buffers[0].IntBuffer[y][x])
			px.g = uint8(buffers[1].IntBuffer[y][x])
			px.b = uint8(buffers[2].IntBuffer[y][x])
		}
		if hasAlpha {
			px.a = uint8(buffers[len(buffers)-1].IntBuffer[y][x])
		}

		if px == prev {
			index[px.hash()] = px
			run++
			if run == maxRun || i == total-1 {
				out = append(out, OP_RUN|byte(run-1))
				run = 0
			}
			continue
		}
		if run > 0 {
			out = append(out, OP_RUN|byte(run-1))
			run = 0
		}

		h := px.hash()
		switch {
		case index[h] == px:
			out = append(out, OP_INDEX|byte(h))
		case px.a == prev.a:
			dr := int8(px.r - prev.r)
			dg := int8(px.g - prev.g)
			db := int8(px.b - prev.b)
			drdg := dr - dg
			dbdg := db - dg
			switch {
			case dr >= -2 && dr <= 1 && dg >= -2 && dg <= 1 && db >= -2 && db <= 1:
				out = append(out, OP_DIFF|byte(dr+2)<<4|byte(dg+2)<<2|byte(db+2))
			case dg >= -32 && dg <= 31 && drdg >= -8 && drdg <= 7 && dbdg >= -8 && dbdg <= 7:
				out = append(out, OP_LUMA|byte(dg+32), byte(drdg+8)<<4|byte(dbdg+8))
			default:
				out = append(out, OP_RGB, px.r, px.g, px.b)
			}
		default:
			out = append(out, OP_RGBA, px.r, px.g, px.b, px.a)
		}
		index[h] = px
		prev = px
	}
	return out, nil
}
