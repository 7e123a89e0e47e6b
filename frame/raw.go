package frame

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/image"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

type sampleReader func(b []byte) (int32, float32, error)

func sampleReaderFor(bd *bundle.BitDepthHeader) sampleReader {
	if bd.UsesFloatSamples {
		if bd.BitsPerSample == 16 {
			return func(b []byte) (int32, float32, error) {
				f := float16.Frombits(binary.LittleEndian.Uint16(b))
				if f.IsNaN() || f.IsInf(0) {
					return 0, 0, jxlio.Invalidf("non-finite binary16 sample %04x", uint16(f))
				}
				return 0, f.Float32(), nil
			}
		}
		return func(b []byte) (int32, float32, error) {
			f := math.Float32frombits(binary.LittleEndian.Uint32(b))
			if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
				return 0, 0, jxlio.Invalidf("non-finite binary32 sample")
			}
			return 0, f, nil
		}
	}

	maxValue := int32(bd.MaxValue())
	if bd.BitsPerSample <= 8 {
		return func(b []byte) (int32, float32, error) {
			v := int32(b[0])
			if v > maxValue {
				return 0, 0, jxlio.Invalidf("sample %d exceeds %d bit range", v, bd.BitsPerSample)
			}
			return v, 0, nil
		}
	}
	return func(b []byte) (int32, float32, error) {
		v := int32(binary.LittleEndian.Uint16(b))
		if v > maxValue {
			return 0, 0, jxlio.Invalidf("sample %d exceeds %d bit range", v, bd.BitsPerSample)
		}
		return v, 0, nil
	}
}

// decodeRawBody reads pixel interleaved samples in native layout.
func decodeRawBody(parent *bundle.ImageHeader, body []byte) ([]image.ImageBuffer, error) {
	if uint64(len(body)) != parent.RawPixelSize() {
		return nil, jxlio.Invalidf("raw body is %d bytes, expected %d", len(body), parent.RawPixelSize())
	}
	buffers, err := newChannelBuffers(parent)
	if err != nil {
		return nil, err
	}

	numChannels := len(buffers)
	readers := make([]sampleReader, numChannels)
	widths := make([]int, numChannels)
	for c := range readers {
		bd := parent.ChannelBitDepth(c)
		readers[c] = sampleReaderFor(bd)
		widths[c] = bd.BytesPerSample()
	}

	size := parent.GetSize()
	pos := 0
	for y := 0; y < int(size.Height); y++ {
		for x := 0; x < int(size.Width); x++ {
			for c := 0; c < numChannels; c++ {
				iv, fv, err := readers[c](body[pos : pos+widths[c]])
				if err != nil {
					return nil, err
				}
				pos += widths[c]
				if buffers[c].IsFloat() {
					buffers[c].FloatBuffer[y][x] = fv
				} else {
					buffers[c].IntBuffer[y][x] = iv
				}
			}
		}
	}
	return buffers, nil
}

// EncodeRawBody is the inverse of decodeRawBody. Float planes are written at
// the channel's declared precision.
func EncodeRawBody(parent *bundle.ImageHeader, buffers []image.ImageBuffer) ([]byte, error) {
	if len(buffers) != parent.GetTotalChannelCount() {
		return nil, jxlio.Invalidf("have %d planes, header describes %d channels", len(buffers), parent.GetTotalChannelCount())
	}
	size := parent.GetSize()
	body := make([]byte, 0, parent.RawPixelSize())
	for y := 0; y < int(size.Height); y++ {
		for x := 0; x < int(size.Width); x++ {
			for c := range buffers {
				bd := parent.ChannelBitDepth(c)
				switch {
				case bd.UsesFloatSamples && bd.BitsPerSample == 16:
					body = binary.LittleEndian.AppendUint16(body, float16.Fromfloat32(buffers[c].FloatBuffer[y][x]).Bits())
				case bd.UsesFloatSamples:
					body = binary.LittleEndian.AppendUint32(body, math.Float32bits(buffers[c].FloatBuffer[y][x]))
				case bd.BitsPerSample <= 8:
					body = append(body, byte(buffers[c].IntBuffer[y][x]))
				default:
					body = binary.LittleEndian.AppendUint16(body, uint16(buffers[c].IntBuffer[y][x]))
				}
			}
		}
	}
	return body, nil
}
