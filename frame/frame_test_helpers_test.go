package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/colour"
	"github.com/kpfaulkner/jxl-oneshot/image"
)

func makeParent(width, height uint32, grey bool, alpha bool) *bundle.ImageHeader {
	ih := bundle.NewImageHeader(width, height)
	if grey {
		ih.ColourEncoding.ColourEncoding = colour.CE_GRAY
	}
	if alpha {
		ih.ExtraChannelInfo = []bundle.ExtraChannelInfo{*bundle.NewAlphaChannelInfo()}
		ih.AlphaIndices = []int32{0}
	}
	return ih
}

// patternBuffers fills every plane with a deterministic mix of flat areas,
// small steps and large jumps so each predictive op gets used.
func patternBuffers(t *testing.T, parent *bundle.ImageHeader) []image.ImageBuffer {
	t.Helper()
	buffers, err := newChannelBuffers(parent)
	require.NoError(t, err)
	size := parent.GetSize()
	for c := range buffers {
		maxValue := parent.ChannelBitDepth(c).MaxValue()
		for y := 0; y < int(size.Height); y++ {
			for x := 0; x < int(size.Width); x++ {
				var v uint32
				switch {
				case y%4 == 0:
					v = 17
				case y%4 == 1:
					v = uint32(x + c)
				case y%4 == 2:
					v = uint32(x*37 + y*11 + c*53)
				default:
					v = uint32((x / 3) * 90)
				}
				if buffers[c].IsFloat() {
					buffers[c].FloatBuffer[y][x] = float32(v%64) / 8
				} else {
					buffers[c].IntBuffer[y][x] = int32(v % (maxValue + 1))
				}
			}
		}
	}
	return buffers
}
