package imageformats

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"

	"github.com/kpfaulkner/jxl-oneshot/core"
)

// WritePFM writes the colour channels as big endian float32, bottom row
// first. Alpha is dropped.
func WritePFM(img *core.DecodedImage, output io.Writer) error {
	width := int(img.Width)
	height := int(img.Height)

	header := fmt.Sprintf("PF\n%d %d\n1.0\n", width, height)
	if _, err := output.Write([]byte(header)); err != nil {
		return err
	}

	channels := img.PixelFormat.Channels()
	sample := func(i int) float32 {
		if img.PixelFormat.IsFloat() {
			return float16.Frombits(binary.LittleEndian.Uint16(img.Pixels[i*2:])).Float32()
		}
		return float32(img.Pixels[i]) / 255
	}

	row := make([]byte, 0, width*3*4)
	for y := height - 1; y >= 0; y-- {
		row = row[:0]
		for x := 0; x < width; x++ {
			p := (y*width + x) * channels
			for c := 0; c < 3; c++ {
				row = binary.BigEndian.AppendUint32(row, math.Float32bits(sample(p+c)))
			}
		}
		if _, err := output.Write(row); err != nil {
			return err
		}
	}
	return nil
}
