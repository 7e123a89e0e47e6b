package imageformats

import (
	"encoding/binary"
	"errors"
	"image"
	"io"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/core"
	"github.com/kpfaulkner/jxl-oneshot/frame"
	image2 "github.com/kpfaulkner/jxl-oneshot/image"
)

var (
	qoiMagic     = []byte("qoif")
	qoiEndMarker = []byte{0, 0, 0, 0, 0, 0, 0, 1}
)

// WriteQOI writes the decoded pixels as a QOI image. The op stream is the
// predictive body encoding, framed by the QOI header and end marker. F16
// formats are reduced to 8 bits. Samples stay unassociated, as QOI stores
// them.
func WriteQOI(img *core.DecodedImage, output io.Writer) error {
	m, err := img.ToImage()
	if err != nil {
		return err
	}
	width := int(img.Width)
	height := int(img.Height)
	hasAlpha := img.PixelFormat.HasAlpha()

	header := bundle.NewImageHeader(img.Width, img.Height)
	channels := 3
	if hasAlpha {
		header.ExtraChannelInfo = append(header.ExtraChannelInfo, *bundle.NewAlphaChannelInfo())
		header.AlphaIndices = append(header.AlphaIndices, 0)
		channels = 4
	}

	planes := make([][][]int32, channels)
	for c := range planes {
		planes[c] = make([][]int32, height)
		for y := range planes[c] {
			planes[c][y] = make([]int32, width)
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px, err := nrgbaAt(m, x, y)
			if err != nil {
				return err
			}
			for c := 0; c < channels; c++ {
				planes[c][y][x] = int32(px[c])
			}
		}
	}
	buffers := make([]image2.ImageBuffer, channels)
	for c := range buffers {
		buffers[c] = *image2.NewImageBufferFromInts(planes[c])
	}

	body, err := frame.EncodePredictiveBody(header, buffers)
	if err != nil {
		return err
	}

	var head [14]byte
	copy(head[:], qoiMagic)
	binary.BigEndian.PutUint32(head[4:], img.Width)
	binary.BigEndian.PutUint32(head[8:], img.Height)
	head[12] = byte(channels)
	// sRGB with linear alpha
	head[13] = 0

	for _, chunk := range [][]byte{head[:], body, qoiEndMarker} {
		if _, err := output.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

// nrgbaAt reads one unassociated 8 bit sample set from the images ToImage
// produces.
func nrgbaAt(m image.Image, x int, y int) ([4]uint8, error) {
	switch img := m.(type) {
	case *image.NRGBA:
		p := img.Pix[img.PixOffset(x, y):]
		return [4]uint8{p[0], p[1], p[2], p[3]}, nil
	case *image.NRGBA64:
		p := img.Pix[img.PixOffset(x, y):]
		var px [4]uint8
		for c := 0; c < 4; c++ {
			v := uint32(binary.BigEndian.Uint16(p[c*2:]))
			px[c] = uint8((v*255 + 32767) / 65535)
		}
		return px, nil
	}
	return [4]uint8{}, errors.New("unsupported image type for QOI")
}
