package imageformats

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/x448/float16"

	"github.com/kpfaulkner/jxl-oneshot/core"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

const iccProfileName = "jxl-oneshot"

// WritePNG instead of using standard golang image/png package since we need
// to write out the ICC profile, which the standard package does not support.
// 8 bit formats give an 8 bit PNG, F16 formats a 16 bit one.
func WritePNG(img *core.DecodedImage, output io.Writer) error {
	if _, err := output.Write(pngSignature); err != nil {
		return err
	}
	if err := writeIHDR(img, output); err != nil {
		return err
	}
	if len(img.ICC) > 0 {
		if err := writeICCP(img, output); err != nil {
			return err
		}
	}
	if err := writeIDAT(img, output); err != nil {
		return err
	}
	return writeChunk(output, "IEND", nil)
}

func writeChunk(output io.Writer, chunkType string, data []byte) error {
	var buf bytes.Buffer
	buf.Grow(len(data) + 12)
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], uint32(len(data)))
	buf.Write(word[:])
	buf.WriteString(chunkType)
	buf.Write(data)
	binary.BigEndian.PutUint32(word[:], crc32.ChecksumIEEE(buf.Bytes()[4:]))
	buf.Write(word[:])
	_, err := output.Write(buf.Bytes())
	return err
}

func writeIHDR(img *core.DecodedImage, output io.Writer) error {
	colourMode := byte(2)
	if img.PixelFormat.HasAlpha() {
		colourMode = 6
	}
	bitDepth := byte(8)
	if img.PixelFormat.IsFloat() {
		bitDepth = 16
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], img.Width)
	binary.BigEndian.PutUint32(ihdr[4:], img.Height)
	ihdr[8] = bitDepth
	ihdr[9] = colourMode
	return writeChunk(output, "IHDR", ihdr)
}

func writeICCP(img *core.DecodedImage, output io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(iccProfileName)
	buf.WriteByte(0x00)
	// compression method, deflate
	buf.WriteByte(0x00)

	w, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return err
	}
	if _, err = w.Write(img.ICC); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return writeChunk(output, "iCCP", buf.Bytes())
}

func writeIDAT(img *core.DecodedImage, output io.Writer) error {
	var compressed bytes.Buffer
	w, err := zlib.NewWriterLevel(&compressed, zlib.DefaultCompression)
	if err != nil {
		return err
	}

	samplesPerRow := int(img.Width) * img.PixelFormat.Channels()
	row := make([]byte, 1, 1+samplesPerRow*2)
	src := img.Pixels
	for y := uint32(0); y < img.Height; y++ {
		// filter type none
		row = row[:1]
		if img.PixelFormat.IsFloat() {
			for i := 0; i < samplesPerRow; i++ {
				f := float16.Frombits(binary.LittleEndian.Uint16(src[i*2:])).Float32()
				row = binary.BigEndian.AppendUint16(row, clampToUint16(f))
			}
			src = src[samplesPerRow*2:]
		} else {
			row = append(row, src[:samplesPerRow]...)
			src = src[samplesPerRow:]
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return writeChunk(output, "IDAT", compressed.Bytes())
}

func clampToUint16(f float32) uint16 {
	switch {
	case !(f > 0):
		return 0
	case f >= 1:
		return 0xFFFF
	}
	return uint16(f*0xFFFF + 0.5)
}
