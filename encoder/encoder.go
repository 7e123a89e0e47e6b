package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/colour"
	"github.com/kpfaulkner/jxl-oneshot/frame"
	image2 "github.com/kpfaulkner/jxl-oneshot/image"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/util"
)

var containerSignature = []byte{0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A}

type Options struct {
	// Encoding is one of the frame.ENCODING_* body encodings.
	Encoding uint32

	// ICC is embedded verbatim when set. Otherwise the decoder describes
	// the colour encoding itself.
	ICC []byte

	// Container wraps the codestream in ISOBMFF boxes.
	Container bool

	// Parts splits the codestream over that many jxlp boxes. 0 or 1 writes
	// a single jxlc box. Only used with Container.
	Parts int

	// Level is written as a jxll box when it is not 5. Only used with Container.
	Level int32

	// Float16 stores 16 bit images as binary16 samples.
	Float16 bool
}

// WriteCodestream writes a complete codestream for the given planes.
func WriteCodestream(w io.Writer, header *bundle.ImageHeader, encoding uint32, icc []byte, buffers []image2.ImageBuffer) error {
	if header.ColourEncoding.UseIccProfile != (len(icc) > 0) {
		return errors.New("ICC bytes must be given exactly when the header embeds a profile")
	}
	header.ICCSize = uint64(len(icc))

	body, err := frame.EncodeBody(encoding, header, buffers)
	if err != nil {
		return err
	}
	fh := &frame.FrameHeader{Encoding: encoding, BodySize: uint64(len(body))}

	bw := jxlio.NewBitWriter()
	if err := header.Write(bw); err != nil {
		return err
	}
	if err := fh.Write(bw); err != nil {
		return err
	}
	bw.WriteBytes(icc)
	if _, err := w.Write(bw.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// WriteContainer wraps codestream in a container with an ftyp box, an
// optional jxll box and either one jxlc box or parts jxlp boxes.
func WriteContainer(w io.Writer, codestream []byte, parts int, level int32) error {
	var buf bytes.Buffer
	buf.Write(containerSignature)
	writeBox(&buf, "ftyp", []byte{'j', 'x', 'l', ' ', 0, 0, 0, 0, 'j', 'x', 'l', ' '})
	if level != 0 && level != 5 {
		writeBox(&buf, "jxll", []byte{byte(level)})
	}

	if parts <= 1 {
		writeBox(&buf, "jxlc", codestream)
	} else {
		chunk := util.CeilDiv(len(codestream), parts)
		for i := 0; i < parts; i++ {
			start := min(i*chunk, len(codestream))
			end := min(start+chunk, len(codestream))
			index := uint32(i)
			if i == parts-1 {
				index |= 0x80000000
			}
			payload := binary.BigEndian.AppendUint32(nil, index)
			writeBox(&buf, "jxlp", append(payload, codestream[start:end]...))
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeBox(buf *bytes.Buffer, boxType string, payload []byte) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(payload)+8))
	buf.Write(size[:])
	buf.WriteString(boxType)
	buf.Write(payload)
}

// Encode writes img as a codestream, or a container when opts asks for one.
func Encode(w io.Writer, img image.Image, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	header, buffers, err := HeaderAndPlanes(img, opts.Float16)
	if err != nil {
		return err
	}
	if opts.Encoding == frame.ENCODING_PREDICTIVE && !frame.SupportsPredictive(header) {
		return fmt.Errorf("predictive encoding needs 8 bit samples, image has %d", header.BitDepth.BitsPerSample)
	}
	if len(opts.ICC) > 0 {
		header.ColourEncoding.UseIccProfile = true
	}

	if !opts.Container {
		return WriteCodestream(w, header, opts.Encoding, opts.ICC, buffers)
	}
	var codestream bytes.Buffer
	if err := WriteCodestream(&codestream, header, opts.Encoding, opts.ICC, buffers); err != nil {
		return err
	}
	return WriteContainer(w, codestream.Bytes(), opts.Parts, opts.Level)
}

// HeaderAndPlanes describes img as image metadata plus one plane per
// channel. Grey models stay grey, alpha is kept only if some pixel uses it.
func HeaderAndPlanes(img image.Image, float16 bool) (*bundle.ImageHeader, []image2.ImageBuffer, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, nil, errors.New("empty image")
	}

	grey := false
	deep := false
	switch img.ColorModel() {
	case color.GrayModel:
		grey = true
	case color.Gray16Model:
		grey = true
		deep = true
	case color.RGBA64Model, color.NRGBA64Model:
		deep = true
	}
	hasAlpha := !isOpaque(img)

	header := bundle.NewImageHeader(uint32(width), uint32(height))
	bitDepth := &bundle.BitDepthHeader{BitsPerSample: 8}
	if deep {
		bitDepth = &bundle.BitDepthHeader{BitsPerSample: 16}
		if float16 {
			bitDepth = &bundle.BitDepthHeader{UsesFloatSamples: true, BitsPerSample: 16, ExpBits: 5}
		}
	}
	header.BitDepth = bitDepth
	if grey {
		header.ColourEncoding.ColourEncoding = colour.CE_GRAY
	}
	if hasAlpha {
		eci := bundle.NewAlphaChannelInfo()
		eci.BitDepth = *bitDepth
		header.ExtraChannelInfo = []bundle.ExtraChannelInfo{*eci}
		header.AlphaIndices = []int32{0}
	}

	channels := header.GetTotalChannelCount()
	bufferType := image2.TYPE_INT
	if bitDepth.UsesFloatSamples {
		bufferType = image2.TYPE_FLOAT
	}
	buffers := make([]image2.ImageBuffer, channels)
	for c := range buffers {
		buf, err := image2.NewImageBuffer(bufferType, int32(height), int32(width))
		if err != nil {
			return nil, nil, err
		}
		buffers[c] = *buf
	}

	set := func(c int, y int, x int, v uint16) {
		switch {
		case bitDepth.UsesFloatSamples:
			buffers[c].FloatBuffer[y][x] = float32(v) / 0xFFFF
		case deep:
			buffers[c].IntBuffer[y][x] = int32(v)
		default:
			buffers[c].IntBuffer[y][x] = int32(v >> 8)
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := nrgba64At(img, bounds.Min.X+x, bounds.Min.Y+y)
			if grey {
				set(0, y, x, px.R)
			} else {
				set(0, y, x, px.R)
				set(1, y, x, px.G)
				set(2, y, x, px.B)
			}
			if hasAlpha {
				set(channels-1, y, x, px.A)
			}
		}
	}
	return header, buffers, nil
}

// nrgba64At reads non-premultiplied samples. Going through RGBA() would
// lose the colour of fully transparent pixels.
func nrgba64At(img image.Image, x int, y int) color.NRGBA64 {
	switch src := img.(type) {
	case *image.NRGBA:
		c := src.NRGBAAt(x, y)
		return color.NRGBA64{R: uint16(c.R) * 0x101, G: uint16(c.G) * 0x101, B: uint16(c.B) * 0x101, A: uint16(c.A) * 0x101}
	case *image.NRGBA64:
		return src.NRGBA64At(x, y)
	}
	return color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xFFFF {
				return false
			}
		}
	}
	return true
}
