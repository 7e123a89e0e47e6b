package bundle

import (
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/colour"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/options"
	"github.com/kpfaulkner/jxl-oneshot/util"
)

const (
	CODESTREAM_HEADER uint32 = 0x0AFF
)

type ImageHeader struct {
	Level    int32
	Size     util.Dimension
	BitDepth *BitDepthHeader

	ExtraChannelInfo []ExtraChannelInfo
	ColourEncoding   *colour.ColourEncodingBundle
	AlphaIndices     []int32

	Extensions *Extensions

	// ICCSize is the length of the ICC block following the headers. Zero
	// when the colour encoding does not embed a profile.
	ICCSize uint64
}

// NewImageHeader returns the all default metadata for an image of the given size.
func NewImageHeader(width uint32, height uint32) *ImageHeader {
	return &ImageHeader{
		Level:            options.DefaultLevel,
		Size:             util.Dimension{Width: width, Height: height},
		BitDepth:         NewBitDepthHeader(),
		ExtraChannelInfo: []ExtraChannelInfo{},
		ColourEncoding:   colour.NewColourEncodingBundle(),
		AlphaIndices:     []int32{},
		Extensions:       NewExtensions(),
	}
}

// ParseImageHeader reads the codestream signature, size and metadata.
func ParseImageHeader(reader jxlio.BitReader, opts *options.JXLOptions) (*ImageHeader, error) {
	opts = options.NewJXLOptions(opts)

	headerBits, err := reader.ReadBits(16)
	if err != nil {
		return nil, err
	}
	if uint32(headerBits) != CODESTREAM_HEADER {
		log.Errorf("codestream signature mismatch %04x", headerBits)
		return nil, jxlio.Invalidf("not a JXL codestream: 0xFF0A magic mismatch")
	}

	header := NewImageHeader(0, 0)
	header.Level = opts.Level
	if header.Size, err = readSizeHeader(reader, opts.MaxDimension(), opts.MaxArea()); err != nil {
		return nil, err
	}

	allDefault, err := reader.ReadBool()
	if err != nil {
		return nil, err
	}
	if allDefault {
		return header, nil
	}

	if header.BitDepth, err = NewBitDepthHeaderWithReader(reader); err != nil {
		return nil, err
	}

	extraChannelCount, err := reader.ReadU32(0, 0, 1, 0, 2, 4, 1, 12)
	if err != nil {
		return nil, err
	}
	header.ExtraChannelInfo = make([]ExtraChannelInfo, 0, extraChannelCount)
	for i := 0; i < int(extraChannelCount); i++ {
		eci, err := NewExtraChannelInfoWithReader(reader)
		if err != nil {
			return nil, err
		}
		header.ExtraChannelInfo = append(header.ExtraChannelInfo, *eci)
		if eci.EcType == ALPHA {
			header.AlphaIndices = append(header.AlphaIndices, int32(i))
		}
	}

	if header.ColourEncoding, err = colour.NewColourEncodingBundleWithReader(reader); err != nil {
		return nil, err
	}

	if header.Extensions, err = NewExtensionsWithReader(reader); err != nil {
		return nil, err
	}

	if header.ColourEncoding.UseIccProfile {
		if header.ICCSize, err = reader.ReadU64(); err != nil {
			return nil, err
		}
		if header.ICCSize == 0 || header.ICCSize > opts.MaxICCSize {
			log.Errorf("invalid ICC size %d", header.ICCSize)
			return nil, jxlio.Invalidf("invalid ICC size %d (max %d)", header.ICCSize, opts.MaxICCSize)
		}
	}

	return header, nil
}

func (h *ImageHeader) IsAllDefault() bool {
	return !h.BitDepth.UsesFloatSamples && h.BitDepth.BitsPerSample == 8 &&
		len(h.ExtraChannelInfo) == 0 && h.ColourEncoding.IsAllDefault() &&
		h.Extensions.ExtensionsKey == 0
}

// Write emits the signature, size header and metadata. The caller pads.
func (h *ImageHeader) Write(writer *jxlio.BitWriter) error {
	writer.WriteBits(uint64(CODESTREAM_HEADER), 16)
	if err := writeSizeHeader(writer, h.Size); err != nil {
		return err
	}
	if h.IsAllDefault() {
		writer.WriteBool(true)
		return nil
	}
	writer.WriteBool(false)
	if err := h.BitDepth.Write(writer); err != nil {
		return err
	}
	if err := writer.WriteU32(uint32(len(h.ExtraChannelInfo)), 0, 0, 1, 0, 2, 4, 1, 12); err != nil {
		return err
	}
	for i := range h.ExtraChannelInfo {
		if err := h.ExtraChannelInfo[i].Write(writer); err != nil {
			return err
		}
	}
	if err := h.ColourEncoding.Write(writer); err != nil {
		return err
	}
	h.Extensions.Write(writer)
	if h.ColourEncoding.UseIccProfile {
		writer.WriteU64(h.ICCSize)
	}
	return nil
}

func (h *ImageHeader) GetColourChannelCount() int {
	if h.ColourEncoding.IsGray() {
		return 1
	}

	return 3
}

func (h *ImageHeader) GetSize() util.Dimension {
	return h.Size
}

func (h *ImageHeader) HasAlpha() bool {
	return len(h.AlphaIndices) > 0
}

// AlphaBits is the bit depth of the first alpha channel, 0 without alpha.
func (h *ImageHeader) AlphaBits() uint32 {
	if !h.HasAlpha() {
		return 0
	}
	return h.ExtraChannelInfo[h.AlphaIndices[0]].BitDepth.BitsPerSample
}

func (h *ImageHeader) GetTotalChannelCount() int {
	return len(h.ExtraChannelInfo) + h.GetColourChannelCount()
}

// ChannelBitDepth returns the depth of channel c, colour channels first.
func (h *ImageHeader) ChannelBitDepth(c int) *BitDepthHeader {
	colourChannels := h.GetColourChannelCount()
	if c < colourChannels {
		return h.BitDepth
	}
	return &h.ExtraChannelInfo[c-colourChannels].BitDepth
}

// RawPixelSize is the byte size of the interleaved native sample layout.
func (h *ImageHeader) RawPixelSize() uint64 {
	perPixel := 0
	for c := 0; c < h.GetTotalChannelCount(); c++ {
		perPixel += h.ChannelBitDepth(c).BytesPerSample()
	}
	return h.Size.Area() * uint64(perPixel)
}
