package frame

import (
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/image"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

// DecodeBodyFunc turns a complete body into one plane per channel, colour
// channels first, then extra channels in header order.
type DecodeBodyFunc func(parent *bundle.ImageHeader, body []byte) ([]image.ImageBuffer, error)

var bodyDecoders = map[uint32]DecodeBodyFunc{
	ENCODING_RAW:        decodeRawBody,
	ENCODING_PREDICTIVE: decodePredictiveBody,
	ENCODING_ZSTD:       decodeZstdBody,
}

type Frame struct {
	GlobalMetadata *bundle.ImageHeader
	Header         *FrameHeader
	Buffer         []image.ImageBuffer
}

// NewFrame decodes body, which must be exactly Header.BodySize bytes.
func NewFrame(parent *bundle.ImageHeader, header *FrameHeader, body []byte) (*Frame, error) {
	if uint64(len(body)) < header.BodySize {
		return nil, jxlio.ErrNotEnoughInput
	}
	body = body[:header.BodySize]

	decode, ok := bodyDecoders[header.Encoding]
	if !ok {
		return nil, jxlio.Invalidf("unknown body encoding %d", header.Encoding)
	}
	buffers, err := decode(parent, body)
	if err != nil {
		log.Errorf("decoding %s body: %v", EncodingName(header.Encoding), err)
		return nil, err
	}
	return &Frame{GlobalMetadata: parent, Header: header, Buffer: buffers}, nil
}

func (f *Frame) GetColourChannelCount() int {
	return f.GlobalMetadata.GetColourChannelCount()
}

// AlphaBuffer returns the first alpha plane, or nil.
func (f *Frame) AlphaBuffer() *image.ImageBuffer {
	if !f.GlobalMetadata.HasAlpha() {
		return nil
	}
	return &f.Buffer[f.GetColourChannelCount()+int(f.GlobalMetadata.AlphaIndices[0])]
}

func newChannelBuffers(parent *bundle.ImageHeader) ([]image.ImageBuffer, error) {
	size := parent.GetSize()
	buffers := make([]image.ImageBuffer, parent.GetTotalChannelCount())
	for c := range buffers {
		t := image.TYPE_INT
		if parent.ChannelBitDepth(c).UsesFloatSamples {
			t = image.TYPE_FLOAT
		}
		buf, err := image.NewImageBuffer(t, int32(size.Height), int32(size.Width))
		if err != nil {
			return nil, err
		}
		buffers[c] = *buf
	}
	return buffers, nil
}
