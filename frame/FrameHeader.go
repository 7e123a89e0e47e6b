package frame

import (
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/options"
)

const (
	// samples stored verbatim, interleaved per pixel
	ENCODING_RAW uint32 = 0

	// QOI style op stream over 8 bit samples
	ENCODING_PREDICTIVE uint32 = 1

	// zstd frame wrapping a raw body
	ENCODING_ZSTD uint32 = 2
)

type FrameHeader struct {
	Encoding uint32
	BodySize uint64
}

func ValidateEncoding(encoding uint32) bool {
	return encoding <= ENCODING_ZSTD
}

func EncodingName(encoding uint32) string {
	switch encoding {
	case ENCODING_RAW:
		return "raw"
	case ENCODING_PREDICTIVE:
		return "predictive"
	case ENCODING_ZSTD:
		return "zstd"
	}
	return "unknown"
}

// NewFrameHeaderWithReader reads the body descriptor and the padding that
// ends the header section. parent decides which encodings are legal.
func NewFrameHeaderWithReader(reader jxlio.BitReader, parent *bundle.ImageHeader, opts *options.JXLOptions) (*FrameHeader, error) {
	opts = options.NewJXLOptions(opts)
	fh := &FrameHeader{}

	encoding, err := reader.ReadEnum()
	if err != nil {
		return nil, err
	}
	fh.Encoding = uint32(encoding)
	if !ValidateEncoding(fh.Encoding) {
		log.Errorf("unknown body encoding %d", encoding)
		return nil, jxlio.Invalidf("unknown body encoding %d", encoding)
	}
	if fh.Encoding == ENCODING_PREDICTIVE && !SupportsPredictive(parent) {
		log.Errorf("predictive body requires 8 bit samples and at most an alpha extra channel")
		return nil, jxlio.Invalidf("predictive body not allowed for this image layout")
	}

	if fh.BodySize, err = reader.ReadU64(); err != nil {
		return nil, err
	}
	if fh.BodySize > opts.MaxBodySize {
		log.Errorf("body size %d exceeds limit %d", fh.BodySize, opts.MaxBodySize)
		return nil, jxlio.Invalidf("body size %d exceeds limit %d", fh.BodySize, opts.MaxBodySize)
	}
	if fh.Encoding == ENCODING_RAW && fh.BodySize != parent.RawPixelSize() {
		log.Errorf("raw body size %d, expected %d", fh.BodySize, parent.RawPixelSize())
		return nil, jxlio.Invalidf("raw body size %d does not match image layout size %d", fh.BodySize, parent.RawPixelSize())
	}
	if fh.Encoding != ENCODING_RAW && fh.BodySize == 0 {
		return nil, jxlio.Invalidf("empty %s body", EncodingName(fh.Encoding))
	}

	if err := reader.ZeroPadToByte(); err != nil {
		return nil, err
	}
	return fh, nil
}

func (fh *FrameHeader) Write(writer *jxlio.BitWriter) error {
	if err := writer.WriteEnum(int32(fh.Encoding)); err != nil {
		return err
	}
	writer.WriteU64(fh.BodySize)
	writer.ZeroPadToByte()
	return nil
}

// SupportsPredictive reports whether every channel is 8 bit integer and the
// only extra channel, if any, is alpha.
func SupportsPredictive(parent *bundle.ImageHeader) bool {
	if parent.BitDepth.UsesFloatSamples || parent.BitDepth.BitsPerSample != 8 {
		return false
	}
	switch len(parent.ExtraChannelInfo) {
	case 0:
		return true
	case 1:
		eci := parent.ExtraChannelInfo[0]
		return eci.EcType == bundle.ALPHA && !eci.BitDepth.UsesFloatSamples && eci.BitDepth.BitsPerSample == 8
	}
	return false
}
