package bundle

import (
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

const MaxIntegerBits = 16

type BitDepthHeader struct {
	UsesFloatSamples bool
	BitsPerSample    uint32
	ExpBits          uint32
}

func NewBitDepthHeader() *BitDepthHeader {
	bh := &BitDepthHeader{}
	bh.UsesFloatSamples = false
	bh.BitsPerSample = 8
	bh.ExpBits = 0
	return bh
}

func NewBitDepthHeaderWithReader(reader jxlio.BitReader) (*BitDepthHeader, error) {
	bh := &BitDepthHeader{}
	var err error
	if bh.UsesFloatSamples, err = reader.ReadBool(); err != nil {
		return nil, err
	}
	if bh.UsesFloatSamples {
		if bh.BitsPerSample, err = reader.ReadU32(32, 0, 16, 0, 24, 0, 1, 6); err != nil {
			return nil, err
		}
		expBits, err := reader.ReadBits(4)
		if err != nil {
			return nil, err
		}
		bh.ExpBits = 1 + uint32(expBits)
	} else {
		if bh.BitsPerSample, err = reader.ReadU32(8, 0, 10, 0, 12, 0, 1, 6); err != nil {
			return nil, err
		}
		bh.ExpBits = 0
	}
	if err := bh.Validate(); err != nil {
		return nil, err
	}
	return bh, nil
}

// Validate rejects depths the pixel decoder cannot represent.
func (bh *BitDepthHeader) Validate() error {
	if bh.UsesFloatSamples {
		if (bh.BitsPerSample == 16 && bh.ExpBits == 5) || (bh.BitsPerSample == 32 && bh.ExpBits == 8) {
			return nil
		}
		log.Errorf("unsupported float sample format %d/%d", bh.BitsPerSample, bh.ExpBits)
		return jxlio.Invalidf("unsupported float sample format %d bits, %d exponent bits", bh.BitsPerSample, bh.ExpBits)
	}
	if bh.BitsPerSample < 1 || bh.BitsPerSample > MaxIntegerBits {
		log.Errorf("unsupported integer bit depth %d", bh.BitsPerSample)
		return jxlio.Invalidf("unsupported integer bit depth %d", bh.BitsPerSample)
	}
	return nil
}

// BytesPerSample is the size of one sample in the raw body layout.
func (bh *BitDepthHeader) BytesPerSample() int {
	if bh.UsesFloatSamples {
		return int(bh.BitsPerSample / 8)
	}
	if bh.BitsPerSample <= 8 {
		return 1
	}
	return 2
}

// MaxValue is the largest integer sample, 2^bits - 1. Zero for float samples.
func (bh *BitDepthHeader) MaxValue() uint32 {
	if bh.UsesFloatSamples {
		return 0
	}
	return (1 << bh.BitsPerSample) - 1
}

func (bh *BitDepthHeader) Write(writer *jxlio.BitWriter) error {
	writer.WriteBool(bh.UsesFloatSamples)
	if bh.UsesFloatSamples {
		if err := writer.WriteU32(bh.BitsPerSample, 32, 0, 16, 0, 24, 0, 1, 6); err != nil {
			return err
		}
		writer.WriteBits(uint64(bh.ExpBits-1), 4)
		return nil
	}
	return writer.WriteU32(bh.BitsPerSample, 8, 0, 10, 0, 12, 0, 1, 6)
}
