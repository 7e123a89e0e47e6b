package bundle

import (
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

type ExtraChannelInfo struct {
	EcType                     int32
	BitDepth                   BitDepthHeader
	DimShift                   int32
	Name                       string
	AlphaAssociated            bool
	Red, Green, Blue, Solidity float32
	CfaIndex                   int32
}

// NewAlphaChannelInfo is the 8 bit unassociated alpha channel the dAlpha flag selects.
func NewAlphaChannelInfo() *ExtraChannelInfo {
	return &ExtraChannelInfo{
		EcType:   ALPHA,
		BitDepth: *NewBitDepthHeader(),
		CfaIndex: 1,
	}
}

func NewExtraChannelInfoWithReader(reader jxlio.BitReader) (*ExtraChannelInfo, error) {
	eci := &ExtraChannelInfo{}
	var err error
	var dAlpha bool
	if dAlpha, err = reader.ReadBool(); err != nil {
		return nil, err
	}
	if dAlpha {
		return NewAlphaChannelInfo(), nil
	}

	if eci.EcType, err = reader.ReadEnum(); err != nil {
		return nil, err
	}
	if !ValidateExtraChannel(eci.EcType) {
		log.Errorf("illegal extra channel type %d", eci.EcType)
		return nil, jxlio.Invalidf("illegal extra channel type %d", eci.EcType)
	}
	bitDepth, err := NewBitDepthHeaderWithReader(reader)
	if err != nil {
		return nil, err
	}
	eci.BitDepth = *bitDepth

	dimShift, err := reader.ReadU32(0, 0, 3, 0, 4, 0, 1, 3)
	if err != nil {
		return nil, err
	}
	eci.DimShift = int32(dimShift)
	if eci.DimShift != 0 {
		log.Errorf("subsampled extra channel, dim shift %d", eci.DimShift)
		return nil, jxlio.Invalidf("subsampled extra channels are not supported (dim shift %d)", eci.DimShift)
	}

	nameLen, err := reader.ReadU32(0, 0, 0, 4, 16, 5, 48, 10)
	if err != nil {
		return nil, err
	}
	nameBuffer := make([]byte, nameLen)
	for i := uint32(0); i < nameLen; i++ {
		b, err := reader.ReadBits(8)
		if err != nil {
			return nil, err
		}
		nameBuffer[i] = byte(b)
	}
	eci.Name = string(nameBuffer)

	if eci.EcType == ALPHA {
		if eci.AlphaAssociated, err = reader.ReadBool(); err != nil {
			return nil, err
		}
	}

	if eci.EcType == SPOT_COLOR {
		for _, f := range []*float32{&eci.Red, &eci.Green, &eci.Blue, &eci.Solidity} {
			if *f, err = reader.ReadF16(); err != nil {
				return nil, err
			}
		}
	}

	eci.CfaIndex = 1
	if eci.EcType == COLOR_FILTER_ARRAY {
		cfaIndex, err := reader.ReadU32(1, 0, 0, 2, 3, 4, 19, 8)
		if err != nil {
			return nil, err
		}
		eci.CfaIndex = int32(cfaIndex)
	}
	return eci, nil
}

func (eci *ExtraChannelInfo) IsDefaultAlpha() bool {
	return eci.EcType == ALPHA && !eci.BitDepth.UsesFloatSamples && eci.BitDepth.BitsPerSample == 8 &&
		eci.Name == "" && !eci.AlphaAssociated
}

func (eci *ExtraChannelInfo) Write(writer *jxlio.BitWriter) error {
	if eci.IsDefaultAlpha() {
		writer.WriteBool(true)
		return nil
	}
	writer.WriteBool(false)
	if err := writer.WriteEnum(eci.EcType); err != nil {
		return err
	}
	if err := eci.BitDepth.Write(writer); err != nil {
		return err
	}
	if err := writer.WriteU32(uint32(eci.DimShift), 0, 0, 3, 0, 4, 0, 1, 3); err != nil {
		return err
	}
	if err := writer.WriteU32(uint32(len(eci.Name)), 0, 0, 0, 4, 16, 5, 48, 10); err != nil {
		return err
	}
	for i := 0; i < len(eci.Name); i++ {
		writer.WriteBits(uint64(eci.Name[i]), 8)
	}
	if eci.EcType == ALPHA {
		writer.WriteBool(eci.AlphaAssociated)
	}
	if eci.EcType == SPOT_COLOR {
		for _, f := range []float32{eci.Red, eci.Green, eci.Blue, eci.Solidity} {
			writer.WriteF16(f)
		}
	}
	if eci.EcType == COLOR_FILTER_ARRAY {
		return writer.WriteU32(uint32(eci.CfaIndex), 1, 0, 0, 2, 3, 4, 19, 8)
	}
	return nil
}
