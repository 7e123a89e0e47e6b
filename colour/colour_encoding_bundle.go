package colour

import (
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

type ColourEncodingBundle struct {
	UseIccProfile   bool
	ColourEncoding  int32
	WhitePoint      int32
	White           *CIEXY
	Primaries       int32
	Prim            *CIEPrimaries
	Tf              int32
	RenderingIntent int32
}

// NewColourEncodingBundle returns the all default encoding: sRGB, D65, relative intent.
func NewColourEncodingBundle() *ColourEncodingBundle {
	ceb := &ColourEncodingBundle{}
	ceb.UseIccProfile = false
	ceb.ColourEncoding = CE_RGB
	ceb.WhitePoint = WP_D65
	ceb.White = GetWhitePoint(ceb.WhitePoint)
	ceb.Primaries = PRI_SRGB
	ceb.Prim = GetPrimaries(ceb.Primaries)
	ceb.Tf = TF_SRGB
	ceb.RenderingIntent = RI_RELATIVE
	return ceb
}

func NewColourEncodingBundleWithReader(reader jxlio.BitReader) (*ColourEncodingBundle, error) {
	ceb := NewColourEncodingBundle()
	var allDefault bool
	var err error
	if allDefault, err = reader.ReadBool(); err != nil {
		return nil, err
	}
	if allDefault {
		return ceb, nil
	}

	if ceb.UseIccProfile, err = reader.ReadBool(); err != nil {
		return nil, err
	}

	if ceb.ColourEncoding, err = reader.ReadEnum(); err != nil {
		return nil, err
	}
	if !ValidateColourEncoding(ceb.ColourEncoding) {
		log.Errorf("unsupported colour space %d", ceb.ColourEncoding)
		return nil, jxlio.Invalidf("unsupported colour space %d", ceb.ColourEncoding)
	}

	if !ceb.UseIccProfile {
		if ceb.WhitePoint, err = reader.ReadEnum(); err != nil {
			return nil, err
		}
		if !ValidateWhitePoint(ceb.WhitePoint) {
			log.Errorf("invalid white point %d", ceb.WhitePoint)
			return nil, jxlio.Invalidf("invalid white point %d", ceb.WhitePoint)
		}
		if ceb.WhitePoint == WP_CUSTOM {
			white, err := NewCustomXY(reader)
			if err != nil {
				return nil, err
			}
			ceb.White = &white.CIEXY
		} else {
			ceb.White = GetWhitePoint(ceb.WhitePoint)
		}

		if ceb.ColourEncoding != CE_GRAY {
			if ceb.Primaries, err = reader.ReadEnum(); err != nil {
				return nil, err
			}
			if !ValidatePrimaries(ceb.Primaries) {
				log.Errorf("invalid primaries %d", ceb.Primaries)
				return nil, jxlio.Invalidf("invalid primaries %d", ceb.Primaries)
			}
			if ceb.Primaries == PRI_CUSTOM {
				pRed, err := NewCustomXY(reader)
				if err != nil {
					return nil, err
				}
				pGreen, err := NewCustomXY(reader)
				if err != nil {
					return nil, err
				}
				pBlue, err := NewCustomXY(reader)
				if err != nil {
					return nil, err
				}
				ceb.Prim = NewCIEPrimaries(&pRed.CIEXY, &pGreen.CIEXY, &pBlue.CIEXY)
			} else {
				ceb.Prim = GetPrimaries(ceb.Primaries)
			}
		}

		var useGamma bool
		if useGamma, err = reader.ReadBool(); err != nil {
			return nil, err
		}
		if useGamma {
			gamma, err := reader.ReadBits(24)
			if err != nil {
				return nil, err
			}
			ceb.Tf = int32(gamma)
		} else {
			tf, err := reader.ReadEnum()
			if err != nil {
				return nil, err
			}
			ceb.Tf = (1 << 24) + tf
		}
		if !ValidateTransfer(ceb.Tf) {
			log.Errorf("illegal transfer function %d", ceb.Tf)
			return nil, jxlio.Invalidf("illegal transfer function %d", ceb.Tf)
		}

		if ceb.RenderingIntent, err = reader.ReadEnum(); err != nil {
			return nil, err
		}
		if !ValidateRenderingIntent(ceb.RenderingIntent) {
			log.Errorf("invalid rendering intent %d", ceb.RenderingIntent)
			return nil, jxlio.Invalidf("invalid rendering intent %d", ceb.RenderingIntent)
		}
	}

	return ceb, nil
}

func (ceb *ColourEncodingBundle) IsGray() bool {
	return ceb.ColourEncoding == CE_GRAY
}

func (ceb *ColourEncodingBundle) IsAllDefault() bool {
	return !ceb.UseIccProfile && ceb.ColourEncoding == CE_RGB && ceb.WhitePoint == WP_D65 &&
		ceb.Primaries == PRI_SRGB && ceb.Tf == TF_SRGB && ceb.RenderingIntent == RI_RELATIVE
}

// Write serialises the bundle in the same field order NewColourEncodingBundleWithReader reads.
func (ceb *ColourEncodingBundle) Write(writer *jxlio.BitWriter) error {
	if ceb.IsAllDefault() {
		writer.WriteBool(true)
		return nil
	}
	writer.WriteBool(false)
	writer.WriteBool(ceb.UseIccProfile)
	if err := writer.WriteEnum(ceb.ColourEncoding); err != nil {
		return err
	}
	if ceb.UseIccProfile {
		return nil
	}

	if err := writer.WriteEnum(ceb.WhitePoint); err != nil {
		return err
	}
	if ceb.WhitePoint == WP_CUSTOM {
		if err := WriteCustomXY(writer, *ceb.White); err != nil {
			return err
		}
	}

	if ceb.ColourEncoding != CE_GRAY {
		if err := writer.WriteEnum(ceb.Primaries); err != nil {
			return err
		}
		if ceb.Primaries == PRI_CUSTOM {
			for _, xy := range []*CIEXY{ceb.Prim.Red, ceb.Prim.Green, ceb.Prim.Blue} {
				if err := WriteCustomXY(writer, *xy); err != nil {
					return err
				}
			}
		}
	}

	if IsGamma(ceb.Tf) {
		writer.WriteBool(true)
		writer.WriteBits(uint64(ceb.Tf), 24)
	} else {
		writer.WriteBool(false)
		if err := writer.WriteEnum(ceb.Tf - (1 << 24)); err != nil {
			return err
		}
	}
	return writer.WriteEnum(ceb.RenderingIntent)
}
