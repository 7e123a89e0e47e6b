package colour

import (
	"math"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

type CustomXY struct {
	CIEXY
}

func NewCustomXY(reader jxlio.BitReader) (*CustomXY, error) {
	cxy := &CustomXY{}

	ciexy, err := cxy.readCustom(reader)
	if err != nil {
		return nil, err
	}
	cxy.CIEXY = *ciexy
	return cxy, nil
}

func (cxy *CustomXY) readCustom(reader jxlio.BitReader) (*CIEXY, error) {
	ux, err := reader.ReadU32(0, 19, 524288, 19, 1048576, 20, 2097152, 21)
	if err != nil {
		return nil, err
	}
	uy, err := reader.ReadU32(0, 19, 524288, 19, 1048576, 20, 2097152, 21)
	if err != nil {
		return nil, err
	}
	x := float32(jxlio.UnpackSigned(ux)) * 1e-6
	y := float32(jxlio.UnpackSigned(uy)) * 1e-6

	return NewCIEXY(x, y), nil
}

// WriteCustomXY is the inverse of NewCustomXY.
func WriteCustomXY(writer *jxlio.BitWriter, xy CIEXY) error {
	for _, v := range []float32{xy.X, xy.Y} {
		packed := jxlio.PackSigned(int32(math.Round(float64(v) * 1e6)))
		if err := writer.WriteU32(packed, 0, 19, 524288, 19, 1048576, 20, 2097152, 21); err != nil {
			return err
		}
	}
	return nil
}
