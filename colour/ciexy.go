package colour

import (
	"math"
)

type CIEXY struct {
	X float32
	Y float32
}

func NewCIEXY(x float32, y float32) *CIEXY {
	return &CIEXY{X: x, Y: y}
}

func (c *CIEXY) Matches(b *CIEXY) bool {
	if c == b {
		return true
	}
	if c == nil || b == nil {
		return false
	}
	return math.Abs(float64(c.X-b.X)) < 1e-4 && math.Abs(float64(c.Y-b.Y)) < 1e-4
}

type CIEPrimaries struct {
	Red   *CIEXY
	Green *CIEXY
	Blue  *CIEXY
}

func NewCIEPrimaries(red *CIEXY, green *CIEXY, blue *CIEXY) *CIEPrimaries {
	return &CIEPrimaries{Red: red, Green: green, Blue: blue}
}

func (p *CIEPrimaries) Matches(b *CIEPrimaries) bool {
	if p == b {
		return true
	}
	if p == nil || b == nil {
		return false
	}
	return p.Red.Matches(b.Red) && p.Green.Matches(b.Green) && p.Blue.Matches(b.Blue)
}

// GetPrimaries returns nil for PRI_CUSTOM and unknown values.
func GetPrimaries(primaries int32) *CIEPrimaries {
	switch primaries {
	case PRI_SRGB:
		return NewCIEPrimaries(NewCIEXY(0.639998686, 0.330010138),
			NewCIEXY(0.300003784, 0.600003357),
			NewCIEXY(0.150002046, 0.059997204))
	case PRI_BT2100:
		return NewCIEPrimaries(NewCIEXY(0.708, 0.292),
			NewCIEXY(0.170, 0.797),
			NewCIEXY(0.131, 0.046))
	case PRI_P3:
		return NewCIEPrimaries(NewCIEXY(0.680, 0.320),
			NewCIEXY(0.265, 0.690),
			NewCIEXY(0.150, 0.060))
	}
	return nil
}

// GetWhitePoint returns nil for WP_CUSTOM and unknown values.
func GetWhitePoint(whitePoint int32) *CIEXY {
	switch whitePoint {
	case WP_D65:
		return NewCIEXY(0.3127, 0.3290)
	case WP_E:
		return NewCIEXY(1.0/3, 1.0/3)
	case WP_DCI:
		return NewCIEXY(0.314, 0.351)
	case WP_D50:
		return NewCIEXY(0.34567, 0.35850)
	}
	return nil
}
