package colour

const (
	PRI_SRGB   int32 = 1
	PRI_CUSTOM int32 = 2
	PRI_BT2100 int32 = 9
	PRI_P3     int32 = 11

	WP_D50    int32 = -1
	WP_D65    int32 = 1
	WP_CUSTOM int32 = 2
	WP_E      int32 = 10
	WP_DCI    int32 = 11

	CE_RGB     int32 = 0
	CE_GRAY    int32 = 1
	CE_XYB     int32 = 2
	CE_UNKNOWN int32 = 3

	RI_PERCEPTUAL int32 = 0
	RI_RELATIVE   int32 = 1
	RI_SATURATION int32 = 2
	RI_ABSOLUTE   int32 = 3

	// Enum transfer functions are offset by 1<<24 so they share a field with
	// gamma values, which are stored as gamma*1e7 in 24 bits.
	TF_BT709   int32 = 1 + (1 << 24)
	TF_UNKNOWN int32 = 2 + (1 << 24)
	TF_LINEAR  int32 = 8 + (1 << 24)
	TF_SRGB    int32 = 13 + (1 << 24)
	TF_PQ      int32 = 16 + (1 << 24)
	TF_DCI     int32 = 17 + (1 << 24)
	TF_HLG     int32 = 18 + (1 << 24)

	GammaScale = 10_000_000
	maxGamma   = 8192
)

// ValidateColourEncoding only accepts spaces this decoder can render.
func ValidateColourEncoding(colourEncoding int32) bool {
	return colourEncoding == CE_RGB || colourEncoding == CE_GRAY
}

func ValidateWhitePoint(whitePoint int32) bool {
	return whitePoint == WP_D65 || whitePoint == WP_CUSTOM || whitePoint == WP_E || whitePoint == WP_DCI
}

func ValidatePrimaries(primaries int32) bool {
	return primaries == PRI_SRGB || primaries == PRI_CUSTOM || primaries == PRI_BT2100 || primaries == PRI_P3
}

func ValidateTransfer(transfer int32) bool {
	if IsGamma(transfer) {
		return IsValidGamma(transfer)
	}
	switch transfer {
	case TF_BT709, TF_LINEAR, TF_SRGB, TF_PQ, TF_DCI, TF_HLG:
		return true
	}
	return false
}

// IsValidGamma reports whether a raw 24 bit gamma lies in [1/8192, 1].
func IsValidGamma(gamma int32) bool {
	return gamma > 0 && gamma <= GammaScale && int64(gamma)*maxGamma >= GammaScale
}

func ValidateRenderingIntent(renderingIntent int32) bool {
	return renderingIntent >= RI_PERCEPTUAL && renderingIntent <= RI_ABSOLUTE
}

func IsGamma(transfer int32) bool {
	return transfer >= 0 && transfer < (1<<24)
}
