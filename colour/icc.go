package colour

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/util"
)

const (
	iccHeaderSize = 128
	iccVersion    = 0x04400000
	iccCmm        = "jxl "
	iccCopyright  = "CC0"
	curveEntries  = 64
)

type iccTag struct {
	signature string
	offset    int
	size      int
}

// iccWriter accumulates tag data and the tag table for a single profile.
type iccWriter struct {
	tags     bytes.Buffer
	table    []iccTag
	lastOff  int
	lastSize int
}

func (w *iccWriter) uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.tags.Write(b[:])
}

func (w *iccWriter) uint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.tags.Write(b[:])
}

func (w *iccWriter) signature(s string) {
	w.tags.WriteString(s[:4])
}

func (w *iccWriter) s15Fixed16(v float64) error {
	if math.IsNaN(v) || v < -32767.995 || v > 32767.995 {
		return fmt.Errorf("ICC value %f out of range", v)
	}
	w.uint32(uint32(int32(math.Floor(v*65536 + 0.5))))
	return nil
}

// finalize pads the current tag to 4 bytes and records where it lives.
func (w *iccWriter) finalize() {
	for w.tags.Len()&3 != 0 {
		w.tags.WriteByte(0)
	}
	w.lastOff += w.lastSize
	w.lastSize = w.tags.Len() - w.lastOff
}

// addTag points signature at the most recently finalized tag data.
func (w *iccWriter) addTag(signature string) {
	w.table = append(w.table, iccTag{signature: signature, offset: w.lastOff, size: w.lastSize})
}

func (w *iccWriter) mluc(text string) {
	w.signature("mluc")
	w.uint32(0)
	w.uint32(1)
	w.uint32(12)
	w.signature("enUS")
	w.uint32(uint32(len(text) * 2))
	w.uint32(28)
	for i := 0; i < len(text); i++ {
		w.tags.WriteByte(0)
		w.tags.WriteByte(text[i])
	}
}

func (w *iccWriter) xyz(values []float64) error {
	w.signature("XYZ ")
	w.uint32(0)
	for _, v := range values {
		if err := w.s15Fixed16(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *iccWriter) sf32(matrix [][]float64) error {
	w.signature("sf32")
	w.uint32(0)
	for _, row := range matrix {
		for _, v := range row {
			if err := w.s15Fixed16(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *iccWriter) para(curveType uint16, params ...float64) error {
	w.signature("para")
	w.uint32(0)
	w.uint16(curveType)
	w.uint16(0)
	for _, v := range params {
		if err := w.s15Fixed16(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *iccWriter) curv(table []uint16) {
	w.signature("curv")
	w.uint32(0)
	w.uint32(uint32(len(table)))
	for _, v := range table {
		w.uint16(v)
	}
}

func (w *iccWriter) cicp(primaries uint8, transfer uint8) {
	w.signature("cicp")
	w.uint32(0)
	w.tags.Write([]byte{primaries, transfer, 0, 1})
}

// BuildICCProfile synthesises an ICC v4.4 display profile describing ceb.
// The result depends only on ceb, so probe and decode agree on its size.
func BuildICCProfile(ceb *ColourEncodingBundle) ([]byte, error) {
	if ceb == nil {
		return nil, errors.New("nil colour encoding")
	}
	if !ValidateColourEncoding(ceb.ColourEncoding) || !ValidateTransfer(ceb.Tf) {
		return nil, fmt.Errorf("cannot describe colour space %d with transfer %d", ceb.ColourEncoding, ceb.Tf)
	}
	white := ceb.White
	if white == nil {
		return nil, errors.New("missing white point")
	}

	w := &iccWriter{}

	w.mluc(Description(ceb))
	w.finalize()
	w.addTag("desc")

	w.mluc(iccCopyright)
	w.finalize()
	w.addTag("cprt")

	if ceb.IsGray() {
		wtpt, err := GetXYZ(*white)
		if err != nil {
			return nil, err
		}
		if err := w.xyz(wtpt); err != nil {
			return nil, err
		}
	} else {
		if err := w.xyz(D50XYZ); err != nil {
			return nil, err
		}
	}
	w.finalize()
	w.addTag("wtpt")

	if !ceb.IsGray() {
		chad, err := AdaptToXYZD50(white)
		if err != nil {
			return nil, err
		}
		if err := w.sf32(chad); err != nil {
			return nil, err
		}
		w.finalize()
		w.addTag("chad")

		if p, ok := cicpPrimaries(ceb); ok {
			w.cicp(p, uint8(ceb.Tf-(1<<24)))
			w.finalize()
			w.addTag("cicp")
		}

		m, err := PrimariesToXYZD50(ceb.Prim, white)
		if err != nil {
			return nil, err
		}
		for i, sig := range []string{"rXYZ", "gXYZ", "bXYZ"} {
			if err := w.xyz([]float64{m[0][i], m[1][i], m[2][i]}); err != nil {
				return nil, err
			}
			w.finalize()
			w.addTag(sig)
		}
	}

	if err := writeTransferCurve(w, ceb.Tf); err != nil {
		return nil, err
	}
	w.finalize()
	if ceb.IsGray() {
		w.addTag("kTRC")
	} else {
		w.addTag("rTRC")
		w.addTag("gTRC")
		w.addTag("bTRC")
	}

	tableSize := 4 + 12*len(w.table)
	total := iccHeaderSize + tableSize + w.tags.Len()

	profile := make([]byte, 0, total)
	profile = append(profile, iccHeader(ceb, uint32(total))...)
	profile = binary.BigEndian.AppendUint32(profile, uint32(len(w.table)))
	for _, t := range w.table {
		profile = append(profile, t.signature...)
		profile = binary.BigEndian.AppendUint32(profile, uint32(iccHeaderSize+tableSize+t.offset))
		profile = binary.BigEndian.AppendUint32(profile, uint32(t.size))
	}
	profile = append(profile, w.tags.Bytes()...)

	// Profile ID is the MD5 of the profile with flags, rendering intent and
	// the ID field itself zeroed.
	sum := make([]byte, len(profile))
	copy(sum, profile)
	clear(sum[44:48])
	clear(sum[64:68])
	id := md5.Sum(sum)
	copy(profile[84:100], id[:])

	log.Debugf("synthesised %d byte ICC profile %q", len(profile), Description(ceb))
	return profile, nil
}

func iccHeader(ceb *ColourEncodingBundle, size uint32) []byte {
	h := make([]byte, iccHeaderSize)
	binary.BigEndian.PutUint32(h[0:], size)
	copy(h[4:], iccCmm)
	binary.BigEndian.PutUint32(h[8:], iccVersion)
	copy(h[12:], "mntr")
	if ceb.IsGray() {
		copy(h[16:], "GRAY")
	} else {
		copy(h[16:], "RGB ")
	}
	copy(h[20:], "XYZ ")
	binary.BigEndian.PutUint16(h[24:], 2019)
	binary.BigEndian.PutUint16(h[26:], 12)
	binary.BigEndian.PutUint16(h[28:], 1)
	copy(h[36:], "acsp")
	copy(h[40:], "APPL")
	binary.BigEndian.PutUint32(h[64:], uint32(ceb.RenderingIntent))
	binary.BigEndian.PutUint32(h[68:], 0x0000f6d6)
	binary.BigEndian.PutUint32(h[72:], 0x00010000)
	binary.BigEndian.PutUint32(h[76:], 0x0000d32d)
	copy(h[80:], iccCmm)
	return h
}

func cicpPrimaries(ceb *ColourEncodingBundle) (uint8, bool) {
	if IsGamma(ceb.Tf) || ceb.Tf == TF_UNKNOWN {
		return 0, false
	}
	switch {
	case ceb.Primaries == PRI_P3 && ceb.WhitePoint == WP_D65:
		return 12, true
	case ceb.Primaries == PRI_P3 && ceb.WhitePoint == WP_DCI:
		return 11, true
	case ceb.Primaries != PRI_P3 && ceb.Primaries != PRI_CUSTOM && ceb.WhitePoint == WP_D65:
		return uint8(ceb.Primaries), true
	}
	return 0, false
}

func writeTransferCurve(w *iccWriter, tf int32) error {
	if IsGamma(tf) {
		return w.para(0, float64(GammaScale)/float64(tf))
	}
	switch tf {
	case TF_SRGB:
		return w.para(3, 2.4, 1.0/1.055, 0.055/1.055, 1.0/12.92, 0.04045)
	case TF_BT709:
		return w.para(3, 1.0/0.45, 1.0/1.099, 0.099/1.099, 1.0/4.5, 0.081)
	case TF_LINEAR:
		return w.para(3, 1.0, 1.0, 0.0, 1.0, 0.0)
	case TF_DCI:
		return w.para(3, 2.6, 1.0, 0.0, 1.0, 0.0)
	case TF_PQ:
		w.curv(curveTable(pqDisplayFromEncoded))
		return nil
	case TF_HLG:
		w.curv(curveTable(hlgDisplayFromEncoded))
		return nil
	}
	return fmt.Errorf("unknown transfer function %d", tf)
}

func curveTable(eotf func(float64) float64) []uint16 {
	table := make([]uint16, curveEntries)
	for i := range table {
		y := eotf(float64(i) / float64(curveEntries-1))
		table[i] = uint16(math.Round(util.Clamp(y, 0, 1) * 65535))
	}
	return table
}

func pqDisplayFromEncoded(e float64) float64 {
	const (
		m1 = 2610.0 / 16384
		m2 = 2523.0 / 4096 * 128
		c1 = 3424.0 / 4096
		c2 = 2413.0 / 4096 * 32
		c3 = 2392.0 / 4096 * 32
	)
	if e <= 0 {
		return 0
	}
	xp := math.Pow(e, 1/m2)
	num := math.Max(xp-c1, 0)
	den := c2 - c3*xp
	return math.Pow(num/den, 1/m1)
}

func hlgDisplayFromEncoded(e float64) float64 {
	const (
		a = 0.17883277
		b = 1 - 4*a
	)
	c := 0.5 - a*math.Log(4*a)
	if e <= 0.5 {
		return e * e / 3
	}
	return (math.Exp((e-c)/a) + b) / 12
}

// Description is the short human readable profile name, e.g. RGB_D65_SRG_Rel_SRG.
func Description(ceb *ColourEncodingBundle) string {
	parts := []string{}
	if ceb.IsGray() {
		parts = append(parts, "Gra")
	} else {
		parts = append(parts, "RGB")
	}

	if ceb.WhitePoint == WP_CUSTOM && ceb.White != nil {
		parts = append(parts, formatXY(ceb.White))
	} else {
		parts = append(parts, whitePointName(ceb.WhitePoint))
	}

	if !ceb.IsGray() {
		if ceb.Primaries == PRI_CUSTOM && ceb.Prim != nil {
			parts = append(parts, formatXY(ceb.Prim.Red)+";"+formatXY(ceb.Prim.Green)+";"+formatXY(ceb.Prim.Blue))
		} else {
			parts = append(parts, primariesName(ceb.Primaries))
		}
	}

	parts = append(parts, renderingIntentName(ceb.RenderingIntent))

	if IsGamma(ceb.Tf) {
		parts = append(parts, "g"+strconv.FormatFloat(float64(ceb.Tf)/GammaScale, 'f', -1, 64))
	} else {
		parts = append(parts, transferName(ceb.Tf))
	}
	return strings.Join(parts, "_")
}

func formatXY(xy *CIEXY) string {
	return strconv.FormatFloat(float64(xy.X), 'f', -1, 32) + ";" + strconv.FormatFloat(float64(xy.Y), 'f', -1, 32)
}

func whitePointName(wp int32) string {
	switch wp {
	case WP_D65:
		return "D65"
	case WP_CUSTOM:
		return "Cst"
	case WP_E:
		return "EER"
	case WP_DCI:
		return "DCI"
	}
	return "WP?"
}

func primariesName(p int32) string {
	switch p {
	case PRI_SRGB:
		return "SRG"
	case PRI_BT2100:
		return "202"
	case PRI_P3:
		return "DCI"
	case PRI_CUSTOM:
		return "Cst"
	}
	return "PR?"
}

func renderingIntentName(ri int32) string {
	switch ri {
	case RI_PERCEPTUAL:
		return "Per"
	case RI_RELATIVE:
		return "Rel"
	case RI_SATURATION:
		return "Sat"
	case RI_ABSOLUTE:
		return "Abs"
	}
	return "RI?"
}

func transferName(tf int32) string {
	switch tf {
	case TF_SRGB:
		return "SRG"
	case TF_LINEAR:
		return "Lin"
	case TF_BT709:
		return "709"
	case TF_PQ:
		return "PeQ"
	case TF_HLG:
		return "HLG"
	case TF_DCI:
		return "DCI"
	}
	return "TF?"
}

// ICCHeader is the subset of an ICC profile header the tools report.
type ICCHeader struct {
	Size            uint32
	Cmm             string
	Version         uint32
	DeviceClass     string
	ColourSpace     string
	PCS             string
	RenderingIntent uint32
}

// ParseICCHeader reads the fixed 128 byte header of an ICC profile.
func ParseICCHeader(icc []byte) (*ICCHeader, error) {
	if len(icc) < iccHeaderSize {
		return nil, fmt.Errorf("ICC profile too short: %d bytes", len(icc))
	}
	if string(icc[36:40]) != "acsp" {
		return nil, errors.New("ICC profile missing acsp signature")
	}
	return &ICCHeader{
		Size:            binary.BigEndian.Uint32(icc[0:]),
		Cmm:             string(icc[4:8]),
		Version:         binary.BigEndian.Uint32(icc[8:]),
		DeviceClass:     string(icc[12:16]),
		ColourSpace:     string(icc[16:20]),
		PCS:             string(icc[20:24]),
		RenderingIntent: binary.BigEndian.Uint32(icc[64:]),
	}, nil
}
