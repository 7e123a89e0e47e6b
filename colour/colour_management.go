package colour

import (
	"errors"
	"math"

	"github.com/kpfaulkner/jxl-oneshot/util"
)

var (
	CM_WP_D65 = GetWhitePoint(WP_D65)
	CM_WP_D50 = GetWhitePoint(WP_D50)

	// ICC connection space white, as XYZ.
	D50XYZ = []float64{0.96422, 1.0, 0.82521}

	BRADFORD = [][]float64{
		{0.8951, 0.2664, -0.1614},
		{-0.7502, 1.7135, 0.0367},
		{0.0389, -0.0685, 1.0296},
	}

	BRADFORD_INVERSE = util.InvertMatrix3x3(BRADFORD)

	errInvalidXY = errors.New("invalid chromaticity")
)

func validateXY(xy CIEXY) error {
	if xy.X < 0 || xy.X > 1 || xy.Y <= 0 || xy.Y > 1 {
		return errInvalidXY
	}
	return nil
}

// GetXYZ converts a chromaticity to XYZ with Y = 1.
func GetXYZ(xy CIEXY) ([]float64, error) {
	if err := validateXY(xy); err != nil {
		return nil, err
	}
	x := float64(xy.X)
	y := float64(xy.Y)
	invY := 1.0 / y
	return []float64{x * invY, 1.0, (1.0 - x - y) * invY}, nil
}

// AdaptWhitePoint returns the Bradford matrix taking currentWP to targetWP.
// nil arguments mean D50 for the target and D65 for the current white.
func AdaptWhitePoint(targetWP *CIEXY, currentWP *CIEXY) ([][]float64, error) {
	if targetWP == nil {
		targetWP = CM_WP_D50
	}
	if currentWP == nil {
		currentWP = CM_WP_D65
	}

	wCurrent, err := GetXYZ(*currentWP)
	if err != nil {
		return nil, err
	}
	lmsCurrent, err := util.MatrixVectorMultiply(BRADFORD, wCurrent)
	if err != nil {
		return nil, err
	}

	wTarget, err := GetXYZ(*targetWP)
	if err != nil {
		return nil, err
	}
	lmsTarget, err := util.MatrixVectorMultiply(BRADFORD, wTarget)
	if err != nil {
		return nil, err
	}
	return bradfordFromLMS(lmsTarget, lmsCurrent)
}

// AdaptToXYZD50 returns the chromatic adaptation from wp to the ICC D50 white.
func AdaptToXYZD50(wp *CIEXY) ([][]float64, error) {
	w, err := GetXYZ(*wp)
	if err != nil {
		return nil, err
	}
	if math.IsInf(w[0], 0) || math.IsInf(w[2], 0) {
		return nil, errInvalidXY
	}
	lms, err := util.MatrixVectorMultiply(BRADFORD, w)
	if err != nil {
		return nil, err
	}
	lms50, err := util.MatrixVectorMultiply(BRADFORD, D50XYZ)
	if err != nil {
		return nil, err
	}
	return bradfordFromLMS(lms50, lms)
}

func bradfordFromLMS(lmsTarget []float64, lmsCurrent []float64) ([][]float64, error) {
	a := util.MakeMatrix2D[float64](3, 3)
	for i := 0; i < 3; i++ {
		if lmsCurrent[i] == 0 {
			return nil, errInvalidXY
		}
		a[i][i] = lmsTarget[i] / lmsCurrent[i]
		if math.IsInf(a[i][i], 0) || math.IsNaN(a[i][i]) {
			return nil, errInvalidXY
		}
	}
	return util.MatrixMultiply(BRADFORD_INVERSE, a, BRADFORD)
}

// PrimariesToXYZ returns the matrix taking linear RGB in the given primaries to XYZ.
func PrimariesToXYZ(primaries *CIEPrimaries, wp *CIEXY) ([][]float64, error) {
	if primaries == nil {
		return nil, errors.New("missing primaries")
	}
	if wp == nil {
		wp = CM_WP_D50
	}
	if err := validateXY(*wp); err != nil {
		return nil, err
	}

	prims := []*CIEXY{primaries.Red, primaries.Green, primaries.Blue}
	primariesMatrix := util.MakeMatrix2D[float64](3, 3)
	for i, p := range prims {
		if p == nil {
			return nil, errors.New("missing primary")
		}
		x := float64(p.X)
		y := float64(p.Y)
		primariesMatrix[0][i] = x
		primariesMatrix[1][i] = y
		primariesMatrix[2][i] = 1 - x - y
	}
	inversePrimaries := util.InvertMatrix3x3(primariesMatrix)
	if inversePrimaries == nil {
		return nil, errors.New("degenerate primaries")
	}

	x := float64(wp.X)
	y := float64(wp.Y)
	w := []float64{x / y, 1.0, (1 - x - y) / y}
	xyz, err := util.MatrixVectorMultiply(inversePrimaries, w)
	if err != nil {
		return nil, err
	}
	a := [][]float64{{xyz[0], 0, 0}, {0, xyz[1], 0}, {0, 0, xyz[2]}}
	return util.MatrixMatrixMultiply(primariesMatrix, a)
}

// PrimariesToXYZD50 is PrimariesToXYZ followed by adaptation to D50.
func PrimariesToXYZD50(primaries *CIEPrimaries, wp *CIEXY) ([][]float64, error) {
	toXYZ, err := PrimariesToXYZ(primaries, wp)
	if err != nil {
		return nil, err
	}
	d50, err := AdaptToXYZD50(wp)
	if err != nil {
		return nil, err
	}
	return util.MatrixMatrixMultiply(d50, toXYZ)
}
