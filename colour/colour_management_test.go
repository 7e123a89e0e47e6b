package colour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptWhitePoint(t *testing.T) {

	for _, tc := range []struct {
		name      string
		targetWP  *CIEXY
		currentWP *CIEXY
		expectErr bool
	}{
		{name: "defaults", targetWP: nil, currentWP: nil},
		{name: "same white", targetWP: CM_WP_D65, currentWP: CM_WP_D65},
		{name: "invalid target", targetWP: &CIEXY{X: -0.3, Y: 0.3}, currentWP: CM_WP_D65, expectErr: true},
		{name: "invalid current", targetWP: CM_WP_D50, currentWP: &CIEXY{X: 0.3, Y: 0}, expectErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := AdaptWhitePoint(tc.targetWP, tc.currentWP)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err, "got error when none was expected")

			// The current white must map onto the target white.
			current := CM_WP_D65
			if tc.currentWP != nil {
				current = tc.currentWP
			}
			target := CM_WP_D50
			if tc.targetWP != nil {
				target = tc.targetWP
			}
			in, _ := GetXYZ(*current)
			want, _ := GetXYZ(*target)
			for i := 0; i < 3; i++ {
				got := res[i][0]*in[0] + res[i][1]*in[1] + res[i][2]*in[2]
				assert.InDelta(t, want[i], got, 1e-6)
			}
		})
	}
}

func TestAdaptToXYZD50FromD50IsIdentity(t *testing.T) {
	m, err := AdaptToXYZD50(CM_WP_D50)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			expected := 0.0
			if i == j {
				expected = 1
			}
			assert.InDelta(t, expected, m[i][j], 1e-3)
		}
	}
}

func TestPrimariesToXYZSRGBLuminance(t *testing.T) {
	m, err := PrimariesToXYZ(GetPrimaries(PRI_SRGB), CM_WP_D65)
	require.NoError(t, err)

	assert.InDelta(t, 0.2126, m[1][0], 1e-3)
	assert.InDelta(t, 0.7152, m[1][1], 1e-3)
	assert.InDelta(t, 0.0722, m[1][2], 1e-3)
	assert.InDelta(t, 1.0, m[1][0]+m[1][1]+m[1][2], 1e-9)
}

func TestPrimariesToXYZD50WhiteMapsToD50(t *testing.T) {
	m, err := PrimariesToXYZD50(GetPrimaries(PRI_SRGB), CM_WP_D65)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, D50XYZ[i], m[i][0]+m[i][1]+m[i][2], 1e-4)
	}
}

func TestPrimariesToXYZDegenerate(t *testing.T) {
	same := NewCIEXY(0.3, 0.3)
	_, err := PrimariesToXYZ(NewCIEPrimaries(same, same, same), CM_WP_D65)
	assert.Error(t, err)

	_, err = PrimariesToXYZ(nil, CM_WP_D65)
	assert.Error(t, err)
}
