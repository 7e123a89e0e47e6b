package colour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/testcommon"
)

func TestCIEXYMatches(t *testing.T) {
	a := NewCIEXY(0.3127, 0.329)
	assert.True(t, a.Matches(NewCIEXY(0.31271, 0.32901)))
	assert.False(t, a.Matches(NewCIEXY(0.314, 0.351)))
	assert.False(t, a.Matches(nil))

	var nilXY *CIEXY
	assert.True(t, nilXY.Matches(nil))
}

func TestGetPrimariesAndWhitePoint(t *testing.T) {
	assert.Nil(t, GetPrimaries(PRI_CUSTOM))
	assert.Nil(t, GetWhitePoint(WP_CUSTOM))
	assert.True(t, GetPrimaries(PRI_SRGB).Matches(GetPrimaries(PRI_SRGB)))
	assert.False(t, GetPrimaries(PRI_SRGB).Matches(GetPrimaries(PRI_P3)))

	e := GetWhitePoint(WP_E)
	assert.InDelta(t, 1.0/3, e.X, 1e-6)
	assert.InDelta(t, 1.0/3, e.Y, 1e-6)
}

func TestNewCustomXY(t *testing.T) {

	for _, tc := range []struct {
		name     string
		data     []uint32
		expected CIEXY
	}{
		{
			name:     "positive",
			data:     []uint32{jxlio.PackSigned(312700), jxlio.PackSigned(329000)},
			expected: CIEXY{X: 0.3127, Y: 0.329},
		},
		{
			name:     "negative y",
			data:     []uint32{jxlio.PackSigned(150000), jxlio.PackSigned(-50000)},
			expected: CIEXY{X: 0.15, Y: -0.05},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			customXY, err := NewCustomXY(&testcommon.FakeBitReader{ReadU32Data: tc.data})
			require.NoError(t, err, "got error when none was expected")
			assert.InDelta(t, tc.expected.X, customXY.X, 1e-6)
			assert.InDelta(t, tc.expected.Y, customXY.Y, 1e-6)
		})
	}
}

func TestNewCustomXYTruncated(t *testing.T) {
	_, err := NewCustomXY(&testcommon.FakeBitReader{ReadU32Data: []uint32{1}})
	assert.ErrorIs(t, err, jxlio.ErrNotEnoughInput)
}

func TestValidateTransfer(t *testing.T) {
	assert.True(t, ValidateTransfer(TF_SRGB))
	assert.True(t, ValidateTransfer(GammaScale))
	assert.False(t, ValidateTransfer(TF_UNKNOWN))
	assert.False(t, ValidateTransfer(0))
	assert.False(t, ValidateTransfer(100))
	assert.False(t, ValidateTransfer(GammaScale+1))
}
