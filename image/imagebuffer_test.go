package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageBuffer(t *testing.T) {
	buf, err := NewImageBuffer(TYPE_INT, 5, 4)
	require.NoError(t, err)
	assert.Len(t, buf.IntBuffer, 5)
	assert.Len(t, buf.IntBuffer[0], 4)
	assert.Nil(t, buf.FloatBuffer)

	// rows must not bleed into each other when appended to
	buf.IntBuffer[0] = append(buf.IntBuffer[0], 99)
	assert.Equal(t, int32(0), buf.IntBuffer[1][0])

	_, err = NewImageBuffer(7, 1, 1)
	assert.Error(t, err)

	_, err = NewImageBuffer(TYPE_FLOAT, -1, 1)
	assert.Error(t, err)
}

func TestNewImageBufferFromInts(t *testing.T) {
	origBuf := [][]int32{{1, 2, 3}, {4, 5, 6}}
	buf := NewImageBufferFromInts(origBuf)
	assert.Equal(t, int32(3), buf.Width)
	assert.Equal(t, int32(2), buf.Height)
	assert.True(t, buf.IsInt())
}

func TestNewImageBufferFromFloats(t *testing.T) {
	origBuf := [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	buf := NewImageBufferFromFloats(origBuf)
	assert.True(t, buf.IsFloat())
	assert.Equal(t, int32(3), buf.Height)
}

func TestEquals(t *testing.T) {
	ints := NewImageBufferFromInts([][]int32{{1, 2}, {3, 4}})
	floats := NewImageBufferFromFloats([][]float32{{1, 2}, {3, 4}})

	for _, tc := range []struct {
		name     string
		a        *ImageBuffer
		b        *ImageBuffer
		expected bool
	}{
		{name: "same ints", a: ints, b: NewImageBufferFromInts([][]int32{{1, 2}, {3, 4}}), expected: true},
		{name: "same floats", a: floats, b: NewImageBufferFromFloats([][]float32{{1, 2}, {3, 4}}), expected: true},
		{name: "different type", a: ints, b: floats, expected: false},
		{name: "different size", a: ints, b: NewImageBufferFromInts([][]int32{{1, 2}}), expected: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.a.Equals(*tc.b))
		})
	}

	assert.True(t, ImageBufferEquals([]ImageBuffer{*ints, *floats}, []ImageBuffer{*ints, *floats}))
	assert.False(t, ImageBufferEquals([]ImageBuffer{*ints}, []ImageBuffer{*ints, *floats}))
}
