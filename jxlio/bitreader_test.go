package jxlio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadbits tests the reading multiple bits.
func TestReadbits(t *testing.T) {

	for _, tc := range []struct {
		name      string
		data      []uint8
		numBits   uint32
		expected  uint64
		expectErr bool
	}{
		{
			name:     "1 bit",
			data:     []uint8{0x01},
			numBits:  1,
			expected: 1,
		},
		{
			name:     "4 bits",
			data:     []uint8{0x0F},
			numBits:  4,
			expected: 15,
		},
		{
			name:     "7 bits",
			data:     []uint8{0xFF},
			numBits:  7,
			expected: 127,
		},
		{
			name:     "10 bits, expecting b1011111111",
			data:     []uint8{0xFF, 0x02},
			numBits:  10,
			expected: 0x02FF,
		},
		{
			name:     "32 bits",
			data:     []uint8{0xFF, 0x02, 0x03, 0xD4},
			numBits:  32,
			expected: 0xD40302FF,
		},
		{
			name:      "not enough data",
			data:      []uint8{0xFF},
			numBits:   9,
			expectErr: true,
		},
		{
			name:      "too many bits",
			data:      []uint8{0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			numBits:   33,
			expectErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {

			br := NewBitreader(tc.data)

			resp, err := br.ReadBits(tc.numBits)
			if err != nil && !tc.expectErr {
				t.Errorf("got error when none was expected : %v", err)
			}

			if err == nil && tc.expectErr {
				t.Errorf("expected error but got none")
			}

			if resp != tc.expected {
				t.Errorf("expected %v but got %v", tc.expected, resp)
			}
		})
	}
}

func TestReadBitsNotEnoughInputIsDistinct(t *testing.T) {
	br := NewBitreader([]byte{0xAB})
	_, err := br.ReadBits(12)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotEnoughInput))
	assert.False(t, errors.Is(err, ErrInvalidStream))
}

func TestReadBitsSequence(t *testing.T) {
	// 0b1_011_0101
	br := NewBitreader([]byte{0xB5, 0x01})
	v, err := br.ReadBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x5), v)
	v, err = br.ReadBits(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x3), v)
	b, err := br.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)
	assert.Equal(t, uint64(8), br.GetBitsCount())
	assert.Equal(t, 1, br.GetBytePos())
}

func TestReadEnum(t *testing.T) {
	for _, tc := range []struct {
		name        string
		value       uint32
		expectValue int32
	}{
		{name: "zero", value: 0, expectValue: 0},
		{name: "one", value: 1, expectValue: 1},
		{name: "small", value: 13, expectValue: 13},
		{name: "large", value: 63, expectValue: 63},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bw := NewBitWriter()
			require.NoError(t, bw.WriteU32(tc.value, 0, 0, 1, 0, 2, 4, 18, 6))
			v, err := NewBitreader(bw.Bytes()).ReadEnum()
			require.NoError(t, err)
			assert.Equal(t, tc.expectValue, v)
		})
	}
}

func TestReadEnumOutOfRange(t *testing.T) {
	bw := NewBitWriter()
	// selector 3, 18 + 63 = 81
	bw.WriteBits(3, 2)
	bw.WriteBits(63, 6)
	_, err := NewBitreader(bw.Bytes()).ReadEnum()
	assert.ErrorIs(t, err, ErrInvalidStream)
}

func TestReadU64(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value uint64
	}{
		{name: "zero", value: 0},
		{name: "one", value: 1},
		{name: "sixteen", value: 16},
		{name: "seventeen", value: 17},
		{name: "272", value: 272},
		{name: "273", value: 273},
		{name: "4095", value: 4095},
		{name: "4096", value: 4096},
		{name: "3MB", value: 3 * 1024 * 1024},
		{name: "max", value: ^uint64(0)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bw := NewBitWriter()
			bw.WriteU64(tc.value)
			bw.WriteBits(0x5, 3)
			br := NewBitreader(bw.Bytes())
			v, err := br.ReadU64()
			require.NoError(t, err)
			assert.Equal(t, tc.value, v)
			trailer, err := br.ReadBits(3)
			require.NoError(t, err)
			assert.Equal(t, uint64(0x5), trailer)
		})
	}
}

func TestReadU32Distribution(t *testing.T) {
	bw := NewBitWriter()
	require.NoError(t, bw.WriteU32(1024, 1, 9, 1, 13, 1, 18, 1, 30))
	br := NewBitreader(bw.Bytes())
	v, err := br.ReadU32(1, 9, 1, 13, 1, 18, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), v)
	assert.Equal(t, uint64(15), br.GetBitsCount())
}

func TestWriteU32Unrepresentable(t *testing.T) {
	bw := NewBitWriter()
	err := bw.WriteU32(0, 1, 9, 1, 13, 1, 18, 1, 30)
	assert.Error(t, err)
}

func TestReadF16(t *testing.T) {
	for _, tc := range []struct {
		name      string
		bits      uint64
		expected  float32
		expectErr bool
	}{
		{name: "one", bits: 0x3C00, expected: 1.0},
		{name: "minus two", bits: 0xC000, expected: -2.0},
		{name: "half", bits: 0x3800, expected: 0.5},
		{name: "zero", bits: 0x0000, expected: 0},
		{name: "infinity", bits: 0x7C00, expectErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bw := NewBitWriter()
			bw.WriteBits(tc.bits, 16)
			v, err := NewBitreader(bw.Bytes()).ReadF16()
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrInvalidStream)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestZeroPadToByte(t *testing.T) {
	br := NewBitreader([]byte{0x01, 0x7F})
	_, err := br.ReadBits(1)
	require.NoError(t, err)
	require.NoError(t, br.ZeroPadToByte())
	assert.Equal(t, 1, br.GetBytePos())

	br = NewBitreader([]byte{0x03})
	_, err = br.ReadBits(1)
	require.NoError(t, err)
	assert.ErrorIs(t, br.ZeroPadToByte(), ErrInvalidStream)
}

func TestReadBytes(t *testing.T) {
	data := []byte{0x0A, 0x01, 0x02, 0x03, 0x04}
	br := NewBitreader(data)
	b, err := br.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0A), b)

	out, err := br.ReadBytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, out)
	assert.Equal(t, 1, br.Remaining())

	_, err = br.ReadBytes(2)
	assert.ErrorIs(t, err, ErrNotEnoughInput)
	assert.Equal(t, 1, br.Remaining())
}

func TestReadBytesUnaligned(t *testing.T) {
	br := NewBitreader([]byte{0x01, 0x02})
	_, err := br.ReadBits(3)
	require.NoError(t, err)
	_, err = br.ReadBytes(1)
	assert.Error(t, err)
}

func TestUnpackSigned(t *testing.T) {
	for _, tc := range []struct {
		in  uint32
		out int32
	}{
		{0, 0}, {1, -1}, {2, 1}, {3, -2}, {4, 2}, {199, -100},
	} {
		assert.Equal(t, tc.out, UnpackSigned(tc.in))
		assert.Equal(t, tc.in, PackSigned(tc.out))
	}
}

func TestSkipBytes(t *testing.T) {
	for _, tc := range []struct {
		name      string
		skip      int
		remaining int
		expectErr error
	}{
		{name: "none", skip: 0, remaining: 4},
		{name: "some", skip: 3, remaining: 1},
		{name: "all", skip: 4, remaining: 0},
		{name: "past end", skip: 5, remaining: 4, expectErr: ErrNotEnoughInput},
	} {
		t.Run(tc.name, func(t *testing.T) {
			br := NewBitreader([]byte{1, 2, 3, 4})
			err := br.SkipBytes(tc.skip)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.remaining, br.Remaining())
		})
	}
}
