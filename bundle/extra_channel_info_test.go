package bundle

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/testcommon"
)

func TestExtraChannelInfo(t *testing.T) {

	for _, tc := range []struct {
		name           string
		reader         *testcommon.FakeBitReader
		expectedErr    error
		expectedResult *ExtraChannelInfo
	}{
		{
			name:        "no data",
			reader:      &testcommon.FakeBitReader{},
			expectedErr: jxlio.ErrNotEnoughInput,
		},
		{
			name:           "default alpha",
			reader:         &testcommon.FakeBitReader{ReadBoolData: []bool{true}},
			expectedResult: NewAlphaChannelInfo(),
		},
		{
			name: "16 bit associated alpha",
			reader: &testcommon.FakeBitReader{
				ReadBoolData: []bool{false, false, true},
				ReadEnumData: []int32{ALPHA},
				ReadU32Data:  []uint32{16, 0, 0},
			},
			expectedResult: &ExtraChannelInfo{
				EcType:          ALPHA,
				BitDepth:        BitDepthHeader{BitsPerSample: 16},
				AlphaAssociated: true,
				CfaIndex:        1,
			},
		},
		{
			name: "named spot colour",
			reader: &testcommon.FakeBitReader{
				ReadBoolData: []bool{false, false},
				ReadEnumData: []int32{SPOT_COLOR},
				ReadU32Data:  []uint32{8, 0, 2},
				ReadBitsData: []uint64{'i', 'k'},
				ReadF16Data:  []float32{1, 0.5, 0, 1},
			},
			expectedResult: &ExtraChannelInfo{
				EcType:   SPOT_COLOR,
				BitDepth: BitDepthHeader{BitsPerSample: 8},
				Name:     "ik",
				Red:      1,
				Green:    0.5,
				Blue:     0,
				Solidity: 1,
				CfaIndex: 1,
			},
		},
		{
			name: "cfa",
			reader: &testcommon.FakeBitReader{
				ReadBoolData: []bool{false, false},
				ReadEnumData: []int32{COLOR_FILTER_ARRAY},
				ReadU32Data:  []uint32{12, 0, 0, 3},
			},
			expectedResult: &ExtraChannelInfo{
				EcType:   COLOR_FILTER_ARRAY,
				BitDepth: BitDepthHeader{BitsPerSample: 12},
				CfaIndex: 3,
			},
		},
		{
			name: "reserved type",
			reader: &testcommon.FakeBitReader{
				ReadBoolData: []bool{false},
				ReadEnumData: []int32{7},
			},
			expectedErr: jxlio.ErrInvalidStream,
		},
		{
			name: "subsampled channel",
			reader: &testcommon.FakeBitReader{
				ReadBoolData: []bool{false, false},
				ReadEnumData: []int32{DEPTH},
				ReadU32Data:  []uint32{8, 3},
			},
			expectedErr: jxlio.ErrInvalidStream,
		},
		{
			name: "too deep",
			reader: &testcommon.FakeBitReader{
				ReadBoolData: []bool{false, false},
				ReadEnumData: []int32{ALPHA},
				ReadU32Data:  []uint32{20},
			},
			expectedErr: jxlio.ErrInvalidStream,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			eci, err := NewExtraChannelInfoWithReader(tc.reader)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err, "got error when none was expected")
			assert.Equal(t, tc.expectedResult, eci)
		})
	}
}

func TestExtraChannelInfoWriteRoundTrip(t *testing.T) {
	for _, eci := range []*ExtraChannelInfo{
		NewAlphaChannelInfo(),
		{EcType: ALPHA, BitDepth: BitDepthHeader{BitsPerSample: 16}, AlphaAssociated: true, CfaIndex: 1},
		{EcType: SPOT_COLOR, BitDepth: BitDepthHeader{BitsPerSample: 8}, Name: "varnish", Red: 0.25, Solidity: 1, CfaIndex: 1},
		{EcType: THERMAL, BitDepth: BitDepthHeader{UsesFloatSamples: true, BitsPerSample: 32, ExpBits: 8}, CfaIndex: 1},
	} {
		t.Run(ExtraChannelTypeName(eci.EcType), func(t *testing.T) {
			bw := jxlio.NewBitWriter()
			require.NoError(t, eci.Write(bw))
			got, err := NewExtraChannelInfoWithReader(testcommon.BitReaderFromWriter(bw))
			require.NoError(t, err)
			assert.Equal(t, eci, got)
		})
	}
}

func TestBitDepthHeader(t *testing.T) {

	for _, tc := range []struct {
		name          string
		reader        *testcommon.FakeBitReader
		expectErr     bool
		bytes         int
		maxValue      uint32
		expectedDepth BitDepthHeader
	}{
		{
			name:          "8 bit",
			reader:        &testcommon.FakeBitReader{ReadBoolData: []bool{false}, ReadU32Data: []uint32{8}},
			bytes:         1,
			maxValue:      255,
			expectedDepth: BitDepthHeader{BitsPerSample: 8},
		},
		{
			name:          "1 bit",
			reader:        &testcommon.FakeBitReader{ReadBoolData: []bool{false}, ReadU32Data: []uint32{1}},
			bytes:         1,
			maxValue:      1,
			expectedDepth: BitDepthHeader{BitsPerSample: 1},
		},
		{
			name:          "10 bit",
			reader:        &testcommon.FakeBitReader{ReadBoolData: []bool{false}, ReadU32Data: []uint32{10}},
			bytes:         2,
			maxValue:      1023,
			expectedDepth: BitDepthHeader{BitsPerSample: 10},
		},
		{
			name:          "binary16",
			reader:        &testcommon.FakeBitReader{ReadBoolData: []bool{true}, ReadU32Data: []uint32{16}, ReadBitsData: []uint64{4}},
			bytes:         2,
			expectedDepth: BitDepthHeader{UsesFloatSamples: true, BitsPerSample: 16, ExpBits: 5},
		},
		{
			name:          "binary32",
			reader:        &testcommon.FakeBitReader{ReadBoolData: []bool{true}, ReadU32Data: []uint32{32}, ReadBitsData: []uint64{7}},
			bytes:         4,
			expectedDepth: BitDepthHeader{UsesFloatSamples: true, BitsPerSample: 32, ExpBits: 8},
		},
		{
			name:      "bfloat16 rejected",
			reader:    &testcommon.FakeBitReader{ReadBoolData: []bool{true}, ReadU32Data: []uint32{16}, ReadBitsData: []uint64{7}},
			expectErr: true,
		},
		{
			name:      "24 bit float rejected",
			reader:    &testcommon.FakeBitReader{ReadBoolData: []bool{true}, ReadU32Data: []uint32{24}, ReadBitsData: []uint64{6}},
			expectErr: true,
		},
		{
			name:      "17 bit integer rejected",
			reader:    &testcommon.FakeBitReader{ReadBoolData: []bool{false}, ReadU32Data: []uint32{17}},
			expectErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bd, err := NewBitDepthHeaderWithReader(tc.reader)
			if tc.expectErr {
				assert.ErrorIs(t, err, jxlio.ErrInvalidStream)
				return
			}
			require.NoError(t, err, "got error when none was expected")
			assert.Equal(t, tc.expectedDepth, *bd)
			assert.Equal(t, tc.bytes, bd.BytesPerSample())
			assert.Equal(t, tc.maxValue, bd.MaxValue())
		})
	}
}

func TestExtensionsRoundTrip(t *testing.T) {
	ex := NewExtensions()
	ex.ExtensionsKey = 1<<3 | 1<<10
	ex.Payloads[3] = []byte{1, 2, 3}
	ex.Payloads[10] = []byte{0xFF}

	bw := jxlio.NewBitWriter()
	ex.Write(bw)
	got, err := NewExtensionsWithReader(testcommon.BitReaderFromWriter(bw))
	require.NoError(t, err)
	assert.Equal(t, ex, got)
}

func TestExtensionsTooLarge(t *testing.T) {
	_, err := NewExtensionsWithReader(&testcommon.FakeBitReader{ReadU64Data: []uint64{1, 1 << 40}})
	assert.ErrorIs(t, err, jxlio.ErrInvalidStream)
}

func TestExtensionsTruncatedPayload(t *testing.T) {
	for _, tc := range []struct {
		name    string
		key     uint64
		length  uint64
		payload []byte
	}{
		{name: "every extension at the limit", key: ^uint64(0), length: maxExtensionPayload},
		{name: "one extension, some bytes", key: 1, length: maxExtensionPayload, payload: make([]byte, 100)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bw := jxlio.NewBitWriter()
			bw.WriteU64(tc.key)
			for i := 0; i < 64; i++ {
				if (1<<i)&tc.key != 0 {
					bw.WriteU64(tc.length)
				}
			}
			bw.WriteBytes(tc.payload)
			reader := testcommon.BitReaderFromWriter(bw)

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := NewExtensionsWithReader(reader)
			runtime.ReadMemStats(&after)

			assert.ErrorIs(t, err, jxlio.ErrNotEnoughInput)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
		})
	}
}
