package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/options"
	"github.com/kpfaulkner/jxl-oneshot/testcommon"
)

func TestNewFrameHeaderWithReader(t *testing.T) {
	rgb := makeParent(4, 4, false, false)
	deep := makeParent(4, 4, false, false)
	deep.BitDepth = &bundle.BitDepthHeader{BitsPerSample: 16}
	padErr := errors.New("padding")

	for _, tc := range []struct {
		name         string
		parent       *bundle.ImageHeader
		reader       *testcommon.FakeBitReader
		opts         *options.JXLOptions
		expected     *FrameHeader
		expectErr    error
	}{
		{
			name:     "raw body matching layout",
			parent:   rgb,
			reader:   &testcommon.FakeBitReader{ReadEnumData: []int32{0}, ReadU64Data: []uint64{48}},
			expected: &FrameHeader{Encoding: ENCODING_RAW, BodySize: 48},
		},
		{
			name:     "predictive body",
			parent:   rgb,
			reader:   &testcommon.FakeBitReader{ReadEnumData: []int32{1}, ReadU64Data: []uint64{7}},
			expected: &FrameHeader{Encoding: ENCODING_PREDICTIVE, BodySize: 7},
		},
		{
			name:     "zstd body",
			parent:   deep,
			reader:   &testcommon.FakeBitReader{ReadEnumData: []int32{2}, ReadU64Data: []uint64{20}},
			expected: &FrameHeader{Encoding: ENCODING_ZSTD, BodySize: 20},
		},
		{
			name:      "raw size mismatch",
			parent:    rgb,
			reader:    &testcommon.FakeBitReader{ReadEnumData: []int32{0}, ReadU64Data: []uint64{47}},
			expectErr: jxlio.ErrInvalidStream,
		},
		{
			name:      "unknown encoding",
			parent:    rgb,
			reader:    &testcommon.FakeBitReader{ReadEnumData: []int32{3}, ReadU64Data: []uint64{1}},
			expectErr: jxlio.ErrInvalidStream,
		},
		{
			name:      "predictive needs 8 bit samples",
			parent:    deep,
			reader:    &testcommon.FakeBitReader{ReadEnumData: []int32{1}, ReadU64Data: []uint64{10}},
			expectErr: jxlio.ErrInvalidStream,
		},
		{
			name:      "empty compressed body",
			parent:    rgb,
			reader:    &testcommon.FakeBitReader{ReadEnumData: []int32{2}, ReadU64Data: []uint64{0}},
			expectErr: jxlio.ErrInvalidStream,
		},
		{
			name:      "body over limit",
			parent:    rgb,
			reader:    &testcommon.FakeBitReader{ReadEnumData: []int32{2}, ReadU64Data: []uint64{101}},
			opts:      &options.JXLOptions{MaxBodySize: 100},
			expectErr: jxlio.ErrInvalidStream,
		},
		{
			name:      "missing encoding",
			parent:    rgb,
			reader:    &testcommon.FakeBitReader{},
			expectErr: jxlio.ErrNotEnoughInput,
		},
		{
			name:      "missing body size",
			parent:    rgb,
			reader:    &testcommon.FakeBitReader{ReadEnumData: []int32{0}},
			expectErr: jxlio.ErrNotEnoughInput,
		},
		{
			name:      "padding error surfaces",
			parent:    rgb,
			reader:    &testcommon.FakeBitReader{ReadEnumData: []int32{0}, ReadU64Data: []uint64{48}, ZeroPadErr: padErr},
			expectErr: padErr,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fh, err := NewFrameHeaderWithReader(tc.reader, tc.parent, tc.opts)
			if tc.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectErr)
				assert.Nil(t, fh)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, fh)
		})
	}
}

func TestFrameHeaderWriteRoundTrip(t *testing.T) {
	parent := makeParent(3, 2, false, true)
	for _, fh := range []*FrameHeader{
		{Encoding: ENCODING_RAW, BodySize: parent.RawPixelSize()},
		{Encoding: ENCODING_PREDICTIVE, BodySize: 1},
		{Encoding: ENCODING_ZSTD, BodySize: 1 << 33},
	} {
		t.Run(EncodingName(fh.Encoding), func(t *testing.T) {
			bw := jxlio.NewBitWriter()
			require.NoError(t, fh.Write(bw))
			reader := testcommon.BitReaderFromWriter(bw)
			got, err := NewFrameHeaderWithReader(reader, parent, nil)
			require.NoError(t, err)
			assert.Equal(t, fh, got)
			assert.Zero(t, reader.Remaining())
		})
	}
}

func TestSupportsPredictive(t *testing.T) {
	twoExtras := makeParent(1, 1, false, true)
	twoExtras.ExtraChannelInfo = append(twoExtras.ExtraChannelInfo, *bundle.NewAlphaChannelInfo())
	depth := makeParent(1, 1, false, false)
	depth.ExtraChannelInfo = []bundle.ExtraChannelInfo{{EcType: bundle.DEPTH, BitDepth: *bundle.NewBitDepthHeader()}}
	floats := makeParent(1, 1, false, false)
	floats.BitDepth = &bundle.BitDepthHeader{UsesFloatSamples: true, BitsPerSample: 16, ExpBits: 5}

	assert.True(t, SupportsPredictive(makeParent(1, 1, false, false)))
	assert.True(t, SupportsPredictive(makeParent(1, 1, true, true)))
	assert.False(t, SupportsPredictive(twoExtras))
	assert.False(t, SupportsPredictive(depth))
	assert.False(t, SupportsPredictive(floats))
}
