package frame

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/image"
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

// Each Get hands out exclusive use of a coder, so sessions never share state.
var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

// decodeZstdBody inflates body into exactly the raw layout size, never
// buffering more than that, then decodes it as a raw body.
func decodeZstdBody(parent *bundle.ImageHeader, body []byte) ([]image.ImageBuffer, error) {
	expected := parent.RawPixelSize()

	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)

	if err := dec.Reset(bytes.NewReader(body)); err != nil {
		return nil, jxlio.Invalidf("zstd body: %v", err)
	}
	raw := make([]byte, expected)
	if _, err := io.ReadFull(dec, raw); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, jxlio.Invalidf("zstd body inflates to less than %d bytes", expected)
		}
		return nil, jxlio.Invalidf("zstd body: %v", err)
	}
	var extra [1]byte
	n, err := dec.Read(extra[:])
	if n > 0 {
		return nil, jxlio.Invalidf("zstd body inflates to more than %d bytes", expected)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, jxlio.Invalidf("zstd body: %v", err)
	}

	return decodeRawBody(parent, raw)
}

// EncodeZstdBody compresses the raw body for buffers.
func EncodeZstdBody(parent *bundle.ImageHeader, buffers []image.ImageBuffer) ([]byte, error) {
	raw, err := EncodeRawBody(parent, buffers)
	if err != nil {
		return nil, err
	}
	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(raw, nil)
	zstdEncPool.Put(enc)
	return out, nil
}

// EncodeBody dispatches on encoding.
func EncodeBody(encoding uint32, parent *bundle.ImageHeader, buffers []image.ImageBuffer) ([]byte, error) {
	switch encoding {
	case ENCODING_RAW:
		return EncodeRawBody(parent, buffers)
	case ENCODING_PREDICTIVE:
		return EncodePredictiveBody(parent, buffers)
	case ENCODING_ZSTD:
		return EncodeZstdBody(parent, buffers)
	}
	return nil, jxlio.Invalidf("unknown body encoding %d", encoding)
}
