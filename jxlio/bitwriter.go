package jxlio

import (
	"fmt"

	"github.com/x448/float16"
)

// BitWriter is the inverse of Bitreader. Used by the encoder and by tests
// that need hand built codestreams.
type BitWriter struct {
	buf       []byte
	cache     uint64
	cacheBits uint32
}

func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

func (bw *BitWriter) WriteBits(value uint64, bits uint32) {
	for bits > 0 {
		n := bits
		if n > 32 {
			n = 32
		}
		bw.cache |= (value & (1<<n - 1)) << bw.cacheBits
		bw.cacheBits += n
		value >>= n
		bits -= n
		for bw.cacheBits >= 8 {
			bw.buf = append(bw.buf, byte(bw.cache))
			bw.cache >>= 8
			bw.cacheBits -= 8
		}
	}
}

func (bw *BitWriter) WriteBool(b bool) {
	if b {
		bw.WriteBits(1, 1)
	} else {
		bw.WriteBits(0, 1)
	}
}

// WriteU32 writes value using the first distribution that can represent it.
func (bw *BitWriter) WriteU32(value uint32, c0 int, u0 int, c1 int, u1 int, c2 int, u2 int, c3 int, u3 int) error {
	c := [4]int{c0, c1, c2, c3}
	u := [4]int{u0, u1, u2, u3}
	for choice := 0; choice < 4; choice++ {
		if uint64(value) < uint64(c[choice]) {
			continue
		}
		offset := uint64(value) - uint64(c[choice])
		if offset < 1<<uint(u[choice]) {
			bw.WriteBits(uint64(choice), 2)
			bw.WriteBits(offset, uint32(u[choice]))
			return nil
		}
	}
	return fmt.Errorf("value %d not representable by U32 distribution", value)
}

func (bw *BitWriter) WriteU64(value uint64) {
	switch {
	case value == 0:
		bw.WriteBits(0, 2)
		return
	case value <= 16:
		bw.WriteBits(1, 2)
		bw.WriteBits(value-1, 4)
		return
	case value <= 272:
		bw.WriteBits(2, 2)
		bw.WriteBits(value-17, 8)
		return
	}

	bw.WriteBits(3, 2)
	bw.WriteBits(value&0xFFF, 12)
	value >>= 12
	shift := 12
	for value != 0 {
		bw.WriteBool(true)
		if shift == 60 {
			bw.WriteBits(value&0xF, 4)
			return
		}
		bw.WriteBits(value&0xFF, 8)
		value >>= 8
		shift += 8
	}
	bw.WriteBool(false)
}

func (bw *BitWriter) WriteEnum(value int32) error {
	if value < 0 || value > 63 {
		return fmt.Errorf("enum value %d out of range", value)
	}
	return bw.WriteU32(uint32(value), 0, 0, 1, 0, 2, 4, 18, 6)
}

func (bw *BitWriter) WriteF16(value float32) {
	bw.WriteBits(uint64(float16.Fromfloat32(value).Bits()), 16)
}

func (bw *BitWriter) ZeroPadToByte() {
	if bw.cacheBits > 0 {
		bw.WriteBits(0, 8-bw.cacheBits)
	}
}

func (bw *BitWriter) WriteBytes(data []byte) {
	bw.ZeroPadToByte()
	bw.buf = append(bw.buf, data...)
}

// Bytes pads to a byte boundary and returns everything written so far.
func (bw *BitWriter) Bytes() []byte {
	bw.ZeroPadToByte()
	return bw.buf
}
