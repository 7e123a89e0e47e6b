package jxlio

import (
	"errors"
	"math"
)

// BitReader is the set of reads the header bundles need. Allows fakes in tests.
type BitReader interface {
	ReadBits(bits uint32) (uint64, error)
	ReadBool() (bool, error)
	ReadEnum() (int32, error)
	ReadF16() (float32, error)
	ReadU32(c0 int, u0 int, c1 int, u1 int, c2 int, u2 int, c3 int, u3 int) (uint32, error)
	ReadU64() (uint64, error)
	ZeroPadToByte() error
	GetBitsCount() uint64
}

// Bitreader reads JPEG XL style bit fields (least significant bit first) from
// an in-memory region. It never reads outside of data and reports running off
// the end as ErrNotEnoughInput.
type Bitreader struct {
	data      []byte
	pos       int
	cache     uint64
	cacheBits uint32
	bitsRead  uint64
}

func NewBitreader(data []byte) *Bitreader {
	return &Bitreader{data: data}
}

// fill loads whole bytes into the cache until at least bits are available.
func (br *Bitreader) fill(bits uint32) error {
	for br.cacheBits < bits {
		if br.pos >= len(br.data) {
			return ErrNotEnoughInput
		}
		br.cache |= uint64(br.data[br.pos]) << br.cacheBits
		br.pos++
		br.cacheBits += 8
	}
	return nil
}

func (br *Bitreader) ReadBits(bits uint32) (uint64, error) {
	if bits == 0 {
		return 0, nil
	}
	if bits > 32 {
		return 0, errors.New("must read between 0-32 bits, inclusive")
	}
	if err := br.fill(bits); err != nil {
		return 0, err
	}

	ret := br.cache & (1<<bits - 1)
	br.cache >>= bits
	br.cacheBits -= bits
	br.bitsRead += uint64(bits)
	return ret, nil
}

func (br *Bitreader) ReadBool() (bool, error) {
	v, err := br.ReadBits(1)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (br *Bitreader) ReadEnum() (int32, error) {
	constant, err := br.ReadU32(0, 0, 1, 0, 2, 4, 18, 6)
	if err != nil {
		return 0, err
	}
	if constant > 63 {
		return 0, Invalidf("enum constant > 63")
	}
	return int32(constant), nil
}

func (br *Bitreader) ReadF16() (float32, error) {
	bits16, err := br.ReadBits(16)
	if err != nil {
		return 0, err
	}

	mantissa := uint32(bits16) & 0x3FF
	biasedExp := uint32(bits16) >> 10 & 0x1F
	sign := uint32(bits16) >> 15 & 1
	if biasedExp == 31 {
		return 0, Invalidf("illegal infinite/NaN float16")
	}

	if biasedExp == 0 {
		return (1.0 - 2.0*float32(sign)) * float32(mantissa) / 16777216.0, nil
	}

	biasedExp += 127 - 15
	total := sign<<31 | biasedExp<<23 | mantissa<<13
	return math.Float32frombits(total), nil
}

func (br *Bitreader) ReadU32(c0 int, u0 int, c1 int, u1 int, c2 int, u2 int, c3 int, u3 int) (uint32, error) {
	choice, err := br.ReadBits(2)
	if err != nil {
		return 0, err
	}

	c := [4]int{c0, c1, c2, c3}
	u := [4]int{u0, u1, u2, u3}
	b, err := br.ReadBits(uint32(u[choice]))
	if err != nil {
		return 0, err
	}
	return uint32(c[choice]) + uint32(b), nil
}

func (br *Bitreader) ReadU64() (uint64, error) {
	index, err := br.ReadBits(2)
	if err != nil {
		return 0, err
	}

	switch index {
	case 0:
		return 0, nil
	case 1:
		b, err := br.ReadBits(4)
		if err != nil {
			return 0, err
		}
		return 1 + b, nil
	case 2:
		b, err := br.ReadBits(8)
		if err != nil {
			return 0, err
		}
		return 17 + b, nil
	}

	value, err := br.ReadBits(12)
	if err != nil {
		return 0, err
	}

	shift := 12
	for {
		more, err := br.ReadBool()
		if err != nil {
			return 0, err
		}
		if !more {
			break
		}
		if shift == 60 {
			data, err := br.ReadBits(4)
			if err != nil {
				return 0, err
			}
			value |= data << shift
			break
		}
		data, err := br.ReadBits(8)
		if err != nil {
			return 0, err
		}
		value |= data << shift
		shift += 8
	}
	return value, nil
}

// ZeroPadToByte skips to the next byte boundary. The skipped bits must be zero.
func (br *Bitreader) ZeroPadToByte() error {
	remaining := br.cacheBits % 8
	if remaining == 0 {
		return nil
	}
	padding, err := br.ReadBits(remaining)
	if err != nil {
		return err
	}
	if padding != 0 {
		return Invalidf("nonzero zero-padding-to-byte")
	}
	return nil
}

// ReadBytes returns the next n bytes without copying. Reader must be byte aligned.
func (br *Bitreader) ReadBytes(n int) ([]byte, error) {
	if br.cacheBits%8 != 0 {
		return nil, errors.New("you must align before readBytes")
	}
	if n < 0 {
		return nil, errors.New("negative byte count")
	}
	start := br.GetBytePos()
	if len(br.data)-start < n {
		return nil, ErrNotEnoughInput
	}

	// the cached bytes are the first ones handed back, so just rewind to them.
	br.pos = start + n
	br.cache = 0
	br.cacheBits = 0
	br.bitsRead += uint64(n) * 8
	return br.data[start : start+n], nil
}

func (br *Bitreader) SkipBytes(n int) error {
	_, err := br.ReadBytes(n)
	return err
}

// GetBytePos is the index of the first byte not yet fully consumed.
func (br *Bitreader) GetBytePos() int {
	return br.pos - int((br.cacheBits+7)/8)
}

func (br *Bitreader) Remaining() int {
	return len(br.data) - br.GetBytePos()
}

func (br *Bitreader) GetBitsCount() uint64 {
	return br.bitsRead
}

// UnpackSigned maps u / 2 if u is even, and -(u + 1) / 2 if u is odd
func UnpackSigned(value uint32) int32 {
	if value&1 == 0 {
		return int32(value >> 1)
	}
	return -int32(value>>1) - 1
}

func PackSigned(value int32) uint32 {
	if value >= 0 {
		return uint32(value) << 1
	}
	return uint32(-(value+1))<<1 | 1
}
