package testcommon

import (
	"github.com/kpfaulkner/jxl-oneshot/jxlio"
)

// FakeBitReader is a mock implementation of a bit reader for testing purposes.
// Each Read* call pops the next value from the matching slice and reports
// jxlio.ErrNotEnoughInput once the slice is exhausted.
type FakeBitReader struct {
	ReadBitsData []uint64
	ReadBoolData []bool
	ReadEnumData []int32
	ReadF16Data  []float32
	ReadU32Data  []uint32
	ReadU64Data  []uint64

	ZeroPadErr error
	bitsCount  uint64
}

func NewFakeBitReader() *FakeBitReader {
	return &FakeBitReader{}
}

func pop[T any](data *[]T) (T, error) {
	var zero T
	if len(*data) == 0 {
		return zero, jxlio.ErrNotEnoughInput
	}
	val := (*data)[0]
	*data = (*data)[1:]
	return val, nil
}

func (fbr *FakeBitReader) ReadBits(bits uint32) (uint64, error) {
	if bits == 0 {
		return 0, nil
	}
	fbr.bitsCount += uint64(bits)
	return pop(&fbr.ReadBitsData)
}

func (fbr *FakeBitReader) ReadBool() (bool, error) {
	fbr.bitsCount++
	return pop(&fbr.ReadBoolData)
}

func (fbr *FakeBitReader) ReadEnum() (int32, error) {
	return pop(&fbr.ReadEnumData)
}

func (fbr *FakeBitReader) ReadF16() (float32, error) {
	fbr.bitsCount += 16
	return pop(&fbr.ReadF16Data)
}

func (fbr *FakeBitReader) ReadU32(c0 int, u0 int, c1 int, u1 int, c2 int, u2 int, c3 int, u3 int) (uint32, error) {
	return pop(&fbr.ReadU32Data)
}

func (fbr *FakeBitReader) ReadU64() (uint64, error) {
	return pop(&fbr.ReadU64Data)
}

func (fbr *FakeBitReader) ZeroPadToByte() error {
	return fbr.ZeroPadErr
}

func (fbr *FakeBitReader) GetBitsCount() uint64 {
	return fbr.bitsCount
}
