package image

import (
	"errors"
	"fmt"
)

const (
	TYPE_INT   = 0
	TYPE_FLOAT = 1
)

// ImageBuffer is a single channel plane. Rows share one backing array.
type ImageBuffer struct {
	Width      int32
	Height     int32
	BufferType int

	// image data can be either float or int based. Only the buffer matching
	// BufferType is populated.
	FloatBuffer [][]float32
	IntBuffer   [][]int32
}

func NewImageBuffer(t int, height int32, width int32) (*ImageBuffer, error) {
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("invalid buffer size %d x %d", width, height)
	}
	ib := &ImageBuffer{Width: width, Height: height, BufferType: t}
	switch t {
	case TYPE_INT:
		ib.IntBuffer = makePlane[int32](height, width)
	case TYPE_FLOAT:
		ib.FloatBuffer = makePlane[float32](height, width)
	default:
		return nil, errors.New("invalid buffer type")
	}
	return ib, nil
}

func makePlane[T any](height int32, width int32) [][]T {
	backing := make([]T, int(height)*int(width))
	rows := make([][]T, height)
	for y := range rows {
		rows[y] = backing[y*int(width) : (y+1)*int(width) : (y+1)*int(width)]
	}
	return rows
}

func NewImageBufferFromInts(buffer [][]int32) *ImageBuffer {
	ib := &ImageBuffer{BufferType: TYPE_INT, IntBuffer: buffer}
	ib.Height = int32(len(buffer))
	if len(buffer) > 0 {
		ib.Width = int32(len(buffer[0]))
	}
	return ib
}

func NewImageBufferFromFloats(buffer [][]float32) *ImageBuffer {
	ib := &ImageBuffer{BufferType: TYPE_FLOAT, FloatBuffer: buffer}
	ib.Height = int32(len(buffer))
	if len(buffer) > 0 {
		ib.Width = int32(len(buffer[0]))
	}
	return ib
}

// Equals compares two ImageBuffers and returns true if they are equal.
func (ib *ImageBuffer) Equals(other ImageBuffer) bool {
	if ib.Width != other.Width || ib.Height != other.Height || ib.BufferType != other.BufferType {
		return false
	}
	if ib.IsInt() {
		for y := range ib.IntBuffer {
			for x := range ib.IntBuffer[y] {
				if ib.IntBuffer[y][x] != other.IntBuffer[y][x] {
					return false
				}
			}
		}
		return true
	}
	for y := range ib.FloatBuffer {
		for x := range ib.FloatBuffer[y] {
			if ib.FloatBuffer[y][x] != other.FloatBuffer[y][x] {
				return false
			}
		}
	}
	return true
}

func (ib *ImageBuffer) IsFloat() bool {
	return ib.BufferType == TYPE_FLOAT
}

func (ib *ImageBuffer) IsInt() bool {
	return ib.BufferType == TYPE_INT
}

func ImageBufferEquals(a []ImageBuffer, b []ImageBuffer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}
