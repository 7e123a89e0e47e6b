package util

func MakeMatrix2D[T any](a int, b int) [][]T {
	matrix := make([][]T, a)
	for i := range matrix {
		matrix[i] = make([]T, b)
	}
	return matrix
}

// Dimension is a width/height pair in pixels.
type Dimension struct {
	Width  uint32
	Height uint32
}

// Area returns width*height without overflowing.
func (d Dimension) Area() uint64 {
	return uint64(d.Width) * uint64(d.Height)
}
