package util

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

func Clamp[T Number](v T, lo T, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CeilDiv returns ceil(numerator / denominator) for non negative integers.
func CeilDiv[T constraints.Integer](numerator T, denominator T) T {
	return (numerator + denominator - 1) / denominator
}

func MatrixVectorMultiply(matrix [][]float64, columnVector []float64) ([]float64, error) {
	if len(matrix) == 0 {
		return columnVector, nil
	}
	if len(matrix[0]) > len(columnVector) || len(columnVector) == 0 {
		return nil, errors.New("invalid size")
	}

	total := make([]float64, len(matrix))
	for y := 0; y < len(matrix); y++ {
		row := matrix[y]
		for x := 0; x < len(row); x++ {
			total[y] += row[x] * columnVector[x]
		}
	}
	return total, nil
}

func MatrixMatrixMultiply(left [][]float64, right [][]float64) ([][]float64, error) {
	if left == nil {
		return right, nil
	}
	if right == nil {
		return left, nil
	}
	if len(left) == 0 || len(left[0]) != len(right) {
		return nil, errors.New("invalid size")
	}

	result := MakeMatrix2D[float64](len(left), len(right[0]))
	for y := 0; y < len(left); y++ {
		for x := 0; x < len(right[0]); x++ {
			for i := 0; i < len(right); i++ {
				result[y][x] += left[y][i] * right[i][x]
			}
		}
	}
	return result, nil
}

// MatrixMultiply multiplies left to right. nil matrices are treated as identity.
func MatrixMultiply(matrices ...[][]float64) ([][]float64, error) {
	var left [][]float64
	var err error
	for _, right := range matrices {
		if left, err = MatrixMatrixMultiply(left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// InvertMatrix3x3 returns nil for singular matrices.
func InvertMatrix3x3(matrix [][]float64) [][]float64 {
	det := matrix[0][0]*(matrix[1][1]*matrix[2][2]-matrix[1][2]*matrix[2][1]) -
		matrix[0][1]*(matrix[1][0]*matrix[2][2]-matrix[1][2]*matrix[2][0]) +
		matrix[0][2]*(matrix[1][0]*matrix[2][1]-matrix[1][1]*matrix[2][0])
	if math.Abs(det) < 1e-12 {
		return nil
	}
	invDet := 1.0 / det

	result := MakeMatrix2D[float64](3, 3)
	result[0][0] = (matrix[1][1]*matrix[2][2] - matrix[1][2]*matrix[2][1]) * invDet
	result[0][1] = (matrix[0][2]*matrix[2][1] - matrix[0][1]*matrix[2][2]) * invDet
	result[0][2] = (matrix[0][1]*matrix[1][2] - matrix[0][2]*matrix[1][1]) * invDet
	result[1][0] = (matrix[1][2]*matrix[2][0] - matrix[1][0]*matrix[2][2]) * invDet
	result[1][1] = (matrix[0][0]*matrix[2][2] - matrix[0][2]*matrix[2][0]) * invDet
	result[1][2] = (matrix[0][2]*matrix[1][0] - matrix[0][0]*matrix[1][2]) * invDet
	result[2][0] = (matrix[1][0]*matrix[2][1] - matrix[1][1]*matrix[2][0]) * invDet
	result[2][1] = (matrix[0][1]*matrix[2][0] - matrix[0][0]*matrix[2][1]) * invDet
	result[2][2] = (matrix[0][0]*matrix[1][1] - matrix[0][1]*matrix[1][0]) * invDet
	return result
}
