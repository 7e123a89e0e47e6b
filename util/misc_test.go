package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeMatrix2D(t *testing.T) {
	m := MakeMatrix2D[int32](3, 4)
	assert.Len(t, m, 3)
	for _, row := range m {
		assert.Len(t, row, 4)
	}
}

func TestDimensionArea(t *testing.T) {
	d := Dimension{Width: 1 << 20, Height: 1 << 20}
	assert.Equal(t, uint64(1<<40), d.Area())
}
