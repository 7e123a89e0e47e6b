package bundle

import (
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/jxl-oneshot/jxlio"
	"github.com/kpfaulkner/jxl-oneshot/util"
)

func readSizeHeader(reader jxlio.BitReader, maxDim uint64, maxArea uint64) (util.Dimension, error) {
	dim := util.Dimension{}
	var err error

	div8, err := reader.ReadBool()
	if err != nil {
		return util.Dimension{}, err
	}
	if dim.Height, err = readSizeComponent(reader, div8); err != nil {
		return util.Dimension{}, err
	}
	ratio, err := reader.ReadBits(3)
	if err != nil {
		return util.Dimension{}, err
	}
	if ratio != 0 {
		dim.Width = getWidthFromRatio(uint32(ratio), dim.Height)
	} else if dim.Width, err = readSizeComponent(reader, div8); err != nil {
		return util.Dimension{}, err
	}

	if uint64(dim.Width) > maxDim || uint64(dim.Height) > maxDim {
		log.Errorf("Invalid size header: %d x %d", dim.Width, dim.Height)
		return util.Dimension{}, jxlio.Invalidf("size %d x %d exceeds %d", dim.Width, dim.Height, maxDim)
	}
	if dim.Area() > maxArea {
		log.Errorf("Width times Height too large: %d %d", dim.Width, dim.Height)
		return util.Dimension{}, jxlio.Invalidf("area %d x %d exceeds %d", dim.Width, dim.Height, maxArea)
	}

	return dim, nil
}

func readSizeComponent(reader jxlio.BitReader, div8 bool) (uint32, error) {
	if div8 {
		v, err := reader.ReadBits(5)
		if err != nil {
			return 0, err
		}
		return (1 + uint32(v)) << 3, nil
	}
	return reader.ReadU32(1, 9, 1, 13, 1, 18, 1, 30)
}

// getWidthFromRatio maps the 3 bit ratio field (1..7) onto a width.
func getWidthFromRatio(ratio uint32, height uint32) uint32 {
	h := uint64(height)
	switch ratio {
	case 1:
		return height
	case 2:
		return uint32(h * 6 / 5)
	case 3:
		return uint32(h * 4 / 3)
	case 4:
		return uint32(h * 3 / 2)
	case 5:
		return uint32(h * 16 / 9)
	case 6:
		return uint32(h * 5 / 4)
	default:
		return uint32(h * 2)
	}
}

// ratioFor returns the ratio code reproducing width from height, or 0.
func ratioFor(dim util.Dimension) uint32 {
	for ratio := uint32(1); ratio <= 7; ratio++ {
		if getWidthFromRatio(ratio, dim.Height) == dim.Width {
			return ratio
		}
	}
	return 0
}

func writeSizeHeader(writer *jxlio.BitWriter, dim util.Dimension) error {
	div8 := dim.Height%8 == 0 && dim.Height <= 256 && dim.Height >= 8
	ratio := ratioFor(dim)
	if ratio == 0 {
		div8 = div8 && dim.Width%8 == 0 && dim.Width <= 256 && dim.Width >= 8
	}
	writer.WriteBool(div8)
	if err := writeSizeComponent(writer, div8, dim.Height); err != nil {
		return err
	}
	writer.WriteBits(uint64(ratio), 3)
	if ratio == 0 {
		return writeSizeComponent(writer, div8, dim.Width)
	}
	return nil
}

func writeSizeComponent(writer *jxlio.BitWriter, div8 bool, v uint32) error {
	if div8 {
		writer.WriteBits(uint64(v/8-1), 5)
		return nil
	}
	return writer.WriteU32(v, 1, 9, 1, 13, 1, 18, 1, 30)
}
