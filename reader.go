package jxl_go

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/kpfaulkner/jxl-oneshot/core"
)

func init() {
	image.RegisterFormat("jxl", string(core.CODESTREAM_SIGNATURE[:]), Decode, DecodeConfig)
	image.RegisterFormat("jxl", string(core.CONTAINER_SIGNATURE[:]), Decode, DecodeConfig)
}

// Decode reads the whole stream and decodes it to an *image.NRGBA. Failures
// wrap jxlio.ErrNotEnoughInput or jxlio.ErrInvalidStream so callers can tell
// a truncated file from a corrupt one.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	status, decoded := core.Decode(data, core.RGBA_8888)
	if status != core.StatusOK {
		return nil, fmt.Errorf("jxl: decode: %w", status.Err())
	}
	return decoded.ToImage()
}

func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}

	info := core.Probe(data, core.RGBA_8888)
	if info.Status != core.StatusOK {
		return image.Config{}, fmt.Errorf("jxl: probe: %w", info.Status.Err())
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(info.Width),
		Height:     int(info.Height),
	}, nil
}
