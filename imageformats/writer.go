package imageformats

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kpfaulkner/jxl-oneshot/core"
)

type WriterFunc func(img *core.DecodedImage, output io.Writer) error

var writers = map[string]WriterFunc{
	"png": WritePNG,
	"pfm": WritePFM,
	"qoi": WriteQOI,
}

// WriterFor picks a writer from a file name's extension.
func WriterFor(filename string) (WriterFunc, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	w, ok := writers[ext]
	if !ok {
		return nil, fmt.Errorf("no writer for %q files", ext)
	}
	return w, nil
}
