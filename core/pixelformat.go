package core

import (
	"fmt"
	"strings"
)

// PixelFormat is the requested output layout. Ordinals are fixed.
type PixelFormat int

const (
	NoPixelFormat PixelFormat = -1

	RGBA_8888 PixelFormat = 0
	RGBA_F16  PixelFormat = 1
	RGB_888   PixelFormat = 2
	RGB_F16   PixelFormat = 3
)

var pixelFormatNames = map[PixelFormat]string{
	RGBA_8888: "RGBA_8888",
	RGBA_F16:  "RGBA_F16",
	RGB_888:   "RGB_888",
	RGB_F16:   "RGB_F16",
}

func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	if f == NoPixelFormat {
		return "NONE"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

func (f PixelFormat) IsValid() bool {
	_, ok := pixelFormatNames[f]
	return ok
}

func (f PixelFormat) HasAlpha() bool {
	return f == RGBA_8888 || f == RGBA_F16
}

func (f PixelFormat) IsFloat() bool {
	return f == RGBA_F16 || f == RGB_F16
}

func (f PixelFormat) Channels() int {
	if f.HasAlpha() {
		return 4
	}
	return 3
}

func (f PixelFormat) BytesPerSample() int {
	if f.IsFloat() {
		return 2
	}
	return 1
}

// BytesPerPixel returns 0 for NoPixelFormat and unknown values.
func (f PixelFormat) BytesPerPixel() int {
	if !f.IsValid() {
		return 0
	}
	return f.Channels() * f.BytesPerSample()
}

// ParsePixelFormat accepts the format names case insensitively, plus "none".
func ParsePixelFormat(s string) (PixelFormat, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "NONE" || name == "" {
		return NoPixelFormat, nil
	}
	for f, n := range pixelFormatNames {
		if n == name {
			return f, nil
		}
	}
	return NoPixelFormat, fmt.Errorf("unknown pixel format %q", s)
}
