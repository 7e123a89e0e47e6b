package main

import (
	"fmt"
	"reflect"

	"github.com/kpfaulkner/jxl-oneshot/bundle"
	"github.com/kpfaulkner/jxl-oneshot/colour"
	"github.com/kpfaulkner/jxl-oneshot/core"
	"github.com/kpfaulkner/jxl-oneshot/frame"
)

// displays sizes of the structs a decode session keeps alive, to spot padding
func memStats(input any) {

	rType := reflect.TypeOf(input)
	fmt.Printf("Size of %s : %d bytes\n", rType.Name(), rType.Size())

	if rType.Kind() == reflect.Struct {
		for i := 0; i < rType.NumField(); i++ {
			field := rType.Field(i)
			fmt.Printf("  Name %s\n", field.Name)
			fmt.Printf("    Offset of    : %d bytes\n", field.Offset)
			fmt.Printf("    Size of      : %d bytes\n", field.Type.Size())
			fmt.Printf("    Alignment of : %d bytes\n", field.Type.Align())
			fmt.Println()
		}
	}
}

func main() {
	memStats(core.StreamInfo{})
	memStats(core.DecodedImage{})
	memStats(core.DecodeSession{})
	memStats(bundle.ImageHeader{})
	memStats(bundle.ExtraChannelInfo{})
	memStats(colour.ColourEncodingBundle{})
	memStats(frame.FrameHeader{})
}
