package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/kpfaulkner/jxl-oneshot/core"
	"github.com/kpfaulkner/jxl-oneshot/encoder"
	"github.com/kpfaulkner/jxl-oneshot/frame"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
)

// synthetic builds a 1024x1024 opaque gradient in each body encoding.
func synthetic() map[string][]byte {
	img := image.NewNRGBA(image.Rect(0, 0, 1024, 1024))
	for y := 0; y < 1024; y++ {
		for x := 0; x < 1024; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}

	streams := map[string][]byte{}
	for _, enc := range []uint32{frame.ENCODING_RAW, frame.ENCODING_PREDICTIVE, frame.ENCODING_ZSTD} {
		var buf bytes.Buffer
		if err := encoder.Encode(&buf, img, &encoder.Options{Encoding: enc}); err != nil {
			log.Fatalf("encoding %s: %v", frame.EncodingName(enc), err)
		}
		streams["synthetic-"+frame.EncodingName(enc)] = buf.Bytes()
	}
	return streams
}

func main() {
	count := flag.Int("n", 20, "decodes per stream")
	mode := flag.String("profile", "cpu", "cpu, mem or none")
	flag.Parse()

	streams := map[string][]byte{}
	for _, path := range flag.Args() {
		f, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("Error opening file: %v\n", err)
			return
		}
		streams[path] = f
	}
	if len(streams) == 0 {
		streams = synthetic()
	}

	switch *mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileHeap, profile.ProfilePath(".")).Stop()
	}

	for name, data := range streams {
		start := time.Now()
		for i := 0; i < *count; i++ {
			if info := core.Probe(data, core.RGBA_8888); info.Status != core.StatusOK {
				fmt.Printf("%s: probe %s\n", name, info.Status)
				break
			}
		}
		probeTime := time.Since(start)

		start = time.Now()
		for i := 0; i < *count; i++ {
			if status, _ := core.Decode(data, core.RGBA_8888); status != core.StatusOK {
				fmt.Printf("%s: decode %s\n", name, status)
				break
			}
		}
		decodeTime := time.Since(start)

		fmt.Printf("%-40s probe %8d us  decode %6d ms  (avg of %d)\n", name,
			probeTime.Microseconds()/int64(*count), decodeTime.Milliseconds()/int64(*count), *count)
	}
}
