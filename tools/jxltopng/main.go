package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kpfaulkner/jxl-oneshot/core"
	"github.com/kpfaulkner/jxl-oneshot/imageformats"
	log "github.com/sirupsen/logrus"
)

func main() {
	infile := flag.String("i", "", "input jxl file")
	outfile := flag.String("o", "", "output png file")
	float := flag.Bool("f16", false, "write 16 bit PNG from RGBA_F16 pixels")
	flag.Parse()

	if *infile == "" || *outfile == "" {
		fmt.Printf("both input and output files must be specified\n")
		os.Exit(1)
	}

	f, err := os.ReadFile(*infile)
	if err != nil {
		log.Errorf("Error opening file: %v\n", err)
		return
	}

	format := core.RGBA_8888
	if *float {
		format = core.RGBA_F16
	}

	start := time.Now()
	info := core.Probe(f, format)
	if info.Status != core.StatusOK {
		fmt.Printf("Error probing: %s\n", info.Status)
		os.Exit(1)
	}
	fmt.Printf("%dx%d, alpha bits %d, ICC %d bytes\n", info.Width, info.Height, info.AlphaBits, info.ICCByteSize)

	status, img := core.Decode(f, format)
	if status != core.StatusOK {
		fmt.Printf("Error decoding: %s\n", status)
		os.Exit(1)
	}
	fmt.Printf("decoding took %d ms\n", time.Since(start).Milliseconds())

	startEncoding := time.Now()
	out, err := os.Create(*outfile)
	if err != nil {
		log.Fatalf("boomage %v", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	if err := imageformats.WritePNG(img, w); err != nil {
		log.Fatalf("boomage %v", err)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("boomage %v", err)
	}

	fmt.Printf("encoding took %d ms\n", time.Since(startEncoding).Milliseconds())
}
