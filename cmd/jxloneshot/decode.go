package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kpfaulkner/jxl-oneshot/core"
	"github.com/kpfaulkner/jxl-oneshot/imageformats"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a JXL file to PNG, PFM or QOI",
	Long: `Decode reads the whole input file, decodes it in one shot and writes the
pixels with the writer matching the output extension (.png, .pfm, .qoi).`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringP("input", "i", "", "input JXL file (required)")
	decodeCmd.Flags().StringP("output", "o", "", "output image file (required)")
	decodeCmd.Flags().String("format", "RGBA_8888", "pixel format: RGBA_8888, RGBA_F16, RGB_888, RGB_F16")
	decodeCmd.MarkFlagRequired("input")
	decodeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	format, err := core.ParsePixelFormat(cfg.Format)
	if err != nil {
		return err
	}
	if !format.IsValid() {
		return fmt.Errorf("decode needs a pixel format, got %q", cfg.Format)
	}
	return decodeFile(inputPath, outputPath, format)
}

func decodeFile(inputPath string, outputPath string, format core.PixelFormat) error {
	writer, err := imageformats.WriterFor(outputPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	start := time.Now()
	status, img := core.Decode(data, format, sessionOptions())
	if status != core.StatusOK {
		return fmt.Errorf("decoding %s: %w", inputPath, status.Err())
	}
	log.Debugf("decoded %s (%dx%d %s) in %s", inputPath, img.Width, img.Height, format, time.Since(start))

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	if err := writer(img, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return f.Close()
}
