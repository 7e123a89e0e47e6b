package main

import (
	"bufio"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xfmoulet/qoi"

	"github.com/kpfaulkner/jxl-oneshot/encoder"
	"github.com/kpfaulkner/jxl-oneshot/frame"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a PNG or QOI image as a JXL stream",
	RunE:  runEncode,
}

func init() {
	encodeCmd.Flags().StringP("input", "i", "", "input PNG or QOI file (required)")
	encodeCmd.Flags().StringP("output", "o", "", "output JXL file (required)")
	encodeCmd.Flags().String("encoding", "raw", "body encoding: raw, predictive, zstd")
	encodeCmd.Flags().String("icc", "", "ICC profile to embed")
	encodeCmd.Flags().Bool("container", false, "wrap the codestream in a container")
	encodeCmd.Flags().Int("parts", 0, "split the codestream over this many jxlp boxes")
	encodeCmd.Flags().Bool("float16", false, "store 16 bit input as binary16 samples")
	encodeCmd.MarkFlagRequired("input")
	encodeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(encodeCmd)
}

func parseEncoding(name string) (uint32, error) {
	for _, enc := range []uint32{frame.ENCODING_RAW, frame.ENCODING_PREDICTIVE, frame.ENCODING_ZSTD} {
		if strings.EqualFold(name, frame.EncodingName(enc)) {
			return enc, nil
		}
	}
	return 0, fmt.Errorf("unknown encoding %q", name)
}

func runEncode(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	inputPath, _ := flags.GetString("input")
	outputPath, _ := flags.GetString("output")
	encodingName, _ := flags.GetString("encoding")
	iccPath, _ := flags.GetString("icc")

	opts := &encoder.Options{Level: cfg.Level}
	opts.Container, _ = flags.GetBool("container")
	opts.Parts, _ = flags.GetInt("parts")
	opts.Float16, _ = flags.GetBool("float16")

	var err error
	if opts.Encoding, err = parseEncoding(encodingName); err != nil {
		return err
	}
	if iccPath != "" {
		if opts.ICC, err = os.ReadFile(iccPath); err != nil {
			return fmt.Errorf("reading %s: %w", iccPath, err)
		}
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()
	img, err := readImage(inputPath, bufio.NewReader(in))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	if err := encoder.Encode(w, img, opts); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", inputPath, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readImage(path string, r io.Reader) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".qoi") {
		return qoi.Decode(r)
	}
	img, _, err := image.Decode(r)
	return img, err
}
