package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kpfaulkner/jxl-oneshot/core"
)

var probeCmd = &cobra.Command{
	Use:   "probe [file]",
	Short: "Report dimensions, alpha depth and buffer sizes of a JXL file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProbe,
}

func init() {
	probeCmd.Flags().String("format", cfg.Format, "pixel format used for the size report, or none")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	format, err := core.ParsePixelFormat(cfg.Format)
	if err != nil {
		return err
	}

	info := core.Probe(data, format, sessionOptions())
	printStreamInfo(cmd.OutOrStdout(), path, len(data), format, info)
	if info.Status != core.StatusOK {
		return fmt.Errorf("probing %s: %w", path, info.Status.Err())
	}
	return nil
}

func printStreamInfo(w io.Writer, path string, size int, format core.PixelFormat, info core.StreamInfo) {
	fmt.Fprintf(w, "File:        %s\n", path)
	fmt.Fprintf(w, "File size:   %d bytes\n", size)
	fmt.Fprintf(w, "Status:      %s\n", info.Status)
	if info.Status != core.StatusOK {
		return
	}
	fmt.Fprintf(w, "Dimensions:  %d x %d\n", info.Width, info.Height)
	fmt.Fprintf(w, "Alpha bits:  %d\n", info.AlphaBits)
	fmt.Fprintf(w, "Format:      %s\n", format)
	fmt.Fprintf(w, "Pixel bytes: %d\n", info.PixelsByteSize)
	fmt.Fprintf(w, "ICC bytes:   %d\n", info.ICCByteSize)
}
