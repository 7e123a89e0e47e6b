package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/knetic/govaluate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kpfaulkner/jxl-oneshot/core"
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Probe every .jxl file in a directory and decode the ones that match",
	Long: `Batch probes each .jxl file in dir. Files whose stream info satisfies the
--where expression are decoded into --out-dir. The expression can use width,
height, alphaBits, pixelsByteSize, iccByteSize and fileSize, for example:

  jxloneshot batch ./images --where "width >= 1024 && alphaBits == 0"`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("where", "", "filter expression over stream info")
	batchCmd.Flags().Int("workers", cfg.Workers, "files processed concurrently")
	batchCmd.Flags().String("format", cfg.Format, "pixel format for decoding")
	batchCmd.Flags().String("out-dir", "", "decode matching files here; probe only when empty")
	batchCmd.Flags().String("ext", "png", "output extension: png, pfm or qoi")
	rootCmd.AddCommand(batchCmd)
}

type batchResult struct {
	path    string
	size    int
	info    core.StreamInfo
	matched bool
	err     error
}

// streamFilter decides which probed files a batch run decodes.
type streamFilter struct {
	expr *govaluate.EvaluableExpression
}

func newStreamFilter(where string) (*streamFilter, error) {
	if strings.TrimSpace(where) == "" {
		return &streamFilter{}, nil
	}
	expr, err := govaluate.NewEvaluableExpression(where)
	if err != nil {
		return nil, fmt.Errorf("where expression: %w", err)
	}
	return &streamFilter{expr: expr}, nil
}

// Match reports whether info passes the filter. Streams that did not probe
// OK never match.
func (f *streamFilter) Match(info core.StreamInfo, fileSize int) (bool, error) {
	if info.Status != core.StatusOK {
		return false, nil
	}
	if f.expr == nil {
		return true, nil
	}
	result, err := f.expr.Evaluate(map[string]interface{}{
		"width":          float64(info.Width),
		"height":         float64(info.Height),
		"alphaBits":      float64(info.AlphaBits),
		"pixelsByteSize": float64(info.PixelsByteSize),
		"iccByteSize":    float64(info.ICCByteSize),
		"fileSize":       float64(fileSize),
	})
	if err != nil {
		return false, err
	}
	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("where expression gave %v, not a boolean", result)
	}
	return matched, nil
}

func listJXLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".jxl") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	ext, _ := cmd.Flags().GetString("ext")

	format, err := core.ParsePixelFormat(cfg.Format)
	if err != nil {
		return err
	}
	if outDir != "" && !format.IsValid() {
		return fmt.Errorf("decoding needs a pixel format, got %q", cfg.Format)
	}
	filter, err := newStreamFilter(cfg.Where)
	if err != nil {
		return err
	}
	files, err := listJXLFiles(args[0])
	if err != nil {
		return err
	}

	results := make([]batchResult, len(files))
	var mu sync.Mutex
	failures := 0

	g := new(errgroup.Group)
	g.SetLimit(cfg.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			r := processBatchFile(path, filter, format, outDir, ext)
			results[i] = r
			if r.err != nil {
				log.Warnf("%s: %v", path, r.err)
				mu.Lock()
				failures++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		mark := " "
		if r.matched {
			mark = "*"
		}
		if r.info.Status == core.StatusOK {
			fmt.Fprintf(out, "%s %-40s %6dx%-6d alpha=%-2d pixels=%d icc=%d\n",
				mark, r.path, r.info.Width, r.info.Height, r.info.AlphaBits, r.info.PixelsByteSize, r.info.ICCByteSize)
		} else {
			fmt.Fprintf(out, "%s %-40s %s\n", mark, r.path, r.info.Status)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

func processBatchFile(path string, filter *streamFilter, format core.PixelFormat, outDir string, ext string) batchResult {
	r := batchResult{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		r.err = err
		return r
	}
	r.size = len(data)
	r.info = core.Probe(data, format, sessionOptions())
	if r.matched, r.err = filter.Match(r.info, r.size); r.err != nil || !r.matched || outDir == "" {
		return r
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "." + ext
	r.err = decodeFile(path, filepath.Join(outDir, name), format)
	return r
}
