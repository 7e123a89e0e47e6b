package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kpfaulkner/jxl-oneshot/core"
	"github.com/kpfaulkner/jxl-oneshot/options"
)

var (
	configPath string
	cfg        = defaultConfig()
	profiler   interface{ Stop() }
)

var rootCmd = &cobra.Command{
	Use:   "jxloneshot",
	Short: "Probe, decode and encode one-shot JXL streams",
	Long: `jxloneshot reads a whole JXL codestream or container from a file and
reports its geometry, or decodes it into PNG, PFM or QOI pixels.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML config file")
	flags.String("log-level", cfg.LogLevel, "logrus level (debug, info, warn, error)")
	flags.String("profile", "", "write a cpu or mem profile to the current directory")
	flags.Int32("level", cfg.Level, "codestream level, 5 or 10")
	flags.Uint64("max-icc-size", cfg.MaxICCSize, "largest ICC profile accepted")
	flags.Uint64("max-body-size", cfg.MaxBodySize, "largest pixel body accepted")
}

// setup loads the config file, lets explicit flags override it, then
// applies logging and profiling.
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		loaded, err := loadConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.applyFlags(cmd.Flags()); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.Profile {
	case "":
	case "cpu":
		profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
	case "mem":
		profiler = profile.Start(profile.MemProfileHeap, profile.ProfilePath("."), profile.Quiet)
	default:
		return fmt.Errorf("unknown profile mode %q", cfg.Profile)
	}
	return nil
}

func sessionOptions() core.DecodeSessionOption {
	opts := &options.JXLOptions{
		Level:       cfg.Level,
		MaxICCSize:  cfg.MaxICCSize,
		MaxBodySize: cfg.MaxBodySize,
	}
	return core.WithOptions(opts.WithDebug(log.IsLevelEnabled(log.DebugLevel)))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
