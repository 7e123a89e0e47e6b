package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/kpfaulkner/jxl-oneshot/options"
)

// Config holds the settings a YAML file can provide. Flags given on the
// command line win over the file.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	Profile     string `mapstructure:"profile"`
	Level       int32  `mapstructure:"level"`
	MaxICCSize  uint64 `mapstructure:"max_icc_size"`
	MaxBodySize uint64 `mapstructure:"max_body_size"`
	Format      string `mapstructure:"format"`
	Workers     int    `mapstructure:"workers"`
	Where       string `mapstructure:"where"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:    "warn",
		Level:       options.DefaultLevel,
		MaxICCSize:  options.DefaultMaxICCSize,
		MaxBodySize: options.DefaultMaxBodySize,
		Format:      "RGBA_8888",
		Workers:     4,
	}
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return parseConfig(data)
}

// parseConfig decodes YAML over the defaults. Unknown keys are an error so
// typos do not pass silently.
func parseConfig(data []byte) (Config, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	c := defaultConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Level != 5 && c.Level != 10 {
		return fmt.Errorf("config: level must be 5 or 10, got %d", c.Level)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	return nil
}

// applyFlags copies every flag the user set explicitly into c.
func (c *Config) applyFlags(flags *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func()) {
		if err != nil {
			return
		}
		if f := flags.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}

	set("log-level", func() { c.LogLevel, err = flags.GetString("log-level") })
	set("profile", func() { c.Profile, err = flags.GetString("profile") })
	set("level", func() { c.Level, err = flags.GetInt32("level") })
	set("max-icc-size", func() { c.MaxICCSize, err = flags.GetUint64("max-icc-size") })
	set("max-body-size", func() { c.MaxBodySize, err = flags.GetUint64("max-body-size") })
	set("format", func() { c.Format, err = flags.GetString("format") })
	set("workers", func() { c.Workers, err = flags.GetInt("workers") })
	set("where", func() { c.Where, err = flags.GetString("where") })
	if err != nil {
		return err
	}
	return c.validate()
}
