package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the fpmem configuration file (~/.config/fpmem/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	BitWidth       *int   `yaml:"bit_width"`
	FractionalBits *int   `yaml:"fractional_bits"`
	Format         string `yaml:"format"`
	OutDir         string `yaml:"out_dir"`
	Ext            string `yaml:"ext"`
	PerRow         *bool  `yaml:"per_row"`
	Manifest       *bool  `yaml:"manifest"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Image ImageConfig `yaml:"image"`

	// Rename maps state dict layer names to artifact names, e.g. fc1: hidden.
	Rename map[string]string `yaml:"rename"`
}

type ImageConfig struct {
	Width  *int   `yaml:"width"`
	Height *int   `yaml:"height"`
	Range  string `yaml:"range"`
	Scaler string `yaml:"scaler"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fpmem", "config.yaml")
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields a zero Config; a missing explicit file or a
// file that does not parse is an error.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyCommonConfig copies config values into o for flags the user did not set.
func applyCommonConfig(c *cli.Command, cfg Config, o *commonOptions) {
	if cfg.BitWidth != nil && !c.IsSet("bits") {
		o.bits = *cfg.BitWidth
	}
	if cfg.FractionalBits != nil && !c.IsSet("frac") {
		o.frac = *cfg.FractionalBits
	}
	if cfg.Format != "" && !c.IsSet("format") {
		o.format = cfg.Format
	}
	if cfg.OutDir != "" && !c.IsSet("out-dir") && os.Getenv(envOutDir) == "" {
		o.outDir = cfg.OutDir
	}
	if cfg.Ext != "" && !c.IsSet("ext") {
		o.ext = cfg.Ext
	}
	if cfg.Manifest != nil && !c.IsSet("manifest") {
		o.manifest = *cfg.Manifest
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		o.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		o.logFormat = cfg.LogFormat
	}
}

func applyImageConfig(c *cli.Command, cfg ImageConfig, o *imageOptions) {
	if cfg.Width != nil && !c.IsSet("width") {
		o.width = *cfg.Width
	}
	if cfg.Height != nil && !c.IsSet("height") {
		o.height = *cfg.Height
	}
	if cfg.Range != "" && !c.IsSet("range") {
		o.rng = cfg.Range
	}
	if cfg.Scaler != "" && !c.IsSet("scaler") {
		o.scaler = cfg.Scaler
	}
}
