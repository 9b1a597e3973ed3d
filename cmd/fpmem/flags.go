package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fpmem/pkg/fixedpoint"
)

// commonOptions are shared by every command that writes mem files.
type commonOptions struct {
	bits       int
	frac       int
	format     string
	outDir     string
	ext        string
	manifest   bool
	configPath string
	logLevel   string
	logFormat  string
	debug      bool
}

func commonFlags(o *commonOptions) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "bits",
			Aliases:     []string{"w"},
			Usage:       "total bit width of each value, sign bit included",
			Value:       fixedpoint.Q15.BitWidth,
			Destination: &o.bits,
		},
		&cli.IntFlag{
			Name:        "frac",
			Aliases:     []string{"f"},
			Usage:       "fractional bits (at most bits-1)",
			Value:       fixedpoint.Q15.FractionalBits,
			Destination: &o.frac,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "line encoding (binary, hex)",
			Value:       "binary",
			Destination: &o.format,
		},
		&cli.StringFlag{
			Name:        "out-dir",
			Aliases:     []string{"o"},
			Usage:       "directory for output files (default $" + envOutDir + " or .)",
			Destination: &o.outDir,
		},
		&cli.StringFlag{
			Name:        "ext",
			Usage:       "extension of generated files",
			Value:       ".mem",
			Destination: &o.ext,
		},
		&cli.BoolFlag{
			Name:        "manifest",
			Usage:       "also write manifest.json describing the run",
			Destination: &o.manifest,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &o.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &o.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, pretty, text, json)",
			Value:       "auto",
			Destination: &o.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &o.debug,
		},
	}
}

// imageOptions control how a raster or IDX image becomes a tensor.
type imageOptions struct {
	width  int
	height int
	rng    string
	scaler string
}

func imageFlags(o *imageOptions) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "width", Usage: "resize width (0 keeps the source width)", Value: 28, Destination: &o.width},
		&cli.IntFlag{Name: "height", Usage: "resize height (0 keeps the source height)", Value: 28, Destination: &o.height},
		&cli.StringFlag{Name: "range", Usage: "pixel range after normalization (unit = [0,1], signed = [-1,1])", Value: "unit", Destination: &o.rng},
		&cli.StringFlag{Name: "scaler", Usage: "resampling kernel (catmullrom, bilinear, approxbilinear, nearest)", Value: "catmullrom", Destination: &o.scaler},
	}
}
