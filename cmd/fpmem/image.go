package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fpmem/internal/imageinput"
	"github.com/samcharles93/fpmem/internal/logger"
)

func imageCmd() *cli.Command {
	var (
		common commonOptions
		img    imageOptions
		input  string
		out    string
	)
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "path to the image (png, jpeg, gif, bmp, tiff, webp)",
			Destination: &input,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "out",
			Usage:       "output file name, relative to --out-dir",
			Value:       "input_image.mem",
			Destination: &out,
		},
	}
	flags = append(flags, imageFlags(&img)...)
	flags = append(flags, commonFlags(&common)...)

	return &cli.Command{
		Name:  "image",
		Usage: "Convert a grayscale-normalized image into a single .mem file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, s, err := newSession(ctx, c, &common)
			if err != nil {
				return err
			}
			applyImageConfig(c, s.cfg.Image, &img)
			opts, err := img.options()
			if err != nil {
				return err
			}

			t, err := imageinput.Load(input, opts)
			if err != nil {
				return err
			}
			logger.FromContext(ctx).Debug("image loaded", "path", input, "shape", t.Shape)

			art, err := s.exporter.ExportImage(ctx, out, t)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "Image processed and saved to %s in %s format (%d lines).\n",
				art.Path, s.exporter.Format, art.Lines)
			return s.finish(c)
		},
	}
}

func (o imageOptions) options() (imageinput.Options, error) {
	if o.width < 0 || o.height < 0 {
		return imageinput.Options{}, errors.New("width and height must not be negative")
	}
	rng, err := imageinput.ParseRange(o.rng)
	if err != nil {
		return imageinput.Options{}, err
	}
	return imageinput.Options{Width: o.width, Height: o.height, Range: rng, Scaler: o.scaler}, nil
}
