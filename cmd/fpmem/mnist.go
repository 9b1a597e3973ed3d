package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fpmem/internal/idx"
	"github.com/samcharles93/fpmem/internal/logger"
)

func mnistCmd() *cli.Command {
	var (
		common commonOptions
		img    imageOptions
		images string
		labels string
		index  int
		out    string
	)
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "images",
			Usage:       "path to an IDX3 image file (e.g. t10k-images-idx3-ubyte)",
			Destination: &images,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "labels",
			Usage:       "optional IDX1 label file; the label is logged with the sample",
			Destination: &labels,
		},
		&cli.IntFlag{
			Name:        "index",
			Usage:       "sample to export",
			Destination: &index,
		},
		&cli.StringFlag{
			Name:        "out",
			Usage:       "output file name, relative to --out-dir (default mnist_<index>.mem)",
			Destination: &out,
		},
		&cli.StringFlag{Name: "range", Usage: "pixel range after normalization (unit, signed)", Value: "unit", Destination: &img.rng},
	}
	flags = append(flags, commonFlags(&common)...)

	return &cli.Command{
		Name:  "mnist",
		Usage: "Convert one sample of an MNIST IDX file into a .mem file",
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

			set, err := idx.ReadImages(images)
			if err != nil {
				return err
			}
			t, err := set.Tensor(index, opts.Range)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx).With("index", index)
			if labels != "" {
				ls, err := idx.ReadLabels(labels)
				if err != nil {
					return err
				}
				if index < len(ls) {
					log = log.With("label", ls[index])
				}
			}
			log.Info("sample loaded", "rows", set.Rows, "cols", set.Cols, "samples", set.Len())

			if out == "" {
				out = fmt.Sprintf("mnist_%d", index)
			}
			art, err := s.exporter.ExportImage(ctx, out, t)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "Sample %d saved to %s in %s format (%d lines).\n",
				index, art.Path, s.exporter.Format, art.Lines)
			return s.finish(c)
		},
	}
}
