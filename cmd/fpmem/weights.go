package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fpmem/internal/export"
	"github.com/samcharles93/fpmem/internal/logger"
	"github.com/samcharles93/fpmem/internal/safetensors"
)

func weightsCmd() *cli.Command {
	var (
		common    commonOptions
		modelPath string
		flat      bool
		only      []string
	)
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "path to a .safetensors file with <layer>.weight / <layer>.bias tensors",
			Destination: &modelPath,
			Required:    true,
		},
		&cli.StringMapFlag{
			Name:  "rename",
			Usage: "artifact name for a layer, e.g. --rename fc1=hidden --rename fc2=output",
		},
		&cli.StringSliceFlag{
			Name:        "layer",
			Usage:       "export only these layers (state dict prefixes)",
			Destination: &only,
		},
		&cli.BoolFlag{
			Name:        "flat",
			Usage:       "write one weights file and one bias file per layer instead of one per row",
			Destination: &flat,
		},
	}
	flags = append(flags, commonFlags(&common)...)

	return &cli.Command{
		Name:  "weights",
		Usage: "Convert fully-connected layer weights and biases into per-row .mem files",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, s, err := newSession(ctx, c, &common)
			if err != nil {
				return err
			}
			if c.IsSet("flat") {
				s.exporter.Layout.PerRow = !flat
			}
			rename := make(map[string]string, len(s.cfg.Rename))
			maps.Copy(rename, s.cfg.Rename)
			maps.Copy(rename, c.StringMap("rename"))

			layers, err := loadLayers(modelPath, rename, only)
			if err != nil {
				return err
			}
			for _, l := range layers {
				logger.FromContext(ctx).Info("layer loaded", "layer", l.Name, "weight", l.WeightSource, "shape", l.Weight.Shape)
			}

			arts, err := s.exporter.ExportLayers(ctx, layers)
			w := c.Root().Writer
			if len(arts) > 0 {
				names := make([]string, len(layers))
				for i, l := range layers {
					names[i] = l.Name
				}
				_, _ = fmt.Fprintf(w, "Weights and biases for %s exported to %s (%d files, %s format).\n",
					strings.Join(names, ", "), s.exporter.OutDir, len(arts), s.exporter.Format)
			}
			if err != nil {
				return err
			}
			return s.finish(c)
		},
	}
}

func loadLayers(path string, rename map[string]string, only []string) ([]export.Layer, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, err
	}
	found, err := f.Layers()
	if err != nil {
		return nil, err
	}
	for _, want := range only {
		if !slices.ContainsFunc(found, func(l safetensors.Layer) bool { return l.Name == want }) {
			return nil, fmt.Errorf("layer %q not found in %s", want, path)
		}
	}

	var layers []export.Layer
	for _, sl := range found {
		if len(only) > 0 && !slices.Contains(only, sl.Name) {
			continue
		}
		w, err := f.ReadTensor(sl.Weight)
		if err != nil {
			return nil, err
		}
		b, err := f.ReadTensor(sl.Bias)
		if err != nil {
			return nil, err
		}
		layers = append(layers, export.Layer{
			Name:         layerName(sl.Name, rename),
			Weight:       w,
			Bias:         b,
			WeightSource: sl.Weight,
			BiasSource:   sl.Bias,
		})
	}
	return layers, nil
}
