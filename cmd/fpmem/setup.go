package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fpmem/internal/export"
	"github.com/samcharles93/fpmem/internal/logger"
	"github.com/samcharles93/fpmem/internal/manifest"
	"github.com/samcharles93/fpmem/pkg/fixedpoint"
	"github.com/samcharles93/fpmem/pkg/mem"
)

// session is what every exporting command needs once flags and config are
// merged.
type session struct {
	cfg      Config
	exporter *export.Exporter
}

func newSession(ctx context.Context, c *cli.Command, o *commonOptions) (context.Context, *session, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return ctx, nil, err
	}
	applyCommonConfig(c, cfg, o)

	log, err := logger.Setup(os.Stderr, logger.Options{Level: o.logLevel, Format: o.logFormat, Debug: o.debug})
	if err != nil {
		return ctx, nil, err
	}
	ctx = logger.WithContext(ctx, log)

	fpCfg := fixedpoint.Config{BitWidth: o.bits, FractionalBits: o.frac}
	if err := fpCfg.Validate(); err != nil {
		return ctx, nil, err
	}
	format, err := fixedpoint.ParseFormat(o.format)
	if err != nil {
		return ctx, nil, err
	}
	outDir, err := resolveOutDir(o.outDir)
	if err != nil {
		return ctx, nil, fmt.Errorf("output directory: %w", err)
	}

	layout := mem.Layout{PerRow: true, Ext: o.ext}
	if cfg.PerRow != nil {
		layout.PerRow = *cfg.PerRow
	}

	e := &export.Exporter{
		Config: fpCfg,
		Format: format,
		Layout: layout,
		OutDir: outDir,
		Log:    logger.FromContext(ctx),
	}
	if o.manifest {
		e.Manifest = manifest.New(fpCfg, format)
	}
	e.Log.Debug("session ready", "format", format.String(), "q", fpCfg.String(), "out_dir", outDir)
	return ctx, &session{cfg: cfg, exporter: e}, nil
}

// finish writes the manifest when one was requested.
func (s *session) finish(c *cli.Command) error {
	m := s.exporter.Manifest
	if m == nil {
		return nil
	}
	path, err := m.Write(s.exporter.OutDir)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Manifest written to %s.\n", path)
	return nil
}
