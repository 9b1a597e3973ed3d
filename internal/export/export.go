// Package export drives tensors through quantization and encoding into
// mem files.
//
// Within one artifact (an image, or a layer's weights plus bias) every value
// is quantized before anything is written, so bad input never produces a
// partial artifact set. Across files, an IO failure does not stop the
// remaining files: failures are collected and returned together.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samcharles93/fpmem/internal/logger"
	"github.com/samcharles93/fpmem/internal/manifest"
	"github.com/samcharles93/fpmem/pkg/fixedpoint"
	"github.com/samcharles93/fpmem/pkg/mem"
)

var (
	ErrShape = errors.New("export: unexpected tensor shape")
	// ErrDuplicateLayer means two layers would write the same files.
	ErrDuplicateLayer = errors.New("export: duplicate layer name")
)

type Exporter struct {
	Config fixedpoint.Config
	Format fixedpoint.Format
	Layout mem.Layout
	OutDir string
	Log    logger.Logger
	// Manifest, when set, receives every published artifact.
	Manifest *manifest.Manifest
}

// New returns an exporter for the default Q1.15 binary per-row layout.
func New(outDir string, log logger.Logger) *Exporter {
	return &Exporter{
		Config: fixedpoint.Q15,
		Format: fixedpoint.Binary,
		Layout: mem.DefaultLayout,
		OutDir: outDir,
		Log:    log,
	}
}

func (e *Exporter) log() logger.Logger {
	if e.Log == nil {
		return logger.Discard()
	}
	return e.Log
}

func (e *Exporter) prepare() error {
	if err := e.Config.Validate(); err != nil {
		return err
	}
	dir := e.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &mem.IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return nil
}

func (e *Exporter) path(name string) string {
	if filepath.IsAbs(name) || e.OutDir == "" {
		return name
	}
	return filepath.Join(e.OutDir, name)
}

// job is one file waiting to be written.
type job struct {
	art    manifest.Artifact
	input  []float64
	values []int64
}

// ExportImage writes img, flattened row-major, to a single file. name gets
// the layout extension when it has none.
func (e *Exporter) ExportImage(ctx context.Context, name string, img fixedpoint.Tensor) (manifest.Artifact, error) {
	if err := e.prepare(); err != nil {
		return manifest.Artifact{}, err
	}
	if img.Len() == 0 {
		return manifest.Artifact{}, fmt.Errorf("%w: empty image", ErrShape)
	}
	q, st, err := e.Config.QuantizeTensor(img)
	if err != nil {
		return manifest.Artifact{}, fmt.Errorf("quantize image: %w", err)
	}
	j := job{
		art:    manifest.Artifact{Path: e.path(e.Layout.WithExt(name)), Kind: manifest.KindImage, Row: -1, Stats: st},
		input:  img.Data,
		values: q,
	}
	arts, err := e.run(ctx, []job{j})
	if err != nil {
		return manifest.Artifact{}, err
	}
	return arts[0], nil
}

// Layer holds one fully-connected layer: Weight is (outputs, inputs) and
// Bias has one element per output.
type Layer struct {
	Name   string
	Weight fixedpoint.Tensor
	Bias   fixedpoint.Tensor
	// WeightSource and BiasSource name where the tensors came from.
	WeightSource string
	BiasSource   string
}

func (l Layer) validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: layer has no name", ErrShape)
	}
	if l.Weight.Rank() != 2 {
		return fmt.Errorf("%w: %s weight must be 2-D, got shape %v", ErrShape, l.Name, l.Weight.Shape)
	}
	if l.Bias.Rank() != 1 {
		return fmt.Errorf("%w: %s bias must be 1-D, got shape %v", ErrShape, l.Name, l.Bias.Shape)
	}
	if l.Bias.Shape[0] != l.Weight.Shape[0] {
		return fmt.Errorf("%w: %s has %d weight rows but %d biases", ErrShape, l.Name, l.Weight.Shape[0], l.Bias.Shape[0])
	}
	return nil
}

// ExportLayer writes the weights and biases of a layer following the
// exporter's layout.
func (e *Exporter) ExportLayer(ctx context.Context, l Layer) ([]manifest.Artifact, error) {
	if err := e.prepare(); err != nil {
		return nil, err
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	jobs, err := e.layerJobs(l)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, jobs)
}

// ExportLayers exports several layers. Every layer is quantized before the
// first file is written, and layer names must be unique.
func (e *Exporter) ExportLayers(ctx context.Context, layers []Layer) ([]manifest.Artifact, error) {
	if err := e.prepare(); err != nil {
		return nil, err
	}
	var jobs []job
	seen := make(map[string]struct{}, len(layers))
	for _, l := range layers {
		if err := l.validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[l.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLayer, l.Name)
		}
		seen[l.Name] = struct{}{}
		lj, err := e.layerJobs(l)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, lj...)
	}
	return e.run(ctx, jobs)
}

func (e *Exporter) layerJobs(l Layer) ([]job, error) {
	rows := l.Weight.Shape[0]
	if !e.Layout.PerRow {
		wj, err := e.newJob(l.Name, manifest.KindWeights, l.WeightSource, -1, e.Layout.WeightFile(l.Name, 0), l.Weight.Data)
		if err != nil {
			return nil, err
		}
		bj, err := e.newJob(l.Name, manifest.KindBias, l.BiasSource, -1, e.Layout.BiasFile(l.Name, 0), l.Bias.Data)
		if err != nil {
			return nil, err
		}
		return []job{wj, bj}, nil
	}

	jobs := make([]job, 0, 2*rows)
	for i := 0; i < rows; i++ {
		j, err := e.newJob(l.Name, manifest.KindWeights, l.WeightSource, i, e.Layout.WeightFile(l.Name, i), l.Weight.Row(i))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	for i := 0; i < rows; i++ {
		j, err := e.newJob(l.Name, manifest.KindBias, l.BiasSource, i, e.Layout.BiasFile(l.Name, i), l.Bias.Data[i:i+1])
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (e *Exporter) newJob(layer string, kind manifest.Kind, source string, row int, file string, input []float64) (job, error) {
	q, st, err := e.Config.QuantizeSlice(input)
	if err != nil {
		if row >= 0 {
			return job{}, fmt.Errorf("quantize %s %s row %d: %w", layer, kind, row, err)
		}
		return job{}, fmt.Errorf("quantize %s %s: %w", layer, kind, err)
	}
	if source == "" {
		source = layer
	}
	return job{
		art: manifest.Artifact{
			Path:   e.path(file),
			Kind:   kind,
			Source: source,
			Row:    row,
			Stats:  st,
		},
		input:  input,
		values: q,
	}, nil
}

func (e *Exporter) run(ctx context.Context, jobs []job) ([]manifest.Artifact, error) {
	log := e.log()
	var (
		out  []manifest.Artifact
		errs []error
	)
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := mem.WriteFile(j.art.Path, j.values, e.Config, e.Format); err != nil {
			var ioErr *mem.IOError
			if !errors.As(err, &ioErr) {
				return out, err
			}
			log.Error("write failed", "path", j.art.Path, "err", err)
			errs = append(errs, err)
			continue
		}
		j.art.Lines = len(j.values)
		j.art.Input = manifest.Summarize(j.input)
		if j.art.Stats.Saturated() > 0 {
			log.Warn("values saturated", "path", j.art.Path,
				"high", j.art.Stats.SaturatedHigh, "low", j.art.Stats.SaturatedLow)
		}
		log.Debug("wrote artifact", "path", j.art.Path, "lines", j.art.Lines)
		e.Manifest.Add(j.art)
		out = append(out, j.art)
	}
	return out, errors.Join(errs...)
}
