package mem

import (
	"fmt"
	"path/filepath"
	"strings"
)

const DefaultExt = ".mem"

// Layout decides how layer parameters are split across files.
//
// With PerRow set (the layout FPGA flows built around one memory block per
// neuron expect) every weight row and every bias element gets its own file:
// {layer}_weights_{i}.mem and {layer}_bias_{i}.mem. Otherwise a layer
// produces {layer}_weights.mem (row-major) and {layer}_bias.mem.
type Layout struct {
	PerRow bool   `yaml:"per_row"`
	Ext    string `yaml:"ext"`
}

// DefaultLayout is the per-row layout with the .mem extension.
var DefaultLayout = Layout{PerRow: true, Ext: DefaultExt}

func (l Layout) ext() string {
	if l.Ext == "" {
		return DefaultExt
	}
	if !strings.HasPrefix(l.Ext, ".") {
		return "." + l.Ext
	}
	return l.Ext
}

// WeightFile names the file holding weight row i (ignored unless PerRow).
func (l Layout) WeightFile(layer string, i int) string {
	if l.PerRow {
		return fmt.Sprintf("%s_weights_%d%s", layer, i, l.ext())
	}
	return layer + "_weights" + l.ext()
}

// BiasFile names the file holding bias element i (ignored unless PerRow).
func (l Layout) BiasFile(layer string, i int) string {
	if l.PerRow {
		return fmt.Sprintf("%s_bias_%d%s", layer, i, l.ext())
	}
	return layer + "_bias" + l.ext()
}

// WithExt appends the layout extension to name unless it already has one.
func (l Layout) WithExt(name string) string {
	if filepath.Ext(name) != "" {
		return name
	}
	return name + l.ext()
}
