// Package manifest records what a run produced next to the mem files, so a
// hardware build can check the format it is about to load.
package manifest

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/samcharles93/fpmem/internal/version"
	"github.com/samcharles93/fpmem/pkg/fixedpoint"
	"github.com/samcharles93/fpmem/pkg/mem"
)

const FileName = "manifest.json"

// Kind tells what an artifact holds.
type Kind string

const (
	KindImage   Kind = "image"
	KindWeights Kind = "weights"
	KindBias    Kind = "bias"
)

// Summary describes the real values that went into an artifact.
type Summary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Summarize returns the zero Summary for empty input.
func Summarize(vs []float64) Summary {
	if len(vs) == 0 {
		return Summary{}
	}
	return Summary{
		Min:  floats.Min(vs),
		Max:  floats.Max(vs),
		Mean: floats.Sum(vs) / float64(len(vs)),
	}
}

// Artifact is one published file.
type Artifact struct {
	Path   string           `json:"path"`
	Kind   Kind             `json:"kind"`
	Source string           `json:"source,omitempty"`
	Row    int              `json:"row"`
	Lines  int              `json:"lines"`
	Input  Summary          `json:"input"`
	Stats  fixedpoint.Stats `json:"stats"`
}

type Manifest struct {
	RunID          string            `json:"run_id"`
	CreatedAt      time.Time         `json:"created_at"`
	Tool           version.Info      `json:"tool"`
	BitWidth       int               `json:"bit_width"`
	FractionalBits int               `json:"fractional_bits"`
	Format         fixedpoint.Format `json:"format"`
	Artifacts      []Artifact        `json:"artifacts"`

	mu sync.Mutex
}

func New(cfg fixedpoint.Config, f fixedpoint.Format) *Manifest {
	return &Manifest{
		RunID:          uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Tool:           version.Resolve(),
		BitWidth:       cfg.BitWidth,
		FractionalBits: cfg.FractionalBits,
		Format:         f,
	}
}

// Add records a. It is safe to call on a nil manifest.
func (m *Manifest) Add(a Artifact) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, a)
}

// Saturated totals the clamped elements across artifacts.
func (m *Manifest) Saturated() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.Artifacts {
		n += a.Stats.Saturated()
	}
	return n
}

// Write publishes the manifest as dir/manifest.json and returns its path.
func (m *Manifest) Write(dir string) (string, error) {
	m.mu.Lock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	return path, mem.WriteBytes(path, append(data, '\n'))
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
