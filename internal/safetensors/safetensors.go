// Package safetensors reads trained weights from a .safetensors file, the
// format torch and most training stacks export state dicts to.
package safetensors

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/x448/float16"

	"github.com/samcharles93/fpmem/pkg/fixedpoint"
)

// maxHeaderLen guards against reading a garbage length as a huge allocation.
const maxHeaderLen = 100 << 20

var ErrTensorNotFound = errors.New("safetensors: tensor not found")

type TensorInfo struct {
	DType string
	Shape []int
	Start int64
	End   int64
}

type File struct {
	Path      string
	DataStart int64
	Tensors   map[string]TensorInfo
	Metadata  map[string]string
}

type tensorHeader struct {
	DType       string  `json:"dtype"`
	Shape       []int   `json:"shape"`
	DataOffsets []int64 `json:"data_offsets"`
}

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()

	var lenBuf [8]byte
	if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("safetensors: read header length: %w", err)
	}
	headerLen := binary.LittleEndian.Uint64(lenBuf[:])
	if headerLen == 0 || headerLen > maxHeaderLen || int64(headerLen) > size-8 {
		return nil, fmt.Errorf("safetensors: invalid header length %d", headerLen)
	}
	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(f, headerBytes); err != nil {
		return nil, fmt.Errorf("safetensors: read header: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, fmt.Errorf("safetensors: parse header: %w", err)
	}

	var meta map[string]string
	if m, ok := raw["__metadata__"]; ok {
		if err := json.Unmarshal(m, &meta); err != nil {
			return nil, fmt.Errorf("safetensors: parse metadata: %w", err)
		}
		delete(raw, "__metadata__")
	}

	dataStart := int64(8 + headerLen)
	tensors := make(map[string]TensorInfo, len(raw))
	for name, msg := range raw {
		var th tensorHeader
		if err := json.Unmarshal(msg, &th); err != nil {
			return nil, fmt.Errorf("parse tensor %s: %w", name, err)
		}
		if len(th.DataOffsets) != 2 || th.DataOffsets[0] < 0 || th.DataOffsets[1] < th.DataOffsets[0] {
			return nil, fmt.Errorf("tensor %s: invalid data_offsets", name)
		}
		if th.DataOffsets[1] > size-dataStart {
			return nil, fmt.Errorf("tensor %s: data_offsets end %d past end of file", name, th.DataOffsets[1])
		}
		tensors[name] = TensorInfo{
			DType: th.DType,
			Shape: th.Shape,
			Start: th.DataOffsets[0],
			End:   th.DataOffsets[1],
		}
	}
	return &File{
		Path:      path,
		DataStart: dataStart,
		Tensors:   tensors,
		Metadata:  meta,
	}, nil
}

// Names returns tensor names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Tensors))
	for n := range f.Tensors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (f *File) Tensor(name string) (TensorInfo, bool) {
	t, ok := f.Tensors[name]
	return t, ok
}

func (f *File) readRaw(name string) ([]byte, TensorInfo, error) {
	t, ok := f.Tensors[name]
	if !ok {
		return nil, TensorInfo{}, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	buf := make([]byte, t.End-t.Start)

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, TensorInfo{}, err
	}
	defer func() { _ = file.Close() }()

	if _, err := file.ReadAt(buf, f.DataStart+t.Start); err != nil {
		return nil, TensorInfo{}, fmt.Errorf("read tensor %s: %w", name, err)
	}
	return buf, t, nil
}

// ReadTensor decodes a floating point tensor into float64 values.
func (f *File) ReadTensor(name string) (fixedpoint.Tensor, error) {
	raw, info, err := f.readRaw(name)
	if err != nil {
		return fixedpoint.Tensor{}, err
	}
	n, err := fixedpoint.NumElements(info.Shape)
	if err != nil {
		return fixedpoint.Tensor{}, fmt.Errorf("tensor %s: %w", name, err)
	}
	size, err := elemSize(info.DType)
	if err != nil {
		return fixedpoint.Tensor{}, fmt.Errorf("tensor %s: %w", name, err)
	}
	if len(raw) != n*size {
		return fixedpoint.Tensor{}, fmt.Errorf("tensor %s: invalid %s data size %d for shape %v", name, info.DType, len(raw), info.Shape)
	}

	out := make([]float64, n)
	for i := range out {
		b := raw[i*size:]
		switch info.DType {
		case "F64":
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case "F32":
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		case "F16":
			out[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(b)).Float32())
		case "BF16":
			out[i] = float64(math.Float32frombits(uint32(binary.LittleEndian.Uint16(b)) << 16))
		}
	}
	return fixedpoint.NewTensor(info.Shape, out)
}

func elemSize(dtype string) (int, error) {
	switch dtype {
	case "F64":
		return 8, nil
	case "F32":
		return 4, nil
	case "F16", "BF16":
		return 2, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %s", dtype)
	}
}

// Layer is a fully-connected layer found in the file.
type Layer struct {
	Name   string
	Weight string
	Bias   string
}

// Layers pairs "<name>.weight" with "<name>.bias", the state dict naming of
// torch linear layers. Layers are returned in sorted name order; a weight
// without a bias is an error.
func (f *File) Layers() ([]Layer, error) {
	var layers []Layer
	for _, n := range f.Names() {
		prefix, ok := strings.CutSuffix(n, ".weight")
		if !ok {
			continue
		}
		bias := prefix + ".bias"
		if _, ok := f.Tensors[bias]; !ok {
			return nil, fmt.Errorf("safetensors: %s has no matching %s", n, bias)
		}
		layers = append(layers, Layer{Name: prefix, Weight: n, Bias: bias})
	}
	if len(layers) == 0 {
		return nil, errors.New("safetensors: no <layer>.weight tensors found")
	}
	return layers, nil
}
