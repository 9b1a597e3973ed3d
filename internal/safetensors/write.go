package safetensors

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/goccy/go-json"

	"github.com/samcharles93/fpmem/pkg/fixedpoint"
)

// WriteF32 stores tensors as F32 in name order. It exists so fixtures can be
// produced without a Python toolchain.
func WriteF32(path string, tensors map[string]fixedpoint.Tensor) error {
	f := &File{Tensors: make(map[string]TensorInfo, len(tensors))}
	for n := range tensors {
		f.Tensors[n] = TensorInfo{}
	}
	names := f.Names()

	header := make(map[string]tensorHeader, len(tensors))
	var off int64
	for _, n := range names {
		t := tensors[n]
		size := int64(len(t.Data) * 4)
		header[n] = tensorHeader{DType: "F32", Shape: t.Shape, DataOffsets: []int64{off, off + size}}
		off += size
	}
	hb, err := json.Marshal(header)
	if err != nil {
		return err
	}
	// Pad the header to 8 bytes like the reference writer does.
	for len(hb)%8 != 0 {
		hb = append(hb, ' ')
	}

	buf := make([]byte, 8, 8+len(hb)+int(off))
	binary.LittleEndian.PutUint64(buf, uint64(len(hb)))
	buf = append(buf, hb...)
	for _, n := range names {
		for _, v := range tensors[n].Data {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
		}
	}
	return os.WriteFile(path, buf, 0o644)
}
