package idx

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/fpmem/internal/imageinput"
)

func idxImages(n, rows, cols int) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, [4]uint32{imageMagic, uint32(n), uint32(rows), uint32(cols)})
	for i := 0; i < n*rows*cols; i++ {
		buf.WriteByte(byte(i % 256))
	}
	return buf.Bytes()
}

func TestReadImages(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "images-idx3-ubyte")
	if err := os.WriteFile(path, idxImages(3, 28, 28), 0o644); err != nil {
		t.Fatal(err)
	}
	im, err := ReadImages(path)
	if err != nil {
		t.Fatalf("ReadImages: %v", err)
	}
	if im.Len() != 3 || im.Rows != 28 || im.Cols != 28 {
		t.Fatalf("unexpected header: %d images of %dx%d", im.Len(), im.Rows, im.Cols)
	}
	tt, err := im.Tensor(1, imageinput.Unit)
	if err != nil {
		t.Fatalf("Tensor: %v", err)
	}
	if tt.Len() != 784 {
		t.Fatalf("expected 784 elements, got %d", tt.Len())
	}
	// image 1 starts at flat offset 784, 784 % 256 = 16
	if want := 16.0 / 255; tt.Data[0] != want {
		t.Fatalf("expected first pixel %v, got %v", want, tt.Data[0])
	}
	if _, err := im.Tensor(3, imageinput.Unit); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestDecodeImagesErrors(t *testing.T) {
	t.Parallel()
	bad := idxImages(1, 2, 2)
	binary.BigEndian.PutUint32(bad, 2049)
	if _, err := DecodeImages(bytes.NewReader(bad)); err == nil {
		t.Error("expected magic error")
	}
	trunc := idxImages(2, 2, 2)
	if _, err := DecodeImages(bytes.NewReader(trunc[:len(trunc)-1])); err == nil {
		t.Error("expected truncation error")
	}
	if _, err := DecodeImages(bytes.NewReader(idxImages(1, 0, 2))); err == nil {
		t.Error("expected size error")
	}
}

func TestDecodeLabels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, [2]uint32{labelMagic, 3})
	buf.Write([]byte{7, 2, 1})
	labels, err := DecodeLabels(&buf)
	if err != nil {
		t.Fatalf("DecodeLabels: %v", err)
	}
	if len(labels) != 3 || labels[0] != 7 || labels[2] != 1 {
		t.Fatalf("unexpected labels %v", labels)
	}
	if _, err := DecodeLabels(bytes.NewReader(idxImages(1, 1, 1))); err == nil {
		t.Error("expected magic error for image file")
	}
}
