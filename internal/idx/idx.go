// Package idx reads MNIST-style IDX files.
//
// Image files (magic 2051) hold:
//
//	magic number: 4 bytes, big endian
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes, row-major, one image after another
//
// Label files (magic 2049) hold a count followed by one byte per label.
package idx

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/samcharles93/fpmem/internal/imageinput"
	"github.com/samcharles93/fpmem/pkg/fixedpoint"
)

const (
	imageMagic = 2051
	labelMagic = 2049
)

// Images is a decoded IDX3 image file.
type Images struct {
	Rows   int
	Cols   int
	Pixels [][]byte
}

// Len is the number of images.
func (im *Images) Len() int { return len(im.Pixels) }

// Tensor returns image i as a (rows, cols) tensor normalized into r.
func (im *Images) Tensor(i int, r imageinput.Range) (fixedpoint.Tensor, error) {
	if i < 0 || i >= len(im.Pixels) {
		return fixedpoint.Tensor{}, fmt.Errorf("idx: image %d out of range [0, %d)", i, len(im.Pixels))
	}
	return imageinput.FromBytes(im.Pixels[i], im.Rows, im.Cols, r)
}

func ReadImages(path string) (*Images, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	im, err := DecodeImages(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return im, nil
}

func DecodeImages(r io.Reader) (*Images, error) {
	var hdr [4]uint32
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("idx: read header: %w", err)
	}
	if hdr[0] != imageMagic {
		return nil, fmt.Errorf("idx: invalid magic number: got %d, want %d", hdr[0], imageMagic)
	}
	n, rows, cols := int(hdr[1]), int(hdr[2]), int(hdr[3])
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("idx: invalid image size %dx%d", rows, cols)
	}

	im := &Images{Rows: rows, Cols: cols, Pixels: make([][]byte, 0, min(n, 1<<16))}
	for i := 0; i < n; i++ {
		px := make([]byte, rows*cols)
		if _, err := io.ReadFull(r, px); err != nil {
			return nil, fmt.Errorf("idx: read image %d: %w", i, err)
		}
		im.Pixels = append(im.Pixels, px)
	}
	return im, nil
}

func ReadLabels(path string) ([]uint8, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	labels, err := DecodeLabels(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return labels, nil
}

func DecodeLabels(r io.Reader) ([]uint8, error) {
	var hdr [2]uint32
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("idx: read header: %w", err)
	}
	if hdr[0] != labelMagic {
		return nil, fmt.Errorf("idx: invalid magic number: got %d, want %d", hdr[0], labelMagic)
	}
	labels := make([]uint8, hdr[1])
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("idx: read labels: %w", err)
	}
	return labels, nil
}
