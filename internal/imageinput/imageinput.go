// Package imageinput turns a raster image into a normalized grayscale
// tensor ready for quantization.
package imageinput

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/samcharles93/fpmem/pkg/fixedpoint"
)

// Range is the interval pixel intensities are mapped onto.
type Range string

const (
	// Unit maps 0..255 onto [0, 1].
	Unit Range = "unit"
	// Signed maps 0..255 onto [-1, 1].
	Signed Range = "signed"
)

func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case Unit, Signed:
		return r, nil
	case "":
		return Unit, nil
	default:
		return "", fmt.Errorf("unknown range %q (want unit or signed)", s)
	}
}

// Normalize maps an 8-bit intensity into r.
func (r Range) Normalize(p uint8) float64 {
	v := float64(p) / 255
	if r == Signed {
		return v*2 - 1
	}
	return v
}

// Options controls decoding. A zero Width or Height keeps the source size.
type Options struct {
	Width  int
	Height int
	Range  Range
	Scaler string // catmullrom, bilinear, approxbilinear, nearest
}

// DefaultOptions resizes to the 28x28 MNIST input.
var DefaultOptions = Options{Width: 28, Height: 28, Range: Unit, Scaler: "catmullrom"}

func scaler(name string) (draw.Scaler, error) {
	switch strings.ToLower(name) {
	case "", "catmullrom":
		return draw.CatmullRom, nil
	case "bilinear":
		return draw.BiLinear, nil
	case "approxbilinear":
		return draw.ApproxBiLinear, nil
	case "nearest":
		return draw.NearestNeighbor, nil
	default:
		return nil, fmt.Errorf("unknown scaler %q", name)
	}
}

// Load decodes the image at path.
func Load(path string, opts Options) (fixedpoint.Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return fixedpoint.Tensor{}, err
	}
	defer func() { _ = f.Close() }()
	t, err := Decode(f, opts)
	if err != nil {
		return fixedpoint.Tensor{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Decode reads any registered image format from r, converts it to
// grayscale, resizes it and normalizes it into a (height, width) tensor.
func Decode(r io.Reader, opts Options) (fixedpoint.Tensor, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return fixedpoint.Tensor{}, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(src, opts)
}

// FromImage converts an already decoded image.
func FromImage(src image.Image, opts Options) (fixedpoint.Tensor, error) {
	rng, err := ParseRange(string(opts.Range))
	if err != nil {
		return fixedpoint.Tensor{}, err
	}
	sc, err := scaler(opts.Scaler)
	if err != nil {
		return fixedpoint.Tensor{}, err
	}

	sb := src.Bounds()
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = sb.Dx()
	}
	if h <= 0 {
		h = sb.Dy()
	}
	if w <= 0 || h <= 0 {
		return fixedpoint.Tensor{}, fmt.Errorf("empty image")
	}

	// Convert to luma first so resampling works on intensities.
	gray := image.NewGray(sb)
	draw.Draw(gray, sb, src, sb.Min, draw.Src)

	dst := gray
	if w != sb.Dx() || h != sb.Dy() {
		dst = image.NewGray(image.Rect(0, 0, w, h))
		sc.Scale(dst, dst.Bounds(), gray, sb, draw.Src, nil)
	}

	data := make([]float64, 0, w*h)
	db := dst.Bounds()
	for y := db.Min.Y; y < db.Max.Y; y++ {
		for x := db.Min.X; x < db.Max.X; x++ {
			data = append(data, rng.Normalize(dst.GrayAt(x, y).Y))
		}
	}
	return fixedpoint.NewTensor([]int{h, w}, data)
}

// FromBytes builds a tensor from 8-bit pixels stored row-major.
func FromBytes(pixels []byte, rows, cols int, r Range) (fixedpoint.Tensor, error) {
	if len(pixels) != rows*cols {
		return fixedpoint.Tensor{}, fmt.Errorf("have %d pixels for %dx%d", len(pixels), rows, cols)
	}
	data := make([]float64, len(pixels))
	for i, p := range pixels {
		data[i] = r.Normalize(p)
	}
	return fixedpoint.NewTensor([]int{rows, cols}, data)
}
