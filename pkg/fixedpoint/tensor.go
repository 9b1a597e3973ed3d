package fixedpoint

import (
	"errors"
	"fmt"
)

// Tensor is a dense row-major array of real values.
type Tensor struct {
	Shape []int
	Data  []float64
}

// NewTensor checks that data holds exactly prod(shape) elements.
func NewTensor(shape []int, data []float64) (Tensor, error) {
	n, err := NumElements(shape)
	if err != nil {
		return Tensor{}, err
	}
	if n != len(data) {
		return Tensor{}, fmt.Errorf("fixedpoint: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return Tensor{Shape: append([]int(nil), shape...), Data: data}, nil
}

// Vector wraps a 1-D slice.
func Vector(data []float64) Tensor {
	return Tensor{Shape: []int{len(data)}, Data: data}
}

// Rank is the number of dimensions.
func (t Tensor) Rank() int { return len(t.Shape) }

// Len is the number of elements.
func (t Tensor) Len() int { return len(t.Data) }

// Row returns row i of a 2-D tensor without copying.
func (t Tensor) Row(i int) []float64 {
	cols := t.Shape[1]
	return t.Data[i*cols : (i+1)*cols]
}

// NumElements multiplies out shape, rejecting non-positive dims and overflow.
func NumElements(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, errors.New("fixedpoint: empty shape")
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("fixedpoint: invalid dim %d", d)
		}
		if n > (int(^uint(0)>>1))/d {
			return 0, errors.New("fixedpoint: tensor too large")
		}
		n *= d
	}
	return n, nil
}
