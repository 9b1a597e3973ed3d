package fixedpoint

import "math"

// Stats counts what happened while quantizing a tensor.
type Stats struct {
	Count         int `json:"count"`
	SaturatedHigh int `json:"saturated_high"`
	SaturatedLow  int `json:"saturated_low"`
}

// Saturated is the number of clamped elements.
func (s Stats) Saturated() int { return s.SaturatedHigh + s.SaturatedLow }

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Count += o.Count
	s.SaturatedHigh += o.SaturatedHigh
	s.SaturatedLow += o.SaturatedLow
}

// Quantize returns round(v * 2^F) with ties to even, clamped to the
// representable range. NaN and infinities yield a *DomainError.
func (c Config) Quantize(v float64) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	q, _, err := c.quantize(v, -1)
	return q, err
}

// QuantizeTensor quantizes every element of t in order. It stops at the
// first non-finite element and returns nothing in that case.
func (c Config) QuantizeTensor(t Tensor) ([]int64, Stats, error) {
	return c.QuantizeSlice(t.Data)
}

// QuantizeSlice is QuantizeTensor over a flat slice.
func (c Config) QuantizeSlice(vs []float64) ([]int64, Stats, error) {
	if err := c.Validate(); err != nil {
		return nil, Stats{}, err
	}
	out := make([]int64, len(vs))
	var st Stats
	for i, v := range vs {
		q, sat, err := c.quantize(v, i)
		if err != nil {
			return nil, Stats{}, err
		}
		switch {
		case sat > 0:
			st.SaturatedHigh++
		case sat < 0:
			st.SaturatedLow++
		}
		out[i] = q
	}
	st.Count = len(vs)
	return out, st, nil
}

// quantize reports sat = +1/-1 when the value was clamped high/low.
func (c Config) quantize(v float64, idx int) (q int64, sat int, err error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 0, &DomainError{Index: idx, Value: v}
	}
	lo, hi := c.Range()
	r := math.RoundToEven(v * c.Scale())
	switch {
	case r > float64(hi):
		q, sat = hi, 1
	case r < float64(lo):
		q, sat = lo, -1
	default:
		q = int64(r)
	}
	if err := c.checkRange(q); err != nil {
		return 0, 0, err
	}
	return q, sat, nil
}

// Dequantize maps q back to q / 2^F.
func (c Config) Dequantize(q int64) float64 {
	return math.Ldexp(float64(q), -c.FractionalBits)
}

func (c Config) checkRange(q int64) error {
	lo, hi := c.Range()
	if q < lo || q > hi {
		return &RangeError{Value: q, BitWidth: c.BitWidth}
	}
	return nil
}
