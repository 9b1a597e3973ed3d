package fixedpoint

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestQuantizeQ15Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1.0, 32767},
		{-1.0, -32768},
		{0.5, 16384},
		{-0.5, -16384},
		{2.5, 32767},
		{-7, -32768},
		{1e300, 32767},
		{-1e300, -32768},
		// exact ties: 0.5 and 1.5 LSB round to even
		{0.5 / 32768, 0},
		{1.5 / 32768, 2},
		{-0.5 / 32768, 0},
		{-1.5 / 32768, -2},
		{2.5 / 32768, 2},
	}
	for _, tc := range tests {
		got, err := Q15.Quantize(tc.in)
		if err != nil {
			t.Fatalf("Quantize(%v): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Quantize(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestQuantizeNonFinite(t *testing.T) {
	t.Parallel()
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Q15.Quantize(v)
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatalf("Quantize(%v): expected DomainError, got %v", v, err)
		}
		if de.Index != -1 {
			t.Fatalf("expected scalar index -1, got %d", de.Index)
		}
	}
}

func TestQuantizeSliceReportsIndex(t *testing.T) {
	t.Parallel()
	out, _, err := Q15.QuantizeSlice([]float64{0.1, 0.2, math.NaN(), 0.3})
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if de.Index != 2 {
		t.Fatalf("expected index 2, got %d", de.Index)
	}
	if out != nil {
		t.Fatalf("expected no output on error, got %v", out)
	}
	if !strings.Contains(err.Error(), "element 2") {
		t.Fatalf("error should name the element: %v", err)
	}
}

func TestQuantizeSliceStats(t *testing.T) {
	t.Parallel()
	out, st, err := Q15.QuantizeSlice([]float64{-3, -1, 0, 0.25, 1, 4})
	if err != nil {
		t.Fatalf("QuantizeSlice: %v", err)
	}
	want := []int64{-32768, -32768, 0, 8192, 32767, 32767}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("element %d: expected %d, got %d", i, want[i], out[i])
		}
	}
	// -1.0 is exactly representable; 1.0 is not.
	if st.Count != 6 || st.SaturatedHigh != 2 || st.SaturatedLow != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.Saturated() != 3 {
		t.Fatalf("expected 3 saturated, got %d", st.Saturated())
	}
}

func TestRoundTripWithinHalfLSB(t *testing.T) {
	t.Parallel()
	configs := []Config{Q15, {BitWidth: 8, FractionalBits: 4}, {BitWidth: 12, FractionalBits: 0}, {BitWidth: 32, FractionalBits: 20}}
	for _, c := range configs {
		lo, hi := c.RealRange()
		half := c.Resolution() / 2
		const steps = 2000
		for i := 0; i <= steps; i++ {
			v := lo + (hi-lo)*float64(i)/steps
			q, err := c.Quantize(v)
			if err != nil {
				t.Fatalf("%v Quantize(%v): %v", c, v, err)
			}
			if d := math.Abs(c.Dequantize(q) - v); d > half {
				t.Fatalf("%v: |dequant(quant(%v)) - v| = %v > %v", c, v, d, half)
			}
		}
	}
}

func TestSaturationOutsideRange(t *testing.T) {
	t.Parallel()
	c := Config{BitWidth: 10, FractionalBits: 6}
	lo, hi := c.Range()
	rlo, rhi := c.RealRange()
	for _, v := range []float64{rhi + c.Resolution(), rhi * 2, 1e9} {
		q, err := c.Quantize(v)
		if err != nil || q != hi {
			t.Fatalf("Quantize(%v): expected %d, got %d (%v)", v, hi, q, err)
		}
	}
	for _, v := range []float64{rlo - c.Resolution(), rlo * 2, -1e9} {
		q, err := c.Quantize(v)
		if err != nil || q != lo {
			t.Fatalf("Quantize(%v): expected %d, got %d (%v)", v, lo, q, err)
		}
	}
}

func TestEncodeQ15Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     int64
		binary string
		hex    string
	}{
		{0, "0000000000000000", "0000"},
		{-32768, "1000000000000000", "8000"},
		{32767, "0111111111111111", "7fff"},
		{-1, "1111111111111111", "ffff"},
		{1, "0000000000000001", "0001"},
		{-16384, "1100000000000000", "c000"},
	}
	for _, tc := range tests {
		b, err := Q15.Encode(tc.in, Binary)
		if err != nil {
			t.Fatalf("Encode(%d, Binary): %v", tc.in, err)
		}
		if b != tc.binary {
			t.Errorf("Encode(%d, Binary): expected %q, got %q", tc.in, tc.binary, b)
		}
		h, err := Q15.Encode(tc.in, Hex)
		if err != nil {
			t.Fatalf("Encode(%d, Hex): %v", tc.in, err)
		}
		if h != tc.hex {
			t.Errorf("Encode(%d, Hex): expected %q, got %q", tc.in, tc.hex, h)
		}
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	t.Parallel()
	for _, v := range []int64{32768, -32769, math.MaxInt64} {
		_, err := Q15.Encode(v, Binary)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Fatalf("Encode(%d): expected RangeError, got %v", v, err)
		}
	}
}

func TestBinaryAndHexAgreeForEveryValue(t *testing.T) {
	t.Parallel()
	for _, c := range []Config{Q15, {BitWidth: 10, FractionalBits: 3}, {BitWidth: 5, FractionalBits: 4}} {
		lo, hi := c.Range()
		for v := lo; v <= hi; v++ {
			b, err := c.Encode(v, Binary)
			if err != nil {
				t.Fatalf("%v Encode(%d, Binary): %v", c, v, err)
			}
			h, err := c.Encode(v, Hex)
			if err != nil {
				t.Fatalf("%v Encode(%d, Hex): %v", c, v, err)
			}
			if len(b) != c.BitWidth || len(h) != c.HexDigits() {
				t.Fatalf("%v: bad widths %q %q", c, b, h)
			}
			fromBin, err := c.Decode(b, Binary)
			if err != nil {
				t.Fatalf("Decode(%q, Binary): %v", b, err)
			}
			fromHex, err := c.Decode(h, Hex)
			if err != nil {
				t.Fatalf("Decode(%q, Hex): %v", h, err)
			}
			if fromBin != v || fromHex != v {
				t.Fatalf("%v value %d: binary %q -> %d, hex %q -> %d", c, v, b, fromBin, h, fromHex)
			}
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	t.Parallel()
	bad := []struct {
		line string
		f    Format
	}{
		{"", Binary},
		{"000000000000000", Binary},   // 15 chars
		{"00000000000000000", Binary}, // 17 chars
		{"000000000000000a", Binary},
		{"FFFF", Hex},
		{"fff", Hex},
		{"xyz0", Hex},
	}
	for _, tc := range bad {
		if _, err := Q15.Decode(tc.line, tc.f); err == nil {
			t.Errorf("Decode(%q, %v): expected error", tc.line, tc.f)
		}
	}
	// 10-bit hex uses 3 digits but only 10 bits are valid.
	c := Config{BitWidth: 10, FractionalBits: 0}
	if _, err := c.Decode("400", Hex); err == nil {
		t.Error("expected error for bits above width")
	}
	if v, err := c.Decode("3ff", Hex); err != nil || v != -1 {
		t.Errorf("Decode(3ff): expected -1, got %d (%v)", v, err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	good := []Config{Q15, {BitWidth: 2, FractionalBits: 1}, {BitWidth: 32, FractionalBits: 0}}
	for _, c := range good {
		if err := c.Validate(); err != nil {
			t.Errorf("Validate(%+v): %v", c, err)
		}
	}
	bad := []Config{{BitWidth: 16, FractionalBits: 16}, {BitWidth: 1}, {BitWidth: 33}, {BitWidth: 8, FractionalBits: -1}}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate(%+v): expected ErrInvalidConfig, got %v", c, err)
		}
	}
	if _, _, err := (Config{BitWidth: 16, FractionalBits: 16}).QuantizeSlice([]float64{0}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("QuantizeSlice should validate config, got %v", err)
	}
}

func TestInvalidConfigIsAnError(t *testing.T) {
	t.Parallel()
	for _, c := range []Config{{}, {BitWidth: 64}, {BitWidth: 16, FractionalBits: 16}} {
		if _, err := c.Quantize(0.5); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v Quantize: expected ErrInvalidConfig, got %v", c, err)
		}
		if _, err := c.Bits(-1); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v Bits: expected ErrInvalidConfig, got %v", c, err)
		}
		for _, f := range []Format{Binary, Hex} {
			if s, err := c.Encode(-1, f); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%+v Encode(%s): expected ErrInvalidConfig, got %q, %v", c, f, s, err)
			}
			if _, err := c.AppendEncoded(nil, 0, f); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%+v AppendEncoded(%s): expected ErrInvalidConfig, got %v", c, f, err)
			}
			if _, err := c.Decode("0", f); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%+v Decode(%s): expected ErrInvalidConfig, got %v", c, f, err)
			}
		}
		if lo, hi := c.Range(); lo != 0 || hi != 0 {
			t.Errorf("%+v Range: expected (0, 0), got (%d, %d)", c, lo, hi)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Format
	}{
		{"binary", Binary},
		{"BIN", Binary},
		{"b", Binary},
		{"hex", Hex},
		{" Hex ", Hex},
		{"x", Hex},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q): expected %v, got %v (%v)", tc.in, tc.want, got, err)
		}
	}
	if _, err := ParseFormat("octal"); err == nil {
		t.Error("expected error for unknown format")
	}

	var f Format
	if err := f.UnmarshalText([]byte("hex")); err != nil || f != Hex {
		t.Fatalf("UnmarshalText: got %v (%v)", f, err)
	}
}

func TestNewTensor(t *testing.T) {
	t.Parallel()
	tt, err := NewTensor([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("NewTensor: %v", err)
	}
	if tt.Rank() != 2 || tt.Len() != 6 {
		t.Fatalf("unexpected tensor: %+v", tt)
	}
	if r := tt.Row(1); r[0] != 4 || r[2] != 6 {
		t.Fatalf("unexpected row: %v", r)
	}
	if _, err := NewTensor([]int{2, 3}, []float64{1}); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := NewTensor([]int{0}, nil); err == nil {
		t.Fatal("expected invalid dim error")
	}
}

func TestConfigString(t *testing.T) {
	t.Parallel()
	if s := Q15.String(); s != "Q1.15" {
		t.Fatalf("expected Q1.15, got %s", s)
	}
}
