package fixedpoint

import (
	"fmt"
	"strconv"
	"strings"
)

// Format selects how a value is rendered on a line.
type Format int

const (
	// Binary renders W characters of two's-complement, MSB first.
	Binary Format = iota
	// Hex renders the same W bits as ceil(W/4) lowercase hex digits.
	Hex
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case Hex:
		return "hex"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseFormat accepts binary|bin|b and hex|h|x, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "bin", "b":
		return Binary, nil
	case "hex", "h", "x":
		return Hex, nil
	default:
		return 0, fmt.Errorf("fixedpoint: unknown format %q (want binary or hex)", s)
	}
}

// MarshalText lets Format appear in yaml and json documents.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Width is the number of characters in an encoded line.
func (c Config) Width(f Format) int {
	if f == Hex {
		return c.HexDigits()
	}
	return c.BitWidth
}

// Bits returns the W-bit two's-complement pattern of v, i.e. v for v >= 0
// and 2^W + v for v < 0. Both encodings are rendered from this value.
func (c Config) Bits(v int64) (uint64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if err := c.checkRange(v); err != nil {
		return 0, err
	}
	if v < 0 {
		return uint64(int64(1)<<c.BitWidth + v), nil
	}
	return uint64(v), nil
}

// Encode renders v in format f.
func (c Config) Encode(v int64, f Format) (string, error) {
	var buf [MaxBitWidth]byte
	b, err := c.AppendEncoded(buf[:0], v, f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AppendEncoded appends the encoded form of v to dst.
func (c Config) AppendEncoded(dst []byte, v int64, f Format) ([]byte, error) {
	u, err := c.Bits(v)
	if err != nil {
		return dst, err
	}
	base := 2
	switch f {
	case Binary:
	case Hex:
		base = 16
	default:
		return dst, fmt.Errorf("fixedpoint: unknown format %d", int(f))
	}
	width := c.Width(f)
	var tmp [64]byte
	digits := strconv.AppendUint(tmp[:0], u, base)
	for i := len(digits); i < width; i++ {
		dst = append(dst, '0')
	}
	return append(dst, digits...), nil
}

// Decode parses one encoded line and sign-extends it back to a value.
func (c Config) Decode(line string, f Format) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s := strings.TrimSpace(line)
	base := 2
	if f == Hex {
		base = 16
	}
	if len(s) != c.Width(f) || strings.ToLower(s) != s {
		return 0, &RangeError{BitWidth: c.BitWidth, Text: line}
	}
	u, err := strconv.ParseUint(s, base, 64)
	if err != nil || u >= uint64(1)<<c.BitWidth {
		return 0, &RangeError{BitWidth: c.BitWidth, Text: line}
	}
	v := int64(u)
	if u&(uint64(1)<<(c.BitWidth-1)) != 0 {
		v -= int64(1) << c.BitWidth
	}
	return v, nil
}
