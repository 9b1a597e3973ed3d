// Package fixedpoint maps real values onto saturating signed fixed-point
// integers and renders them as fixed-width binary or hex text.
package fixedpoint

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinBitWidth = 2
	MaxBitWidth = 32
)

var ErrInvalidConfig = errors.New("fixedpoint: invalid config")

// Config describes a signed fixed-point format with BitWidth total bits,
// FractionalBits of which sit below the binary point.
type Config struct {
	BitWidth       int `yaml:"bit_width" json:"bit_width"`
	FractionalBits int `yaml:"fractional_bits" json:"fractional_bits"`
}

// Q15 is the 16-bit format with one sign bit and 15 fractional bits.
var Q15 = Config{BitWidth: 16, FractionalBits: 15}

// Validate checks 0 <= F <= W-1 and that W is supported.
func (c Config) Validate() error {
	if c.BitWidth < MinBitWidth || c.BitWidth > MaxBitWidth {
		return fmt.Errorf("%w: bit width %d outside [%d, %d]", ErrInvalidConfig, c.BitWidth, MinBitWidth, MaxBitWidth)
	}
	if c.FractionalBits < 0 || c.FractionalBits > c.BitWidth-1 {
		return fmt.Errorf("%w: fractional bits %d outside [0, %d]", ErrInvalidConfig, c.FractionalBits, c.BitWidth-1)
	}
	return nil
}

// Range returns the smallest and largest representable integers. It is
// (0, 0) for a config that does not validate.
func (c Config) Range() (lo, hi int64) {
	if c.Validate() != nil {
		return 0, 0
	}
	hi = int64(1)<<(c.BitWidth-1) - 1
	lo = -(int64(1) << (c.BitWidth - 1))
	return lo, hi
}

// Scale is 2^F.
func (c Config) Scale() float64 {
	return math.Ldexp(1, c.FractionalBits)
}

// Resolution is the real value of one least significant bit.
func (c Config) Resolution() float64 {
	return math.Ldexp(1, -c.FractionalBits)
}

// RealRange returns the real interval covered by the format.
func (c Config) RealRange() (lo, hi float64) {
	qlo, qhi := c.Range()
	return c.Dequantize(qlo), c.Dequantize(qhi)
}

// HexDigits is the number of hex characters per encoded value.
func (c Config) HexDigits() int {
	return (c.BitWidth + 3) / 4
}

func (c Config) String() string {
	return fmt.Sprintf("Q%d.%d", c.BitWidth-c.FractionalBits, c.FractionalBits)
}
