package fixedpoint

import (
	"fmt"
	"strconv"
)

// DomainError reports a value the quantizer cannot map, such as NaN or an
// infinity. Index is the flat element index, or -1 for scalar input.
type DomainError struct {
	Index int
	Value float64
}

func (e *DomainError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("fixedpoint: non-finite value %v", e.Value)
	}
	return fmt.Sprintf("fixedpoint: non-finite value %v at element %d", e.Value, e.Index)
}

// RangeError reports an integer that does not fit the configured width.
// After saturation this indicates a bug rather than bad input.
type RangeError struct {
	Value    int64
	BitWidth int
	// Text is set when the value came from parsing an encoded line.
	Text string
}

func (e *RangeError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("fixedpoint: line %q is not a valid %d-bit value", e.Text, e.BitWidth)
	}
	return "fixedpoint: value " + strconv.FormatInt(e.Value, 10) + " does not fit in " + strconv.Itoa(e.BitWidth) + " bits"
}
