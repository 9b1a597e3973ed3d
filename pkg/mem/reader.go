package mem

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/samcharles93/fpmem/pkg/fixedpoint"
)

// Decode parses every non-empty line of r.
func Decode(r io.Reader, cfg fixedpoint.Config, f fixedpoint.Format) ([]int64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(r)
	var out []int64
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if text == "" {
			continue
		}
		v, err := cfg.Decode(text, f)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadFile decodes a mem file written by WriteFile.
func ReadFile(path string, cfg fixedpoint.Config, f fixedpoint.Format) ([]int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	vals, err := Decode(file, cfg, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vals, nil
}
