// Package mem reads and writes memory-initialization text files: one
// fixed-width encoded value per line.
package mem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/samcharles93/fpmem/pkg/fixedpoint"
)

const writerBufSize = 64 << 10

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("mem: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Encode renders values one per line into w. Every value is encoded before
// it is written, so a RangeError leaves w holding only complete lines.
func Encode(w io.Writer, values []int64, cfg fixedpoint.Config, f fixedpoint.Format) error {
	bw := bufio.NewWriterSize(w, writerBufSize)
	line := make([]byte, 0, cfg.Width(f)+1)
	for _, v := range values {
		var err error
		line, err = cfg.AppendEncoded(line[:0], v, f)
		if err != nil {
			return err
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile publishes values to path. Content is staged in a temp file next
// to path and renamed into place only after it was fully written and synced;
// on failure the temp file is removed and path is left as it was.
func WriteFile(path string, values []int64, cfg fixedpoint.Config, f fixedpoint.Format) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	// Encoding errors are internal invariant failures: check all values
	// before touching the filesystem.
	for _, v := range values {
		if _, err := cfg.Bits(v); err != nil {
			return err
		}
	}
	return writeAtomic(path, func(w io.Writer) error {
		return Encode(w, values, cfg, f)
	})
}

func writeAtomic(path string, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fill(tmp); err != nil {
		var re *fixedpoint.RangeError
		if errors.As(err, &re) {
			return err
		}
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// WriteBytes atomically publishes an arbitrary payload, for sidecar files
// that belong next to the mem artifacts.
func WriteBytes(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
