package main

import (
	"os"
	"path/filepath"
	"strings"
)

const envOutDir = "FPMEM_OUT_DIR"

// resolveOutDir picks the output directory: explicit flag (or config), then
// $FPMEM_OUT_DIR, then the working directory. The directory is created.
func resolveOutDir(outFlag string) (string, error) {
	dir := strings.TrimSpace(outFlag)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(envOutDir))
	}
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// layerName maps a state dict prefix through the rename table.
func layerName(prefix string, rename map[string]string) string {
	if n, ok := rename[prefix]; ok && n != "" {
		return n
	}
	return strings.ReplaceAll(prefix, ".", "_")
}
