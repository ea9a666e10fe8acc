package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nugget/cadprompt/examples"
)

// runInit writes an example config.yaml into dir. An existing config is
// never overwritten.
func runInit(w io.Writer, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := writeIfMissing(configPath, examples.ConfigYAML); err != nil {
		return err
	}
	fmt.Fprintf(w, "  ✓ %s\n", configPath)
	return nil
}

// writeIfMissing writes content to path only if the file does not already
// exist.
func writeIfMissing(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil // already exists, skip
	}
	return os.WriteFile(path, content, 0o644)
}
