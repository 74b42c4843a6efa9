package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes JSONL data to a local file, replacing any
// previous snapshot at that path.
type FileDestination struct {
	path string
}

// NewFileDestination creates a file destination. Parent directories are
// created on the first write.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

// Write stores data at the configured path.
func (d *FileDestination) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
