package splitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives finished tile artifacts. Implementations decide where the
// bytes go (a directory, a zip stream, an HTTP response); the exporter only
// hands over filename and data.
type Sink interface {
	Write(ctx context.Context, filename string, data []byte) error
}

// DirSink writes artifacts as files into a directory, creating it on first
// write if needed.
type DirSink struct {
	Dir string
}

func (s DirSink) Write(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.Dir, filename), data, 0o644)
}
