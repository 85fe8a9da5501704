package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

var defaultWorkers = runtime.GOMAXPROCS(0)

// writer renders files in parallel and formats them through goimports
// before writing.
type writer struct {
	outDir  string
	workers int

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks output volume for logging.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
}

func newWriter(outDir string, workers int) *writer {
	return &writer{outDir: outDir, workers: workers}
}

type writeTask struct {
	path string // absolute or outDir-relative output path
	file *jen.File
}

// Write renders and writes every task, bounded by the worker limit.
func (w *writer) Write(ctx context.Context, tasks []writeTask) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, t := range tasks {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(t)
			}
		})
	}
	return eg.Wait()
}

func (w *writer) writeFile(t writeTask) error {
	var buf bytes.Buffer
	if err := t.file.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", t.path, err)
	}

	// goimports normalizes import grouping beyond what the renderer does.
	formatted, err := imports.Process(t.path, buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("format %s: %w", t.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", t.path, err)
	}
	if err := os.WriteFile(t.path, formatted, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", t.path, err)
	}

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(formatted))
	w.mu.Unlock()
	return nil
}

// Metrics returns counters accumulated by Write.
func (w *writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}
