// kelogen generates entity predicate packages and a registry
// constructor from a YAML schema declaration.
//
// Run: kelogen -schema schema.yaml -out ./familygen
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/kelo/gen"
)

func main() {
	var (
		schemaPath = flag.String("schema", "schema.yaml", "path to the YAML schema declaration")
		outDir     = flag.String("out", "./gen", "output directory for generated packages")
		pkg        = flag.String("pkg", "", "package name of the registry file (default: base of -out)")
		workers    = flag.Int("workers", 0, "number of concurrent file writers (default: GOMAXPROCS)")
		watch      = flag.Bool("watch", false, "watch the schema file and regenerate on change")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, *schemaPath, *outDir, *pkg, *workers, *watch); err != nil {
		log.Error("generation failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, schemaPath, outDir, pkg string, workers int, watch bool) error {
	if err := generate(ctx, log, schemaPath, outDir, pkg, workers); err != nil {
		if !watch {
			return err
		}
		// In watch mode a broken schema is not fatal: report and wait
		// for the next save.
		log.Error("generation failed", "err", err)
	}
	if !watch {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors replace files
	// on save, which drops inode-level watches.
	if err := watcher.Add(filepath.Dir(schemaPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(schemaPath), err)
	}
	log.Info("watching schema", "path", schemaPath)

	target := filepath.Clean(schemaPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if err := generate(ctx, log, schemaPath, outDir, pkg, workers); err != nil {
				log.Error("generation failed", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "err", err)
		}
	}
}

func generate(ctx context.Context, log *slog.Logger, schemaPath, outDir, pkg string, workers int) error {
	f, err := gen.Load(schemaPath)
	if err != nil {
		return err
	}
	g := gen.NewGenerator(f, outDir).WithWorkers(workers)
	if pkg != "" {
		g = g.WithPackage(pkg)
	}
	if err := g.Generate(ctx); err != nil {
		return err
	}
	m := g.Metrics()
	log.Info("generated", "entities", len(f.Entities), "files", m.FilesWritten, "bytes", m.TotalBytes)
	return nil
}
