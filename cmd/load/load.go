package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"promptmeta/internal/database"
	"promptmeta/internal/parser"
)

func getPngPaths(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".png") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no .png files found in %s", root)
	}
	return paths, nil
}

type loader struct {
	db        *database.DB
	workers   int
	batchSize int
	log       *slog.Logger
	progress  io.Writer
}

type loadStats struct {
	found     int
	skipped   int
	processed int
	failed    int
}

// load parses every path not yet stored and upserts the results in batches.
// Unreadable files are stored with their error and never stop the run.
func (l loader) load(paths []string) (loadStats, error) {
	ctx := context.Background()
	progress := l.progress
	if progress == nil {
		progress = os.Stdout
	}

	existingPaths, err := l.db.ExistingPaths(ctx)
	if err != nil {
		return loadStats{}, fmt.Errorf("error retrieving existing files: %w", err)
	}

	var filesToProcess []string
	for _, path := range paths {
		if _, exists := existingPaths[path]; !exists {
			filesToProcess = append(filesToProcess, path)
		}
	}

	stats := loadStats{found: len(paths), skipped: len(paths) - len(filesToProcess)}
	l.log.Info("scanning directory", "found", stats.found, "skipped", stats.skipped, "new", len(filesToProcess))
	if len(filesToProcess) == 0 {
		l.log.Info("all files are already loaded in the database")
		return stats, nil
	}

	numWorkers := max(l.workers, 1)
	filesCh := make(chan string, numWorkers)
	resultsCh := make(chan database.FilePrompt)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	worker := func() {
		defer wg.Done()
		for path := range filesCh {
			md, err := parser.ParseFile(path)
			resultsCh <- database.FromMetadata(md, err)
		}
	}
	for i := 0; i < numWorkers; i++ {
		go worker()
	}

	go func() {
		for _, p := range filesToProcess {
			filesCh <- p
		}
		close(filesCh)
	}()

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	batchSize := max(l.batchSize, 1)
	batch := make([]database.FilePrompt, 0, batchSize)
	flush := func() {
		if err := l.db.InsertBatch(ctx, batch); err != nil {
			l.log.Error("failed to insert batch into db", "error", err)
		}
		batch = batch[:0]
	}
	for res := range resultsCh {
		stats.processed++
		if res.ParseError != "" {
			stats.failed++
			l.log.Warn("error processing file", "path", res.Path, "error", res.ParseError)
		}

		batch = append(batch, res)
		if len(batch) >= batchSize {
			flush()
		}
		fmt.Fprintf(progress, "\rProcessed %d/%d new files", stats.processed, len(filesToProcess))
	}
	if len(batch) > 0 {
		flush()
	}

	fmt.Fprintln(progress, "\nDone!")
	return stats, nil
}
