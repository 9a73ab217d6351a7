package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"promptmeta/internal/config"
	"promptmeta/internal/database"
	"promptmeta/internal/logging"
	"promptmeta/internal/render"
)

func main() {
	if err := run_main(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run_main() error {
	fromConfig := flag.String("config", "", "Path to config file")
	dbpath := flag.String("db", "", "Path to a sqlite or duckdb database")
	terms := flag.String("terms", "", "Comma separated terms the positive prompt must contain")
	exclude := flag.String("exclude", "", "Comma separated terms the positive prompt must not contain")
	limit := flag.Int("limit", 10, "Maximum number of results")
	random := flag.Bool("random", false, "Return results in random order")
	withErrors := flag.Bool("errors", false, "Include files that failed to parse")
	flag.Parse()

	cfg, err := config.LoadConfig(*fromConfig)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel(), cfg.LogFormat(), os.Stderr)

	if *dbpath == "" {
		*dbpath = cfg.DBPath()
	}
	if *dbpath == "" {
		flag.Usage()
		return fmt.Errorf("missing database")
	}

	opts := database.SearchOptions{
		Terms:        splitList(*terms),
		ExcludeTerms: splitList(*exclude),
		Limit:        *limit,
		Random:       *random,
		WithErrors:   *withErrors,
	}
	return database.WithDB(*dbpath, func(db *database.DB) error {
		return query(context.Background(), os.Stdout, db, render.NewPrinter(cfg.Locale()), opts)
	})
}

func query(ctx context.Context, w io.Writer, db *database.DB, printer render.Printer, opts database.SearchOptions) error {
	logger := logging.New("query")

	total, failed, err := db.Count(ctx)
	if err != nil {
		return err
	}
	logger.Info("connected to database", "driver", db.Driver(), "files", total, "failed", failed)

	rows, err := db.Search(ctx, opts)
	if err != nil {
		return fmt.Errorf("find prompts: %w", err)
	}
	logger.Info("found prompts", "count", len(rows), "terms", opts.Terms)

	for _, fp := range rows {
		fmt.Fprintf(w, "File: %s\n", fp.Path)
		if fp.ParseError != "" {
			fmt.Fprintf(w, "Error: %s\n\n", fp.ParseError)
			continue
		}
		if err := printer.Payload(w, fp.Payload()); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
