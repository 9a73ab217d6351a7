package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"promptmeta/internal/config"
	"promptmeta/internal/database"
	"promptmeta/internal/logging"
	"promptmeta/internal/parser"
	"promptmeta/internal/render"
)

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	fromConfig := flag.String("config", "", "Path to config file")
	file := flag.String("file", "", "Path to a PNG file")
	dir := flag.String("dir", "", "Path to a directory containing PNG files")
	dbpath := flag.String("db", "", "Path to a sqlite or duckdb database (use .sqlite/.db for SQLite, .duckdb for DuckDB)")
	flag.Parse()

	cfg, err := config.LoadConfig(*fromConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.LogLevel(), cfg.LogFormat(), os.Stderr)

	if *dbpath == "" {
		*dbpath = cfg.DBPath()
	}

	if *fromConfig != "" && *file == "" && *dir == "" {
		return parseDirectoriesFromConfig(cfg, *dbpath)
	}

	if *file == "" && *dir == "" {
		flag.Usage()
		return fmt.Errorf("missing file or directory")
	}
	if *file != "" && *dir != "" {
		flag.Usage()
		return fmt.Errorf("please provide either a file or directory, not both")
	}

	if *file != "" {
		return parseFileCommand(cfg, *file)
	}
	return parseDirectoryCommand(cfg, *dir, *dbpath)
}

func parseDirectoriesFromConfig(cfg config.Config, dbpath string) error {
	paths := cfg.PromptExtractPaths()
	if len(paths) == 0 {
		return fmt.Errorf("no directories specified in config for prompt extraction")
	}
	for _, dir := range paths {
		if err := parseDirectoryCommand(cfg, dir, dbpath); err != nil {
			return err
		}
	}
	return nil
}

func parseFileCommand(cfg config.Config, file string) error {
	printer := render.NewPrinter(cfg.Locale())
	md, err := parser.ParseFile(file)
	if err != nil {
		return fmt.Errorf("%s: %s", file, printer.Error(err))
	}
	return printer.Payload(os.Stdout, md.Payload)
}

func parseDirectoryCommand(cfg config.Config, root, dbpath string) error {
	paths, err := getPngPaths(root)
	if err != nil {
		return fmt.Errorf("error getting PNG paths: %w", err)
	}

	if dbpath == "" {
		dbpath = filepath.Join(root, "prompts.sqlite")
	}

	return database.WithDB(dbpath, func(db *database.DB) error {
		l := loader{
			db:        db,
			workers:   cfg.Workers(),
			batchSize: cfg.BatchSize(),
			log:       logging.New("load").With("db", dbpath),
		}
		_, err := l.load(paths)
		return err
	})
}
