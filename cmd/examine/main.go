package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"promptmeta/internal/config"
	"promptmeta/internal/database"
	"promptmeta/internal/logging"
	"promptmeta/internal/parser"
	"promptmeta/internal/render"

	"github.com/tidwall/pretty"
)

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

type options struct {
	asJSON bool
	chunks bool
	raw    bool
	limit  int
}

func run() error {
	fromConfig := flag.String("config", "", "Path to config file")
	file := flag.String("file", "", "Path to a PNG file")
	dbpath := flag.String("db", "", "Path to a sqlite or duckdb database to list")
	locale := flag.String("locale", "", "Display language (en, ja)")
	var opts options
	flag.BoolVar(&opts.asJSON, "json", false, "Print the extracted payload as JSON")
	flag.BoolVar(&opts.chunks, "chunks", false, "List every text chunk")
	flag.BoolVar(&opts.raw, "raw", false, "Print the raw prompt and workflow JSON")
	flag.IntVar(&opts.limit, "limit", 10, "Number of stored rows to list")
	flag.Parse()

	cfg, err := config.LoadConfig(*fromConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.LogLevel(), cfg.LogFormat(), os.Stderr)
	if *locale == "" {
		*locale = cfg.Locale()
	}
	printer := render.NewPrinter(*locale)

	switch {
	case *file != "":
		return examineFile(os.Stdout, printer, *file, opts)
	case *dbpath != "" || cfg.DBPath() != "":
		if *dbpath == "" {
			*dbpath = cfg.DBPath()
		}
		return examineDatabase(os.Stdout, printer, *dbpath, opts.limit)
	default:
		flag.Usage()
		return fmt.Errorf("missing file or database")
	}
}

func examineFile(w io.Writer, printer render.Printer, file string, opts options) error {
	md, err := parser.ParseFile(file)
	if err != nil {
		logging.New("examine").Debug("parse failed", "path", file, "error", err)
		return fmt.Errorf("%s: %s", file, printer.Error(err))
	}

	if opts.chunks {
		if err := printer.Chunks(w, md.Chunks); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if opts.raw {
		fmt.Fprintf(w, "Prompt:\n%s\n", prettyJSON(md.Prompt))
		fmt.Fprintf(w, "Workflow:\n%s\n\n", prettyJSON(md.Workflow))
	}
	if opts.asJSON {
		b, err := json.MarshalIndent(md.Payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
	return printer.Payload(w, md.Payload)
}

// prettyJSON indents text that parses as JSON and returns anything else unchanged.
func prettyJSON(text string) string {
	if !json.Valid([]byte(text)) {
		return text
	}
	return string(pretty.Pretty([]byte(text)))
}

func examineDatabase(w io.Writer, printer render.Printer, dbpath string, limit int) error {
	return database.WithDB(dbpath, func(db *database.DB) error {
		rows, err := db.List(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("error listing prompts: %w", err)
		}
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
	})
}
