package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"promptmeta/internal/parser"

	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
)

// FilePrompt is one stored image. Positive and Negative are NULL when the
// graph had no such prompt; ParseError holds the reason a file was unreadable.
type FilePrompt struct {
	Path       string          `db:"file_path"`
	Positive   sql.NullString  `db:"positive"`
	Negative   sql.NullString  `db:"negative"`
	Settings   parser.Settings `db:"settings"`
	Prompt     string          `db:"prompt"`
	Workflow   string          `db:"workflow"`
	ParseError string          `db:"parse_error"`
}

// FromMetadata builds a row from a parse result. A non-nil err is recorded
// instead of failing the row.
func FromMetadata(md parser.FileMetadata, err error) FilePrompt {
	fp := FilePrompt{
		Path:     md.Path,
		Settings: md.Payload.Settings,
		Prompt:   md.Prompt,
		Workflow: md.Workflow,
	}
	if md.Payload.Positive != nil {
		fp.Positive = sql.NullString{String: *md.Payload.Positive, Valid: true}
	}
	if md.Payload.Negative != nil {
		fp.Negative = sql.NullString{String: *md.Payload.Negative, Valid: true}
	}
	if err != nil {
		fp.ParseError = err.Error()
	}
	return fp
}

// Payload converts a stored row back to the extractor's shape.
func (fp FilePrompt) Payload() parser.PromptPayload {
	var p parser.PromptPayload
	if fp.Positive.Valid {
		s := fp.Positive.String
		p.Positive = &s
	}
	if fp.Negative.Valid {
		s := fp.Negative.String
		p.Negative = &s
	}
	p.Settings = fp.Settings
	return p
}

const schema = `
	CREATE TABLE IF NOT EXISTS prompts (
		file_path   TEXT PRIMARY KEY,
		positive    TEXT,
		negative    TEXT,
		settings    TEXT,
		prompt      TEXT,
		workflow    TEXT,
		parse_error TEXT
	)`

var columns = []string{"file_path", "positive", "negative", "settings", "prompt", "workflow", "parse_error"}

// DB is a prompt store backed by SQLite or DuckDB.
type DB struct {
	db     *sqlx.DB
	driver string
}

// Driver picks the SQL driver for a database path: ".duckdb" files use
// DuckDB, everything else SQLite.
func Driver(dbPath string) string {
	if strings.ToLower(filepath.Ext(dbPath)) == ".duckdb" {
		return "duckdb"
	}
	return "sqlite3"
}

// Open opens (or creates) the store at dbPath and ensures its schema.
func Open(dbPath string) (*DB, error) {
	driver := Driver(dbPath)
	dsn := dbPath
	if driver == "sqlite3" {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_fk=1", dbPath)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s db: %w", driver, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &DB{db: db, driver: driver}, nil
}

// WithDB opens the store, runs fn and closes it again.
func WithDB(dbPath string, fn func(db *DB) error) error {
	db, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) Close() error {
	return d.db.Close()
}

// ExistingPaths returns the set of file paths already stored.
func (d *DB) ExistingPaths(ctx context.Context) (map[string]struct{}, error) {
	var paths []string
	if err := d.db.SelectContext(ctx, &paths, "SELECT file_path FROM prompts"); err != nil {
		return nil, fmt.Errorf("select file paths: %w", err)
	}
	existing := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		existing[p] = struct{}{}
	}
	return existing, nil
}

func buildUpsertStatement(num int) string {
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	valueStrings := make([]string, 0, num)
	for i := 0; i < num; i++ {
		valueStrings = append(valueStrings, placeholders)
	}
	updates := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		updates = append(updates, c+"=excluded."+c)
	}
	return fmt.Sprintf(
		"INSERT INTO prompts (%s) VALUES %s ON CONFLICT(file_path) DO UPDATE SET %s",
		strings.Join(columns, ", "),
		strings.Join(valueStrings, ","),
		strings.Join(updates, ", "),
	)
}

// InsertBatch upserts rows keyed by file path.
func (d *DB) InsertBatch(ctx context.Context, batch []FilePrompt) error {
	if len(batch) == 0 {
		return nil
	}
	args := make([]any, 0, len(batch)*len(columns))
	for _, item := range batch {
		args = append(args, item.Path, item.Positive, item.Negative, item.Settings, item.Prompt, item.Workflow, item.ParseError)
	}
	if _, err := d.db.ExecContext(ctx, buildUpsertStatement(len(batch)), args...); err != nil {
		return fmt.Errorf("insert %d prompts: %w", len(batch), err)
	}
	return nil
}

// Get loads one stored file.
func (d *DB) Get(ctx context.Context, path string) (FilePrompt, error) {
	var fp FilePrompt
	q := "SELECT " + strings.Join(columns, ", ") + " FROM prompts WHERE file_path = ?"
	if err := d.db.GetContext(ctx, &fp, q, path); err != nil {
		return FilePrompt{}, fmt.Errorf("get %s: %w", path, err)
	}
	return fp, nil
}

// List returns stored files ordered by path. A limit <= 0 returns every row.
func (d *DB) List(ctx context.Context, limit int) ([]FilePrompt, error) {
	q := "SELECT " + strings.Join(columns, ", ") + " FROM prompts ORDER BY file_path"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	var rows []FilePrompt
	if err := d.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return rows, nil
}
