package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type SearchOptions struct {
	Terms        []string // every term must appear in the positive prompt
	ExcludeTerms []string // no term may appear in the positive prompt
	Paths        []string // restrict to these files
	WithErrors   bool     // include files that failed to parse
	Limit        int
	Random       bool
}

// Search finds stored prompts by case-insensitive substring match on the
// positive prompt.
func (d *DB) Search(ctx context.Context, opts SearchOptions) ([]FilePrompt, error) {
	builder := strings.Builder{}
	bws := func(s string) { builder.WriteString(s) }
	args := make([]any, 0, len(opts.Terms)+len(opts.ExcludeTerms)+2)

	bws("SELECT " + strings.Join(columns, ", ") + " FROM prompts WHERE 1=1")
	for _, term := range opts.Terms {
		bws(" AND lower(positive) LIKE ?")
		args = append(args, "%"+strings.ToLower(term)+"%")
	}
	for _, term := range opts.ExcludeTerms {
		bws(" AND (positive IS NULL OR lower(positive) NOT LIKE ?)")
		args = append(args, "%"+strings.ToLower(term)+"%")
	}
	if len(opts.Paths) > 0 {
		bws(" AND file_path IN (?)")
		args = append(args, opts.Paths)
	}
	if !opts.WithErrors {
		bws(" AND (parse_error IS NULL OR parse_error = '')")
	}
	if opts.Random {
		bws(" ORDER BY random()")
	} else {
		bws(" ORDER BY file_path")
	}
	limit := 10
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	bws(" LIMIT ?")
	args = append(args, limit)

	query, args, err := sqlx.In(builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("expand query: %w", err)
	}
	var result []FilePrompt
	if err := d.db.SelectContext(ctx, &result, d.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("search prompts %+v: %w", opts, err)
	}
	return result, nil
}

// Count returns the number of stored files and how many of them failed to parse.
func (d *DB) Count(ctx context.Context) (total, failed int, err error) {
	var counts struct {
		Total  int `db:"total"`
		Failed int `db:"failed"`
	}
	q := `
		SELECT
			CAST(COUNT(*) AS BIGINT) AS total,
			CAST(COALESCE(SUM(CASE WHEN parse_error <> '' THEN 1 ELSE 0 END), 0) AS BIGINT) AS failed
		FROM prompts`
	if err := d.db.GetContext(ctx, &counts, q); err != nil {
		return 0, 0, fmt.Errorf("count prompts: %w", err)
	}
	return counts.Total, counts.Failed, nil
}
