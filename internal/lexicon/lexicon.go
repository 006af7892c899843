// Package lexicon stores wordform-to-lemma mappings in a SQLite database.
// It backs the normalized level with dictionary lookups and produces lemma
// annotations for known wordforms.
package lexicon

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/motheatensoul/tei-scribe-sub000/core/annotation"
	"github.com/motheatensoul/tei-scribe-sub000/core/errors"
	"github.com/motheatensoul/tei-scribe-sub000/core/normalize"
)

const schema = `
CREATE TABLE IF NOT EXISTS lemmas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lemma TEXT NOT NULL UNIQUE,
	msa TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS wordforms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	form TEXT NOT NULL UNIQUE,
	normalized TEXT NOT NULL,
	lemma_id INTEGER REFERENCES lemmas(id)
);
CREATE INDEX IF NOT EXISTS idx_wordforms_form ON wordforms(form);
`

// Entry is one lexicon lookup result.
type Entry struct {
	Form       string
	Normalized string
	Lemma      string
	MSA        string
}

// Lexicon wraps the underlying database.
type Lexicon struct {
	db *sql.DB
}

// Open opens or creates a lexicon database at path and ensures the schema.
func Open(path string) (*Lexicon, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewIO("open lexicon", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("init lexicon schema", path, err)
	}
	return &Lexicon{db: db}, nil
}

// Close closes the database.
func (l *Lexicon) Close() error {
	return l.db.Close()
}

// Add inserts or replaces one wordform with its normalized spelling and
// optional lemma.
func (l *Lexicon) Add(ctx context.Context, form, normalized, lemma, msa string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var lemmaID sql.NullInt64
	if lemma != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lemmas (lemma, msa) VALUES (?, ?)
			 ON CONFLICT(lemma) DO UPDATE SET msa = excluded.msa`,
			lemma, msa); err != nil {
			return fmt.Errorf("upsert lemma: %w", err)
		}
		var id int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM lemmas WHERE lemma = ?`, lemma).Scan(&id); err != nil {
			return fmt.Errorf("lemma id: %w", err)
		}
		lemmaID = sql.NullInt64{Int64: id, Valid: true}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wordforms (form, normalized, lemma_id) VALUES (?, ?, ?)
		 ON CONFLICT(form) DO UPDATE SET normalized = excluded.normalized, lemma_id = excluded.lemma_id`,
		form, normalized, lemmaID); err != nil {
		return fmt.Errorf("upsert wordform: %w", err)
	}
	return tx.Commit()
}

// Lookup returns the entry for a wordform.
func (l *Lexicon) Lookup(ctx context.Context, form string) (Entry, error) {
	var e Entry
	var lemma, msa sql.NullString
	err := l.db.QueryRowContext(ctx,
		`SELECT w.form, w.normalized, l.lemma, l.msa
		 FROM wordforms w LEFT JOIN lemmas l ON l.id = w.lemma_id
		 WHERE w.form = ?`, form).Scan(&e.Form, &e.Normalized, &lemma, &msa)
	if err == sql.ErrNoRows {
		return Entry{}, errors.NewNotFound("wordform", form)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("lookup %q: %w", form, err)
	}
	e.Lemma = lemma.String
	e.MSA = msa.String
	return e, nil
}

// Search returns entries whose form or normalized spelling matches the
// pattern, SQL LIKE syntax.
func (l *Lexicon) Search(ctx context.Context, pattern string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT w.form, w.normalized, l.lemma, l.msa
		 FROM wordforms w LEFT JOIN lemmas l ON l.id = w.lemma_id
		 WHERE w.form LIKE ? OR w.normalized LIKE ?
		 ORDER BY w.form LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", pattern, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var lemma, msa sql.NullString
		if err := rows.Scan(&e.Form, &e.Normalized, &lemma, &msa); err != nil {
			return nil, err
		}
		e.Lemma = lemma.String
		e.MSA = msa.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Dict materializes the wordform table as a normalization dictionary.
func (l *Lexicon) Dict(ctx context.Context) (normalize.Dict, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT form, normalized FROM wordforms`)
	if err != nil {
		return nil, fmt.Errorf("load dict: %w", err)
	}
	defer rows.Close()

	dict := make(normalize.Dict)
	for rows.Next() {
		var form, normalized string
		if err := rows.Scan(&form, &normalized); err != nil {
			return nil, err
		}
		dict[form] = normalized
	}
	return dict, rows.Err()
}

// Annotate builds a lemma annotation for the word at index, looked up by its
// diplomatic form. Unknown forms return a NotFoundError.
func (l *Lexicon) Annotate(ctx context.Context, form string, index int) (annotation.Record, error) {
	e, err := l.Lookup(ctx, form)
	if err != nil {
		return annotation.Record{}, err
	}
	if e.Lemma == "" {
		return annotation.Record{}, errors.NewNotFound("lemma", form)
	}
	return annotation.New(
		annotation.WordTarget(index),
		annotation.Value{Kind: annotation.ValueLemma, Lemma: e.Lemma, MSA: e.MSA},
	), nil
}

// ImportTSV loads tab-separated rows of form, normalized, lemma, msa. The
// lemma and msa columns are optional. Blank lines and #-comments are skipped.
func (l *Lexicon) ImportTSV(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	count := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return count, errors.NewValidation("tsv",
				fmt.Sprintf("line %d: expected at least 2 columns, got %d", lineNo, len(fields)))
		}
		form, normalized := fields[0], fields[1]
		var lemma, msa string
		if len(fields) > 2 {
			lemma = fields[2]
		}
		if len(fields) > 3 {
			msa = fields[3]
		}
		if err := l.Add(ctx, form, normalized, lemma, msa); err != nil {
			return count, fmt.Errorf("line %d: %w", lineNo, err)
		}
		count++
	}
	return count, scanner.Err()
}
