// Package history records sort runs in SQLite. Only metadata is stored,
// never the words themselves.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
	_ "modernc.org/sqlite"
)

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 50

// Run is one recorded sort invocation.
type Run struct {
	ID              string           `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	Transport       string           `json:"transport"`
	RequestedLocale string           `json:"requested_locale,omitempty"`
	Locale          string           `json:"locale,omitempty"`
	Options         wordsort.Options `json:"options"`
	InputTokens     int              `json:"input_tokens"`
	OutputWords     int              `json:"output_words"`
	Status          wordsort.Status  `json:"status"`
	Reason          wordsort.Reason  `json:"reason,omitempty"`
	Warning         string           `json:"warning,omitempty"`
}

// NewRun builds the record of a finished sort.
func NewRun(transport string, opts wordsort.Options, res *wordsort.Result) Run {
	return Run{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now(),
		Transport:       transport,
		RequestedLocale: opts.Locale,
		Locale:          res.Locale,
		Options:         opts,
		InputTokens:     res.Tokens,
		OutputWords:     res.Count,
		Status:          res.Status,
		Reason:          res.Reason,
		Warning:         strings.Join(res.Warnings, "; "),
	}
}

// Stats counts recorded runs.
type Stats struct {
	Total    int                     `json:"total"`
	ByStatus map[wordsort.Status]int `json:"by_status"`
	Words    int                     `json:"words"`
}

// Store manages the sort_runs SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// sort_runs table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS sort_runs (
		id                TEXT PRIMARY KEY,
		created_at        INTEGER NOT NULL,
		transport         TEXT NOT NULL,
		requested_locale  TEXT NOT NULL DEFAULT '',
		locale            TEXT NOT NULL DEFAULT '',
		ascending         INTEGER NOT NULL,
		ignore_case       INTEGER NOT NULL,
		ignore_accents    INTEGER NOT NULL,
		remove_duplicates INTEGER NOT NULL,
		input_tokens      INTEGER NOT NULL,
		output_words      INTEGER NOT NULL,
		status            TEXT NOT NULL,
		reason            TEXT NOT NULL DEFAULT '',
		warning           TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sort_runs table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS sort_runs_created ON sort_runs(created_at)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sort_runs index: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run.
func (s *Store) Record(ctx context.Context, r Run) error {
	const q = `INSERT INTO sort_runs
		(id, created_at, transport, requested_locale, locale,
		 ascending, ignore_case, ignore_accents, remove_duplicates,
		 input_tokens, output_words, status, reason, warning)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		r.ID, r.CreatedAt.UnixMilli(), r.Transport, r.RequestedLocale, r.Locale,
		r.Options.Ascending, r.Options.IgnoreCase, r.Options.IgnoreAccents, r.Options.RemoveDuplicates,
		r.InputTokens, r.OutputWords, string(r.Status), string(r.Reason), r.Warning,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// List returns the most recent runs first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, transport, requested_locale, locale,
		ascending, ignore_case, ignore_accents, remove_duplicates,
		input_tokens, output_words, status, reason, warning
		FROM sort_runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created int64
			status  string
			reason  string
		)
		if err := rows.Scan(&r.ID, &created, &r.Transport, &r.RequestedLocale, &r.Locale,
			&r.Options.Ascending, &r.Options.IgnoreCase, &r.Options.IgnoreAccents, &r.Options.RemoveDuplicates,
			&r.InputTokens, &r.OutputWords, &status, &reason, &r.Warning); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.UnixMilli(created)
		r.Options.Locale = r.RequestedLocale
		r.Status = wordsort.Status(status)
		r.Reason = wordsort.Reason(reason)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats totals runs per status and the number of words produced.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByStatus: make(map[wordsort.Status]int)}
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(output_words), 0) FROM sort_runs GROUP BY status`)
	if err != nil {
		return st, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
			words  int
		)
		if err := rows.Scan(&status, &n, &words); err != nil {
			return st, fmt.Errorf("scan stats: %w", err)
		}
		st.ByStatus[wordsort.Status(status)] = n
		st.Total += n
		st.Words += words
	}
	return st, rows.Err()
}

// Prune deletes runs recorded before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sort_runs WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
