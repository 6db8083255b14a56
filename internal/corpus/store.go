// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus keeps the cross-run paper index in SQLite. Each downloaded
// folder contributes rows keyed by normalized title, so repeated searches
// update the same paper instead of multiplying it, and summaries written in
// one run are visible to every later one.
package corpus

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// DefaultIndexPath is used when no index path is configured.
const DefaultIndexPath = "corpus/index.db"

// Store manages the corpus SQLite database.
type Store struct {
	db *sql.DB
}

// Entry is one indexed paper as read back from the store.
type Entry struct {
	Title         string
	Authors       string
	Year          int
	CitationCount int
	CombinedScore float64
	Rank          int
	Folder        string
	FileName      string
	Keyword       string
	SearchDate    string
	Summary       string
	CodeVerdict   string
}

// NewStore opens or creates the corpus database at path, creating the schema
// when missing.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultIndexPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening corpus index: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			title_key TEXT NOT NULL,
			folder TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			year INTEGER,
			citation_count INTEGER,
			combined_score REAL,
			rank INTEGER,
			file_name TEXT,
			keyword TEXT,
			search_date TEXT,
			summary TEXT,
			code_verdict TEXT,
			updated_at TEXT,
			PRIMARY KEY (title_key, folder)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_folder ON papers(folder)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertRecords indexes records under folder in their given rank order.
// Existing rows for the same paper keep their summary and code verdict.
func (s *Store) UpsertRecords(folder string, records []types.PaperRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning index update: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO papers
		(title_key, folder, title, authors, year, citation_count, combined_score,
		 rank, file_name, keyword, search_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title_key, folder) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			year = excluded.year,
			citation_count = excluded.citation_count,
			combined_score = excluded.combined_score,
			rank = excluded.rank,
			file_name = excluded.file_name,
			keyword = excluded.keyword,
			search_date = excluded.search_date,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, r := range records {
		key := types.NormalizedTitle(r.Title)
		if key == "" {
			continue
		}
		if _, err := stmt.Exec(key, folder, r.Title, r.Authors, r.Year,
			r.CitationCount, r.CombinedScore, i+1, r.FileName, r.Keyword,
			r.SearchDate, now); err != nil {
			return fmt.Errorf("indexing %q: %w", r.Title, err)
		}
	}
	return tx.Commit()
}

// SetSummary stores a paper's summary.
func (s *Store) SetSummary(folder, title, summary string) error {
	return s.setField(folder, title, "summary", summary)
}

// SetCodeVerdict stores a paper's code-availability verdict.
func (s *Store) SetCodeVerdict(folder, title, verdict string) error {
	return s.setField(folder, title, "code_verdict", verdict)
}

func (s *Store) setField(folder, title, column, value string) error {
	key := types.NormalizedTitle(title)
	if key == "" {
		return &types.NotFoundError{What: "paper with empty title"}
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE papers SET %s = ?, updated_at = ? WHERE title_key = ? AND folder = ?`, column),
		value, time.Now().UTC().Format(time.RFC3339), key, folder)
	if err != nil {
		return fmt.Errorf("updating %s for %q: %w", column, title, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s for %q: %w", column, title, err)
	}
	if n == 0 {
		return &types.NotFoundError{What: fmt.Sprintf("indexed paper %q in %s", title, folder)}
	}
	return nil
}

// Entries returns the indexed papers for folder in rank order. An empty
// folder returns every indexed paper, grouped by folder.
func (s *Store) Entries(folder string) ([]Entry, error) {
	query := `SELECT title, authors, year, citation_count, combined_score, rank,
		folder, file_name, keyword, search_date,
		COALESCE(summary, ''), COALESCE(code_verdict, '')
		FROM papers`
	args := []any{}
	if folder != "" {
		query += ` WHERE folder = ?`
		args = append(args, folder)
	}
	query += ` ORDER BY folder, rank`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Title, &e.Authors, &e.Year, &e.CitationCount,
			&e.CombinedScore, &e.Rank, &e.Folder, &e.FileName, &e.Keyword,
			&e.SearchDate, &e.Summary, &e.CodeVerdict); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Folders returns the distinct folders present in the index, sorted.
func (s *Store) Folders() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT folder FROM papers ORDER BY folder`)
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", err)
	}
	defer rows.Close()

	var folders []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scanning folder row: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}
