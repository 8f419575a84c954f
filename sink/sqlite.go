package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "github.com/mattn/go-sqlite3"

	"github.com/normgraph/normgraph/search"
)

// indexSchema stores each document twice: a relational row carrying the
// full JSON payload, and an external-content FTS5 row over the fields the
// query surface searches across. The triggers keep the two in sync.
const indexSchema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    uri TEXT NOT NULL,
    doc_type TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    label TEXT NOT NULL DEFAULT '',
    norm_number TEXT NOT NULL DEFAULT '',
    paragraph_number TEXT NOT NULL DEFAULT '',
    text_content TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
    label, title, text_content, norm_number,
    content='documents',
    content_rowid='rowid',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
    INSERT INTO documents_fts(rowid, label, title, text_content, norm_number)
    VALUES (new.rowid, new.label, new.title, new.text_content, new.norm_number);
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, label, title, text_content, norm_number)
    VALUES ('delete', old.rowid, old.label, old.title, old.text_content, old.norm_number);
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, label, title, text_content, norm_number)
    VALUES ('delete', old.rowid, old.label, old.title, old.text_content, old.norm_number);
    INSERT INTO documents_fts(rowid, label, title, text_content, norm_number)
    VALUES (new.rowid, new.label, new.title, new.text_content, new.norm_number);
END;
`

// Index is an embedded FTS5 search index for environments without a Solr
// instance. It satisfies the same sink contract: batches stay invisible
// until Commit publishes them.
type Index struct {
	db *sql.DB
	tx *sql.Tx
}

// OpenIndex opens (or creates) the index database at path.
func OpenIndex(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("index: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("index: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: pinging database: %w", err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Index{db: db}, nil
}

// Close rolls back any uncommitted batch and closes the database.
func (i *Index) Close() error {
	if i.tx != nil {
		i.tx.Rollback()
		i.tx = nil
	}
	return i.db.Close()
}

// AddBatch stages documents inside a transaction that stays open until
// Commit. Re-adding an id replaces the stored document.
func (i *Index) AddBatch(ctx context.Context, docs []search.Document) error {
	if i.tx == nil {
		tx, err := i.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("index: begin batch: %w", err)
		}
		i.tx = tx
	}

	for _, doc := range docs {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("index: encode %s: %w", doc.ID, err)
		}
		_, err = i.tx.ExecContext(ctx, `
			INSERT INTO documents (id, uri, doc_type, title, label, norm_number, paragraph_number, text_content, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				uri = excluded.uri,
				doc_type = excluded.doc_type,
				title = excluded.title,
				label = excluded.label,
				norm_number = excluded.norm_number,
				paragraph_number = excluded.paragraph_number,
				text_content = excluded.text_content,
				payload = excluded.payload
		`, doc.ID, doc.URI, doc.Type, doc.Title, doc.Label, doc.NormNumber,
			doc.ParagraphNumber, doc.TextContent, string(payload))
		if err != nil {
			return fmt.Errorf("index: insert %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Commit publishes every batch added since the last commit.
func (i *Index) Commit(ctx context.Context) error {
	if i.tx == nil {
		return nil
	}
	err := i.tx.Commit()
	i.tx = nil
	if err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	return nil
}

// Clear drops all documents, discarding any uncommitted batch first.
func (i *Index) Clear(ctx context.Context) error {
	if i.tx != nil {
		i.tx.Rollback()
		i.tx = nil
	}
	if _, err := i.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}
	return nil
}

// Count reports the number of committed documents.
func (i *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// SearchResult is one ranked hit from the embedded index.
type SearchResult struct {
	Document search.Document
	Score    float64
	Snippet  string
}

// Search runs a BM25-ranked full-text query. docType narrows the result
// to one document type when set.
func (i *Index) Search(ctx context.Context, query, docType string, limit int) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	q := `
		SELECT d.payload, f.rank, snippet(documents_fts, 2, '[', ']', '…', 12)
		FROM documents_fts f
		JOIN documents d ON d.rowid = f.rowid
		WHERE documents_fts MATCH ?`
	args := []interface{}{match}
	if docType != "" {
		q += " AND d.doc_type = ?"
		args = append(args, docType)
	}
	q += " ORDER BY f.rank LIMIT ?"
	args = append(args, limit)

	rows, err := i.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			payload string
			rank    float64
			snippet string
		)
		if err := rows.Scan(&payload, &rank, &snippet); err != nil {
			return nil, fmt.Errorf("index: scan: %w", err)
		}
		var doc search.Document
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("index: decode payload: %w", err)
		}
		// FTS5 rank is negative (lower = better), so negate for a
		// natural "higher = better" score.
		results = append(results, SearchResult{Document: doc, Score: -rank, Snippet: snippet})
	}
	return results, rows.Err()
}

// ftsQuery rewrites free text into a quoted OR query, dropping tokens
// with no searchable characters (stray section signs, bare punctuation).
func ftsQuery(q string) string {
	var parts []string
	for _, tok := range strings.Fields(q) {
		tok = strings.ReplaceAll(tok, `"`, "")
		if !strings.ContainsFunc(tok, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		parts = append(parts, `"`+tok+`"`)
	}
	return strings.Join(parts, " OR ")
}
