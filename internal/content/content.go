// Package content is a SQL-backed reference host content store. It keeps
// documents, their tag and category names, and the per-document indexed
// marker, and implements document.Store and document.MarkerStore.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Aman-CERP/relterms/internal/db"
	"github.com/Aman-CERP/relterms/internal/document"
)

// Taxonomy names.
const (
	TaxonomyTag      = "tag"
	TaxonomyCategory = "category"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id     BIGINT PRIMARY KEY,
		title  TEXT NOT NULL DEFAULT '',
		body   TEXT NOT NULL DEFAULT '',
		type   TEXT NOT NULL DEFAULT 'post',
		status TEXT NOT NULL DEFAULT 'publish',
		url    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_type_status ON documents(type, status)`,
	`CREATE TABLE IF NOT EXISTS document_taxonomy (
		document_id BIGINT NOT NULL,
		taxonomy    TEXT NOT NULL,
		position    INTEGER NOT NULL,
		name        TEXT NOT NULL,
		PRIMARY KEY (document_id, taxonomy, position)
	)`,
	`CREATE TABLE IF NOT EXISTS index_markers (
		document_id BIGINT PRIMARY KEY
	)`,
}

// Store reads and writes host content in a SQL database.
type Store struct {
	db *db.DB
}

// Verify interface implementation at compile time
var (
	_ document.Store       = (*Store)(nil)
	_ document.MarkerStore = (*Store)(nil)
)

// New wraps an open database. Call InitSchema before first use.
func New(d *db.DB) *Store {
	return &Store{db: d}
}

// InitSchema creates the content tables if missing.
func (s *Store) InitSchema(ctx context.Context) error {
	return s.db.Migrate(ctx, schema...)
}

// GetDocument returns the document with id, without tags or categories.
func (s *Store) GetDocument(ctx context.Context, id int64) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT id, title, body, type, status, url FROM documents WHERE id = ?`), id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, document.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %d: %w", id, err)
	}
	return doc, nil
}

// ResolveURL finds the document whose permalink is url. A trailing slash
// on either side is ignored. The lowest id wins when several match.
func (s *Store) ResolveURL(ctx context.Context, url string) (int64, bool, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return 0, false, nil
	}
	bare := strings.TrimSuffix(url, "/")

	var id int64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT id FROM documents WHERE url = ? OR url = ? ORDER BY id LIMIT 1`),
		bare, bare+"/").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve url %q: %w", url, err)
	}
	return id, true, nil
}

// Tags returns the tag names of id in stored order.
func (s *Store) Tags(ctx context.Context, id int64) ([]string, error) {
	return s.taxonomy(ctx, id, TaxonomyTag)
}

// Categories returns the category names of id in stored order.
func (s *Store) Categories(ctx context.Context, id int64) ([]string, error) {
	return s.taxonomy(ctx, id, TaxonomyCategory)
}

func (s *Store) taxonomy(ctx context.Context, id int64, taxonomy string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		`SELECT name FROM document_taxonomy WHERE document_id = ? AND taxonomy = ? ORDER BY position`),
		id, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s names of document %d: %w", taxonomy, id, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan %s name: %w", taxonomy, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListUnmarkedPublished returns published documents of docType without an
// indexed marker, ordered by id. limit <= 0 means no limit.
func (s *Store) ListUnmarkedPublished(ctx context.Context, docType string, limit int) ([]document.Document, error) {
	query := `SELECT d.id, d.title, d.body, d.type, d.status, d.url
		FROM documents d
		LEFT JOIN index_markers m ON m.document_id = d.id
		WHERE m.document_id IS NULL AND d.status = ? AND d.type = ?
		ORDER BY d.id`
	args := []any{document.StatusPublished, docType}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unindexed documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// IsMarked reports whether id carries the indexed marker.
func (s *Store) IsMarked(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT COUNT(*) FROM index_markers WHERE document_id = ?`), id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to read marker of document %d: %w", id, err)
	}
	return n > 0, nil
}

// SetMarked sets the indexed marker of id. Setting it twice is a no-op.
func (s *Store) SetMarked(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO index_markers (document_id) VALUES (?) ON CONFLICT (document_id) DO NOTHING`), id)
	if err != nil {
		return fmt.Errorf("failed to set marker of document %d: %w", id, err)
	}
	return nil
}

// Unmark clears the indexed marker of id so the next batch picks it up.
func (s *Store) Unmark(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM index_markers WHERE document_id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to clear marker of document %d: %w", id, err)
	}
	return nil
}

// Save inserts or updates doc together with its tags and categories, and
// clears its indexed marker. Empty Type and Status default to
// document.DefaultType and document.StatusPublished.
func (s *Store) Save(ctx context.Context, doc document.Document) error {
	if doc.Type == "" {
		doc.Type = document.DefaultType
	}
	if doc.Status == "" {
		doc.Status = document.StatusPublished
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO documents (id, title, body, type, status, url) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title, body = excluded.body, type = excluded.type,
			status = excluded.status, url = excluded.url`),
		doc.ID, doc.Title, doc.Body, doc.Type, doc.Status, doc.URL)
	if err != nil {
		return fmt.Errorf("failed to save document %d: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM document_taxonomy WHERE document_id = ?`), doc.ID); err != nil {
		return fmt.Errorf("failed to clear taxonomy of document %d: %w", doc.ID, err)
	}

	insert := s.db.Rebind(
		`INSERT INTO document_taxonomy (document_id, taxonomy, position, name) VALUES (?, ?, ?, ?)`)
	for taxonomy, names := range map[string][]string{
		TaxonomyTag:      doc.Tags,
		TaxonomyCategory: doc.Categories,
	} {
		for i, name := range names {
			if _, err := tx.ExecContext(ctx, insert, doc.ID, taxonomy, i, name); err != nil {
				return fmt.Errorf("failed to save %s %q of document %d: %w", taxonomy, name, doc.ID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		`DELETE FROM index_markers WHERE document_id = ?`), doc.ID); err != nil {
		return fmt.Errorf("failed to clear marker of document %d: %w", doc.ID, err)
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*document.Document, error) {
	var doc document.Document
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Body, &doc.Type, &doc.Status, &doc.URL); err != nil {
		return nil, err
	}
	return &doc, nil
}
