package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Aman-CERP/relterms/internal/db"
)

// TableName is the term cache table.
const TableName = "related_terms"

var cacheSchema = []string{
	`CREATE TABLE IF NOT EXISTS related_terms (
		document_id   BIGINT NOT NULL,
		term          TEXT NOT NULL,
		weight        DOUBLE PRECISION NOT NULL,
		document_type TEXT NOT NULL,
		PRIMARY KEY (document_id, term)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_related_terms_type ON related_terms(document_type)`,
	`CREATE INDEX IF NOT EXISTS idx_related_terms_term ON related_terms(term)`,
}

// CacheStore persists per-document term scores in the related_terms table.
type CacheStore struct {
	mu     sync.RWMutex
	db     *db.DB
	closed bool
}

// Verify interface implementation at compile time
var _ TermCache = (*CacheStore)(nil)

// NewCacheStore wraps an open database. Call InitSchema before first use.
func NewCacheStore(d *db.DB) *CacheStore {
	return &CacheStore{db: d}
}

// InitSchema creates the cache table and its indexes if missing.
func (s *CacheStore) InitSchema(ctx context.Context) error {
	return s.db.Migrate(ctx, cacheSchema...)
}

// Replace deletes every row of docID and inserts one row per score, in a
// single transaction. An empty scores map leaves the document with no rows.
func (s *CacheStore) Replace(ctx context.Context, docID int64, scores map[string]float64, docType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		s.db.Rebind(`DELETE FROM related_terms WHERE document_id = ?`), docID); err != nil {
		return fmt.Errorf("failed to delete terms of document %d: %w", docID, err)
	}

	if len(scores) > 0 {
		insertStmt, err := tx.PrepareContext(ctx, s.db.Rebind(
			`INSERT INTO related_terms (document_id, term, weight, document_type) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare insert statement: %w", err)
		}
		defer insertStmt.Close()

		for _, term := range sortedTerms(scores) {
			if _, err := insertStmt.ExecContext(ctx, docID, term, scores[term], docType); err != nil {
				return fmt.Errorf("failed to insert term %q of document %d: %w", term, docID, err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes every row of docID.
func (s *CacheStore) DeleteDocument(ctx context.Context, docID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`DELETE FROM related_terms WHERE document_id = ?`), docID)
	if err != nil {
		return fmt.Errorf("failed to delete terms of document %d: %w", docID, err)
	}
	return nil
}

// Count returns the number of rows stored for docType.
func (s *CacheStore) Count(ctx context.Context, docType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		s.db.Rebind(`SELECT COUNT(term) FROM related_terms WHERE document_type = ?`), docType).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count terms: %w", err)
	}
	return n, nil
}

// Terms returns the stored scores of docID. A document without rows yields
// an empty map.
func (s *CacheStore) Terms(ctx context.Context, docID int64) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		s.db.Rebind(`SELECT term, weight FROM related_terms WHERE document_id = ?`), docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query terms of document %d: %w", docID, err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var (
			term   string
			weight float64
		)
		if err := rows.Scan(&term, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		scores[term] = weight
	}
	return scores, rows.Err()
}

// Close marks the store closed. The database handle is owned by the caller.
func (s *CacheStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func sortedTerms(scores map[string]float64) []string {
	out := make([]string, 0, len(scores))
	for term := range scores {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}
