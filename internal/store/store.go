// Package store persists the related-terms cache: one row per
// (document, term) with the term's normalised weight and the document type.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// TermCache is the persistence the indexer writes term scores through.
type TermCache interface {
	// Replace atomically swaps the stored scores of a document.
	Replace(ctx context.Context, docID int64, scores map[string]float64, docType string) error

	// DeleteDocument removes all stored scores of a document.
	DeleteDocument(ctx context.Context, docID int64) error

	// Count returns the number of stored rows for a document type.
	Count(ctx context.Context, docType string) (int, error)

	// Terms returns the stored scores of a document.
	Terms(ctx context.Context, docID int64) (map[string]float64, error)
}
