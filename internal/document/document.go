// Package document defines the content documents read by the term indexer
// and the collaborator interfaces through which they are obtained.
// The host content store owns documents and their indexed markers; the
// indexer only reads documents and sets markers.
package document

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when a document does not exist.
var ErrNotFound = errors.New("document not found")

// StatusPublished is the status of documents eligible for batch indexing.
const StatusPublished = "publish"

// DefaultType is the document type indexed when none is configured.
const DefaultType = "post"

// Document is a piece of host content.
type Document struct {
	ID         int64
	Title      string
	Body       string   // Raw markup
	Type       string   // e.g. "post", "page"
	Status     string   // e.g. "publish", "draft"
	URL        string   // Permalink used for link resolution
	Tags       []string // Tag names in store order
	Categories []string // Category names in store order
}

// Store is the read side of the host content store.
type Store interface {
	// GetDocument returns the document with the given id, or ErrNotFound.
	GetDocument(ctx context.Context, id int64) (*Document, error)

	// ResolveURL maps a link target to a document id.
	// ok is false when the URL does not point at a known document.
	ResolveURL(ctx context.Context, url string) (id int64, ok bool, err error)

	// Tags returns the tag names of a document; empty when it has none.
	Tags(ctx context.Context, id int64) ([]string, error)

	// Categories returns the category names of a document; empty when it has none.
	Categories(ctx context.Context, id int64) ([]string, error)

	// ListUnmarkedPublished returns published documents of docType that lack
	// the indexed marker, in a stable order. limit <= 0 means no limit.
	ListUnmarkedPublished(ctx context.Context, docType string, limit int) ([]Document, error)
}

// MarkerStore tracks which documents have an up-to-date term index.
type MarkerStore interface {
	IsMarked(ctx context.Context, id int64) (bool, error)
	SetMarked(ctx context.Context, id int64) error
}
