// Package indexer drives the related-terms pipeline: it tokenizes a
// document, merges weighted title, tag and category terms, aggregates them
// into scores, stores the scores and marks the document as indexed.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/relterms/internal/document"
	"github.com/Aman-CERP/relterms/internal/hooks"
	"github.com/Aman-CERP/relterms/internal/metrics"
	"github.com/Aman-CERP/relterms/internal/stopwords"
	"github.com/Aman-CERP/relterms/internal/store"
	"github.com/Aman-CERP/relterms/internal/terms"
)

// DefaultLinkCacheSize bounds the memoised link targets of one run.
const DefaultLinkCacheSize = 1024

// Dependencies are the collaborators the indexer reads from and writes to.
type Dependencies struct {
	// Documents is the host content store (required).
	Documents document.Store

	// Markers tracks indexed documents (required).
	Markers document.MarkerStore

	// Cache persists term scores (required).
	Cache store.TermCache

	// StopWords loads the stop-word list. Nil disables stop-word filtering.
	StopWords *stopwords.Loader

	// Hooks holds weight filters. Nil means no filters.
	Hooks *hooks.Registry

	// Metrics records outcomes. Nil records nothing.
	Metrics *metrics.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Config tunes the pipeline.
type Config struct {
	// Weights are the base source weights before hooks run.
	Weights terms.Weights

	// Locale selects the stop-word list. Empty uses the loader default.
	Locale string

	// DocumentType is the type listed by IndexBatch and counted by
	// CountTerms when no type is given. Empty means document.DefaultType.
	DocumentType string

	// Workers is the number of documents indexed concurrently by IndexBatch.
	// Values below 1 mean sequential.
	Workers int

	// LinkCacheSize bounds the link resolution cache; 0 disables it.
	LinkCacheSize int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Weights:       terms.DefaultWeights(),
		DocumentType:  document.DefaultType,
		Workers:       1,
		LinkCacheSize: DefaultLinkCacheSize,
	}
}

// Indexer builds the related-terms cache incrementally.
// It is safe for concurrent use.
type Indexer struct {
	docs      document.Store
	markers   document.MarkerStore
	cache     store.TermCache
	stopWords *stopwords.Loader
	hooks     *hooks.Registry
	metrics   *metrics.Metrics
	logger    *slog.Logger

	config    Config
	tokenizer *terms.Tokenizer
	locks     keyedMutex
}

// New creates an Indexer.
func New(deps Dependencies, cfg Config) (*Indexer, error) {
	if deps.Documents == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if deps.Markers == nil {
		return nil, fmt.Errorf("marker store is required")
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("term cache is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DocumentType == "" {
		cfg.DocumentType = document.DefaultType
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Indexer{
		docs:      deps.Documents,
		markers:   deps.Markers,
		cache:     deps.Cache,
		stopWords: deps.StopWords,
		hooks:     deps.Hooks,
		metrics:   deps.Metrics,
		logger:    logger,
		config:    cfg,
		tokenizer: terms.NewTokenizer(deps.Documents, cfg.LinkCacheSize, logger),
	}, nil
}

// CountTerms returns the number of stored term rows for docType.
// Empty docType uses the configured document type.
func (i *Indexer) CountTerms(ctx context.Context, docType string) (int, error) {
	if docType == "" {
		docType = i.config.DocumentType
	}
	return i.cache.Count(ctx, docType)
}

// Delete removes the stored terms of docID. The indexed marker is left as is.
func (i *Indexer) Delete(ctx context.Context, docID int64) error {
	unlock := i.locks.Lock(docID)
	defer unlock()

	if err := i.cache.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete terms of document %d: %w", docID, err)
	}
	return nil
}

// TermsOf computes the scores of doc without storing them. Tags and
// categories are read from the document store.
func (i *Indexer) TermsOf(ctx context.Context, doc *document.Document) (terms.Scores, error) {
	i.tokenizer.Purge()
	return i.termsOf(ctx, doc, i.loadStopWords())
}

// IndexDocument recomputes and stores the terms of docID, then marks it as
// indexed. A document that does not exist is skipped without error. A failed
// write leaves the marker unset.
func (i *Indexer) IndexDocument(ctx context.Context, docID int64) error {
	i.tokenizer.Purge()
	return i.indexDocument(ctx, docID, i.loadStopWords())
}

func (i *Indexer) indexDocument(ctx context.Context, docID int64, stop stopwords.Set) error {
	start := time.Now()

	unlock := i.locks.Lock(docID)
	defer unlock()

	doc, err := i.docs.GetDocument(ctx, docID)
	if errors.Is(err, document.ErrNotFound) {
		i.logger.Debug("index_document_missing", slog.Int64("document_id", docID))
		i.metrics.ObserveDocument(metrics.ResultSkipped, 0, time.Since(start))
		return nil
	}
	if err != nil {
		i.metrics.ObserveDocument(metrics.ResultFailed, 0, time.Since(start))
		return fmt.Errorf("load document %d: %w", docID, err)
	}

	scores, err := i.termsOf(ctx, doc, stop)
	if err != nil {
		i.metrics.ObserveDocument(metrics.ResultFailed, 0, time.Since(start))
		return err
	}

	docType := doc.Type
	if docType == "" {
		docType = i.config.DocumentType
	}

	if err := i.cache.Replace(ctx, docID, scores, docType); err != nil {
		i.metrics.ObserveDocument(metrics.ResultFailed, 0, time.Since(start))
		return fmt.Errorf("store terms of document %d: %w", docID, err)
	}
	if err := i.markers.SetMarked(ctx, docID); err != nil {
		i.metrics.ObserveDocument(metrics.ResultFailed, len(scores), time.Since(start))
		return fmt.Errorf("mark document %d: %w", docID, err)
	}

	i.metrics.ObserveDocument(metrics.ResultIndexed, len(scores), time.Since(start))
	i.logger.Debug("index_document_done",
		slog.Int64("document_id", docID),
		slog.Int("terms", len(scores)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (i *Indexer) termsOf(ctx context.Context, doc *document.Document, stop stopwords.Set) (terms.Scores, error) {
	tags, err := i.docs.Tags(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load tags of document %d: %w", doc.ID, err)
	}
	categories, err := i.docs.Categories(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load categories of document %d: %w", doc.ID, err)
	}

	bag := terms.Merge(terms.Sources{
		Content:    i.tokenizer.Tokenize(ctx, doc),
		Title:      doc.Title,
		Tags:       tags,
		Categories: categories,
	}, i.config.Weights.Filtered(i.hooks))

	return terms.Aggregate(bag, stop), nil
}

func (i *Indexer) loadStopWords() stopwords.Set {
	if i.stopWords == nil {
		return stopwords.Set{}
	}
	return i.stopWords.Load(i.config.Locale)
}

// DocumentError is the failure of one document in a batch.
type DocumentError struct {
	DocumentID int64
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d: %v", e.DocumentID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// BatchReport summarises an IndexBatch run.
type BatchReport struct {
	// Listed is the number of unindexed documents found.
	Listed int

	// Indexed is the number of documents processed without error.
	Indexed int

	// Failures holds one entry per failed document, ordered by id.
	Failures []*DocumentError

	// Skipped is the number of listed documents not attempted because the
	// context was cancelled.
	Skipped int

	// Duration is the total batch time.
	Duration time.Duration
}

// Err combines all document failures, or returns nil when there were none.
func (r *BatchReport) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// IndexBatch indexes up to limit published documents of the configured type
// that are not marked yet. limit <= 0 means all of them. A failing document
// is recorded in the report and does not stop the batch. The returned error
// reports a listing failure or cancellation of ctx.
func (i *Indexer) IndexBatch(ctx context.Context, limit int) (*BatchReport, error) {
	start := time.Now()
	report := &BatchReport{}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	docs, err := i.docs.ListUnmarkedPublished(ctx, i.config.DocumentType, limit)
	if err != nil {
		return report, fmt.Errorf("list unindexed documents: %w", err)
	}
	report.Listed = len(docs)

	// link targets are memoised for this batch only
	i.tokenizer.Purge()
	stop := i.loadStopWords()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(i.config.Workers)

	for _, doc := range docs {
		if ctx.Err() != nil {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			continue
		}

		id := doc.ID
		g.Go(func() error {
			err := i.indexDocument(ctx, id, stop)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, &DocumentError{DocumentID: id, Err: err})
				i.logger.Warn("index_document_failed",
					slog.Int64("document_id", id),
					slog.String("error", err.Error()))
				return nil
			}
			report.Indexed++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Failures, func(a, b int) bool {
		return report.Failures[a].DocumentID < report.Failures[b].DocumentID
	})
	report.Duration = time.Since(start)

	i.metrics.ObserveBatch(report.Listed, len(report.Failures), time.Now())
	i.logger.Info("index_batch_complete",
		slog.Int("listed", report.Listed),
		slog.Int("indexed", report.Indexed),
		slog.Int("failed", len(report.Failures)),
		slog.Int("skipped", report.Skipped),
		slog.Duration("duration", report.Duration))

	return report, ctx.Err()
}
