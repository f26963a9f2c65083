package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Aman-CERP/relterms/internal/config"
	"github.com/Aman-CERP/relterms/internal/content"
	"github.com/Aman-CERP/relterms/internal/db"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/hooks"
	"github.com/Aman-CERP/relterms/internal/indexer"
	"github.com/Aman-CERP/relterms/internal/metrics"
	"github.com/Aman-CERP/relterms/internal/stopwords"
	"github.com/Aman-CERP/relterms/internal/store"
	"github.com/Aman-CERP/relterms/internal/terms"
)

// openRetry governs reconnect attempts when the database is unavailable.
var openRetry = apperrors.DefaultRetryConfig()

// app is the set of collaborators a command works with.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *db.DB
	content   *content.Store
	cache     *store.CacheStore
	hooks     *hooks.Registry
	stopWords *stopwords.Loader
	metrics   *metrics.Metrics
	indexer   *indexer.Indexer
}

// appOptions override configuration for a single run.
type appOptions struct {
	locale  string
	workers int // 0 keeps indexer.workers
}

// openApp opens the database, creates missing tables and wires the indexer.
func (g *globals) openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg := g.cfg

	d, err := apperrors.RetryWithResult(ctx, openRetry, func() (*db.DB, error) {
		d, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, openError(cfg, err)
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  g.logger,
		db:      d,
		content: content.New(d),
		cache:   store.NewCacheStore(d),
		hooks:   newHooks(cfg),
		metrics: metrics.New(),
	}
	if err := a.content.InitSchema(ctx); err != nil {
		a.Close()
		return nil, apperrors.New(apperrors.ErrCodeStorageWrite, "failed to create content tables", err)
	}
	if err := a.cache.InitSchema(ctx); err != nil {
		a.Close()
		return nil, apperrors.New(apperrors.ErrCodeStorageWrite, "failed to create term cache table", err)
	}

	a.stopWords = newLoader(g, stopwords.WithHooks(a.hooks))

	workers := cfg.Indexer.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	a.indexer, err = indexer.New(indexer.Dependencies{
		Documents: a.content,
		Markers:   a.content,
		Cache:     a.cache,
		StopWords: a.stopWords,
		Hooks:     a.hooks,
		Metrics:   a.metrics,
		Logger:    g.logger,
	}, indexer.Config{
		Weights: terms.Weights{
			Title:    cfg.Weights.Title,
			Tag:      cfg.Weights.Tag,
			Category: cfg.Weights.Category,
		},
		Locale:        opts.locale,
		DocumentType:  cfg.Indexer.DocumentType,
		Workers:       workers,
		LinkCacheSize: cfg.Indexer.LinkCacheSize,
	})
	if err != nil {
		a.Close()
		return nil, apperrors.InternalError("failed to create indexer", err)
	}

	g.logger.Debug("app_opened",
		slog.String("driver", d.Driver()),
		slog.Int("workers", workers),
		slog.String("document_type", cfg.Indexer.DocumentType))
	return a, nil
}

// Close releases the database.
func (a *app) Close() {
	_ = a.cache.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warn("database_close_failed", slog.String("error", err.Error()))
	}
}

// newHooks registers the filters configured in cfg.
func newHooks(cfg *config.Config) *hooks.Registry {
	reg := hooks.NewRegistry()
	if extra := cfg.StopWords.Extra; len(extra) > 0 {
		hooks.Add(reg, hooks.IgnoredWords, func(words []string) []string {
			return append(words, extra...)
		})
	}
	return reg
}

// openError classifies a db.Open failure. Corruption is not retried.
func openError(cfg *config.Config, err error) error {
	if errors.Is(err, db.ErrCorrupt) {
		return apperrors.New(apperrors.ErrCodeStorageCorrupt, "database failed its integrity check", err).
			WithDetail("driver", cfg.Database.Driver).
			WithSuggestion("Restore the database from a backup; relterms leaves the file untouched")
	}
	return apperrors.New(apperrors.ErrCodeStorageUnavailable,
		fmt.Sprintf("failed to open %s database", cfg.Database.Driver), err).
		WithDetail("driver", cfg.Database.Driver)
}

// parseID parses a positive document id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError(fmt.Sprintf("invalid document id %q", arg), err).
			WithSuggestion("Document ids are positive integers")
	}
	return id, nil
}
