package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/relterms/internal/document"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/indexer"
	"github.com/Aman-CERP/relterms/internal/lock"
	"github.com/Aman-CERP/relterms/internal/output"
	"github.com/Aman-CERP/relterms/internal/schedule"
)

// Scheduled batches stop after breakerFailures consecutive failures and
// try again after breakerResetIntervals intervals.
const (
	breakerFailures       = 3
	breakerResetIntervals = 5
)

// cronResetTimeout is the breaker reset timeout for cron schedules.
const cronResetTimeout = time.Hour

const batchJob = "index-batch"

type indexOptions struct {
	limit   int
	workers int
	every   time.Duration
	cron    string
	locale  string
	wait    bool
	once    bool
}

func newIndexCmd(g *globals) *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index documents that have no term cache yet",
		Long: `Index every published document of the configured type that is not
marked as indexed, store its term scores and mark it.

A failing document is reported and left unmarked, so the next run retries
it. With --every or --cron (or schedule.interval in the config) batches
repeat until interrupted; a batch still running delays the next one.

Only one indexing run may work on a database at a time. A one-shot run
fails when another holds the lock unless --wait is given; a scheduled
batch that finds the lock held is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !cmd.Flags().Changed("limit") {
				opts.limit = g.cfg.Indexer.BatchLimit
			}
			if opts.every == 0 && opts.cron == "" && !opts.once {
				interval, err := g.cfg.ScheduleInterval()
				if err != nil {
					return apperrors.ConfigError("invalid schedule", err)
				}
				opts.every = interval
			}
			if opts.every < 0 {
				return apperrors.ValidationError("--every must be positive", nil)
			}

			return runIndex(ctx, g, cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum documents per batch, 0 for all (default: indexer.batch_limit)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Documents indexed concurrently (default: indexer.workers)")
	cmd.Flags().DurationVar(&opts.every, "every", 0, "Repeat batches at this interval until interrupted")
	cmd.Flags().StringVar(&opts.cron, "cron", "", "Repeat batches on a cron expression until interrupted")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "Stop-word locale (default: stopwords.locale, then the process locale)")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "Wait for another run to release the lock instead of failing")
	cmd.Flags().BoolVar(&opts.once, "once", false, "Run a single batch even when schedule.interval is set")
	cmd.MarkFlagsMutuallyExclusive("every", "cron", "once")

	cmd.AddCommand(newIndexDocCmd(g))

	return cmd
}

func runIndex(ctx context.Context, g *globals, cmd *cobra.Command, opts indexOptions) error {
	a, err := g.openApp(ctx, appOptions{locale: opts.locale, workers: opts.workers})
	if err != nil {
		return err
	}
	defer a.Close()

	out := output.New(cmd.OutOrStdout())
	runLock := lock.New(a.cfg.RunLockPath())

	if opts.every > 0 || opts.cron != "" {
		return runScheduled(ctx, a, runLock, opts, out)
	}

	if err := acquireRun(ctx, runLock, opts.wait); err != nil {
		return err
	}
	defer func() { _ = runLock.Release() }()

	return a.runBatch(ctx, opts.limit, out)
}

// runScheduled repeats batches until ctx is done. Document failures are
// reported but only listing and storage failures open the breaker.
func runScheduled(ctx context.Context, a *app, runLock *lock.RunLock, opts indexOptions, out *output.Writer) error {
	reset := cronResetTimeout
	if opts.every > 0 {
		reset = breakerResetIntervals * opts.every
	}
	breaker := apperrors.NewCircuitBreaker(batchJob,
		apperrors.WithMaxFailures(breakerFailures),
		apperrors.WithResetTimeout(reset))

	job := func(jobCtx context.Context) error {
		if err := runLock.TryAcquire(); err != nil {
			if errors.Is(err, lock.ErrLocked) {
				a.logger.Info("index_batch_skipped",
					slog.String("reason", "locked"),
					slog.String("lock", runLock.Path()))
				return nil
			}
			return err
		}
		defer func() { _ = runLock.Release() }()

		var batchErr error
		err := breaker.Execute(func() error {
			batchErr = a.runBatch(jobCtx, opts.limit, out)
			if apperrors.GetCode(batchErr) == apperrors.ErrCodeIndexFailed {
				return nil
			}
			return batchErr
		})
		if errors.Is(err, apperrors.ErrCircuitOpen) {
			a.logger.Warn("index_batch_skipped",
				slog.String("reason", "circuit_open"),
				slog.Int("failures", breaker.Failures()))
			return nil
		}
		return batchErr
	}

	sched := schedule.New(a.logger)
	var err error
	if opts.cron != "" {
		err = sched.Cron(batchJob, opts.cron, job)
	} else {
		err = sched.Every(batchJob, opts.every, job)
	}
	if err != nil {
		return apperrors.ValidationError("invalid schedule", err)
	}

	if opts.cron != "" {
		out.Statusf("⏱", "Indexing on %q, press Ctrl+C to stop", opts.cron)
	} else {
		out.Statusf("⏱", "Indexing every %s, press Ctrl+C to stop", opts.every)
	}
	sched.Run(ctx)
	out.Status("", "Stopped")
	return nil
}

// runBatch indexes one batch, writes the metrics textfile and prints a
// summary.
func (a *app) runBatch(ctx context.Context, limit int, out *output.Writer) error {
	report, err := a.indexer.IndexBatch(ctx, limit)

	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			a.logger.Warn("metrics_textfile_failed",
				slog.String("path", path),
				slog.String("error", werr.Error()))
		}
	}

	printReport(out, report)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return apperrors.New(apperrors.ErrCodeStorageUnavailable, "failed to list unindexed documents", err)
	}
	if ferr := report.Err(); ferr != nil {
		return apperrors.New(apperrors.ErrCodeIndexFailed,
			fmt.Sprintf("%d of %d documents failed to index", len(report.Failures), report.Listed), ferr).
			WithDetail("failed", strconv.Itoa(len(report.Failures))).
			WithSuggestion("Failed documents stay unmarked and are retried by the next run")
	}
	return nil
}

func printReport(out *output.Writer, r *indexer.BatchReport) {
	if r == nil {
		return
	}
	if r.Listed == 0 {
		out.Successf("Nothing to index")
		return
	}
	out.Successf("Indexed %d of %d documents in %s", r.Indexed, r.Listed, r.Duration.Round(time.Millisecond))
	for _, f := range r.Failures {
		out.Errorf("document %d: %v", f.DocumentID, f.Err)
	}
	if r.Skipped > 0 {
		out.Warningf("%d documents skipped (interrupted)", r.Skipped)
	}
}

// acquireRun takes the run lock, waiting for it when wait is set.
func acquireRun(ctx context.Context, runLock *lock.RunLock, wait bool) error {
	var err error
	if wait {
		err = runLock.Acquire(ctx)
	} else {
		err = runLock.TryAcquire()
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, lock.ErrLocked) {
		return apperrors.New(apperrors.ErrCodeRunLocked, "another indexing run holds the lock", err).
			WithDetail("lock", runLock.Path()).
			WithSuggestion("Wait for the other run to finish, or pass --wait")
	}
	return apperrors.StorageError("failed to take the run lock", err)
}

func newIndexDocCmd(g *globals) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "doc ID...",
		Short: "Rebuild the term cache of specific documents",
		Long: `Rebuild the term cache of the given documents regardless of their
marker or status, and mark them. Unknown ids are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := g.openApp(ctx, appOptions{locale: locale})
			if err != nil {
				return err
			}
			defer a.Close()

			return a.indexDocuments(ctx, ids, output.New(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "Stop-word locale (default: stopwords.locale, then the process locale)")

	return cmd
}

func (a *app) indexDocuments(ctx context.Context, ids []int64, out *output.Writer) error {
	var failed []int64
	for _, id := range ids {
		if _, err := a.content.GetDocument(ctx, id); errors.Is(err, document.ErrNotFound) {
			out.Warningf("document %d not found, nothing to index", id)
			continue
		}

		if err := a.indexer.IndexDocument(ctx, id); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out.Errorf("document %d: %v", id, err)
			failed = append(failed, id)
			continue
		}

		stored, err := a.cache.Terms(ctx, id)
		if err != nil {
			return apperrors.StorageError("failed to read stored terms", err)
		}
		out.Successf("Indexed document %d (%d terms)", id, len(stored))
	}

	if len(failed) > 0 {
		return apperrors.New(apperrors.ErrCodeIndexFailed,
			fmt.Sprintf("%d of %d documents failed to index", len(failed), len(ids)), nil)
	}
	return nil
}
