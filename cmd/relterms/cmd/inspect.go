package cmd

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/relterms/internal/document"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/output"
	"github.com/Aman-CERP/relterms/internal/terms"
)

type inspectResult struct {
	ID         int64              `json:"id"`
	Title      string             `json:"title"`
	Type       string             `json:"type"`
	Status     string             `json:"status"`
	Tags       []string           `json:"tags"`
	Categories []string           `json:"categories"`
	Marked     bool               `json:"marked"`
	Source     string             `json:"source"`
	Terms      map[string]float64 `json:"terms"`
}

func newInspectCmd(g *globals) *cobra.Command {
	var (
		stored     bool
		jsonOutput bool
		locale     string
	)

	cmd := &cobra.Command{
		Use:   "inspect ID",
		Short: "Show the term scores of a document",
		Long: `Compute the term scores of a document without storing them, ordered by
descending score. With --stored the rows currently in the cache are shown
instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := g.openApp(ctx, appOptions{locale: locale})
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := a.content.GetDocument(ctx, id)
			if errors.Is(err, document.ErrNotFound) {
				return apperrors.New(apperrors.ErrCodeDocumentNotFound, "document not found", err).
					WithDetail("document", strconv.FormatInt(id, 10))
			}
			if err != nil {
				return apperrors.StorageError("failed to load document", err)
			}

			marked, err := a.content.IsMarked(ctx, id)
			if err != nil {
				return apperrors.StorageError("failed to read indexed marker", err)
			}

			result := inspectResult{
				ID:     doc.ID,
				Title:  doc.Title,
				Type:   doc.Type,
				Status: doc.Status,
				Marked: marked,
			}
			if result.Tags, err = a.content.Tags(ctx, id); err != nil {
				return apperrors.StorageError("failed to load tags", err)
			}
			if result.Categories, err = a.content.Categories(ctx, id); err != nil {
				return apperrors.StorageError("failed to load categories", err)
			}
			if stored {
				result.Source = "cache"
				result.Terms, err = a.cache.Terms(ctx, id)
			} else {
				result.Source = "computed"
				result.Terms, err = a.indexer.TermsOf(ctx, doc)
			}
			if err != nil {
				return apperrors.New(apperrors.ErrCodeIndexFailed, "failed to get terms", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			printInspect(output.New(cmd.OutOrStdout()), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stored, "stored", false, "Show the rows stored in the cache")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&locale, "locale", "", "Stop-word locale (default: stopwords.locale, then the process locale)")

	return cmd
}

func printInspect(out *output.Writer, r inspectResult) {
	out.Fields(
		output.Field{Key: "document", Value: r.ID},
		output.Field{Key: "title", Value: r.Title},
		output.Field{Key: "type", Value: r.Type},
		output.Field{Key: "status", Value: r.Status},
		output.Field{Key: "tags", Value: strings.Join(r.Tags, ", ")},
		output.Field{Key: "categories", Value: strings.Join(r.Categories, ", ")},
		output.Field{Key: "indexed", Value: r.Marked},
		output.Field{Key: "source", Value: r.Source},
	)
	out.Newline()

	sorted := terms.Scores(r.Terms).Sorted()
	rows := make([]output.ScoreRow, 0, len(sorted))
	for _, s := range sorted {
		rows = append(rows, output.ScoreRow{Term: s.Term, Score: s.Weight})
	}
	out.Scores(rows)
}
