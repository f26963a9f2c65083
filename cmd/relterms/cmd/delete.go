package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/output"
)

func newDeleteCmd(g *globals) *cobra.Command {
	var requeue bool

	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Remove the stored terms of documents",
		Long: `Remove every stored term row of the given documents.

The indexed marker is left alone, so batches will not rebuild the terms.
Pass --requeue to clear the marker as well and let the next batch index
the documents again.`,
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

			ctx := cmd.Context()
			a, err := g.openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			out := output.New(cmd.OutOrStdout())
			for _, id := range ids {
				if err := a.indexer.Delete(ctx, id); err != nil {
					return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to delete terms", err).
						WithDetail("document", strconv.FormatInt(id, 10))
				}
				if requeue {
					if err := a.content.Unmark(ctx, id); err != nil {
						return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to clear indexed marker", err).
							WithDetail("document", strconv.FormatInt(id, 10))
					}
					out.Successf("Deleted terms of document %d and queued it for indexing", id)
					continue
				}
				out.Successf("Deleted terms of document %d", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&requeue, "requeue", false, "Also clear the indexed marker so the next batch rebuilds the terms")

	return cmd
}
