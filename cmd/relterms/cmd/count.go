package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/Aman-CERP/relterms/internal/errors"
)

func newCountCmd(g *globals) *cobra.Command {
	var docType string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored term rows",
		Long: `Print the number of term rows in the cache for a document type.
The number alone is written to stdout so it can be used in scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.indexer.CountTerms(cmd.Context(), docType)
			if err != nil {
				return apperrors.StorageError("failed to count terms", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}

	cmd.Flags().StringVar(&docType, "type", "", "Document type (default: indexer.document_type)")

	return cmd
}
