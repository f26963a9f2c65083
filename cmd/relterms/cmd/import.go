package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/relterms/internal/document"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/output"
)

// importedDocument is one entry of an import file.
type importedDocument struct {
	ID         int64    `yaml:"id"`
	Title      string   `yaml:"title"`
	Body       string   `yaml:"body"`
	Type       string   `yaml:"type"`
	Status     string   `yaml:"status"`
	URL        string   `yaml:"url"`
	Tags       []string `yaml:"tags"`
	Categories []string `yaml:"categories"`
}

func newImportCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load documents into the content store",
		Long: `Load documents from a YAML sequence into the content store. Use "-" to
read from stdin. Each entry has an id and optional title, body, type,
status, url, tags and categories:

  - id: 1
    title: Hello
    body: <p>Hello world</p>
    tags: [greeting]

type defaults to indexer.document_type and status to "publish". A document
that already exists is replaced and its indexed marker cleared, so the
next batch indexes it again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := g.openApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			for _, d := range docs {
				doc := document.Document{
					ID:         d.ID,
					Title:      d.Title,
					Body:       d.Body,
					Type:       d.Type,
					Status:     d.Status,
					URL:        d.URL,
					Tags:       d.Tags,
					Categories: d.Categories,
				}
				if doc.Type == "" {
					doc.Type = a.cfg.Indexer.DocumentType
				}
				if err := a.content.Save(ctx, doc); err != nil {
					return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to save document", err).
						WithDetail("document", strconv.FormatInt(d.ID, 10))
				}
			}

			output.New(cmd.OutOrStdout()).Successf("Imported %d documents", len(docs))
			return nil
		},
	}

	return cmd
}

// readDocuments decodes and validates an import file, or stdin for "-".
func readDocuments(path string, stdin io.Reader) ([]importedDocument, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, apperrors.ValidationError("failed to read import file", err).
			WithDetail("file", path)
	}

	var docs []importedDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&docs); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.ValidationError("failed to parse import file", err).
			WithDetail("file", path).
			WithSuggestion("Expected a YAML sequence of documents with id, title, body, type, status, url, tags and categories")
	}

	seen := make(map[int64]bool, len(docs))
	for i, d := range docs {
		if d.ID <= 0 {
			return nil, apperrors.ValidationError(fmt.Sprintf("entry %d: id must be a positive integer", i+1), nil)
		}
		if seen[d.ID] {
			return nil, apperrors.ValidationError(fmt.Sprintf("entry %d: duplicate id %d", i+1, d.ID), nil)
		}
		seen[d.ID] = true
	}
	return docs, nil
}
