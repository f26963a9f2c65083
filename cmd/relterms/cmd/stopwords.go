package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/relterms/internal/config"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/output"
	"github.com/Aman-CERP/relterms/internal/stopwords"
)

// seedSource is the only supported --seed value.
const seedSource = "bleve"

func newStopwordsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stopwords",
		Short: "Inspect and prepare stop-word lists",
		Long: `Stop words are read from <stopwords.dir>/<locale>.yaml, a YAML sequence
of words. Words in the list never appear among a document's terms.`,
	}

	cmd.AddCommand(newStopwordsListCmd(g))
	cmd.AddCommand(newStopwordsTidyCmd(g))

	return cmd
}

func newStopwordsListCmd(g *globals) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the effective stop-word list",
		Long: `Print the stop words used for a locale, one per line, including the
words added by stopwords.extra.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := newLoader(g, stopwords.WithHooks(newHooks(g.cfg)))

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, word := range loader.List(locale) {
				_, _ = fmt.Fprintln(w, word)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "Locale (default: stopwords.locale, then the process locale)")

	return cmd
}

func newStopwordsTidyCmd(g *globals) *cobra.Command {
	var (
		locale string
		seed   string
		from   string
		write  bool
	)

	cmd := &cobra.Command{
		Use:   "tidy",
		Short: "Clean up a stop-word list",
		Long: `Clean up a candidate stop-word list and print it as a locale file:
mis-encoded entries and quotes are dropped, case-insensitive duplicates are
removed and the words are sorted.

The candidates are the current list of the locale, or the words read from
--from (a YAML sequence, or one word per line) and the bundled list for the
locale's language with --seed bleve. Bundled languages: ` + strings.Join(stopwords.SeedLanguages(), ", ") + `.

With --write the result replaces <stopwords.dir>/<locale>.yaml; an existing
file is backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if locale == "" {
				locale = effectiveLocale(g.cfg)
			}

			var words []string
			if from != "" {
				read, err := readWordFile(from)
				if err != nil {
					return apperrors.ValidationError("failed to read word list", err).
						WithDetail("file", from)
				}
				words = append(words, read...)
			}
			if seed != "" {
				if seed != seedSource {
					return apperrors.ValidationError(
						fmt.Sprintf("unknown seed source %q, only %q is supported", seed, seedSource), nil)
				}
				seeded, err := stopwords.Seed(locale)
				if err != nil {
					return apperrors.New(apperrors.ErrCodeUnknownLocale, "no bundled stop words for locale", err).
						WithDetail("locale", locale)
				}
				words = append(words, seeded...)
			}
			if from == "" && seed == "" {
				words = newLoader(g).List(locale)
			}

			rendered := stopwords.Render(stopwords.Tidy(words))
			if !write {
				_, err := fmt.Fprint(cmd.OutOrStdout(), rendered)
				return err
			}
			return writeLocaleFile(g.cfg, locale, rendered, output.New(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "Locale (default: stopwords.locale, then the process locale)")
	cmd.Flags().StringVar(&seed, "seed", "", "Add the bundled list of the locale's language (\"bleve\")")
	cmd.Flags().StringVar(&from, "from", "", "Read candidate words from a file")
	cmd.Flags().BoolVar(&write, "write", false, "Write the result to the locale file")

	return cmd
}

func newLoader(g *globals, opts ...stopwords.Option) *stopwords.Loader {
	opts = append([]stopwords.Option{
		stopwords.WithDefaultLocale(g.cfg.StopWords.Locale),
		stopwords.WithLogger(g.logger),
	}, opts...)
	return stopwords.NewLoader(g.cfg.StopWords.Dir, opts...)
}

func effectiveLocale(cfg *config.Config) string {
	if cfg.StopWords.Locale != "" {
		return cfg.StopWords.Locale
	}
	return stopwords.SystemLocale()
}

// readWordFile reads a YAML sequence (.yaml, .yml) or one word per line.
// Blank lines and lines starting with '#' are ignored.
func readWordFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var words []string
		if err := yaml.Unmarshal(data, &words); err != nil {
			return nil, fmt.Errorf("expected a YAML sequence of words: %w", err)
		}
		return words, nil
	}

	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

func writeLocaleFile(cfg *config.Config, locale, rendered string, out *output.Writer) error {
	name := locale + stopwords.FileExt
	if locale == "" || strings.ContainsAny(locale, "/\\:\x00") || !filepath.IsLocal(name) {
		return apperrors.New(apperrors.ErrCodeUnknownLocale, fmt.Sprintf("invalid locale %q", locale), nil)
	}
	path := filepath.Join(cfg.StopWords.Dir, name)

	backup, err := config.BackupFile(path)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to back up locale file", err)
	}
	if err := os.MkdirAll(cfg.StopWords.Dir, 0o755); err != nil {
		return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to create stop-word directory", err)
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to write locale file", err)
	}

	if backup != "" {
		out.Statusf("💾", "Backed up %s", backup)
	}
	out.Successf("Wrote %s", path)
	return nil
}
