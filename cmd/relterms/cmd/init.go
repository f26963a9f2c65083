package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/relterms/configs"
	"github.com/Aman-CERP/relterms/internal/config"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/output"
	"github.com/Aman-CERP/relterms/internal/stopwords"
)

func newInitCmd(g *globals) *cobra.Command {
	var (
		writeConfig   bool
		effective     bool
		configOut     string
		seedStopWords bool
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the content and term cache tables",
		Long: `Create the content and term cache tables in the configured database.
Existing tables and rows are kept.

With --write-config a commented project config with the default values
is written; add --effective to save the configuration in use instead. With --seed-stopwords the bundled stop words of the locale's
language are written as its locale file. Existing files are only replaced
with --force, after a backup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.openApp(cmd.Context(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			out := output.New(cmd.OutOrStdout())
			out.Successf("Tables ready (%s)", a.cfg.Database.Driver)

			if writeConfig {
				if err := writeProjectConfig(a.cfg, configOut, effective, force, out); err != nil {
					return err
				}
			}

			if seedStopWords {
				if err := seedLocaleFile(a.cfg, force, out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Write a project config file")
	cmd.Flags().BoolVar(&effective, "effective", false, "With --write-config, save the configuration in use instead of the template")
	cmd.Flags().StringVar(&configOut, "output", "relterms.yaml", "Project config path for --write-config")
	cmd.Flags().BoolVar(&seedStopWords, "seed-stopwords", false, "Write the bundled stop words for the configured locale")
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing files after backing them up")

	return cmd
}

func writeProjectConfig(cfg *config.Config, path string, effective, force bool, out *output.Writer) error {
	if fileExists(path) {
		if !force {
			out.Warningf("%s exists, pass --force to replace it", path)
			return nil
		}
		backup, err := config.BackupFile(path)
		if err != nil {
			return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to back up config", err)
		}
		out.Statusf("💾", "Backed up %s", backup)
	}

	var err error
	if effective {
		err = cfg.WriteYAML(path)
	} else {
		err = writeTemplate(path)
	}
	if err != nil {
		return apperrors.New(apperrors.ErrCodeStorageWrite, "failed to write config", err).
			WithDetail("file", path)
	}
	out.Successf("Wrote %s", path)
	return nil
}

func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644)
}

func seedLocaleFile(cfg *config.Config, force bool, out *output.Writer) error {
	locale := effectiveLocale(cfg)
	path := filepath.Join(cfg.StopWords.Dir, locale+stopwords.FileExt)
	if fileExists(path) && !force {
		out.Warningf("%s exists, pass --force to replace it", path)
		return nil
	}

	words, err := stopwords.Seed(locale)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeUnknownLocale, "no bundled stop words for locale", err).
			WithDetail("locale", locale).
			WithSuggestion("Set stopwords.locale, or create the locale file with 'relterms stopwords tidy --from FILE --write'")
	}
	return writeLocaleFile(cfg, locale, stopwords.Render(stopwords.Tidy(words)), out)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
