// Package cmd provides the CLI commands for relterms.
package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/relterms/internal/config"
	apperrors "github.com/Aman-CERP/relterms/internal/errors"
	"github.com/Aman-CERP/relterms/internal/logging"
	"github.com/Aman-CERP/relterms/internal/profiling"
	"github.com/Aman-CERP/relterms/pkg/version"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "relterms/skip-config"

// globals holds the root flags and what PersistentPreRunE builds from them.
type globals struct {
	configPath string
	logLevel   string
	debug      bool
	profile    profiling.Options

	cfg     *config.Config
	logger  *slog.Logger
	session *profiling.Session
	closers []func()
}

// NewRootCmd creates the root command for the relterms CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globals{})
}

func newRootCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relterms",
		Short: "Incremental related-terms index for content documents",
		Long: `relterms extracts the weighted terms of every published document and
keeps them in a per-document term cache.

Documents are indexed once and marked; editing a document clears its marker
so the next batch picks it up again. Run 'relterms init' to create the
tables, 'relterms import' to load documents and 'relterms index' to build
the cache.`,
		Version:            version.Short(),
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  g.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error { return g.teardown() },
	}

	cmd.SetVersionTemplate("relterms version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Config file (default: relterms.yaml in the working directory)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&g.debug, "debug", false, "Enable debug logging to the data directory's logs/")
	flags.StringVar(&g.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	flags.StringVar(&g.profile.Heap, "profile-mem", "", "Write memory profile to file")
	flags.StringVar(&g.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newInitCmd(g))
	cmd.AddCommand(newImportCmd(g))
	cmd.AddCommand(newIndexCmd(g))
	cmd.AddCommand(newCountCmd(g))
	cmd.AddCommand(newDeleteCmd(g))
	cmd.AddCommand(newInspectCmd(g))
	cmd.AddCommand(newStopwordsCmd(g))
	cmd.AddCommand(newLogsCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	g := &globals{}
	err := newRootCmd(g).Execute()
	// PersistentPostRunE does not run when RunE fails.
	if terr := g.teardown(); err == nil {
		err = terr
	}
	return err
}

// setup starts profiling, loads the configuration and installs the logger.
func (g *globals) setup(cmd *cobra.Command, _ []string) error {
	session, err := profiling.Start(g.profile)
	if err != nil {
		return apperrors.ValidationError("failed to start profiling", err)
	}
	g.session = session

	cfg := config.NewConfig()
	if cmd.Annotations[skipConfig] == "" {
		wd, err := os.Getwd()
		if err != nil {
			return apperrors.InternalError("failed to get working directory", err)
		}
		if cfg, err = config.Load(wd, g.configPath); err != nil {
			return configError(err)
		}
	}
	g.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.FilePath = cfg.Logging.File
	logCfg.Console = cmd.ErrOrStderr()
	if g.debug {
		logCfg.Level = "debug"
		if logCfg.FilePath == "" {
			logCfg.FilePath = logging.DefaultLogPath(config.DataDir())
		}
	}
	if g.logLevel != "" {
		logCfg.Level = g.logLevel
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return apperrors.ConfigError("failed to set up logging", err)
	}
	g.closers = append(g.closers, cleanup)
	g.logger = logger
	slog.SetDefault(logger)

	if g.debug {
		logger.Debug("debug_logging_enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Short()))
	}
	return nil
}

// teardown stops profiling and closes the log file. It is safe to call
// more than once.
func (g *globals) teardown() error {
	var err error
	if g.session != nil {
		err = g.session.Stop()
		g.session = nil
	}
	for i := len(g.closers) - 1; i >= 0; i-- {
		g.closers[i]()
	}
	g.closers = nil
	if err != nil {
		return apperrors.InternalError("failed to write profile", err)
	}
	return nil
}

func configError(err error) error {
	if errors.Is(err, config.ErrNotFound) {
		return apperrors.New(apperrors.ErrCodeConfigNotFound, err.Error(), err).
			WithSuggestion("Check the path, or run 'relterms init' to write relterms.yaml in the working directory")
	}
	return apperrors.New(apperrors.ErrCodeConfigInvalid, "invalid configuration", err).
		WithSuggestion("Check relterms.yaml and RELTERMS_* environment variables")
}
