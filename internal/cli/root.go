package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jeason0813/dblinq2007/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Mapping    string // default mapping path
	GoldenDir  string

	// Logger receives analyzer debug traces. Nil discards them.
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the pieces CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pieces",
		Short: "pieces - query expression analyzer",
		Long: `Translate query expression trees into resolved query pieces.

Expressions are YAML documents; entities are resolved against a CUE
mapping or the schema of a SQLite database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "load configuration", err)
			}
			opts.Format = cfg.Format
			opts.Verbose = cfg.Verbose
			opts.Mapping = cfg.Mapping
			opts.GoldenDir = cfg.GoldenDir
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: pieces.yaml in the working directory)")
	cmd.PersistentFlags().StringVarP(&opts.Mapping, "mapping", "m", "", "mapping file (CUE) or SQLite database")

	// Add subcommands
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger writes text logs to w: debug level when verbose, warnings
// otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logger returns the configured logger, or one that discards everything.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
