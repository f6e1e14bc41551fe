// Package cli provides the sheetcheck command-line interface: local
// ingestion and validation of tabular files without the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sheetcheck/internal/config"
	"github.com/JonMunkholm/sheetcheck/internal/core"
	_ "github.com/JonMunkholm/sheetcheck/internal/core/profiles" // register built-in profiles
	"github.com/JonMunkholm/sheetcheck/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "dev"

// errFindings is returned by check --strict when the dataset has diagnostics.
var errFindings = errors.New("validation findings")

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:   "sheetcheck",
		Short: "Validate spreadsheet and CSV uploads",
		Long: `sheetcheck ingests .csv, .tsv, .xlsx and .xlsm files, merges them into one
dataset using the first file's header, and validates every cell against a
profile or a YAML rules file.

Configuration is read from the environment (and .env) like the server:
INGEST_MAX_FILES, INGEST_MAX_FILE_SIZE, INGEST_READ_AHEAD, INGEST_PROFILE,
INGEST_RULES_FILE.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; existing environment variables win
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if logFormat != "" {
				cfg.Logging.Format = logFormat
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error), overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text|json), overrides LOG_FORMAT")

	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewProfilesCommand())

	return rootCmd
}

// configFrom returns the config stored by the root command.
func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	cfg, err := config.Load()
	if err != nil {
		return &config.Config{}
	}
	return cfg
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFindings):
		return 1
	default:
		fmt.Fprintln(stderr, "Error:", describe(err))
		return 2
	}
}

// describe formats pipeline errors with their support code and leaves
// everything else (flag errors, missing files) as is.
func describe(err error) string {
	if core.MapError(err).Code == "ERR000" {
		return err.Error()
	}
	return core.FormatUserError(err)
}

// Main is the entry point used by cmd/sheetcheck. Ctrl-C cancels a
// running check at the next file boundary.
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
