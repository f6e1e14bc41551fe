package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/spf13/cobra"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Profile   string        // registered profile key
	Rules     string        // YAML rules file, overrides Profile
	ReadAhead int           // concurrent decodes after the first file
	Format    string        // table, json or csv
	Export    string        // write the diagnostics CSV here as well
	Limit     int           // diagnostics shown in table output
	Strict    bool          // exit 1 when any diagnostic is found
	Timeout   time.Duration // whole-run budget
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check FILE|DIR...",
		Short: "Ingest and validate files",
		Long: `Ingest the given files in order, merge them into one dataset and report
the data-quality summary and every validation finding.

Directories are expanded to the accepted files they contain (not recursive),
in name order. The first file's header defines the columns; later files are
mapped onto it by position.`,
		Example: `  # Validate one export with the default profile
  sheetcheck check export.xlsx

  # Validate a folder of CSVs against a rules file, fail on findings
  sheetcheck check --rules rules.yaml --strict uploads/

  # Machine-readable output
  sheetcheck check -f json a.csv b.csv

  # Save the rows that need fixing
  sheetcheck check --export fixes.csv a.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "Validation profile (default from INGEST_PROFILE)")
	cmd.Flags().StringVar(&opts.Rules, "rules", "", "YAML rules file (default from INGEST_RULES_FILE)")
	cmd.Flags().IntVar(&opts.ReadAhead, "read-ahead", -1, "Files decoded concurrently after the first (default from INGEST_READ_AHEAD)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv")
	cmd.Flags().StringVar(&opts.Export, "export", "", "Also write the diagnostics CSV to this path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Maximum diagnostics listed in table output (0 for all)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit with status 1 when any diagnostic is found")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Give up after this long (default from INGEST_TIMEOUT)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("profile", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var keys []string
		for _, p := range core.Profiles() {
			keys = append(keys, p.Key)
		}
		return keys, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cfg := configFrom(cmd)

	switch opts.Format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q (want table, json or csv)", opts.Format)
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	files, err := diskFiles(paths, core.Limits{
		MaxFiles:    cfg.Ingest.MaxFiles,
		MaxFileSize: cfg.Ingest.MaxFileSize,
	})
	if err != nil {
		return err
	}

	label, validator, err := chooseValidator(opts, cfg.Ingest.Profile, cfg.Ingest.RulesFile)
	if err != nil {
		return err
	}

	readAhead := opts.ReadAhead
	if readAhead < 0 {
		readAhead = cfg.Ingest.ReadAhead
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cfg.Ingest.Timeout
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger := slog.Default().With("profile", label)
	orch := core.NewOrchestrator(core.Options{
		Validator: validator,
		ReadAhead: readAhead,
		Logger:    logger,
	})

	start := time.Now()
	ds, err := orch.Ingest(ctx, files, func(p core.Progress) {
		if opts.Format == "table" {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", p.Processed, p.Total, p.FileName)
		}
	})
	if err != nil {
		return err
	}
	logger.Info("check finished",
		"files", len(files),
		"rows", len(ds.Rows),
		"diagnostics", len(ds.Diagnostics),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if opts.Export != "" {
		if err := exportDiagnostics(opts.Export, ds); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch opts.Format {
	case "json":
		err = renderJSON(out, paths, label, ds)
	case "csv":
		err = core.WriteDiagnosticsCSV(out, ds)
	default:
		err = renderReport(out, paths, label, ds, opts.Limit)
	}
	if err != nil {
		return err
	}

	if opts.Strict && len(ds.Diagnostics) > 0 {
		return fmt.Errorf("%w: %d", errFindings, len(ds.Diagnostics))
	}
	return nil
}

// chooseValidator picks the rules file over the profile, and the flags over
// the environment. It returns a label for the report.
func chooseValidator(opts *CheckOptions, defaultProfile, defaultRules string) (string, *core.Validator, error) {
	rulesFile := opts.Rules
	if rulesFile == "" && opts.Profile == "" {
		rulesFile = defaultRules
	}
	if rulesFile != "" {
		rules, err := core.LoadRuleSet(rulesFile)
		if err != nil {
			return "", nil, err
		}
		return filepath.Base(rulesFile), rules.Validator(), nil
	}

	key := opts.Profile
	if key == "" {
		key = defaultProfile
	}
	p, err := core.ResolveProfile(key)
	if err != nil {
		return "", nil, err
	}
	return p.Key, p.Validator(), nil
}

// exportDiagnostics writes the diagnostics CSV to path.
func exportDiagnostics(path string, ds *core.Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export: %w", cerr)
		}
	}()
	if err := core.WriteDiagnosticsCSV(f, ds); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	slog.Info("diagnostics exported", "path", path, "diagnostics", len(ds.Diagnostics))
	return nil
}
