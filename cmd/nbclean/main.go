// Package main provides the CLI entry point for nbclean.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukaji3/nbclean-go/internal/config"
	"github.com/ukaji3/nbclean-go/internal/logging"
	"github.com/ukaji3/nbclean-go/pkg/nbclean"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/kernel"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/output"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/validator"
)

// cliFlags holds the values bound to the root command's flags.
type cliFlags struct {
	check          bool
	dryRun         bool
	keepGoing      bool
	reportPath     string
	configPath     string
	kernelCommand  string
	extension      string
	cellTimeout    time.Duration
	startupTimeout time.Duration
	verbose        bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}
	rootCmd := &cobra.Command{
		Use:   "nbclean [notebook|directory ...]",
		Short: "Remove execution outputs from notebooks",
		Long: `nbclean strips recorded outputs and execution counters from notebook
code cells so notebooks can be committed clean. Directories are scanned
(non-recursively) for notebook files. With --check every code cell is first
replayed against a fresh interpreter and failing cells are reported.

Without arguments the notebooks directory next to the executable is cleaned.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&f.check, "check", false, "Replay code cells against a fresh kernel before stripping")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Report notebooks that would change without writing them")
	flags.BoolVar(&f.keepGoing, "keep-going", false, "Continue with the next notebook after a failure")
	flags.StringVar(&f.reportPath, "report", "", "Write the --check results to an xlsx workbook")
	flags.StringVarP(&f.configPath, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
	flags.StringVar(&f.kernelCommand, "kernel", "", "Interpreter command used by --check (runs the bundled driver, ignoring configured args)")
	flags.StringVar(&f.extension, "ext", "", "Notebook file extension inside directories (default .ipynb)")
	flags.DurationVar(&f.cellTimeout, "cell-timeout", 0, "Maximum time to wait for one cell (default 5m)")
	flags.DurationVar(&f.startupTimeout, "startup-timeout", 0, "Maximum time to wait for the kernel to start (default 1m)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")

	return rootCmd
}

func run(cmd *cobra.Command, args []string, f *cliFlags) error {
	if f.reportPath != "" && !f.check {
		return errors.New("--report requires --check")
	}

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, f.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	targets := args
	if len(targets) == 0 {
		if targets, err = nbclean.DefaultTargets(); err != nil {
			return fmt.Errorf("failed to locate default notebooks: %w", err)
		}
	}

	opts := nbclean.Options{
		Check:     f.check,
		DryRun:    f.dryRun,
		KeepGoing: cfg.KeepGoing,
		Extension: cfg.Extension,
		Stdout:    cmd.OutOrStdout(),
		Logger:    logger,
	}
	if f.check {
		// Durations were checked by cfg.Validate.
		cellTimeout, _ := cfg.Kernel.CellTimeoutDuration()
		startupTimeout, _ := cfg.Kernel.StartupTimeoutDuration()

		launcher := kernel.NewProcessLauncher(cfg.Kernel.Command, cfg.Kernel.Args...)
		launcher.Env = cfg.Kernel.Env
		launcher.Logger = logger

		v := validator.New(launcher)
		v.CellTimeout = cellTimeout
		v.StartupTimeout = startupTimeout
		v.Progress = cmd.OutOrStdout()
		v.Logger = logger
		opts.Validator = v
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, runErr := nbclean.Run(ctx, targets, opts)

	if f.reportPath != "" {
		var reports []*validator.Report
		for _, res := range results {
			if res.Report != nil {
				reports = append(reports, res.Report)
			}
		}
		if err := output.WriteReport(f.reportPath, reports); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write report: %w", err))
		}
	}
	return runErr
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set explicitly on top of it.
func loadConfig(cmd *cobra.Command, f *cliFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("kernel") {
		// Configured args belong to the configured interpreter.
		cfg.Kernel.Command = f.kernelCommand
		cfg.Kernel.Args = nil
	}
	if flags.Changed("ext") {
		cfg.Extension = f.extension
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing = f.keepGoing
	}
	if flags.Changed("cell-timeout") {
		cfg.Kernel.CellTimeout = f.cellTimeout.String()
	}
	if flags.Changed("startup-timeout") {
		cfg.Kernel.StartupTimeout = f.startupTimeout.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
