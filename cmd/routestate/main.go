package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gxo-labs/routestate"
	"github.com/gxo-labs/routestate/internal/config"
	"github.com/gxo-labs/routestate/internal/logger"
	"github.com/gxo-labs/routestate/internal/metrics"
	v1 "github.com/gxo-labs/routestate/pkg/routestate/v1"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitUsageError = 2
	ExitSigIntBase = 128
	ExitSigInt     = ExitSigIntBase + int(syscall.SIGINT)

	DefaultLogLevel = "info"
	DefaultLogFmt   = "text"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// exitError carries the process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, format string, args ...interface{}) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

type validateOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

type demoOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	trucks     int
	packages   int
	iterations int
	seed       int64
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the command line and maps the outcome to an exit code.
func execute(args []string) int {
	root := newRootCommand()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.code == ExitUsageError {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return ee.code
	}
	// Cobra reports unknown commands and bad flags as plain errors.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitUsageError
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "routestate",
		Short:         "Route state manager tooling",
		Long:          "Validates state manager configuration files and runs a synthetic ruin-and-recreate loop against the state cache.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCommand(), newDemoCommand(), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "routestate version %s\n", version)
			fmt.Fprintf(out, "commit: %s\n", commit)
			fmt.Fprintf(out, "built: %s\n", buildDate)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
		},
	}
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validates a state manager configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the YAML or TOML configuration file to validate (required)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Optional .env file applied before validation")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", DefaultLogLevel, "Log level for validation output (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runValidate(opts *validateOptions) error {
	log := logger.NewLogger(opts.logLevel, DefaultLogFmt, os.Stderr)
	log.Infof("Validating configuration: %s", opts.configPath)

	var dotenv []string
	if opts.envFile != "" {
		dotenv = append(dotenv, opts.envFile)
	}
	if _, err := routestate.LoadConfig(opts.configPath, dotenv...); err != nil {
		var validationErr *rserrors.ValidationError
		var configErr *rserrors.ConfigError
		switch {
		case errors.As(err, &validationErr):
			log.Errorf("Configuration validation failed:\n%s", validationErr.Error())
		case errors.As(err, &configErr):
			log.Errorf("Configuration error:\n%s", configErr.Error())
		default:
			log.Errorf("Failed to load configuration: %v", err)
		}
		return &exitError{code: ExitFailure, err: err}
	}
	log.Infof("Configuration validation successful: %s", opts.configPath)
	return nil
}

func newDemoCommand() *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Runs a random ruin-and-recreate loop on a synthetic problem",
		Long:  "Runs a random ruin-and-recreate loop on a synthetic problem and reports the cached route states.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Optional configuration file")
	f.StringVar(&opts.logLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", DefaultLogFmt, "Log format (text, json)")
	f.IntVar(&opts.trucks, "trucks", 3, "Number of trucks")
	f.IntVar(&opts.packages, "packages", 30, "Number of packages")
	f.IntVar(&opts.iterations, "iterations", 100, "Number of ruin-and-recreate iterations")
	f.Int64Var(&opts.seed, "seed", 1, "Random seed")
	return cmd
}

func runDemo(parent context.Context, opts *demoOptions) error {
	if opts.trucks <= 0 || opts.packages <= 0 || opts.iterations < 0 {
		return exitWith(ExitUsageError, "--trucks and --packages must be positive, --iterations non-negative")
	}
	if parent == nil {
		parent = context.Background()
	}

	log := logger.NewLogger(opts.logLevel, opts.logFormat, os.Stderr).With("routestate_version", version)

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := routestate.LoadConfig(opts.configPath)
		if err != nil {
			log.Errorf("Failed to load configuration '%s': %v", opts.configPath, err)
			return &exitError{code: ExitFailure, err: err}
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider := routestate.NewTracerProviderFromEnv(ctx, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Error shutting down tracer provider: %v", err)
		}
	}()

	d := newDemo(opts.trucks, opts.packages, opts.seed)
	m, err := routestate.New(d.problem, d.costs, log,
		v1.WithConfig(cfg),
		v1.WithTracerProvider(tracerProvider),
		v1.WithMetricsRegistryProvider(metrics.NewPrometheusRegistryProvider()),
	)
	if err != nil {
		log.Errorf("Failed to create state manager: %v", err)
		return &exitError{code: ExitFailure, err: err}
	}
	defer func() {
		if err := m.Close(context.Background()); err != nil {
			log.Warnf("Error closing state manager: %v", err)
		}
	}()

	start := time.Now()
	runErr := d.run(ctx, m, opts.iterations)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Errorf("Demo failed: %v", runErr)
		return &exitError{code: ExitFailure, err: runErr}
	}
	if err := d.report(m, log); err != nil {
		log.Errorf("Failed to read route states: %v", err)
		return &exitError{code: ExitFailure, err: err}
	}
	log.Infof("Demo finished in %v (run %s)", time.Since(start).Truncate(time.Millisecond), m.RunID())
	if errors.Is(runErr, context.Canceled) {
		log.Warnf("Demo interrupted by signal")
		return &exitError{code: ExitSigInt, err: runErr}
	}
	return nil
}
