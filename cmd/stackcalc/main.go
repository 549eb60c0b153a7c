package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/value-runtime/alloc"
	"github.com/wippyai/value-runtime/runtime"
	"github.com/wippyai/value-runtime/stack"
)

type cliOptions struct {
	configFile  string
	backend     string
	policy      string
	logLevel    string
	interactive bool
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.configFile, "config", "", "Path to YAML session config")
	flag.StringVar(&opts.backend, "backend", "", "Allocator backend (heap, linear)")
	flag.StringVar(&opts.policy, "policy", "", "Exhaustion policy (abort, propagate)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: stackcalc [-config file.yaml] [-backend heap|linear] [-policy abort|propagate] [-log-level level]")
		fmt.Fprintln(os.Stderr, "       stackcalc -i  (interactive mode)")
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	alloc.SetLogger(log)
	stack.SetLogger(log)
	runtime.SetLogger(log)

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		log.Error("demo failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig starts from the config file, or the defaults, and applies the flags
// that were set on top.
func loadConfig(opts cliOptions) (runtime.Config, error) {
	cfg := runtime.DefaultConfig()
	if opts.configFile != "" {
		var err error
		if cfg, err = runtime.LoadConfig(opts.configFile); err != nil {
			return cfg, err
		}
	}

	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.policy != "" {
		cfg.Policy = opts.policy
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, cfg.Validate()
}

// newLogger writes to stderr so stdout carries only the printed values.
func newLogger(cfg runtime.Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

func run(ctx context.Context, cfg runtime.Config, out io.Writer) error {
	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	if err := rt.Demo(out); err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	return rt.Close(ctx)
}
