package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"modlink/internal/driver"
	"modlink/internal/prof"
	"modlink/internal/project"
	"modlink/internal/trace"
)

// target is what a command compiles: a disk bundle, its entry module and
// the options merged from modlink.toml and flags.
type target struct {
	bundle   *project.DiskBundle
	main     string
	manifest *project.Manifest
	opts     driver.Options
}

func newLogger(cmd *cobra.Command) (*log.Logger, error) {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "modlink"})
	logger.SetLevel(level)
	return logger, nil
}

// resolveTarget finds the manifest next to the file argument (or the
// working directory) and applies flag overrides on top of it.
func resolveTarget(cmd *cobra.Command, args []string, logger *log.Logger) (*target, error) {
	flags := cmd.Root().PersistentFlags()
	file := ""
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
		file = abs
	}

	start := "."
	if file != "" {
		start = filepath.Dir(file)
	}
	manifestPath, found, err := project.FindManifest(start)
	if err != nil {
		return nil, err
	}
	t := &target{}
	var root string
	var searchPaths []string
	switch {
	case found:
		if t.manifest, err = project.LoadManifest(manifestPath); err != nil {
			return nil, err
		}
		logger.Info("using manifest", "path", manifestPath)
		root = t.manifest.Root
		searchPaths = append(searchPaths, t.manifest.Project.Paths...)
		t.opts.Jobs = t.manifest.Check.Jobs
		t.opts.MaxDiagnostics = t.manifest.Check.MaxDiagnostics
	case file != "":
		root = filepath.Dir(file)
	default:
		return nil, fmt.Errorf("no %s found and no file given", project.ManifestName)
	}

	extra, err := flags.GetStringSlice("path")
	if err != nil {
		return nil, fmt.Errorf("failed to get path flag: %w", err)
	}
	for _, p := range extra {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search path %s: %w", p, err)
		}
		searchPaths = append(searchPaths, abs)
	}
	if t.bundle, err = project.NewDiskBundle(root, searchPaths); err != nil {
		return nil, err
	}

	if file != "" {
		if t.main, err = t.bundle.Rel(file); err != nil {
			return nil, err
		}
	} else if t.main, err = t.manifest.MainPath(); err != nil {
		if errors.Is(err, project.ErrMainMissing) {
			return nil, fmt.Errorf("%s: %w (pass a file to check instead)", t.manifest.Path, err)
		}
		return nil, err
	}

	if err := applyOptionFlags(cmd, t, logger); err != nil {
		return nil, err
	}
	t.opts.Logger = logger
	return t, nil
}

func applyOptionFlags(cmd *cobra.Command, t *target, logger *log.Logger) error {
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		t.opts.Jobs = jobs
	}
	if flags.Changed("max-diagnostics") {
		limit, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		t.opts.MaxDiagnostics = limit
	}
	useCache := t.manifest != nil && t.manifest.Check.DiskCache
	if flags.Changed("disk-cache") {
		v, err := flags.GetBool("disk-cache")
		if err != nil {
			return fmt.Errorf("failed to get disk-cache flag: %w", err)
		}
		useCache = v
	}
	if useCache {
		cache, err := driver.OpenDiskCache("modlink")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		logger.Debug("disk cache enabled", "dir", cache.Dir())
		t.opts.DiskCache = cache
	}
	return nil
}

// setupTracing attaches a tracer to the command context and returns its cleanup.
func setupTracing(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	output, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает границы фаз
	if output != "" && level == trace.LevelOff {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(trace.Config{Level: level, Format: format, OutputPath: output})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	cpu, err := flags.GetString("cpuprofile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	mem, err := flags.GetString("memprofile")
	if err != nil {
		return nil, fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	session, err := prof.Start(cpu, mem)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}

func useColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("unknown color mode %q (must be auto, on or off)", mode)
}

// compileTarget runs the whole pipeline shared by check and surface.
func compileTarget(cmd *cobra.Command, args []string) (*target, *driver.Result, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	t, err := resolveTarget(cmd, args, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return nil, nil, err
	}
	defer stopProfiling()

	res, err := driver.Compile(cmd.Context(), t.bundle, t.main, t.opts)
	if err != nil {
		return nil, nil, err
	}
	if res.CacheHits > 0 {
		logger.Info("reused cached surfaces", "modules", res.CacheHits)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	}
	return t, res, nil
}
