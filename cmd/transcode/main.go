package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"video-renditions/internal/filesystem"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/progress"
	"video-renditions/internal/queue"
	"video-renditions/internal/renditions"
	"video-renditions/internal/startup"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	usageHeader = "Usage: transcode [flags] <source>"
)

var errUsage = errors.New("usage")

type options struct {
	source      string
	presetsFile string
	pipelines   []string
	cfg         *startup.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := startup.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, startup.ReadConfig(), stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	}

	specs, err := selectSpecs(opts.presetsFile, opts.pipelines)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if !filesystem.Exists(opts.source) {
		fmt.Fprintf(stderr, "Error: source not found: %s\n", opts.source)
		return exitUsage
	}
	digest, err := filesystem.ContentDigest(opts.source)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}

	if err := os.MkdirAll(opts.cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "Error: failed to create output directory: %v\n", err)
		return exitFailed
	}

	service, err := renditions.FromConfig(ctx, opts.cfg, reporterFor(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer service.Close()

	res, err := service.Transcode(ctx, queue.NewSourceFile(opts.source, digest), specs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailed
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write result: %v\n", err)
		return exitFailed
	}
	return exitOK
}

func parseArgs(args []string, cfg *startup.Config, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("transcode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageHeader)
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	presetsFile := fs.String("presets", cfg.PipelinesFile, "YAML pipeline presets")
	pipelines := fs.String("pipelines", "", "comma separated preset names (default: all)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory")
	fs.StringVar(&cfg.PublicPath, "public", cfg.PublicPath, "public URL prefix of outputs")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent transcodes (0: one per CPU)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errUsage
		}
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	if *presetsFile == "" {
		return nil, errors.New("no presets file (set -presets or PIPELINES_FILE)")
	}

	source, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}

	opts := &options{
		source:      source,
		presetsFile: *presetsFile,
		cfg:         cfg,
	}
	for _, name := range strings.Split(*pipelines, ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts.pipelines = append(opts.pipelines, name)
		}
	}
	return opts, nil
}

// selectSpecs loads presets and picks names in order, or all presets when
// names is empty.
func selectSpecs(presetsFile string, names []string) ([]pipeline.Spec, error) {
	presets, err := pipeline.LoadPresets(presetsFile)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return presets.All(), nil
	}
	return presets.Select(names)
}

// reporterFor draws a bar on terminals and prints coarse progress lines
// otherwise.
func reporterFor(w io.Writer) progress.Reporter {
	if f, ok := w.(*os.File); ok {
		return progress.NewBar(f)
	}
	return progress.NewBarWriter(w)
}
