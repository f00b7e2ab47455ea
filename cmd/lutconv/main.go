// Command lutconv converts DJI DLog-M and iPhone HLG clips to Rec.709 or
// BT.2020 HLG HEVC files using 3D LUTs and the VideoToolbox encoder.
//
// It parses flags, validates configuration and paths, and either runs
// system diagnostics (--check) or the conversion batch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/lutconv/internal/check"
	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/display"
	"github.com/backmassage/lutconv/internal/journal"
	"github.com/backmassage/lutconv/internal/logging"
	"github.com/backmassage/lutconv/internal/metrics"
	"github.com/backmassage/lutconv/internal/pipeline"
	"github.com/backmassage/lutconv/internal/progress"
	"github.com/backmassage/lutconv/internal/term"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.ParseArgs(&cfg, os.Args[1:], version); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, config.ErrVersion) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "lutconv: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "lutconv: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lutconv: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available. All output goes through log from here on.
	log.Print(display.Banner(bannerTitle(cfg.Target)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, &cfg, log) {
			return 1
		}
		return 0
	}

	if code := validatePaths(&cfg, log); code != 0 {
		return code
	}
	log.Debug("lutconv v%s (%s)", version, commit)

	// Fail fast if ffmpeg/ffprobe or the encoder are unavailable.
	if err := check.CheckDeps(ctx, &cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Signal handling. The first SIGINT/SIGTERM cancels the run:
	// the current encode is stopped and no further file is started.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping current file…")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 4: Wire the runner's optional sinks.
	runner := pipeline.NewRunner(&cfg, log)
	runner.Progress = newProgress(os.Stdout, &cfg)

	if cfg.JournalFile != "" {
		j, err := journal.Open(cfg.JournalFile)
		if err != nil {
			log.Warn("Journal disabled: %v", err)
		} else {
			defer j.Close()
			runner.Journal = j
			log.Debug("Journal: %s (run %s)", cfg.JournalFile, j.RunID)
		}
	}
	if cfg.MetricsFile != "" {
		runner.Metrics = metrics.NewRecorder()
	}

	// Phase 5: Run the batch (discover → probe → classify → LUT → encode).
	sum, err := runner.Run(ctx)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	if runner.Metrics != nil {
		if err := runner.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("Cannot write metrics: %v", err)
		}
	}
	return sum.ExitCode()
}

// validatePaths checks the input directory and LUT override exist and that
// outputs cannot overwrite their inputs. Returns a non-zero exit code on failure.
func validatePaths(cfg *config.Config, log *logging.Logger) int {
	fi, err := os.Stat(cfg.InputDir)
	if err != nil || !fi.IsDir() {
		log.Error("Input directory not found: %s", cfg.InputDir)
		return 1
	}
	if cfg.LUTOverride != "" {
		if fi, err := os.Stat(cfg.LUTOverride); err != nil || fi.IsDir() {
			log.Error("LUT file not found: %s", cfg.LUTOverride)
			return 1
		}
	}

	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Cannot resolve input path: %s", cfg.InputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.EffectiveOutputDir())
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.EffectiveOutputDir())
		return 1
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		return 1
	}
	return 0
}

// newProgress returns the live encode monitor for out, or nil when out is
// not a terminal so piped output carries no carriage-return redraws.
func newProgress(out *os.File, cfg *config.Config) *progress.Monitor {
	if !term.IsTerminal(out) {
		return nil
	}
	return progress.New(out, cfg.ProgressInterval,
		progress.BarWidth(cfg.ProgressWidth, term.Width(out, 0)))
}

func bannerTitle(t config.Target) string {
	if t == config.TargetRec709 {
		return "LUT → REC709 Hardware Encoding (VideoToolbox)"
	}
	return "LUT → HLG Hardware Encoding (VideoToolbox)"
}

// absPath returns the absolute, symlink-resolved path. A directory that does
// not exist yet resolves to its cleaned absolute form.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if errors.Is(err, os.ErrNotExist) {
		return abs, nil
	}
	return resolved, err
}
