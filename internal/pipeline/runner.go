// Package pipeline discovers input clips and drives each one through
// probe, classification, LUT selection, command building and encoding,
// recording every outcome in a Summary.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/lutconv/internal/color"
	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/display"
	"github.com/backmassage/lutconv/internal/ffmpeg"
	"github.com/backmassage/lutconv/internal/journal"
	"github.com/backmassage/lutconv/internal/logging"
	"github.com/backmassage/lutconv/internal/lut"
	"github.com/backmassage/lutconv/internal/metrics"
	"github.com/backmassage/lutconv/internal/naming"
	"github.com/backmassage/lutconv/internal/planner"
	"github.com/backmassage/lutconv/internal/probe"
	"github.com/backmassage/lutconv/internal/progress"
)

// Skip and failure reasons recorded in results.
const (
	ReasonOutputExists = "output exists"
	ReasonDryRun       = "dry run"
	ReasonNotStarted   = "not started: interrupted"
	ReasonInterrupted  = "interrupted"
)

// Prober reads metadata for one file.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.VideoInfo, error)
}

// Encoder runs one built command, streaming events to obs.
type Encoder interface {
	Run(ctx context.Context, args []string, obs ffmpeg.Observer) (ffmpeg.ExecResult, error)
}

// Runner holds everything one batch run needs. Journal, Metrics and
// Progress may be nil.
type Runner struct {
	Cfg      *config.Config
	Log      *logging.Logger
	Prober   Prober
	Encoder  Encoder
	Selector *lut.Selector
	Progress *progress.Monitor
	Journal  *journal.Journal
	Metrics  *metrics.Recorder
}

// NewRunner wires the production prober, supervisor and LUT selector from cfg.
func NewRunner(cfg *config.Config, log *logging.Logger) *Runner {
	sup := &ffmpeg.Supervisor{Timeout: cfg.Timeout, KillGrace: cfg.KillGrace}
	if cfg.Verbose {
		sup.Echo = os.Stderr
	}
	return &Runner{
		Cfg:      cfg,
		Log:      log,
		Prober:   probe.NewProber(cfg.FFprobeBin, cfg.ProbeTimeout),
		Encoder:  sup,
		Selector: lut.NewSelector(cfg),
	}
}

// Run discovers the input files and processes them one at a time. It
// returns an error only when the run cannot start; per-file problems are
// recorded in the Summary. Cancelling ctx stops the current encode and
// marks every file not yet started as skipped.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	cfg := r.Cfg
	sum := &Summary{}
	start := time.Now()

	files, err := Discover(cfg.InputDir, cfg.Suffix)
	if err != nil {
		return sum, fmt.Errorf("discover %s: %w", cfg.InputDir, err)
	}
	sum.Discovered = len(files)
	if len(files) == 0 {
		r.Log.Error("No video files found in %s", cfg.InputDir)
		return sum, nil
	}

	outDir := cfg.EffectiveOutputDir()
	if !cfg.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return sum, fmt.Errorf("create output directory: %w", err)
		}
	}

	r.Journal.Start(cfg.InputDir, outDir, string(cfg.Target), cfg.DryRun)
	r.logBatchHeader(len(files), outDir)

	resolver := naming.NewCollisionResolver()
	for i, path := range files {
		output := resolver.Resolve(path, naming.OutputPath(path, outDir, cfg.Suffix))
		job := newJob(path, output)

		if ctx.Err() != nil {
			sum.Interrupted = true
		}
		var res Result
		if sum.Interrupted {
			res = job.finish(OutcomeSkipped, ReasonNotStarted, nil)
		} else {
			res = r.processJob(ctx, job, i+1, len(files))
		}
		r.record(sum, res)
	}

	sum.Elapsed = time.Since(start)
	r.logSummary(sum)
	r.Journal.Summary(journal.Totals{
		Discovered:  sum.Discovered,
		Succeeded:   sum.Succeeded,
		Failed:      sum.Failed,
		Skipped:     sum.Skipped,
		InputBytes:  sum.InputBytes,
		OutputBytes: sum.OutputBytes,
		Elapsed:     sum.Elapsed,
		Interrupted: sum.Interrupted,
	})
	r.Metrics.Finish(time.Now())
	return sum, nil
}

// processJob handles one file: exists check → probe → classify → LUT →
// build → encode.
func (r *Runner) processJob(ctx context.Context, job *Job, idx, total int) Result {
	cfg := r.Cfg
	name := filepath.Base(job.Input)

	// --- Skip-existing check (before probing) ---
	if _, err := os.Stat(job.Output); err == nil {
		r.Log.Warn("[%d/%d] Skip (exists): %s", idx, total, filepath.Base(job.Output))
		return job.finish(OutcomeSkipped, ReasonOutputExists, nil)
	}

	r.Log.Print("\n" + display.Rule("━"))
	r.Log.Info("[%d/%d] %s", idx, total, name)

	if fi, err := os.Stat(job.Input); err == nil {
		job.Result.InputBytes = fi.Size()
	}

	// --- Probe ---
	info, err := r.Prober.Probe(ctx, job.Input)
	if err != nil {
		r.Log.Error("Cannot probe %s: %v", name, err)
		res := job.finish(OutcomeFailed, probeReason(err), err)
		if ctx.Err() != nil {
			res.Interrupted = true
		}
		r.Log.Print(display.Rule("━"))
		return res
	}
	job.Info = info
	_ = job.advance(StateProbed)
	r.Log.Info("Size: %s | Duration: %s | Res: %s",
		display.FormatBytes(job.Result.InputBytes), display.FormatDuration(info.Duration), info.Resolution())
	r.Log.Info("Color: %s", info.Tags())

	// --- Classify ---
	job.Profile = color.Classify(info.ColorSpace, info.ColorPrimaries, info.ColorTransfer)
	_ = job.advance(StateClassified)

	// --- LUT ---
	a, err := r.Selector.Select(job.Profile)
	job.LUT = a
	r.logProfile(a)
	if err != nil {
		r.Log.Error("%v", err)
		r.Log.Print(display.Rule("━"))
		return job.finish(OutcomeFailed, "LUT missing: "+a.Path, err)
	}
	_ = job.advance(StateLutResolved)

	// --- Build ---
	job.Plan = planner.BuildPlan(cfg, job.Input, job.Output, job.Profile, a)
	job.Args = ffmpeg.Build(cfg, job.Plan)
	_ = job.advance(StateCommandBuilt)
	r.Log.Info("Output: %s", filepath.Base(job.Output))
	r.Log.Debug("Command: %s", ffmpeg.CommandLine(job.Args))
	r.Log.Print(display.Rule("━"))
	r.Log.Print(display.Overall(idx, total))

	if cfg.DryRun {
		r.Log.Success("[DRY] %s", ffmpeg.CommandLine(job.Args))
		return job.finish(OutcomeSkipped, ReasonDryRun, nil)
	}

	// --- Encode ---
	_ = job.advance(StateRunning)
	r.Log.Info("Converting...")
	var obs ffmpeg.Observer
	if r.Progress != nil {
		r.Progress.Reset(info.Duration)
		obs = r.Progress
	}
	run, err := r.Encoder.Run(ctx, job.Args, obs)
	if r.Progress != nil {
		r.Progress.Finish()
	}
	job.Result.Elapsed = run.Elapsed
	job.Result.Speed = run.Final.Speed

	if err != nil {
		if rmErr := os.Remove(job.Output); rmErr == nil {
			r.Log.Debug("Removed partial output %s", filepath.Base(job.Output))
		}
		return r.encodeFailed(job, err)
	}

	fi, err := os.Stat(job.Output)
	if err != nil {
		r.Log.Error("✗ Failed: ffmpeg reported success but wrote no output")
		return job.finish(OutcomeFailed, "output not written", err)
	}
	job.Result.OutputBytes = fi.Size()
	r.Log.Success("✓ Success! Output: %s (%s) in %s",
		display.FormatBytes(fi.Size()),
		display.FormatRatio(job.Result.InputBytes, fi.Size()),
		display.FormatDuration(run.Elapsed.Seconds()))
	return job.finish(OutcomeSucceeded, "", nil)
}

// encodeFailed logs and records a failed encode.
func (r *Runner) encodeFailed(job *Job, err error) Result {
	var ee *ffmpeg.EncodeError
	switch {
	case errors.Is(err, ffmpeg.ErrInterrupted):
		r.Log.Warn("Interrupted during %s", filepath.Base(job.Input))
		res := job.finish(OutcomeFailed, ReasonInterrupted, err)
		res.Interrupted = true
		return res
	case errors.Is(err, ffmpeg.ErrEncodeTimeout):
		r.Log.Error("✗ Failed: %v", err)
		return job.finish(OutcomeFailed, err.Error(), err)
	case errors.As(err, &ee):
		r.Log.Error("✗ Failed: %s", ee.Reason)
		if len(ee.Tail) > 0 {
			r.Log.Error("Last ffmpeg output:")
			for _, l := range ee.Tail {
				r.Log.Error("  %s", l)
			}
		}
		return job.finish(OutcomeFailed, ee.Reason, err)
	}
	r.Log.Error("✗ Failed: %v", err)
	return job.finish(OutcomeFailed, err.Error(), err)
}

// record appends res to the summary, the journal and the metrics in
// discovery order.
func (r *Runner) record(sum *Summary, res Result) {
	sum.Record(res)
	r.Journal.Record(journal.Entry{
		Input:       res.Input,
		Output:      res.Output,
		Outcome:     res.Outcome.String(),
		Reason:      res.Reason,
		Profile:     res.Profile.String(),
		LUT:         res.LUT.Path,
		LUTSource:   string(res.LUT.Source),
		InputBytes:  res.InputBytes,
		OutputBytes: res.OutputBytes,
		Elapsed:     res.Elapsed,
		Speed:       res.Speed,
		Interrupted: res.Interrupted,
	})
	r.Metrics.Observe(res.Outcome.String(), res.Profile.String(),
		res.Outcome == OutcomeSucceeded, res.InputBytes, res.OutputBytes, res.Elapsed, res.Speed)
}

func probeReason(err error) string {
	var pe *probe.ProbeError
	if errors.As(err, &pe) {
		return "probe: " + pe.Reason
	}
	return "probe: " + err.Error()
}

// --- Logging helpers ---

func targetLabel(t config.Target) string {
	if t == config.TargetRec709 {
		return "REC709"
	}
	return "REC2020 HLG"
}

func (r *Runner) logProfile(a lut.Assignment) {
	target := targetLabel(r.Cfg.Target)
	switch {
	case a.Source == lut.SourceFallback:
		r.Log.Warn("Color Profile: Unknown → assuming DLogM → %s", target)
	case a.Source == lut.SourceOverride:
		r.Log.Info("Color Profile: %s → %s (LUT override %s)", strings.ToUpper(a.Profile.String()), target, filepath.Base(a.Path))
	case a.Profile == color.Unknown:
		r.Log.Warn("Color Profile: Unknown → %s without LUT", target)
	case a.Profile == color.Rec709:
		r.Log.Info("Color Profile: REC709 → %s", target)
	default:
		r.Log.Info("Color Profile: %s → REC709 → %s", strings.ToUpper(a.Profile.String()), target)
	}
	if a.HasLUT() {
		r.Log.Debug("LUT: %s (%s)", a.Path, a.Source)
	}
}

func (r *Runner) logBatchHeader(n int, outDir string) {
	cfg := r.Cfg
	r.Log.Info("Found %d file(s) in %s", n, cfg.InputDir)
	r.Log.Info("Output: %s (suffix %q)", outDir, cfg.Suffix)
	r.Log.Info("Target: %s | Encoder: %s %s (max %s)", targetLabel(cfg.Target), cfg.VideoEncoder, cfg.VideoBitrate, cfg.MaxRate)
	if cfg.LUTOverride != "" {
		r.Log.Info("LUT override: %s", cfg.LUTOverride)
	}
	if cfg.Unknown == config.UnknownNoLUT {
		r.Log.Info("Unknown profiles: no LUT")
	}
	if cfg.DryRun {
		r.Log.Warn("Dry run: commands are printed, nothing is encoded")
	}
}

func (r *Runner) logSummary(s *Summary) {
	r.Log.Print("\n" + display.Banner("SUMMARY"))
	r.Log.Info("Total: %d | Success: %d | Failed: %d | Skipped: %d | Time: %s",
		s.Discovered, s.Succeeded, s.Failed, s.Skipped, display.FormatDuration(s.Elapsed.Seconds()))

	if s.InputBytes > 0 {
		r.Log.Info("Input: %s → Output: %s (%s) | Saved: %s",
			display.FormatBytes(s.InputBytes),
			display.FormatBytes(s.OutputBytes),
			display.FormatRatio(s.InputBytes, s.OutputBytes),
			display.FormatBytesWithSign(s.SpaceSaved()))
	}
	r.Log.Print(display.Rule("═"))

	switch {
	case s.Interrupted:
		r.Log.Warn("Interrupted: %d file(s) not started", s.countReason(ReasonNotStarted))
	case s.Failed == 0 && s.Succeeded == s.Discovered:
		r.Log.Success("All conversions successful!")
	case s.Failed > 0:
		r.Log.Warn("%d conversion(s) failed", s.Failed)
	}
}

func (s *Summary) countReason(reason string) int {
	n := 0
	for _, r := range s.Results {
		if r.Reason == reason {
			n++
		}
	}
	return n
}
