// Package journal appends one JSON record per converted file, plus a run
// summary, to an on-disk log. Records of one invocation share a run_id.
package journal

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Entry is the journal view of one job outcome.
type Entry struct {
	Input       string
	Output      string
	Outcome     string
	Reason      string
	Profile     string
	LUT         string
	LUTSource   string
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
	Speed       float64
	Interrupted bool
}

// Totals is the journal view of a finished run.
type Totals struct {
	Discovered  int
	Succeeded   int
	Failed      int
	Skipped     int
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
	Interrupted bool
}

// Journal writes records through an hclog JSON logger. A nil *Journal
// discards everything.
type Journal struct {
	RunID string
	log   hclog.Logger
	file  *os.File
}

// Open appends to the journal at path, creating it if needed.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	j := New(f)
	j.file = f
	return j, nil
}

// New returns a journal writing to w with a fresh run ID.
func New(w io.Writer) *Journal {
	id := uuid.NewString()
	l := hclog.New(&hclog.LoggerOptions{
		Name:       "lutconv",
		Level:      hclog.Info,
		Output:     w,
		JSONFormat: true,
		TimeFormat: time.RFC3339,
	})
	return &Journal{RunID: id, log: l.With("run_id", id)}
}

// Start records the beginning of a run.
func (j *Journal) Start(inputDir, outputDir, target string, dryRun bool) {
	if j == nil {
		return
	}
	j.log.Info("run started",
		"input_dir", inputDir,
		"output_dir", outputDir,
		"target", target,
		"dry_run", dryRun,
	)
}

// Record appends one job outcome. Failures are written at warn level.
func (j *Journal) Record(e Entry) {
	if j == nil {
		return
	}
	args := []any{
		"file", e.Input,
		"output", e.Output,
		"outcome", e.Outcome,
		"profile", e.Profile,
		"input_bytes", e.InputBytes,
		"output_bytes", e.OutputBytes,
		"elapsed_seconds", e.Elapsed.Seconds(),
	}
	if e.LUT != "" {
		args = append(args, "lut", e.LUT, "lut_source", e.LUTSource)
	}
	if e.Reason != "" {
		args = append(args, "reason", e.Reason)
	}
	if e.Speed > 0 {
		args = append(args, "speed", e.Speed)
	}
	if e.Interrupted {
		args = append(args, "interrupted", true)
	}
	if e.Outcome == "failed" {
		j.log.Warn("conversion", args...)
		return
	}
	j.log.Info("conversion", args...)
}

// Summary appends the run totals.
func (j *Journal) Summary(t Totals) {
	if j == nil {
		return
	}
	j.log.Info("run summary",
		"discovered", t.Discovered,
		"succeeded", t.Succeeded,
		"failed", t.Failed,
		"skipped", t.Skipped,
		"input_bytes", t.InputBytes,
		"output_bytes", t.OutputBytes,
		"elapsed_seconds", t.Elapsed.Seconds(),
		"interrupted", t.Interrupted,
	)
}

// Close closes the underlying file when the journal owns one.
func (j *Journal) Close() error {
	if j == nil || j.file == nil {
		return nil
	}
	return j.file.Close()
}
