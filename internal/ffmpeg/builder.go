// Package ffmpeg lays out ffmpeg arguments for a FilePlan, runs the encoder
// under a supervisor with timeout and interrupt handling, and parses the
// -progress stream into events.
package ffmpeg

import (
	"strings"

	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/naming"
	"github.com/backmassage/lutconv/internal/planner"
)

// Build constructs the complete argument slice for a file, binary first.
// The same config and plan always produce an identical slice.
func Build(cfg *config.Config, plan *planner.FilePlan) []string {
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = append(args, cfg.FFmpegBin, "-hide_banner", "-nostdin", "-y")
	if cfg.Verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "error")
	}

	// Machine-readable progress on stdout, no interactive stats on stderr.
	args = append(args, "-progress", "pipe:1", "-nostats")

	// --- Input ---
	if plan.HWAccel != "" {
		args = append(args, "-hwaccel", plan.HWAccel)
	}
	args = append(args, "-i", naming.ArgPath(plan.InputPath))

	// --- Video ---
	if plan.VideoFilters != "" {
		args = append(args, "-vf", plan.VideoFilters)
	}
	args = append(args, plan.VideoOpts...)
	args = append(args, plan.ColorOpts...)

	// --- Container and audio ---
	args = append(args, plan.ContainerOpts...)
	args = append(args, plan.AudioOpts...)

	// --- Output ---
	args = append(args, naming.ArgPath(plan.OutputPath))
	return args
}

// CommandLine renders args as a single shell-pasteable line.
func CommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("_-./:=+,@%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
