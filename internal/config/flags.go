package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into paths, color, behavior, display, and utility.
// Negated flags (e.g. --no-color) are applied after Parse so Config defaults hold unless set.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrVersion is returned by [ParseArgs] after --version output was printed.
var ErrVersion = errors.New("version requested")

// ParseArgs parses args (without the program name) into cfg. A --config file,
// when given, is loaded first so explicit flags win over file values.
//
// On --help it prints usage and returns [flag.ErrHelp]; on --version it prints
// the version and returns [ErrVersion]. Callers treat both as a clean exit.
func ParseArgs(cfg *Config, args []string, version string) error {
	if path := findConfigArg(args); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet("lutconv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(os.Stderr, version) }

	var negated negatedFlags
	var configPath string

	definePathFlags(fs, cfg)
	defineColorFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated, &configPath)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stderr, version)
		}
		return err
	}

	if negated.showHelp {
		printUsage(os.Stderr, version)
		return flag.ErrHelp
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "lutconv v"+version)
		return ErrVersion
	}

	applyNegatedFlags(cfg, &negated)

	if extra := fs.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected arguments: %s (use -d for the input directory)", strings.Join(extra, " "))
	}

	cfg.InputDir = NormalizeDirArg(cfg.InputDir)
	cfg.OutputDir = NormalizeDirArg(cfg.OutputDir)
	return nil
}

// findConfigArg returns the value of -config/--config without running the
// full parser, so the file can be applied before flag defaults are bound.
func findConfigArg(args []string) string {
	for i, a := range args {
		if a == "--" {
			return ""
		}
		name := strings.TrimLeft(a, "-")
		if len(a)-len(name) == 0 || len(a)-len(name) > 2 {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// definePathFlags registers -d, -o, -s, --lut-dir and -l.
func definePathFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.InputDir, "directory", cfg.InputDir, "Input directory")
	fs.StringVar(&cfg.InputDir, "d", cfg.InputDir, "Same as --directory")
	fs.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Output directory (default: same as input)")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "Same as --output")
	fs.StringVar(&cfg.Suffix, "suffix", cfg.Suffix, "Output filename suffix")
	fs.StringVar(&cfg.Suffix, "s", cfg.Suffix, "Same as --suffix")
	fs.StringVar(&cfg.LUTOverride, "lut", cfg.LUTOverride, "LUT file applied to every profile")
	fs.StringVar(&cfg.LUTOverride, "l", cfg.LUTOverride, "Same as --lut")
	fs.StringVar(&cfg.LUTDir, "lut-dir", cfg.LUTDir, "Directory holding the profile LUTs")
}

// defineColorFlags registers --target and --unknown.
func defineColorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&targetValue{&cfg.Target}, "target", "Output color space: hlg | rec709")
	fs.Var(&unknownValue{&cfg.Unknown}, "unknown", "Unrecognized color tags: dlogm | none")
}

// defineBehaviorFlags registers dry-run, timeouts and tool paths.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Print commands; do not encode")
	fs.BoolVar(&cfg.DryRun, "n", cfg.DryRun, "Same as --dry-run")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-file encode timeout (0 disables)")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "ffprobe timeout")
	fs.StringVar(&cfg.FFmpegBin, "ffmpeg", cfg.FFmpegBin, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobeBin, "ffprobe", cfg.FFprobeBin, "ffprobe binary")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log, --journal, --metrics-file.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append console log lines to file")
	fs.StringVar(&cfg.JournalFile, "journal", cfg.JournalFile, "Append JSON outcome records to file (empty disables)")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus textfile metrics at end of run")
}

// defineUtilityFlags registers --check, --config, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags, configPath *string) {
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(configPath, "config", "", "YAML config file (applied before flags)")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// printUsage writes the help text to w. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 28
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "lutconv v" + version + " - LUT color conversion with hardware HEVC encoding"},
		{"", ""},
		{"  lutconv [OPTIONS]", ""},
		{"", ""},
		{"Paths", ""},
		{"  -d, --directory <dir>", "Input directory (default: .)"},
		{"  -o, --output <dir>", "Output directory (default: same as input)"},
		{"  -s, --suffix <text>", "Output suffix (default: _HLG_hw)"},
		{"", ""},
		{"Color", ""},
		{"  -l, --lut <file>", "LUT applied to every profile"},
		{"  --lut-dir <dir>", "Profile LUT directory (default: luts)"},
		{"  --target <hlg|rec709>", "Output color space (default: hlg)"},
		{"  --unknown <dlogm|none>", "Unrecognized tags policy (default: dlogm)"},
		{"", ""},
		{"Behavior", ""},
		{"  -n, --dry-run", "Print ffmpeg commands; do not encode"},
		{"  --timeout <dur>", "Per-file encode timeout (default: 4h, 0 disables)"},
		{"  --probe-timeout <dur>", "ffprobe timeout (default: 30s)"},
		{"  --ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"", ""},
		{"Display & logging", ""},
		{"  -v, --verbose", "Verbose output"},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  --log <path>", "Append console log lines to file"},
		{"  --journal <path>", "JSON outcome journal (default: conversion.log)"},
		{"  --metrics-file <path>", "Prometheus textfile written after the run"},
		{"", ""},
		{"Utility", ""},
		{"  --config <file>", "YAML config file"},
		{"  -c, --check", "System diagnostics (ffmpeg, videotoolbox, LUTs)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use enum types (Target, UnknownPolicy) with flag.Var.

type targetValue struct{ p *Target }

func (t *targetValue) String() string {
	if t.p == nil {
		return ""
	}
	return string(*t.p)
}

func (t *targetValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "hlg":
		*t.p = TargetHLG
	case "rec709", "709", "sdr":
		*t.p = TargetRec709
	default:
		return fmt.Errorf("invalid target %q (use 'hlg' or 'rec709')", s)
	}
	return nil
}

type unknownValue struct{ p *UnknownPolicy }

func (u *unknownValue) String() string {
	if u.p == nil {
		return ""
	}
	return string(*u.p)
}

func (u *unknownValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "dlogm":
		*u.p = UnknownAssumeDLogM
	case "none":
		*u.p = UnknownNoLUT
	default:
		return fmt.Errorf("invalid unknown-profile policy %q (use 'dlogm' or 'none')", s)
	}
	return nil
}
