// Package config holds runtime configuration: defaults, an optional YAML
// config file, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Target selects the output color space.
type Target string

const (
	TargetHLG    Target = "hlg"    // BT.2020 primaries/matrix, HLG transfer tag (default).
	TargetRec709 Target = "rec709" // BT.709 SDR.
)

// UnknownPolicy controls how files with unrecognized color tags are handled.
type UnknownPolicy string

const (
	UnknownAssumeDLogM UnknownPolicy = "dlogm" // Treat as DLog-M and apply its LUT (default).
	UnknownNoLUT       UnknownPolicy = "none"  // Convert without a LUT stage.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], then mutated by [ParseArgs] before being
// passed (by pointer) to packages that need it.
type Config struct {
	// Paths.
	InputDir  string `yaml:"directory"`
	OutputDir string `yaml:"output"` // Empty means "same as InputDir".
	Suffix    string `yaml:"suffix"` // Default: "_HLG_hw".

	// LUT selection.
	LUTDir      string        `yaml:"lut_dir"` // Default: "luts".
	LUTOverride string        `yaml:"lut"`     // Explicit LUT for every profile.
	Unknown     UnknownPolicy `yaml:"unknown"` // Default: "dlogm".
	Target      Target        `yaml:"target"`  // Default: "hlg".

	// Tools.
	FFmpegBin  string `yaml:"ffmpeg"`  // Default: "ffmpeg".
	FFprobeBin string `yaml:"ffprobe"` // Default: "ffprobe".

	// Encoder policy. Fixed per run, never derived per file.
	HWAccel      string `yaml:"-"`             // Fixed: "videotoolbox".
	VideoEncoder string `yaml:"-"`             // Fixed: "hevc_videotoolbox".
	VideoBitrate string `yaml:"video_bitrate"` // Default: "20M".
	MaxRate      string `yaml:"max_rate"`      // Default: "25M".
	BufSize      string `yaml:"buf_size"`      // Default: "25M".
	PixFmt       string `yaml:"-"`             // Fixed: "p010le".
	CodecTag     string `yaml:"-"`             // Fixed: "hvc1".

	// Timeouts.
	Timeout      time.Duration `yaml:"timeout"`       // Per-file encode timeout. 0 disables.
	ProbeTimeout time.Duration `yaml:"probe_timeout"` // Default: 30s.
	KillGrace    time.Duration `yaml:"-"`             // Fixed: 5s between SIGINT and SIGKILL.

	// Behavior flags.
	DryRun    bool `yaml:"dry_run"`
	CheckOnly bool `yaml:"-"`

	// Display and logging.
	Verbose          bool          `yaml:"verbose"`
	ColorMode        ColorMode     `yaml:"color"`
	LogFile          string        `yaml:"log"`          // Optional plain log mirror.
	JournalFile      string        `yaml:"journal"`      // Default: "conversion.log".
	MetricsFile      string        `yaml:"metrics_file"` // Optional Prometheus textfile.
	ProgressInterval time.Duration `yaml:"-"`            // Fixed: 500ms.
	ProgressWidth    int           `yaml:"-"`            // Fixed: 30 cells.

	// ConfigFile is the YAML file the config was loaded from, if any.
	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadFile] and [ParseArgs] apply overrides.
func DefaultConfig() Config {
	return Config{
		InputDir:         ".",
		Suffix:           "_HLG_hw",
		LUTDir:           "luts",
		Unknown:          UnknownAssumeDLogM,
		Target:           TargetHLG,
		FFmpegBin:        "ffmpeg",
		FFprobeBin:       "ffprobe",
		HWAccel:          "videotoolbox",
		VideoEncoder:     "hevc_videotoolbox",
		VideoBitrate:     "20M",
		MaxRate:          "25M",
		BufSize:          "25M",
		PixFmt:           "p010le",
		CodecTag:         "hvc1",
		Timeout:          4 * time.Hour,
		ProbeTimeout:     30 * time.Second,
		KillGrace:        5 * time.Second,
		ColorMode:        ColorAuto,
		JournalFile:      "conversion.log",
		ProgressInterval: 500 * time.Millisecond,
		ProgressWidth:    30,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// EffectiveOutputDir returns OutputDir, or InputDir when no output directory
// was configured.
func (c *Config) EffectiveOutputDir() string {
	if c.OutputDir == "" {
		return c.InputDir
	}
	return c.OutputDir
}

// Validate checks enum fields, timeouts and the output naming rules.
func (c *Config) Validate() error {
	switch c.Target {
	case TargetHLG, TargetRec709:
		// valid
	default:
		return errors.New("invalid target (use 'hlg' or 'rec709')")
	}

	switch c.Unknown {
	case UnknownAssumeDLogM, UnknownNoLUT:
		// valid
	default:
		return errors.New("invalid unknown-profile policy (use 'dlogm' or 'none')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Timeout < 0 || c.ProbeTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}

	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("suffix %q must not contain path separators", c.Suffix)
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" {
		return errors.New("input directory must not be empty")
	}
	if c.Suffix == "" && sameDir(c.InputDir, c.EffectiveOutputDir()) {
		return errors.New("empty suffix requires an output directory different from the input directory")
	}
	return nil
}

// ValidatePaths ensures an empty suffix is not combined with an output
// directory that resolves to the input directory, which would make outputs
// overwrite their own inputs. Both arguments must be absolute,
// symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if c.Suffix == "" && inputAbs == outputAbs {
		return errors.New("output directory resolves to the input directory and no suffix is set")
	}
	return nil
}

func sameDir(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
