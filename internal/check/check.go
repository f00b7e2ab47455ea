// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for ffmpeg, ffprobe, the hardware HEVC
// encoder, the filters the conversion graph needs and the LUT files.
package check

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/backmassage/lutconv/internal/color"
	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/lut"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound     = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound    = errors.New("ffprobe not found on PATH")
	ErrEncoderUnavailable = errors.New("encoder not available in ffmpeg")
)

// requiredFilters are the ffmpeg filters every conversion graph uses.
var requiredFilters = []string{"zscale", "lut3d"}

// commandTimeout bounds each diagnostic ffmpeg call.
const commandTimeout = 15 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// RunCheck runs the interactive --check flow and reports whether every
// required component is usable. Problems are logged, never returned, so
// the whole report is printed in one pass.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")
	checkHost(ctx, log)

	ok := checkFfmpeg(ctx, cfg, log)
	ok = checkFfprobe(cfg, log) && ok
	if ok {
		ok = checkEncoder(ctx, cfg, log) && ok
		ok = checkFilters(ctx, cfg, log) && ok
	}
	ok = checkLUTs(cfg, log) && ok

	if ok {
		log.Success("All checks passed")
	} else {
		log.Error("Some checks failed")
	}
	return ok
}

// CheckDeps is the pre-run validation: ffmpeg and ffprobe must be on PATH
// and ffmpeg must list the configured video encoder. Returns an error
// wrapping one of the sentinels on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.FFmpegBin)
	}
	if _, err := exec.LookPath(cfg.FFprobeBin); err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, cfg.FFprobeBin)
	}
	out, err := output(ctx, cfg.FFmpegBin, "-hide_banner", "-encoders")
	if err != nil {
		return fmt.Errorf("%w: cannot list encoders: %w", ErrEncoderUnavailable, err)
	}
	if !listed(out, cfg.VideoEncoder) {
		return fmt.Errorf("%w: %s", ErrEncoderUnavailable, cfg.VideoEncoder)
	}
	return nil
}

// checkHost logs the platform gopsutil reports. Informational only.
func checkHost(ctx context.Context, log Logger) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		log.Warn("Host info unavailable: %v", err)
		return
	}
	log.Info("Host: %s %s (%s, %s)", info.Platform, info.PlatformVersion, info.OS, info.KernelArch)
	if info.OS != "darwin" {
		log.Warn("VideoToolbox encoding requires macOS")
	}
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(ctx context.Context, cfg *config.Config, log Logger) bool {
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		log.Error("ffmpeg not found (%s)", cfg.FFmpegBin)
		return false
	}
	out, err := output(ctx, cfg.FFmpegBin, "-version")
	if err != nil {
		log.Error("ffmpeg found but -version failed: %v", err)
		return false
	}
	log.Success("ffmpeg: %s", firstLine(out))
	return true
}

func checkFfprobe(cfg *config.Config, log Logger) bool {
	path, err := exec.LookPath(cfg.FFprobeBin)
	if err != nil {
		log.Error("ffprobe not found (%s)", cfg.FFprobeBin)
		return false
	}
	log.Success("ffprobe: %s", path)
	return true
}

// checkEncoder confirms the configured hardware encoder is compiled in.
func checkEncoder(ctx context.Context, cfg *config.Config, log Logger) bool {
	out, err := output(ctx, cfg.FFmpegBin, "-hide_banner", "-encoders")
	if err != nil {
		log.Error("Could not list encoders: %v", err)
		return false
	}
	if !listed(out, cfg.VideoEncoder) {
		log.Error("Encoder %s not available", cfg.VideoEncoder)
		return false
	}
	log.Success("Encoder %s available", cfg.VideoEncoder)
	return true
}

// checkFilters confirms zscale and lut3d are compiled in.
func checkFilters(ctx context.Context, cfg *config.Config, log Logger) bool {
	out, err := output(ctx, cfg.FFmpegBin, "-hide_banner", "-filters")
	if err != nil {
		log.Error("Could not list filters: %v", err)
		return false
	}
	ok := true
	for _, name := range requiredFilters {
		if listed(out, name) {
			log.Success("Filter %s available", name)
			continue
		}
		log.Error("Filter %s missing (ffmpeg built without it?)", name)
		ok = false
	}
	return ok
}

// checkLUTs reads the header of every LUT the selector can hand out.
func checkLUTs(cfg *config.Config, log Logger) bool {
	sel := lut.NewSelector(cfg)
	seen := map[string]bool{}
	ok := true
	for _, p := range []color.Profile{color.DLogM, color.HLG, color.Unknown} {
		a := sel.Resolve(p)
		if !a.HasLUT() || seen[a.Path] {
			continue
		}
		seen[a.Path] = true
		h, err := lut.ReadCubeHeader(a.Path)
		if err != nil {
			log.Error("LUT %s: %v", a.Path, err)
			ok = false
			continue
		}
		if !h.Complete() {
			log.Warn("LUT %s: %d of %d rows", a.Path, h.Entries, h.Size*h.Size*h.Size)
			continue
		}
		log.Success("LUT %s: %d³ (%s)", a.Path, h.Size, p)
		if h.Title != "" {
			log.Debug("LUT title: %s", h.Title)
		}
	}
	return ok
}

// --- internal helpers ---

// output runs bin with args and returns its stdout.
func output(ctx context.Context, bin string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, firstLine([]byte(msg)))
		}
		return out, err
	}
	return out, nil
}

// listed reports whether an ffmpeg -encoders or -filters listing names
// name. Both listings put a flags column before the name.
func listed(listing []byte, name string) bool {
	sc := bufio.NewScanner(bytes.NewReader(listing))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
