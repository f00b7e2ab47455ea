package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/lutconv/internal/config"
	"github.com/backmassage/lutconv/internal/lut"
)

const encodersListing = `Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
 V....D hevc_videotoolbox    VideoToolbox H.265 Encoder (codec hevc)
 A....D aac                  AAC (Advanced Audio Coding)
`

const filtersListing = `Filters:
  T.. = Timeline support
 ... lut3d             V->V       Adjust colors using a 3D LUT.
 ... zscale            V->V       Apply resizing, colorspace and bit depth conversion.
`

// recordingLogger captures log lines by level.
type recordingLogger struct {
	lines map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{lines: map[string][]string{}}
}

func (l *recordingLogger) add(level, format string, args ...interface{}) {
	l.lines[level] = append(l.lines[level], fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Info(f string, a ...interface{})    { l.add("info", f, a...) }
func (l *recordingLogger) Success(f string, a ...interface{}) { l.add("success", f, a...) }
func (l *recordingLogger) Warn(f string, a ...interface{})    { l.add("warn", f, a...) }
func (l *recordingLogger) Error(f string, a ...interface{})   { l.add("error", f, a...) }
func (l *recordingLogger) Debug(f string, a ...interface{})   { l.add("debug", f, a...) }

func (l *recordingLogger) has(level, substr string) bool {
	for _, line := range l.lines[level] {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// fakeTools writes ffmpeg and ffprobe scripts into a temp dir. The ffmpeg
// script answers -version, -encoders and -filters with the given listings.
func fakeTools(t *testing.T, encoders, filters string) *config.Config {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts required")
	}
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "encoders"), []byte(encoders), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "filters"), []byte(filters), 0o644))

	ffmpeg := `#!/bin/sh
for a in "$@"; do
  case "$a" in
    -version) echo "ffmpeg version 7.1 Copyright (c) 2000-2024"; echo "built with clang"; exit 0 ;;
    -encoders) cat "` + data + `/encoders"; exit 0 ;;
    -filters) cat "` + data + `/filters"; exit 0 ;;
  esac
done
exit 1
`
	writeScript(t, filepath.Join(dir, "ffmpeg"), ffmpeg)
	writeScript(t, filepath.Join(dir, "ffprobe"), "#!/bin/sh\nexit 0\n")

	luts := filepath.Join(dir, "luts")
	require.NoError(t, os.MkdirAll(luts, 0o755))
	writeCube(t, filepath.Join(luts, lut.DLogMFile))
	writeCube(t, filepath.Join(luts, lut.HLGFile))

	cfg := config.DefaultConfig()
	cfg.FFmpegBin = filepath.Join(dir, "ffmpeg")
	cfg.FFprobeBin = filepath.Join(dir, "ffprobe")
	cfg.LUTDir = luts
	return &cfg
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
}

func writeCube(t *testing.T, path string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("TITLE \"test\"\nLUT_3D_SIZE 2\n")
	for range 8 {
		b.WriteString("0.0 0.5 1.0\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func TestCheckDeps_OK(t *testing.T) {
	cfg := fakeTools(t, encodersListing, filtersListing)
	assert.NoError(t, CheckDeps(context.Background(), cfg))
}

func TestCheckDeps_MissingFfmpeg(t *testing.T) {
	cfg := fakeTools(t, encodersListing, filtersListing)
	cfg.FFmpegBin = filepath.Join(t.TempDir(), "nope")
	err := CheckDeps(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrFfmpegNotFound), "got %v", err)
}

func TestCheckDeps_MissingFfprobe(t *testing.T) {
	cfg := fakeTools(t, encodersListing, filtersListing)
	cfg.FFprobeBin = filepath.Join(t.TempDir(), "nope")
	err := CheckDeps(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrFfprobeNotFound), "got %v", err)
}

func TestCheckDeps_EncoderMissing(t *testing.T) {
	cfg := fakeTools(t, " V....D libx264  libx264 H.264\n", filtersListing)
	err := CheckDeps(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEncoderUnavailable))
	assert.Contains(t, err.Error(), "hevc_videotoolbox")
}

func TestRunCheck_AllPass(t *testing.T) {
	cfg := fakeTools(t, encodersListing, filtersListing)
	log := newRecordingLogger()

	assert.True(t, RunCheck(context.Background(), cfg, log))
	assert.True(t, log.has("success", "ffmpeg version 7.1"))
	assert.True(t, log.has("success", "Encoder hevc_videotoolbox available"))
	assert.True(t, log.has("success", "Filter zscale available"))
	assert.True(t, log.has("success", "Filter lut3d available"))
	assert.True(t, log.has("success", lut.HLGFile))
	assert.True(t, log.has("success", "All checks passed"))
}

func TestRunCheck_MissingFilter(t *testing.T) {
	cfg := fakeTools(t, encodersListing, " ... lut3d  V->V  Adjust colors using a 3D LUT.\n")
	log := newRecordingLogger()

	assert.False(t, RunCheck(context.Background(), cfg, log))
	assert.True(t, log.has("error", "Filter zscale missing"))
}

func TestRunCheck_MissingLUT(t *testing.T) {
	cfg := fakeTools(t, encodersListing, filtersListing)
	require.NoError(t, os.Remove(filepath.Join(cfg.LUTDir, lut.HLGFile)))
	log := newRecordingLogger()

	assert.False(t, RunCheck(context.Background(), cfg, log))
	assert.True(t, log.has("error", lut.HLGFile))
}

func TestRunCheck_OverrideCheckedOnce(t *testing.T) {
	cfg := fakeTools(t, encodersListing, filtersListing)
	cfg.LUTOverride = filepath.Join(cfg.LUTDir, lut.DLogMFile)
	log := newRecordingLogger()

	assert.True(t, RunCheck(context.Background(), cfg, log))
	n := 0
	for _, l := range log.lines["success"] {
		if strings.HasPrefix(l, "LUT ") {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestListed(t *testing.T) {
	out := []byte(encodersListing)
	assert.True(t, listed(out, "hevc_videotoolbox"))
	assert.True(t, listed(out, "aac"))
	assert.False(t, listed(out, "hevc"))
	assert.False(t, listed(out, "Video"))
}
