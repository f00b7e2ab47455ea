package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// DJI Osmo output: bt709 space and primaries, transfer left untagged.
const sampleDJI = `{
  "streams": [
    {
      "codec_name": "hevc",
      "codec_type": "video",
      "width": 3840,
      "height": 2160,
      "color_space": "bt709",
      "color_primaries": "bt709",
      "color_transfer": "unknown",
      "disposition": { "default": 1, "attached_pic": 0 }
    }
  ],
  "format": { "duration": "61.394000" }
}`

// iPhone Dolby Vision/HLG clip behind an embedded cover image.
const sampleIPhone = `{
  "streams": [
    {
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "disposition": { "default": 0, "attached_pic": 1 }
    },
    {
      "codec_name": "hevc",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "color_space": "bt2020nc",
      "color_primaries": "bt2020",
      "color_transfer": "arib-std-b67",
      "disposition": { "default": 1, "attached_pic": 0 }
    }
  ],
  "format": { "duration": "12.5" }
}`

func TestParseJSON_DJI(t *testing.T) {
	info, err := ParseJSON([]byte(sampleDJI))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if info.Duration != 61.394 {
		t.Errorf("Duration = %v, want 61.394", info.Duration)
	}
	if info.ColorSpace != "bt709" || info.ColorPrimaries != "bt709" {
		t.Errorf("space/primaries = %q/%q", info.ColorSpace, info.ColorPrimaries)
	}
	if info.ColorTransfer != "" {
		t.Errorf("placeholder transfer should fold to empty, got %q", info.ColorTransfer)
	}
	if got := info.Resolution(); got != "3840x2160" {
		t.Errorf("Resolution() = %q", got)
	}
	if got := info.Tags(); got != "bt709 / bt709 / unknown" {
		t.Errorf("Tags() = %q", got)
	}
}

func TestParseJSON_SkipsAttachedPic(t *testing.T) {
	info, err := ParseJSON([]byte(sampleIPhone))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if info.Codec != "hevc" || info.Width != 1920 {
		t.Errorf("cover art chosen as primary video: %+v", info)
	}
	if info.ColorTransfer != "arib-std-b67" {
		t.Errorf("ColorTransfer = %q", info.ColorTransfer)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrEmptyResponse},
		{"whitespace", "  \n", ErrEmptyResponse},
		{"no streams", `{"streams": [], "format": {"duration": "1"}}`, ErrNoVideoStream},
		{"audio only", `{"streams": [{"codec_type": "audio"}]}`, ErrNoVideoStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Error("garbage input should fail")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{" 3 ", 3},
		{"N/A", 0},
		{"", 0},
		{"-4", 0},
		{"NaN", 0},
		{"+Inf", 0},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// fakeProbe writes an executable shell script standing in for ffprobe.
func fakeProbe(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbe_Success(t *testing.T) {
	bin := fakeProbe(t, "cat <<'JSON'\n"+sampleIPhone+"\nJSON")
	info, err := NewProber(bin, 5*time.Second).Probe(context.Background(), "clip.mov")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Duration != 12.5 {
		t.Errorf("Duration = %v", info.Duration)
	}
}

func TestProbe_NonZeroExit(t *testing.T) {
	bin := fakeProbe(t, "echo 'clip.mov: Invalid data found when processing input' >&2\nexit 1")
	_, err := NewProber(bin, 5*time.Second).Probe(context.Background(), "clip.mov")
	var pe *ProbeError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ProbeError", err)
	}
	if pe.Reason != "ffprobe exited with status 1: clip.mov: Invalid data found when processing input" {
		t.Errorf("Reason = %q", pe.Reason)
	}
}

func TestProbe_DashLeadingPathNotAnOption(t *testing.T) {
	bin := fakeProbe(t, "for a; do last=$a; done\necho \"$last\" >&2\nexit 1")
	_, err := NewProber(bin, 5*time.Second).Probe(context.Background(), "-x.mp4")
	var pe *ProbeError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ProbeError", err)
	}
	if want := "ffprobe exited with status 1: ./-x.mp4"; pe.Reason != want {
		t.Errorf("Reason = %q, want %q", pe.Reason, want)
	}
}

func TestProbe_Timeout(t *testing.T) {
	bin := fakeProbe(t, "exec sleep 10")
	_, err := NewProber(bin, 100*time.Millisecond).Probe(context.Background(), "clip.mov")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestProbe_Interrupted(t *testing.T) {
	bin := fakeProbe(t, "exec sleep 10")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := NewProber(bin, time.Minute).Probe(ctx, "clip.mov")
	var pe *ProbeError
	if !errors.As(err, &pe) || pe.Reason != "interrupted" {
		t.Errorf("err = %v, want interrupted ProbeError", err)
	}
}

func TestProbe_EmptyOutput(t *testing.T) {
	bin := fakeProbe(t, "exit 0")
	_, err := NewProber(bin, time.Second).Probe(context.Background(), "clip.mov")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestProbe_BinaryMissing(t *testing.T) {
	_, err := NewProber(filepath.Join(t.TempDir(), "nope"), time.Second).Probe(context.Background(), "clip.mov")
	if !errors.Is(err, ErrProbeNotFound) {
		t.Errorf("err = %v, want ErrProbeNotFound", err)
	}
}
