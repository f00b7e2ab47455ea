package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/lutconv/internal/color"
	"github.com/backmassage/lutconv/internal/naming"
)

// Errors returned by [ParseJSON] for responses that cannot yield a VideoInfo.
var (
	ErrEmptyResponse = errors.New("empty ffprobe response")
	ErrNoVideoStream = errors.New("no video stream")
)

// Prober runs ffprobe for one file at a time.
type Prober struct {
	Binary  string        // ffprobe binary name or path.
	Timeout time.Duration // Per-call limit; 0 means no limit beyond ctx.
}

// NewProber returns a Prober using binary with the given per-call timeout.
func NewProber(binary string, timeout time.Duration) *Prober {
	return &Prober{Binary: binary, Timeout: timeout}
}

// probeArgs requests only the container duration and the video stream fields
// the classifier and console need.
var probeArgs = []string{
	"-v", "error",
	"-select_streams", "v",
	"-show_entries",
	"format=duration:stream=codec_name,codec_type,width,height,color_space,color_primaries,color_transfer:stream_disposition=attached_pic",
	"-print_format", "json",
}

// Probe runs a single ffprobe JSON call against path and returns the parsed
// VideoInfo. Every failure is a *[ProbeError].
func (p *Prober) Probe(ctx context.Context, path string) (VideoInfo, error) {
	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return VideoInfo{}, &ProbeError{Path: path, Reason: "ffprobe unavailable", Err: fmt.Errorf("%w: %w", ErrProbeNotFound, err)}
	}

	callCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, probeArgs...), naming.ArgPath(path))
	cmd := exec.CommandContext(callCtx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		switch {
		case ctx.Err() != nil:
			return VideoInfo{}, &ProbeError{Path: path, Reason: "interrupted", Err: ctx.Err()}
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			return VideoInfo{}, &ProbeError{Path: path, Reason: "timed out after " + p.Timeout.String(), Err: context.DeadlineExceeded}
		}
		reason := "ffprobe failed"
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			reason = "ffprobe exited with status " + strconv.Itoa(exitErr.ExitCode())
		}
		if last := lastLine(stderr.String()); last != "" {
			reason += ": " + last
		}
		return VideoInfo{}, &ProbeError{Path: path, Reason: reason, Err: err}
	}

	info, err := ParseJSON(stdout.Bytes())
	if err != nil {
		return VideoInfo{}, &ProbeError{Path: path, Reason: "unusable response", Err: err}
	}
	return info, nil
}

// ParseJSON converts raw ffprobe JSON output into a VideoInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (VideoInfo, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return VideoInfo{}, ErrEmptyResponse
	}
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return VideoInfo{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	v := primaryVideo(raw.Streams)
	if v == nil {
		return VideoInfo{}, ErrNoVideoStream
	}
	return VideoInfo{
		Duration:       parseDuration(raw.Format.Duration),
		ColorSpace:     color.NormalizeTag(v.ColorSpace),
		ColorPrimaries: color.NormalizeTag(v.ColorPrimaries),
		ColorTransfer:  color.NormalizeTag(v.ColorTransfer),
		Width:          v.Width,
		Height:         v.Height,
		Codec:          strings.TrimSpace(v.CodecName),
	}, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecName      string         `json:"codec_name"`
	CodecType      string         `json:"codec_type"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	ColorSpace     string         `json:"color_space"`
	ColorPrimaries string         `json:"color_primaries"`
	ColorTransfer  string         `json:"color_transfer"`
	Disposition    map[string]int `json:"disposition"`
}

// primaryVideo returns the first video stream that is not attached cover
// art. A stream without codec_type counts as video because -select_streams v
// already filtered the list.
func primaryVideo(streams []ffprobeStream) *ffprobeStream {
	for i := range streams {
		s := &streams[i]
		if s.CodecType != "" && s.CodecType != "video" {
			continue
		}
		if s.Disposition["attached_pic"] == 1 {
			continue
		}
		return s
	}
	return nil
}

// parseDuration accepts ffprobe's string seconds; "N/A", garbage and
// negative values become 0 so progress reporting is suppressed rather than wrong.
func parseDuration(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
