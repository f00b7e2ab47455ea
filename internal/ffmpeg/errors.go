package ffmpeg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors returned by [Supervisor.Run].
var (
	ErrEncodeTimeout = errors.New("encode timed out")
	ErrInterrupted   = errors.New("encode interrupted")
	ErrNotFound      = errors.New("ffmpeg not found")
)

// EncodeError reports a non-zero ffmpeg exit.
type EncodeError struct {
	ExitCode int
	Reason   string   // short classification of the failure
	Tail     []string // last diagnostics lines
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ffmpeg exited with status %d: %s", e.ExitCode, e.Reason)
}

// Pre-compiled patterns for summarizing ffmpeg diagnostics. Checked in
// order by [Classify]; the first match wins.
var (
	reMissingFilter = regexp.MustCompile(
		`No such filter: '([^']+)'|Filter not found`)

	reEncoderUnavailable = regexp.MustCompile(
		`(?i)Unknown encoder '([^']+)'|Encoder \S+ not found|` +
			`Error while opening encoder|cannot create compression session|` +
			`Error initializing output stream`)

	reLUTUnreadable = regexp.MustCompile(
		`(?i)lut3d.*(unable|cannot|could not|failed|error|invalid)|` +
			`initializing filter 'lut3d'|\.cube.*(no such file|permission denied)`)

	reInputUnreadable = regexp.MustCompile(
		`Invalid data found when processing input|moov atom not found|` +
			`(?i:error opening input)`)

	reDiskFull = regexp.MustCompile(
		`No space left on device`)
)

// Classify returns a one-line reason for a failed encode from its
// diagnostics tail. Without a known pattern the last non-empty line is used.
func Classify(tail []string) string {
	text := strings.Join(tail, "\n")
	if m := reMissingFilter.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return "ffmpeg lacks the " + m[1] + " filter"
		}
		return "ffmpeg lacks a required filter"
	}
	if m := reEncoderUnavailable.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return "encoder " + m[1] + " unavailable"
		}
		return "hardware encoder unavailable"
	}
	switch {
	case reLUTUnreadable.MatchString(text):
		return "LUT file could not be read"
	case reDiskFull.MatchString(text):
		return "disk full"
	case reInputUnreadable.MatchString(text):
		return "input unreadable"
	}
	for i := len(tail) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(tail[i]); l != "" {
			return l
		}
	}
	return "no diagnostic output"
}
