// Package probe provides ffprobe-based media inspection. A single JSON call
// per file yields the container duration, the primary video stream's color
// tags, dimensions and codec.
package probe

import (
	"errors"
	"fmt"
	"strconv"
)

// VideoInfo is the probed metadata of one input file. Color tags are
// lower-case ffprobe names ("bt709", "arib-std-b67"); absent or placeholder
// tags ("unknown", "unspecified") are stored as empty strings.
type VideoInfo struct {
	Duration       float64 // Container duration in seconds; 0 when unknown.
	ColorSpace     string
	ColorPrimaries string
	ColorTransfer  string
	Width          int
	Height         int
	Codec          string
}

// Resolution returns "WxH", or "unknown" when either dimension is missing.
func (v VideoInfo) Resolution() string {
	if v.Width <= 0 || v.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(v.Width) + "x" + strconv.Itoa(v.Height)
}

// Tags returns the three color tags as "space / primaries / transfer" with
// empty values shown as "unknown".
func (v VideoInfo) Tags() string {
	return orUnknown(v.ColorSpace) + " / " + orUnknown(v.ColorPrimaries) + " / " + orUnknown(v.ColorTransfer)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// ErrProbeNotFound is wrapped by [ProbeError] when the ffprobe binary cannot
// be located.
var ErrProbeNotFound = errors.New("ffprobe not found")

// ProbeError reports why metadata could not be read for one file.
type ProbeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("probe %s: %s", e.Path, e.Reason)
}

func (e *ProbeError) Unwrap() error { return e.Err }
