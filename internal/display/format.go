package display

import (
	"fmt"
	"math"
	"strings"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// FormatDuration renders seconds as HH:MM:SS. Negative, NaN and infinite
// inputs render as 00:00:00; hours are not capped at 24.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatRatio returns out as a percentage of in ("62.5%"), or "n/a" when in is zero.
func FormatRatio(in, out int64) string {
	if in <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(out)*100/float64(in))
}

// Bar renders a fixed-width bar with filled cells proportional to
// current/total. Out-of-range values are clamped.
func Bar(current, total, width int, filled, empty string) string {
	if width <= 0 {
		return ""
	}
	n := 0
	if total > 0 {
		n = current * width / total
	}
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return strings.Repeat(filled, n) + strings.Repeat(empty, width-n)
}
