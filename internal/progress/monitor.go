// Package progress renders the live encode line from supervisor events:
// a bounded bar with percentage when the duration is known, encoded time
// otherwise, and the latest speed.
package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/backmassage/lutconv/internal/display"
	"github.com/backmassage/lutconv/internal/ffmpeg"
	"github.com/backmassage/lutconv/internal/term"
)

// Defaults for a Monitor built by New.
const (
	DefaultInterval = 500 * time.Millisecond
	DefaultWidth    = 30
)

// reserved is the space around the bar on a line: label, percentage, speed.
const reserved = 32

// Percent converts encoded seconds into a percentage of duration clamped
// to [0,100]. ok is false when duration is zero, negative, NaN or infinite,
// meaning no percentage should be shown.
func Percent(elapsed, duration float64) (pct float64, ok bool) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0, false
	}
	if math.IsNaN(elapsed) || elapsed < 0 {
		return 0, true
	}
	return math.Min(100, elapsed*100/duration), true
}

// BarWidth caps want so that a full progress line fits in cols terminal
// columns. cols <= 0 means unknown and leaves want unchanged.
func BarWidth(want, cols int) int {
	if want < 0 {
		want = 0
	}
	if cols <= 0 {
		return want
	}
	return max(0, min(want, cols-reserved))
}

// State is the monitor's view of the current job.
type State struct {
	OutTime    time.Duration
	Speed      float64
	Percent    float64
	HasPercent bool
	Ended      bool
}

// Monitor consumes [ffmpeg.Event]s and redraws one console line at most
// once per Interval. It is reset per job and is not safe for concurrent use.
type Monitor struct {
	Out      io.Writer
	Interval time.Duration
	Width    int
	Now      func() time.Time

	duration float64
	state    State
	lastDraw time.Time
	drawn    bool
	lineLen  int
	redraws  int
}

// New returns a Monitor writing to out with the given redraw interval and
// bar width.
func New(out io.Writer, interval time.Duration, width int) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{Out: out, Interval: interval, Width: width, Now: time.Now}
}

// Reset clears all state for a new job of the given duration in seconds.
func (m *Monitor) Reset(duration float64) {
	m.duration = duration
	m.state = State{}
	m.drawn = false
	m.lineLen = 0
	m.redraws = 0
}

// Observe implements [ffmpeg.Observer].
func (m *Monitor) Observe(ev ffmpeg.Event) {
	switch ev.Kind {
	case ffmpeg.EventTime:
		m.state.OutTime = ev.OutTime
		m.state.Percent, m.state.HasPercent = Percent(ev.OutTime.Seconds(), m.duration)
	case ffmpeg.EventSpeed:
		m.state.Speed = ev.Speed
	case ffmpeg.EventEnd:
		m.state.Ended = true
		if _, ok := Percent(0, m.duration); ok {
			m.state.Percent, m.state.HasPercent = 100, true
		}
		m.draw(m.now())
		return
	default:
		return
	}
	now := m.now()
	if !m.drawn || now.Sub(m.lastDraw) >= m.Interval {
		m.draw(now)
	}
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() State { return m.state }

// Redraws returns how many times the line was drawn since the last Reset.
func (m *Monitor) Redraws() int { return m.redraws }

// Finish ends the progress line if one was drawn.
func (m *Monitor) Finish() {
	if m.drawn && m.Out != nil {
		fmt.Fprintln(m.Out)
	}
	m.drawn = false
	m.lineLen = 0
}

// Line renders the current state without redrawing.
func (m *Monitor) Line() string {
	var b strings.Builder
	if m.state.HasPercent {
		fmt.Fprintf(&b, "%sEncoding: %3.0f%%%s", term.Green, m.state.Percent, term.NC)
		if m.Width > 0 {
			pct := int(m.state.Percent)
			b.WriteString(" [" + display.Bar(pct, 100, m.Width, "▓", "░") + "]")
		}
	} else {
		fmt.Fprintf(&b, "%sEncoding: %s%s", term.Green, display.FormatDuration(m.state.OutTime.Seconds()), term.NC)
	}
	if m.state.Speed > 0 {
		fmt.Fprintf(&b, " %s%.1fx%s", term.Cyan, m.state.Speed, term.NC)
	}
	return b.String()
}

func (m *Monitor) draw(now time.Time) {
	m.lastDraw = now
	m.drawn = true
	m.redraws++
	if m.Out == nil {
		return
	}
	line := m.Line()
	pad := ""
	if n := len(line); n < m.lineLen {
		pad = strings.Repeat(" ", m.lineLen-n)
	}
	m.lineLen = len(line)
	fmt.Fprint(m.Out, "\r"+line+pad)
}

func (m *Monitor) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
