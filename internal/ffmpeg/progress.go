package ffmpeg

import (
	"bufio"
	"io"
	"iter"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// EventKind classifies one line of encoder output.
type EventKind int

const (
	EventNoise      EventKind = iota // progress key we do not use
	EventTime                        // out_time_us / out_time_ms
	EventSpeed                       // speed=1.8x
	EventEnd                         // progress=end
	EventDiagnostic                  // stderr line
)

// Event is one parsed line of the merged output stream.
type Event struct {
	Kind    EventKind
	OutTime time.Duration // EventTime
	Speed   float64       // EventSpeed
	Text    string        // raw line
}

// ParseLine parses one key=value line of the -progress channel.
// out_time_ms carries microseconds despite its name, same as out_time_us.
func ParseLine(line string) Event {
	line = strings.TrimSpace(line)
	ev := Event{Kind: EventNoise, Text: line}
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return ev
	}
	val = strings.TrimSpace(val)
	switch strings.TrimSpace(key) {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(val, 10, 64)
		if err != nil || us < 0 {
			return ev
		}
		ev.Kind = EventTime
		ev.OutTime = time.Duration(us) * time.Microsecond
	case "speed":
		x, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(val, "x")), 64)
		if err != nil || x < 0 {
			return ev
		}
		ev.Kind = EventSpeed
		ev.Speed = x
	case "progress":
		if val == "end" {
			ev.Kind = EventEnd
		}
	}
	return ev
}

// maxLine bounds a single scanned line; longer lines end the stream for
// that reader, which is then drained.
const maxLine = 1 << 20

// Events merges the progress and diagnostics readers into a single lazy
// sequence. Progress lines go through ParseLine; non-blank diagnostics
// lines become EventDiagnostic. The sequence ends once both readers reach
// EOF. It is meant to be ranged over once. Breaking out early keeps
// draining both readers in the background until EOF.
func Events(progress, diagnostics io.Reader) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		ch := make(chan Event)
		stop := make(chan struct{})

		var g errgroup.Group
		g.Go(func() error { return scanInto(progress, ch, stop, ParseLine) })
		g.Go(func() error {
			return scanInto(diagnostics, ch, stop, func(s string) Event {
				return Event{Kind: EventDiagnostic, Text: strings.TrimRight(s, "\r ")}
			})
		})
		go func() {
			_ = g.Wait()
			close(ch)
		}()

		for ev := range ch {
			if ev.Kind == EventDiagnostic && ev.Text == "" {
				continue
			}
			if !yield(ev) {
				close(stop)
				return
			}
		}
	}
}

func scanInto(r io.Reader, ch chan<- Event, stop <-chan struct{}, parse func(string) Event) error {
	defer io.Copy(io.Discard, r)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		select {
		case ch <- parse(sc.Text()):
		case <-stop:
			return nil
		}
	}
	return sc.Err()
}
