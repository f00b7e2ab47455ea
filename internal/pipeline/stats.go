package pipeline

import "time"

// Exit codes derived from a Summary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// Summary aggregates the results of one run in discovery order.
type Summary struct {
	Discovered  int
	Succeeded   int
	Failed      int
	Skipped     int
	InputBytes  int64 // inputs of succeeded jobs
	OutputBytes int64 // outputs of succeeded jobs
	Elapsed     time.Duration
	Interrupted bool
	Results     []Result
}

// Record adds one finished job.
func (s *Summary) Record(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeSucceeded:
		s.Succeeded++
		s.InputBytes += r.InputBytes
		s.OutputBytes += r.OutputBytes
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
	if r.Interrupted {
		s.Interrupted = true
	}
}

// Total returns the number of recorded results.
func (s *Summary) Total() int { return s.Succeeded + s.Failed + s.Skipped }

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s *Summary) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// ExitCode maps the run to a process exit status: 130 after an interrupt,
// 1 when nothing was found or any job failed, otherwise 0.
func (s *Summary) ExitCode() int {
	switch {
	case s.Interrupted:
		return ExitInterrupted
	case s.Discovered == 0 || s.Failed > 0:
		return ExitFailure
	}
	return ExitOK
}
