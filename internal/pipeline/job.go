package pipeline

import (
	"fmt"
	"time"

	"github.com/backmassage/lutconv/internal/color"
	"github.com/backmassage/lutconv/internal/lut"
	"github.com/backmassage/lutconv/internal/planner"
	"github.com/backmassage/lutconv/internal/probe"
)

// State is a job's position in the per-file state machine.
type State int

const (
	StateDiscovered State = iota
	StateProbed
	StateClassified
	StateLutResolved
	StateCommandBuilt
	StateRunning
	StateSucceeded
	StateFailed
	StateSkipped
)

var stateNames = [...]string{
	"discovered", "probed", "classified", "lut-resolved",
	"command-built", "running", "succeeded", "failed", "skipped",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateSkipped
}

// transitions lists the legal successors of every non-terminal state.
var transitions = map[State][]State{
	StateDiscovered:   {StateProbed, StateSkipped, StateFailed},
	StateProbed:       {StateClassified, StateFailed},
	StateClassified:   {StateLutResolved, StateFailed},
	StateLutResolved:  {StateCommandBuilt, StateFailed},
	StateCommandBuilt: {StateRunning, StateSkipped, StateFailed},
	StateRunning:      {StateSucceeded, StateFailed},
}

// Outcome is the terminal result of a job.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result is the immutable record of one finished job.
type Result struct {
	Input       string
	Output      string
	Outcome     Outcome
	Reason      string
	Profile     color.Profile
	LUT         lut.Assignment
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
	Speed       float64
	Err         error
	Interrupted bool
}

// Job carries one input file through the state machine.
type Job struct {
	Input   string
	Output  string
	Info    probe.VideoInfo
	Profile color.Profile
	LUT     lut.Assignment
	Plan    *planner.FilePlan
	Args    []string

	State   State
	History []State
	Result  Result
}

func newJob(input, output string) *Job {
	return &Job{
		Input:   input,
		Output:  output,
		State:   StateDiscovered,
		History: []State{StateDiscovered},
	}
}

// advance moves the job to next, refusing illegal transitions.
func (j *Job) advance(next State) error {
	for _, s := range transitions[j.State] {
		if s == next {
			j.State = next
			j.History = append(j.History, next)
			return nil
		}
	}
	return fmt.Errorf("illegal job transition %s -> %s", j.State, next)
}

// finish moves the job to its terminal state and fills in the result.
func (j *Job) finish(o Outcome, reason string, err error) Result {
	next := map[Outcome]State{
		OutcomeSucceeded: StateSucceeded,
		OutcomeFailed:    StateFailed,
		OutcomeSkipped:   StateSkipped,
	}[o]
	if aerr := j.advance(next); aerr != nil && err == nil {
		err = aerr
	}
	j.Result.Input = j.Input
	j.Result.Output = j.Output
	j.Result.Outcome = o
	j.Result.Reason = reason
	j.Result.Profile = j.Profile
	j.Result.LUT = j.LUT
	j.Result.Err = err
	return j.Result
}
