package dispatch

import (
	"time"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

// Step is one write of a Plan. Delay is the pause after the write before the
// next step starts.
type Step struct {
	Payload []byte
	Delay   time.Duration
	Label   string
}

func (s Step) String() string {
	if s.Label != `` {
		return s.Label + `: ` + common.HexString(s.Payload)
	}
	return common.HexString(s.Payload)
}

// Plan is an ordered, finite list of steps. Plans carry no cursor: running one
// again starts from the beginning.
type Plan []Step

// Duration is the sum of every step delay
func (p Plan) Duration() time.Duration {
	var d time.Duration
	for _, s := range p {
		d += s.Delay
	}
	return d
}

// Concat returns a new plan running p then others
func (p Plan) Concat(others ...Plan) Plan {
	n := len(p)
	for _, o := range others {
		n += len(o)
	}
	out := make(Plan, 0, n)
	out = append(out, p...)
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

// WithDelay returns a copy of p with every delay replaced by d
func (p Plan) WithDelay(d time.Duration) Plan {
	out := make(Plan, len(p))
	for i, s := range p {
		s.Delay = d
		out[i] = s
	}
	return out
}

// StepFailure records a failed plan step
type StepFailure struct {
	Index int
	Step  Step
	Err   error
}

// PlanResult summarises one plan execution
type PlanResult struct {
	Sent      int
	Failed    int
	Skipped   int
	Failures  []StepFailure
	Cancelled bool
}

// StepObserver is called after every attempted step
type StepObserver func(index int, step Step, err error)
