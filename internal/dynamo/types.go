package dynamo

import (
	"fmt"
	"math"
)

// MaxSteps bounds threshold-mode runs that never converge.
const MaxSteps = 10000

// DefaultDx is the centered-difference perturbation used when none is configured.
const DefaultDx = 1e-5

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Func is the target function of a run. Root-finders call it with one
// argument, ODE steppers with (x, y).
type Func func(args ...float64) float64

// RunLog receives the textual output of a run. Interim lines are only
// emitted in verbose mode; warnings travel on the interim channel.
type RunLog interface {
	Interim(msg string)
	Result(msg string)
	Warn(msg string)
}

type NopLog struct{}

func (NopLog) Interim(string) {}
func (NopLog) Result(string)  {}
func (NopLog) Warn(string)    {}

// Method is the capability set every iterative algorithm plugs into the driver.
type Method interface {
	Name() string
	// ChangeFormat converts the raw initial value into the internal state.
	ChangeFormat(in Input) (State, error)
	Step(fn Func, x State) State
	RecordInitial(x State)
	RecordStep(step int, x State)
	LogInterim(x State, step int, verbose bool)
	LogResult(x State)
	Trace() *Trace
}

// SanityChecker is implemented by methods that restrict the run configuration.
type SanityChecker interface {
	SanityCheck(cfg Config) error
}

type Observer interface {
	OnStep(step int, x State)
}

type Mode int

const (
	ModeFixed Mode = iota
	ModeThreshold
)

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "iter_num"
	case ModeThreshold:
		return "stop_diff"
	default:
		return "unknown"
	}
}

type Point struct {
	Step  int
	Value State
}

// Trace is the append-only per-step history of a run, starting at step 0.
type Trace struct {
	Columns []string
	Points  []Point
}

func NewTrace(columns ...string) *Trace {
	return &Trace{Columns: columns, Points: make([]Point, 0, 16)}
}

// Append records the value of the next step. Steps must arrive in order.
func (t *Trace) Append(step int, x State) {
	if step != len(t.Points) {
		panic(fmt.Sprintf("dynamo: trace step %d out of order (expected %d)", step, len(t.Points)))
	}
	t.Points = append(t.Points, Point{Step: step, Value: x.Clone()})
}

func (t *Trace) Len() int { return len(t.Points) }

func (t *Trace) Final() State {
	if len(t.Points) == 0 {
		return nil
	}
	return t.Points[len(t.Points)-1].Value
}

func (t *Trace) Values() []State {
	out := make([]State, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Value
	}
	return out
}

type Result struct {
	Method    string
	Mode      Mode
	Final     State
	Trace     *Trace
	Steps     int
	Exhausted bool
}
