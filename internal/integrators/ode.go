package integrators

import (
	"fmt"

	"github.com/san-kum/iterlab/internal/dynamo"
)

// stepper holds what every fixed-step ODE method shares: the (x, y) state
// shape, the step size read from the input, and the log line format.
type stepper struct {
	dynamo.Recorder
	h float64
}

func newStepper(name string, log dynamo.RunLog) stepper {
	return stepper{Recorder: dynamo.NewRecorder(name, log, "x", "y")}
}

// ChangeFormat reads init_x, init_y and the step size (distance). The step
// size is constant for the run, so it is kept on the method rather than in the state.
func (s *stepper) ChangeFormat(in dynamo.Input) (dynamo.State, error) {
	vals, err := in.Require("init_x", "init_y", "distance")
	if err != nil {
		return nil, err
	}
	s.h = vals[2]
	return dynamo.State{vals[0], vals[1]}, nil
}

// StepSize is valid once ChangeFormat has run.
func (s *stepper) StepSize() float64 { return s.h }

// SanityCheck rejects stop_diff: iter_num counts equal-size steps here,
// there is nothing to converge.
func (s *stepper) SanityCheck(cfg dynamo.Config) error {
	if cfg.StopDiff != nil {
		return fmt.Errorf("%w: \"stop_diff\" is not supported for %s", dynamo.ErrUnsupportedPolicy, s.Name())
	}
	return nil
}

func (s *stepper) LogInterim(xy dynamo.State, step int, verbose bool) {
	if !verbose {
		return
	}
	s.Log.Interim(fmt.Sprintf("The value of %3dth iteration : y = %6.6f when x = %6.3f", step, xy[1], xy[0]))
}

func (s *stepper) LogResult(xy dynamo.State) {
	s.Log.Result(fmt.Sprintf("Result : y = %6.6f when x = %6.3f", xy[1], xy[0]))
}
