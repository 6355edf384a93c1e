package roots

import (
	"fmt"

	"github.com/san-kum/iterlab/internal/dynamo"
)

var ErrZeroDx = fmt.Errorf("%w: dx must be non-zero", dynamo.ErrConfig)

// Newton is the Newton-Raphson root-finder with a numerical derivative.
// Its state is the single current estimate.
type Newton struct {
	dynamo.Recorder
	dx float64
}

func NewNewton(name string, log dynamo.RunLog, dx float64) (*Newton, error) {
	if dx == 0 {
		return nil, ErrZeroDx
	}
	return &Newton{
		Recorder: dynamo.NewRecorder(name, log, "x"),
		dx:       dx,
	}, nil
}

func (n *Newton) Dx() float64 { return n.dx }

// ChangeFormat accepts a bare number, or an init_x field for inputs
// written in the ODE shape.
func (n *Newton) ChangeFormat(in dynamo.Input) (dynamo.State, error) {
	if v, ok := in.Float(); ok {
		return dynamo.State{v}, nil
	}
	if v, ok := in.Field("init_x"); ok {
		return dynamo.State{v}, nil
	}
	return nil, fmt.Errorf("%w: %s expects a number, got %s", dynamo.ErrInvalidInput, n.Name(), in)
}

func (n *Newton) Step(fn dynamo.Func, x dynamo.State) dynamo.State {
	f := func(v float64) float64 { return fn(v) }
	d := CenteredDifference(f, x[0], n.dx)
	return dynamo.State{x[0] - f(x[0])/d}
}

func (n *Newton) LogInterim(x dynamo.State, step int, verbose bool) {
	if !verbose {
		return
	}
	n.Log.Interim(fmt.Sprintf("The value of %5dth iteration : %6.6f", step, x[0]))
}

func (n *Newton) LogResult(x dynamo.State) {
	n.Log.Result(fmt.Sprintf("Result : %6.6f", x[0]))
}
