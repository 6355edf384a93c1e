package integrators

import "github.com/san-kum/iterlab/internal/dynamo"

type Euler struct {
	stepper
}

func NewEuler(name string, log dynamo.RunLog) *Euler {
	return &Euler{stepper: newStepper(name, log)}
}

func (e *Euler) Step(fn dynamo.Func, xy dynamo.State) dynamo.State {
	x, y := xy[0], xy[1]
	return dynamo.State{x + e.h, y + e.h*fn(x, y)}
}
