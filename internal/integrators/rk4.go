package integrators

import "github.com/san-kum/iterlab/internal/dynamo"

// RK4 advances dy/dx = f(x, y) with the classical fourth-order Runge-Kutta formula.
type RK4 struct {
	stepper
}

func NewRK4(name string, log dynamo.RunLog) *RK4 {
	return &RK4{stepper: newStepper(name, log)}
}

func (r *RK4) Step(fn dynamo.Func, xy dynamo.State) dynamo.State {
	h := r.h
	x, y := xy[0], xy[1]

	k1 := h * fn(x, y)
	k2 := h * fn(x+0.5*h, y+0.5*k1)
	k3 := h * fn(x+0.5*h, y+0.5*k2)
	k4 := h * fn(x+h, y+k3)

	return dynamo.State{x + h, y + (k1+2*k2+2*k3+k4)/6.0}
}
