// Package methods wires the concrete root-finders and ODE steppers into a
// registry and dispatches run configurations to them.
//
// Identifiers registered by [Register]:
//
//	Newton_Raphson, newton_raphson, roots.newton   Newton-Raphson root-finder
//	Runge_Kutta, runge_kutta, ode.rk4              classical RK4 stepper
//	ode.euler                                      explicit Euler stepper
package methods
