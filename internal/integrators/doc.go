// Package integrators provides fixed-step methods for a single first-order
// ODE dy/dx = f(x, y).
//
// Each integrator implements [dynamo.Method] over the (x, y) pair. The step
// size is the "distance" field of the input and iter_num is the number of
// equal-size steps to take, so stop_diff is rejected before the run starts.
package integrators
