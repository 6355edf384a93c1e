// Package analysis characterizes how an iteration converged.
//
// [Analyze] reads a recorded trace and reports the last step difference and
// an estimate of the order of convergence from successive differences:
// close to 2 for Newton-Raphson near a simple root, 1 for linear contraction.
package analysis
