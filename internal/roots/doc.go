// Package roots implements single-variable root-finding methods.
//
// Derivatives are approximated by a centered finite difference. A zero or
// vanishing derivative is not guarded: the next estimate becomes ±Inf or
// NaN and keeps propagating through the run.
package roots
