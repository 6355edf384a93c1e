// Package expr compiles run functions written as CUE expressions.
//
// A function such as
//
//	6411.2*math.Pow(x/(60*A), 1.2727)*(0.5+0.1) - 1531.9 - 5.927*x + 0.0165*x*x
//
// is wrapped in a small CUE program that imports "math" when used, declares each
// constant and variable, and binds the expression to out. Evaluating the
// resulting [dynamo.Func] fills the variables and reads out back as a float64.
package expr
