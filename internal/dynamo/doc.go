// Package dynamo provides the core primitives shared by iterative methods.
//
// The package defines the types every run passes around:
//
//   - [State]: the internal value being iterated (scalar or (x, y) pair)
//   - [Func]: the target function supplied by the caller
//   - [Config]: the run configuration and its termination policy
//   - [Method]: the capability set an algorithm implements for the driver
//   - [Trace]: the append-only per-step history of a run
//
// # Termination Policy
//
// A run carries exactly one of IterNum (fixed count) or StopDiff
// (convergence threshold). [Config.Validate] rejects both-or-neither and
// normalizes a negative threshold to its absolute value:
//
//	cfg, err := dynamo.Config{Fn: f, Input: dynamo.ScalarInput(0), IterNum: dynamo.Ptr(3)}.Validate()
//
// # Numeric Edge Cases
//
// Non-finite values are not detected. A NaN or Inf produced by a step
// propagates through later steps; [State.IsValid] is available to callers
// that want to inspect a result.
package dynamo
