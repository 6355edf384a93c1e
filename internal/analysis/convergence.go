package analysis

import (
	"math"

	"github.com/san-kum/iterlab/internal/dynamo"
)

// Report summarizes how a trace approached its final value.
type Report struct {
	Steps int
	// LastDiff is |v(n) - v(n-1)| for the final step; NaN with fewer than
	// two points.
	LastDiff float64
	// Order is the estimated order of convergence. OrderOK is false when no
	// estimate could be formed.
	Order   float64
	OrderOK bool
}

// Series returns the tracked quantity of a trace: the last column, which is
// x for a root-finder and y for an ODE stepper.
func Series(trace *dynamo.Trace) []float64 {
	out := make([]float64, 0, trace.Len())
	for _, p := range trace.Points {
		if len(p.Value) == 0 {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, p.Value[len(p.Value)-1])
	}
	return out
}

// StepDiffs returns d(n) = |v(n+1) - v(n)|.
func StepDiffs(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	d := make([]float64, len(series)-1)
	for i := range d {
		d[i] = math.Abs(series[i+1] - series[i])
	}
	return d
}

// OrderEstimates returns one estimate per consecutive triple of step
// differences:
//
//	q ≈ ln(d(n+1)/d(n)) / ln(d(n)/d(n-1))
//
// Triples that are not shrinking, or that hit zero or a non-finite value,
// give NaN.
func OrderEstimates(diffs []float64) []float64 {
	if len(diffs) < 3 {
		return nil
	}
	q := make([]float64, len(diffs)-2)
	for i := range q {
		d0, d1, d2 := diffs[i], diffs[i+1], diffs[i+2]
		q[i] = math.NaN()
		if !positive(d0) || !positive(d1) || !positive(d2) {
			continue
		}
		r0, r1 := d1/d0, d2/d1
		if r0 >= 1 || r1 >= 1 {
			continue
		}
		q[i] = math.Log(r1) / math.Log(r0)
	}
	return q
}

// Analyze reports the final step difference and the last usable order
// estimate of the trace.
func Analyze(trace *dynamo.Trace) Report {
	r := Report{LastDiff: math.NaN(), Order: math.NaN()}
	if trace == nil || trace.Len() == 0 {
		return r
	}
	r.Steps = trace.Len() - 1

	diffs := StepDiffs(Series(trace))
	if len(diffs) > 0 {
		r.LastDiff = diffs[len(diffs)-1]
	}

	est := OrderEstimates(diffs)
	for i := len(est) - 1; i >= 0; i-- {
		if !math.IsNaN(est[i]) {
			r.Order, r.OrderOK = est[i], true
			break
		}
	}
	return r
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
