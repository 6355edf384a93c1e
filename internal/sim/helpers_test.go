package sim_test

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/iterlab/internal/dynamo"
)

// fixedPoint iterates x <- fn(x).
type fixedPoint struct {
	dynamo.Recorder
	reject error
}

func newFixedPoint(log dynamo.RunLog) *fixedPoint {
	return &fixedPoint{Recorder: dynamo.NewRecorder("fixed_point", log, "x")}
}

func (m *fixedPoint) ChangeFormat(in dynamo.Input) (dynamo.State, error) {
	v, ok := in.Float()
	if !ok {
		return nil, fmt.Errorf("%w: expected a number", dynamo.ErrInvalidInput)
	}
	return dynamo.State{v}, nil
}

func (m *fixedPoint) Step(fn dynamo.Func, x dynamo.State) dynamo.State {
	return dynamo.State{fn(x[0])}
}

func (m *fixedPoint) SanityCheck(dynamo.Config) error { return m.reject }

func (m *fixedPoint) LogInterim(x dynamo.State, step int, verbose bool) {
	if verbose {
		m.Log.Interim(fmt.Sprintf("%d: %g", step, x[0]))
	}
}

func (m *fixedPoint) LogResult(x dynamo.State) {
	m.Log.Result(fmt.Sprintf("%g", x[0]))
}

type memLog struct {
	interim []string
	results []string
	warns   []string
}

func (l *memLog) Interim(msg string) { l.interim = append(l.interim, msg) }
func (l *memLog) Result(msg string)  { l.results = append(l.results, msg) }
func (l *memLog) Warn(msg string)    { l.warns = append(l.warns, msg) }

type stepRecorder struct {
	steps []int
}

func (r *stepRecorder) OnStep(step int, _ dynamo.State) { r.steps = append(r.steps, step) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func counting(calls *int, fn func(float64) float64) dynamo.Func {
	return func(args ...float64) float64 {
		*calls++
		return fn(args[0])
	}
}

func increment(x float64) float64 { return x + 1 }
func halve(x float64) float64     { return x / 2 }
