package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/iterlab/internal/dynamo"
)

const capWarning = `For "stop_diff", calculate up to 10,000 times.`

// Driver runs a method through the shared iteration lifecycle:
// validate, change format, step until the termination policy fires, log the result.
type Driver struct {
	observers []dynamo.Observer
	logger    *slog.Logger
}

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

func WithObserver(o dynamo.Observer) Option {
	return func(d *Driver) { d.observers = append(d.observers, o) }
}

func New(opts ...Option) *Driver {
	d := &Driver{
		observers: make([]dynamo.Observer, 0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) AddObserver(o dynamo.Observer) { d.observers = append(d.observers, o) }

// Run drives m to completion under cfg. Configuration errors are returned
// before any step executes. Reaching the safety cap in threshold mode is
// not an error: the result is marked Exhausted and a warning is logged.
func (d *Driver) Run(ctx context.Context, m dynamo.Method, cfg dynamo.Config) (*dynamo.Result, error) {
	cfg, err := d.validateConfig(m, cfg)
	if err != nil {
		return nil, &dynamo.RunError{Method: m.Name(), Wrapped: err}
	}

	x, err := m.ChangeFormat(cfg.Input)
	if err != nil {
		return nil, &dynamo.RunError{Method: m.Name(), Wrapped: err}
	}

	d.logger.Debug("run started",
		slog.String("method", m.Name()),
		slog.String("mode", cfg.Mode().String()),
		slog.String("input", cfg.Input.String()),
	)

	m.RecordInitial(x)
	m.LogInterim(x, 0, cfg.PrintInterim)
	d.observe(0, x)

	result := &dynamo.Result{Method: m.Name(), Mode: cfg.Mode()}

	switch cfg.Mode() {
	case dynamo.ModeFixed:
		x, err = d.runFixed(ctx, m, cfg, x, result)
	default:
		x, err = d.runThreshold(ctx, m, cfg, x, result)
	}
	result.Trace = m.Trace()
	if err != nil {
		return result, err
	}

	m.LogResult(x)
	result.Final = x

	d.logger.Debug("run finished",
		slog.String("method", m.Name()),
		slog.Int("steps", result.Steps),
		slog.Bool("exhausted", result.Exhausted),
	)
	return result, nil
}

func (d *Driver) validateConfig(m dynamo.Method, cfg dynamo.Config) (dynamo.Config, error) {
	out, err := cfg.Validate()
	if err != nil {
		return cfg, err
	}
	if sc, ok := m.(dynamo.SanityChecker); ok {
		if err := sc.SanityCheck(out); err != nil {
			return cfg, err
		}
	}
	if cfg.StopDiff != nil && *cfg.StopDiff < 0 {
		out.Log.Warn(`"stop_diff" is set to positive. (calculate with absolute value)`)
	}
	return out, nil
}

func (d *Driver) runFixed(ctx context.Context, m dynamo.Method, cfg dynamo.Config, x dynamo.State, result *dynamo.Result) (dynamo.State, error) {
	for step := 1; step <= *cfg.IterNum; step++ {
		if err := checkContext(ctx, m, step); err != nil {
			return x, err
		}
		x = d.advance(m, cfg, x, step)
		result.Steps = step
	}
	return x, nil
}

func (d *Driver) runThreshold(ctx context.Context, m dynamo.Method, cfg dynamo.Config, x dynamo.State, result *dynamo.Result) (dynamo.State, error) {
	stopDiff := *cfg.StopDiff

	prev := x
	x = d.advance(m, cfg, prev, 1)
	step := 1
	result.Steps = step

	for x.Sub(prev).Norm() > stopDiff {
		if step >= dynamo.MaxSteps {
			result.Exhausted = true
			cfg.Log.Warn(capWarning)
			d.logger.Warn("safety cap reached",
				slog.String("method", m.Name()),
				slog.Int("steps", step),
			)
			break
		}
		if err := checkContext(ctx, m, step+1); err != nil {
			return x, err
		}
		prev = x
		step++
		x = d.advance(m, cfg, prev, step)
		result.Steps = step
	}
	return x, nil
}

func (d *Driver) advance(m dynamo.Method, cfg dynamo.Config, x dynamo.State, step int) dynamo.State {
	next := m.Step(cfg.Fn, x)
	m.LogInterim(next, step, cfg.PrintInterim)
	m.RecordStep(step, next)
	d.observe(step, next)
	return next
}

func (d *Driver) observe(step int, x dynamo.State) {
	for _, obs := range d.observers {
		obs.OnStep(step, x)
	}
}

func checkContext(ctx context.Context, m dynamo.Method, step int) error {
	select {
	case <-ctx.Done():
		return &dynamo.RunError{
			Method:  m.Name(),
			Step:    step,
			Wrapped: fmt.Errorf("%w: %v", dynamo.ErrCanceled, ctx.Err()),
		}
	default:
		return nil
	}
}
