package methods

import (
	"context"
	"fmt"

	"github.com/san-kum/iterlab/internal/dynamo"
	"github.com/san-kum/iterlab/internal/sim"
)

// Run is a constructed method together with the outcome of its run.
type Run struct {
	Method dynamo.Method
	Result *dynamo.Result
}

// Final is nil when the run was rejected before its first step.
func (r *Run) Final() dynamo.State {
	if r == nil || r.Result == nil {
		return nil
	}
	return r.Result.Final
}

func (r *Run) Trace() *dynamo.Trace {
	if r == nil || r.Result == nil {
		return nil
	}
	return r.Result.Trace
}

// Build resolves cfg.Type through reg, constructs the method and drives it to
// completion before returning. Unknown identifiers fail before construction
// and invalid configurations fail before the first step.
func Build(ctx context.Context, reg *Registry, cfg dynamo.Config, opts ...sim.Option) (*Run, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("%w: type is required", dynamo.ErrConfig)
	}
	return BuildWith(ctx, reg, cfg.Type, cfg, opts...)
}

// BuildWith is Build with an explicit kind: a registered identifier or a
// factory used directly.
func BuildWith(ctx context.Context, reg *Registry, kind any, cfg dynamo.Config, opts ...sim.Option) (*Run, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	m, err := reg.Build(kind, cfg)
	if err != nil {
		return nil, err
	}

	// The method logs to whatever cfg.Log was when it was built.
	res, err := sim.New(opts...).Run(ctx, m, cfg)
	run := &Run{Method: m, Result: res}
	if err != nil {
		return run, fmt.Errorf("%s: %w", m.Name(), err)
	}
	return run, nil
}
