package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/san-kum/iterlab/internal/dynamo"
)

// Metrics holds the run instruments.
type Metrics struct {
	runs      metric.Int64Counter
	steps     metric.Int64Counter
	exhausted metric.Int64Counter
	latency   metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runs, err := meter.Int64Counter("iterlab.runs",
		metric.WithDescription("Number of completed or failed runs"),
	)
	if err != nil {
		return nil, err
	}

	steps, err := meter.Int64Counter("iterlab.steps",
		metric.WithDescription("Number of steps taken across runs"),
	)
	if err != nil {
		return nil, err
	}

	exhausted, err := meter.Int64Counter("iterlab.runs.exhausted",
		metric.WithDescription("Number of threshold runs stopped by the step cap"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("iterlab.run.latency_ms",
		metric.WithDescription("Run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{runs: runs, steps: steps, exhausted: exhausted, latency: latency}, nil
}

// Telemetry starts one probe per run.
type Telemetry struct {
	tracer  trace.Tracer
	metrics *Metrics
}

func New(tracer trace.Tracer, meter metric.Meter) (*Telemetry, error) {
	m, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &Telemetry{tracer: tracer, metrics: m}, nil
}

func FromProvider(p *Provider) (*Telemetry, error) {
	return New(p.Tracer(), p.Meter())
}

// Start opens the run span. The probe is a dynamo.Observer; pass it to the
// driver and call End with the outcome.
func (t *Telemetry) Start(ctx context.Context, methodType string) (context.Context, *Probe) {
	ctx, span := t.tracer.Start(ctx, "iterlab.run",
		trace.WithAttributes(attribute.String("method", methodType)),
	)
	return ctx, &Probe{
		span:    span,
		metrics: t.metrics,
		method:  methodType,
		start:   time.Now(),
	}
}

type Probe struct {
	span    trace.Span
	metrics *Metrics
	method  string
	start   time.Time
	steps   int64
}

func (p *Probe) OnStep(step int, _ dynamo.State) {
	if step > 0 {
		p.steps++
	}
}

func (p *Probe) Steps() int64 { return p.steps }

func (p *Probe) End(ctx context.Context, res *dynamo.Result, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, dynamo.ErrCanceled):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	case res != nil && res.Exhausted:
		outcome = "exhausted"
	}

	attrs := []attribute.KeyValue{
		attribute.String("method", p.method),
		attribute.String("outcome", outcome),
	}
	if res != nil {
		attrs = append(attrs, attribute.String("mode", res.Mode.String()))
	}

	p.metrics.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.metrics.steps.Add(ctx, p.steps, metric.WithAttributes(attribute.String("method", p.method)))
	p.metrics.latency.Record(ctx, float64(time.Since(p.start).Microseconds())/1000, metric.WithAttributes(attrs...))
	if outcome == "exhausted" {
		p.metrics.exhausted.Add(ctx, 1, metric.WithAttributes(attribute.String("method", p.method)))
	}

	p.span.SetAttributes(append(attrs, attribute.Int64("steps", p.steps))...)
	if err != nil {
		p.span.RecordError(err)
		p.span.SetStatus(codes.Error, err.Error())
	} else {
		p.span.SetStatus(codes.Ok, "")
	}
	p.span.End()
}
