package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/iterlab/internal/dynamo"
)

const (
	DefaultHeight = 10
	DefaultWidth  = 80
)

type PlotOptions struct {
	Height int
	Width  int
	// Columns limits the plotted columns; empty plots all of them.
	Columns []string
	// Differences adds a plot of |x(n) - x(n-1)| per step.
	Differences bool
}

// Column returns the named column of the trace. Infinite values become NaN
// so they show as gaps.
func Column(trace *dynamo.Trace, name string) ([]float64, error) {
	idx := -1
	for i, c := range trace.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("viz: trace has no column %q (have %v)", name, trace.Columns)
	}

	out := make([]float64, trace.Len())
	for i, p := range trace.Points {
		v := math.NaN()
		if idx < len(p.Value) {
			v = p.Value[idx]
		}
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, nil
}

// Differences returns the distance between successive trace values, one per
// step after the first.
func Differences(trace *dynamo.Trace) []float64 {
	if trace.Len() < 2 {
		return nil
	}
	out := make([]float64, trace.Len()-1)
	for i := 1; i < trace.Len(); i++ {
		d := trace.Points[i].Value.Sub(trace.Points[i-1].Value).Norm()
		if math.IsInf(d, 0) {
			d = math.NaN()
		}
		out[i-1] = d
	}
	return out
}

// Plot renders one asciigraph chart per selected column.
func Plot(trace *dynamo.Trace, opts PlotOptions) (string, error) {
	if trace == nil || trace.Len() == 0 {
		return "", fmt.Errorf("viz: empty trace")
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	cols := opts.Columns
	if len(cols) == 0 {
		cols = trace.Columns
	}

	var charts []string
	for _, name := range cols {
		series, err := Column(trace, name)
		if err != nil {
			return "", err
		}
		charts = append(charts, chart(series, name, opts))
	}
	if opts.Differences {
		charts = append(charts, chart(Differences(trace), "difference", opts))
	}
	return strings.Join(charts, "\n\n"), nil
}

func chart(series []float64, caption string, opts PlotOptions) string {
	if !anyFinite(series) {
		return fmt.Sprintf("%s: no finite values", caption)
	}
	// asciigraph needs at least two points to draw a line.
	if len(series) == 1 {
		series = []float64{series[0], series[0]}
	}
	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Caption(caption),
	}
	if opts.Width > 0 {
		graphOpts = append(graphOpts, asciigraph.Width(opts.Width))
	}
	return asciigraph.Plot(series, graphOpts...)
}

func anyFinite(vs []float64) bool {
	for _, v := range vs {
		if finite(v) {
			return true
		}
	}
	return false
}
