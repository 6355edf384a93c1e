package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/iterlab/internal/dynamo"
)

const svgMargin = 10

// TraceSVG draws the trace as a polyline. Two-column traces plot y against
// x; single-column traces plot the value against the step number.
func TraceSVG(trace *dynamo.Trace, width, height int, stroke string) (string, error) {
	if trace == nil || trace.Len() < 2 {
		return "", fmt.Errorf("viz: need at least two points for an svg")
	}
	if stroke == "" {
		stroke = "#00ff00"
	}

	var xs, ys []float64
	switch len(trace.Columns) {
	case 2:
		xs, _ = Column(trace, trace.Columns[0])
		ys, _ = Column(trace, trace.Columns[1])
	default:
		ys, _ = Column(trace, trace.Columns[len(trace.Columns)-1])
		xs = make([]float64, len(ys))
		for i, p := range trace.Points {
			xs[i] = float64(p.Step)
		}
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	w := float64(width - 2*svgMargin)
	h := float64(height - 2*svgMargin)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	// Non-finite points split the line into separate polylines.
	var segment []string
	flush := func() {
		if len(segment) > 1 {
			fmt.Fprintf(&sb, "<polyline points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\"/>\n",
				strings.Join(segment, " "), stroke)
		}
		segment = segment[:0]
	}
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			flush()
			continue
		}
		px := svgMargin + (xs[i]-minX)/rangeX*w
		py := svgMargin + h - (ys[i]-minY)/rangeY*h
		segment = append(segment, fmt.Sprintf("%.1f,%.1f", px, py))
	}
	flush()

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}
