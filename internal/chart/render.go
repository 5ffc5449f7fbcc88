// Package chart renders graph payloads as scatter-plot PNG artifacts.
package chart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ananyev/adkchat/internal/domain"
)

// RenderError reports a graph payload that cannot be plotted.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "render graph: " + e.Reason
}

// palette cycles per point index so neighboring points stay distinguishable.
var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorCyan,
}

// Render produces a scatter-plot PNG for the payload: one dot per point in
// input order, axis names from the payload. Output is deterministic for
// identical input.
func Render(p domain.GraphPayload) ([]byte, error) {
	if len(p.Points) == 0 {
		return nil, &RenderError{Reason: "payload has no points"}
	}

	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		if !isFinite(pt.X) || !isFinite(pt.Y) {
			return nil, &RenderError{Reason: fmt.Sprintf("point %d has a non-finite coordinate", i)}
		}
		xs[i] = pt.X
		ys[i] = pt.Y
	}

	series := chart.ContinuousSeries{
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return palette[index%len(palette)]
			},
		},
		XValues: xs,
		YValues: ys,
	}

	graph := chart.Chart{
		Width:  800,
		Height: 450,
		XAxis: chart.XAxis{
			Name:  p.XAxis,
			Range: axisRange(xs),
		},
		YAxis: chart.YAxis{
			Name:  p.YAxis,
			Range: axisRange(ys),
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, &RenderError{Reason: err.Error()}
	}
	return buf.Bytes(), nil
}

// axisRange pads degenerate (single-value) ranges so the renderer always has
// a non-zero axis delta to work with.
func axisRange(values []float64) chart.Range {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return &chart.ContinuousRange{Min: min - 1, Max: max + 1}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
