package interpret

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ananyev/adkchat/internal/domain"
)

func TestExtractGraph(t *testing.T) {
	t.Parallel()

	text := `Costs per trip:
{"xAxis":"distance","yAxis":"cost","points":[{"x":1,"y":2},{"x":3,"y":4}]}
Let me know if you need more.`

	graph, remaining := extractGraph(text)
	if graph == nil {
		t.Fatal("expected a graph payload")
	}
	if graph.XAxis != "distance" || graph.YAxis != "cost" {
		t.Errorf("axis labels wrong: %+v", graph)
	}
	if len(graph.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(graph.Points))
	}
	if graph.Points[0] != (domain.Point{X: 1, Y: 2}) || graph.Points[1] != (domain.Point{X: 3, Y: 4}) {
		t.Errorf("points wrong or reordered: %+v", graph.Points)
	}
	if strings.Contains(remaining, "xAxis") {
		t.Errorf("fragment not stripped: %q", remaining)
	}
	if !strings.Contains(remaining, "Costs per trip:") || !strings.Contains(remaining, "Let me know") {
		t.Errorf("surrounding text lost: %q", remaining)
	}
}

func TestExtractGraphAbsent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"no json", "just words"},
		{"unrelated json", `{"foo": 1, "bar": 2}`},
		{"missing yAxis", `{"xAxis":"d","points":[{"x":1,"y":2}]}`},
		{"empty points", `{"xAxis":"d","yAxis":"c","points":[]}`},
		{"point missing y", `{"xAxis":"d","yAxis":"c","points":[{"x":1}]}`},
		{"truncated json", `{"xAxis":"d","yAxis":"c","points":[{"x":1,"y":2}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			graph, remaining := extractGraph(tt.text)
			if graph != nil {
				t.Errorf("expected no graph, got %+v", graph)
			}
			if remaining != tt.text {
				t.Errorf("text must be unchanged, got %q", remaining)
			}
		})
	}
}

func TestGraphPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	want := domain.GraphPayload{
		XAxis:  "distance",
		YAxis:  "cost",
		Points: []domain.Point{{X: 1.5, Y: 2.25}, {X: 3, Y: 4}, {X: -1, Y: 0}},
	}

	encoded, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	graph, _ := extractGraph("prefix " + string(encoded) + " suffix")
	if graph == nil {
		t.Fatal("expected payload to survive the round trip")
	}
	if graph.XAxis != want.XAxis || graph.YAxis != want.YAxis {
		t.Errorf("axis labels changed: %+v", graph)
	}
	if len(graph.Points) != len(want.Points) {
		t.Fatalf("point count changed: %d", len(graph.Points))
	}
	for i := range want.Points {
		if graph.Points[i] != want.Points[i] {
			t.Errorf("point %d changed: got %+v, want %+v", i, graph.Points[i], want.Points[i])
		}
	}
}

func TestInterpretCombinesTablesAndGraph(t *testing.T) {
	t.Parallel()

	raw := "| trip | cost |\n|---|---|\n| A | 10 |\n\n" +
		`{"xAxis":"distance","yAxis":"cost","points":[{"x":1,"y":10}]}`

	result := Interpret(raw)
	if result.Graph == nil {
		t.Fatal("expected a graph")
	}
	if !strings.Contains(result.DisplayHTML, "<table") {
		t.Errorf("expected table in display text: %q", result.DisplayHTML)
	}
	if strings.Contains(result.DisplayHTML, "xAxis") {
		t.Errorf("graph fragment must not be double-rendered: %q", result.DisplayHTML)
	}
}

func TestInterpretPlainTextPassThrough(t *testing.T) {
	t.Parallel()

	raw := "nothing fancy here\nsecond line"
	result := Interpret(raw)
	if result.Graph != nil {
		t.Errorf("unexpected graph: %+v", result.Graph)
	}
	if result.DisplayHTML != raw {
		t.Errorf("plain text changed: %q", result.DisplayHTML)
	}
}
