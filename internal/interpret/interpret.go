// Package interpret turns raw agent responses into renderable chat content:
// Markdown tables become HTML tables and an embedded JSON graph fragment
// becomes a GraphPayload for the chart renderer.
package interpret

import (
	"github.com/ananyev/adkchat/internal/domain"
)

// Result is the interpreted form of one agent response.
type Result struct {
	// DisplayHTML is the response text with table blocks converted to HTML
	// tables and everything else escaped. Newlines are preserved.
	DisplayHTML string
	// Graph is the extracted graph payload, or nil when the response carries
	// none. The raw fragment is stripped from DisplayHTML once parsed.
	Graph *domain.GraphPayload
}

// Interpret runs the full response pipeline: graph extraction first (so the
// fragment is not double-rendered as text), then table conversion on the
// remaining text.
func Interpret(raw string) Result {
	graph, remaining := extractGraph(raw)
	return Result{
		DisplayHTML: convertTables(remaining),
		Graph:       graph,
	}
}
