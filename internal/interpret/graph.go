package interpret

import (
	"encoding/json"
	"strings"

	"github.com/ananyev/adkchat/internal/domain"
)

// graphProbe mirrors the graph fragment with pointer fields so missing keys
// are distinguishable from zero values.
type graphProbe struct {
	XAxis  *string      `json:"xAxis"`
	YAxis  *string      `json:"yAxis"`
	Points []pointProbe `json:"points"`
}

type pointProbe struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p *graphProbe) valid() bool {
	if p.XAxis == nil || p.YAxis == nil || len(p.Points) == 0 {
		return false
	}
	for _, pt := range p.Points {
		if pt.X == nil || pt.Y == nil {
			return false
		}
	}
	return true
}

func (p *graphProbe) payload() *domain.GraphPayload {
	points := make([]domain.Point, len(p.Points))
	for i, pt := range p.Points {
		points[i] = domain.Point{X: *pt.X, Y: *pt.Y}
	}
	return &domain.GraphPayload{XAxis: *p.XAxis, YAxis: *p.YAxis, Points: points}
}

// extractGraph scans text for an embedded JSON graph fragment. On a hit it
// returns the parsed payload and the text with the fragment removed; on a
// miss or malformed fragment it returns nil and the input unchanged.
func extractGraph(text string) (*domain.GraphPayload, string) {
	if !strings.Contains(text, `"xAxis"`) {
		return nil, text
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var probe graphProbe
		if err := dec.Decode(&probe); err != nil || !probe.valid() {
			continue
		}

		end := i + int(dec.InputOffset())
		return probe.payload(), text[:i] + text[end:]
	}

	return nil, text
}
