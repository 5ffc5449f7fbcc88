package domain

// Point is a single (x, y) sample in a graph payload.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphPayload is a numeric series plus axis labels extracted from an agent
// response. Point order is preserved from the source fragment.
type GraphPayload struct {
	XAxis  string  `json:"xAxis"`
	YAxis  string  `json:"yAxis"`
	Points []Point `json:"points"`
}
