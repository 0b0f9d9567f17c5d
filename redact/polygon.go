package redact

import (
	"encoding/json"
	"fmt"
)

// Point is a full-resolution pixel coordinate.
type Point struct {
	X, Y float64
}

// Polygon is an ordered list of rings (the outer boundary plus, for a
// multi-ring polygon, holes), filled with an even-odd rule, per spec.md
// §3. Stroke properties are carried through for completeness but ignored
// by the mask computer (C6) — only the filled interior contributes.
type Polygon struct {
	Rings       [][]Point
	FillColor   string
	StrokeColor string
	StrokeWidth float64
}

// rawPolygon mirrors the wire shape from spec.md §6: points is either a
// flat list of [x,y] pairs (single ring) or a list of such lists
// (multi-ring); fillColor is mandatory, lineColor/lineWidth optional and
// ignored for mask generation beyond being carried through.
type rawPolygon struct {
	Points      json.RawMessage `json:"points"`
	FillColor   string          `json:"fillColor"`
	LineColor   string          `json:"lineColor"`
	LineWidth   float64         `json:"lineWidth"`
}

// UnmarshalPolygonList decodes the ordered polygon list delivered per
// spec.md §6. A polygon is multi-ring iff its outermost "points" array
// element is itself an array rather than a two-number coordinate pair.
func UnmarshalPolygonList(data []byte) ([]Polygon, error) {
	var raws []rawPolygon
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &InputMalformedError{Reason: fmt.Sprintf("decode polygon list: %v", err)}
	}
	polys := make([]Polygon, 0, len(raws))
	for i, r := range raws {
		rings, err := decodeRings(r.Points)
		if err != nil {
			return nil, &InputMalformedError{Reason: fmt.Sprintf("polygon %d: %v", i, err)}
		}
		for _, ring := range rings {
			if len(ring) < 3 {
				return nil, &InputMalformedError{Reason: fmt.Sprintf("polygon %d: ring has %d vertices, need >=3", i, len(ring))}
			}
		}
		if r.FillColor == "" {
			return nil, &InputMalformedError{Reason: fmt.Sprintf("polygon %d: missing fillColor", i)}
		}
		polys = append(polys, Polygon{
			Rings:       rings,
			FillColor:   r.FillColor,
			StrokeColor: r.LineColor,
			StrokeWidth: r.LineWidth,
		})
	}
	return polys, nil
}

func decodeRings(raw json.RawMessage) ([][]Point, error) {
	var probe []json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if len(probe) == 0 {
		return nil, fmt.Errorf("empty points list")
	}
	// A single point is encoded as a two-element numeric array; a ring in a
	// multi-ring polygon is encoded as an array of such arrays. Probe the
	// first element's shape to disambiguate, per spec.md §3.
	var asPoint [2]float64
	if err := json.Unmarshal(probe[0], &asPoint); err == nil {
		ring, err := decodeRing(raw)
		if err != nil {
			return nil, err
		}
		return [][]Point{ring}, nil
	}
	rings := make([][]Point, 0, len(probe))
	for _, ringRaw := range probe {
		ring, err := decodeRing(ringRaw)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

func decodeRing(raw json.RawMessage) ([]Point, error) {
	var pairs [][2]float64
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, err
	}
	ring := make([]Point, len(pairs))
	for i, p := range pairs {
		ring[i] = Point{X: p[0], Y: p[1]}
	}
	return ring, nil
}
