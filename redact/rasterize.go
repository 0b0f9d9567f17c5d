package redact

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
)

// Rasterizer is the contract for C5 in spec.md §6: render the filled
// interiors of a polygon list into an RGBA mask at a requested resolution.
// Filled interiors must carry alpha=255; exterior pixels alpha=0.
// Multi-ring polygons fill under the even-odd rule.
type Rasterizer interface {
	RasterizeSVG(width, height int, polygons []Polygon) (*image.RGBA, error)
}

// GGRasterizer is the default Rasterizer, built on github.com/fogleman/gg
// the way brawer-wikidata-qrank's tilerank-builder/raster.go and
// cmd/plot-qrank-distribution drive a gg.Context: path construction via
// MoveTo/LineTo/ClosePath, then a single Fill per polygon.
type GGRasterizer struct{}

func (GGRasterizer) RasterizeSVG(width, height int, polygons []Polygon) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, &InputMalformedError{Reason: "mask dimensions must be positive"}
	}
	dc := gg.NewContext(width, height)
	// dc's backing image.RGBA starts fully transparent (alpha=0); we never
	// Clear() it, so untouched pixels stay exterior per the contract.
	for i, poly := range polygons {
		col, err := parseCSSColor(poly.FillColor)
		if err != nil {
			return nil, &InputMalformedError{Reason: fmt.Sprintf("polygon %d: %v", i, err)}
		}
		// The rasterizer contract (above) guarantees filled interiors
		// carry alpha=255 regardless of the fill colour's own alpha
		// channel — a "#ff000080" annotation must still fully occlude
		// the pixels beneath it, not blend with them. A fully-transparent
		// fill colour (alpha=0) is the one case treated as "don't
		// redact this polygon" and skipped outright.
		nrgba := col.(color.NRGBA)
		if nrgba.A == 0 {
			continue
		}
		nrgba.A = 255
		col = nrgba
		if len(poly.Rings) == 0 {
			continue
		}
		dc.SetFillRule(gg.FillRuleEvenOdd)
		for _, ring := range poly.Rings {
			if len(ring) < 3 {
				return nil, &InputMalformedError{Reason: fmt.Sprintf("polygon %d: ring has <3 vertices", i)}
			}
			dc.NewSubPath()
			dc.MoveTo(ring[0].X, ring[0].Y)
			for _, v := range ring[1:] {
				dc.LineTo(v.X, v.Y)
			}
			dc.ClosePath()
		}
		dc.SetColor(col)
		dc.Fill()
	}
	return dc.Image().(*image.RGBA), nil
}

// parseCSSColor accepts the subset of CSS colour syntax the rasterizer
// contract actually needs: #rgb, #rrggbb, #rrggbbaa hex forms and a
// handful of named colours commonly used for fill swatches in annotation
// tooling. It intentionally does not implement the full CSS Color Module
// (rgb()/hsl() functional notation, system colours) — no example in the
// retrieval pack parses those either.
func parseCSSColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unrecognized colour %q", s)
}

func parseHexColor(hex string) (color.Color, error) {
	expand := func(c byte) [2]byte { return [2]byte{c, c} }
	var r, g, b, a uint8 = 0, 0, 0, 255
	parseByte := func(hi, lo byte) (uint8, error) {
		v, err := strconv.ParseUint(string([]byte{hi, lo}), 16, 8)
		return uint8(v), err
	}
	switch len(hex) {
	case 3, 4:
		rr, gg_, bb := expand(hex[0]), expand(hex[1]), expand(hex[2])
		var err error
		if r, err = parseByte(rr[0], rr[1]); err != nil {
			return nil, err
		}
		if g, err = parseByte(gg_[0], gg_[1]); err != nil {
			return nil, err
		}
		if b, err = parseByte(bb[0], bb[1]); err != nil {
			return nil, err
		}
		if len(hex) == 4 {
			aa := expand(hex[3])
			if a, err = parseByte(aa[0], aa[1]); err != nil {
				return nil, err
			}
		}
	case 6, 8:
		var err error
		if r, err = parseByte(hex[0], hex[1]); err != nil {
			return nil, err
		}
		if g, err = parseByte(hex[2], hex[3]); err != nil {
			return nil, err
		}
		if b, err = parseByte(hex[4], hex[5]); err != nil {
			return nil, err
		}
		if len(hex) == 8 {
			if a, err = parseByte(hex[6], hex[7]); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("bad hex colour length %d", len(hex))
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

var namedColors = map[string]color.Color{
	"black":   color.NRGBA{0, 0, 0, 255},
	"white":   color.NRGBA{255, 255, 255, 255},
	"red":     color.NRGBA{255, 0, 0, 255},
	"green":   color.NRGBA{0, 128, 0, 255},
	"blue":    color.NRGBA{0, 0, 255, 255},
	"yellow":  color.NRGBA{255, 255, 0, 255},
	"cyan":    color.NRGBA{0, 255, 255, 255},
	"magenta": color.NRGBA{255, 0, 255, 255},
	"orange":  color.NRGBA{255, 165, 0, 255},
	"purple":  color.NRGBA{128, 0, 128, 255},
	"gray":    color.NRGBA{128, 128, 128, 255},
	"grey":    color.NRGBA{128, 128, 128, 255},
}
