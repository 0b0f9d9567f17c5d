package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGGRasterizerFillsTriangleInterior(t *testing.T) {
	r := GGRasterizer{}
	poly := Polygon{
		Rings:     [][]Point{{{10, 10}, {200, 10}, {10, 200}}},
		FillColor: "#ff0000",
	}
	mask, err := r.RasterizeSVG(256, 256, []Polygon{poly})
	assert.NoError(t, err)

	_, _, _, a := mask.At(30, 30).RGBA()
	assert.NotZero(t, a, "point inside the triangle should be opaque")

	_, _, _, a = mask.At(250, 250).RGBA()
	assert.Zero(t, a, "point outside the triangle should stay transparent")
}

func TestGGRasterizerEvenOddHole(t *testing.T) {
	r := GGRasterizer{}
	poly := Polygon{
		Rings: [][]Point{
			{{0, 0}, {100, 0}, {100, 100}, {0, 100}},
			{{25, 25}, {75, 25}, {75, 75}, {25, 75}},
		},
		FillColor: "blue",
	}
	mask, err := r.RasterizeSVG(100, 100, []Polygon{poly})
	assert.NoError(t, err)

	_, _, _, a := mask.At(10, 10).RGBA()
	assert.NotZero(t, a, "outer ring minus hole should be filled")

	_, _, _, a = mask.At(50, 50).RGBA()
	assert.Zero(t, a, "hole interior should remain unfilled under even-odd rule")
}

func TestGGRasterizerForcesFullOpacityRegardlessOfFillAlpha(t *testing.T) {
	r := GGRasterizer{}
	poly := Polygon{
		Rings:     [][]Point{{{0, 0}, {50, 0}, {50, 50}, {0, 50}}},
		FillColor: "#ff000080", // half-transparent red
	}
	mask, err := r.RasterizeSVG(100, 100, []Polygon{poly})
	assert.NoError(t, err)

	_, _, _, a := mask.At(25, 25).RGBA()
	assert.Equal(t, uint32(0xffff), a, "filled interior must be fully opaque even when the fill colour itself carries alpha<255")
}

func TestGGRasterizerSkipsFullyTransparentFill(t *testing.T) {
	r := GGRasterizer{}
	poly := Polygon{
		Rings:     [][]Point{{{0, 0}, {50, 0}, {50, 50}, {0, 50}}},
		FillColor: "#ff000000",
	}
	mask, err := r.RasterizeSVG(100, 100, []Polygon{poly})
	assert.NoError(t, err)

	_, _, _, a := mask.At(25, 25).RGBA()
	assert.Zero(t, a, "a fully-transparent fill colour redacts nothing")
}

func TestGGRasterizerRejectsBadColor(t *testing.T) {
	r := GGRasterizer{}
	poly := Polygon{Rings: [][]Point{{{0, 0}, {1, 0}, {0, 1}}}, FillColor: "not-a-color"}
	_, err := r.RasterizeSVG(10, 10, []Polygon{poly})
	assert.Error(t, err)
}

func TestGGRasterizerRejectsNonPositiveDimensions(t *testing.T) {
	r := GGRasterizer{}
	_, err := r.RasterizeSVG(0, 10, nil)
	assert.Error(t, err)
}

func TestParseHexColorForms(t *testing.T) {
	for _, hex := range []string{"#f00", "#ff0000", "#ff0000ff", "#f00f"} {
		_, err := parseCSSColor(hex)
		assert.NoError(t, err, hex)
	}
}
