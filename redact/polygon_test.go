package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnmarshalPolygonListSingleRing(t *testing.T) {
	data := []byte(`[{"points":[[10,10],[200,10],[10,200]],"fillColor":"#ff0000"}]`)
	polys, err := UnmarshalPolygonList(data)
	assert.NoError(t, err)
	assert.Len(t, polys, 1)
	assert.Len(t, polys[0].Rings, 1)
	assert.Equal(t, []Point{{10, 10}, {200, 10}, {10, 200}}, polys[0].Rings[0])
	assert.Equal(t, "#ff0000", polys[0].FillColor)
}

func TestUnmarshalPolygonListMultiRing(t *testing.T) {
	data := []byte(`[{"points":[[[0,0],[100,0],[100,100],[0,100]],[[25,25],[75,25],[75,75],[25,75]]],"fillColor":"blue"}]`)
	polys, err := UnmarshalPolygonList(data)
	assert.NoError(t, err)
	assert.Len(t, polys, 1)
	assert.Len(t, polys[0].Rings, 2)
	assert.Len(t, polys[0].Rings[0], 4)
	assert.Len(t, polys[0].Rings[1], 4)
}

func TestUnmarshalPolygonListRejectsMissingFillColor(t *testing.T) {
	data := []byte(`[{"points":[[0,0],[1,0],[0,1]]}]`)
	_, err := UnmarshalPolygonList(data)
	assert.Error(t, err)
	assert.IsType(t, &InputMalformedError{}, err)
}

func TestUnmarshalPolygonListRejectsDegenerateRing(t *testing.T) {
	data := []byte(`[{"points":[[0,0],[1,1]],"fillColor":"red"}]`)
	_, err := UnmarshalPolygonList(data)
	assert.Error(t, err)
}

func TestUnmarshalPolygonListEmpty(t *testing.T) {
	polys, err := UnmarshalPolygonList([]byte(`[]`))
	assert.NoError(t, err)
	assert.Empty(t, polys)
}
