package redact

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteConditionalTilesSplicesSelectedSources(t *testing.T) {
	original := []byte("AAAABBBBCCCCDDDD")
	redacted := []byte("xxzzyyww")

	originalOffsets := []uint64{0, 4, 8, 12}
	originalByteCounts := []uint64{4, 4, 4, 4}
	redactedOffsets := []uint64{0, 2, 4, 6}
	redactedByteCounts := []uint64{2, 2, 2, 2}
	selection := []bool{true, false, true, false}

	var dst bytes.Buffer
	destOffsets, err := WriteConditionalTiles(
		&dst, 0,
		bytes.NewReader(original), int64(len(original)), originalOffsets, originalByteCounts,
		bytes.NewReader(redacted), int64(len(redacted)), redactedOffsets, redactedByteCounts,
		selection,
	)
	assert.NoError(t, err)
	assert.Equal(t, []uint64{0, 2, 6, 8}, destOffsets)
	assert.Equal(t, "xxBBBByyDDDD", dst.String())
}

func TestWriteConditionalTilesSkipsOutOfBoundsTile(t *testing.T) {
	original := []byte("AAAA")
	redacted := []byte("xx")

	var dst bytes.Buffer
	destOffsets, err := WriteConditionalTiles(
		&dst, 0,
		bytes.NewReader(original), int64(len(original)), []uint64{0}, []uint64{4},
		bytes.NewReader(redacted), int64(len(redacted)), []uint64{10}, []uint64{4},
		[]bool{true},
	)
	assert.NoError(t, err)
	assert.Equal(t, []uint64{0}, destOffsets)
	assert.Empty(t, dst.String())
}

func TestWriteConditionalTilesPreservesTileIndexOrder(t *testing.T) {
	// Source offsets are deliberately out of ascending order; destOffsets
	// must still follow tile-index order per spec.md §4.5.
	original := []byte("BBBBAAAA")
	var dst bytes.Buffer
	destOffsets, err := WriteConditionalTiles(
		&dst, 100,
		bytes.NewReader(original), int64(len(original)), []uint64{4, 0}, []uint64{4, 4},
		bytes.NewReader(nil), 0, nil, nil,
		[]bool{false, false},
	)
	assert.NoError(t, err)
	assert.Equal(t, []uint64{100, 104}, destOffsets)
	assert.Equal(t, "AAAABBBB", dst.String())
}
