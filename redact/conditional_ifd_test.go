package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tileIFDWithOffsets(offsets, byteCounts []int64) *IFD {
	ifd := newIFD(nil, 0, true)
	ifd.setInts(tagTileOffsets, tLong8, offsets)
	ifd.setInts(tagTileByteCounts, tLong8, byteCounts)
	return ifd
}

func TestBuildConditionalIFDSplicesByteCounts(t *testing.T) {
	original := tileIFDWithOffsets([]int64{1000, 1100, 1200, 1300}, []int64{100, 100, 100, 100})
	reencoded := tileIFDWithOffsets(nil, []int64{40, 40, 40, 40})
	selection := []bool{true, false, true, false}

	out, err := BuildConditionalIFD(original, reencoded, selection)
	assert.NoError(t, err)

	bc := out.TileByteCounts()
	assert.Equal(t, []uint64{40, 100, 40, 100}, bc)

	off := out.TileOffsets()
	assert.Equal(t, uint64(1000), off[0])
	assert.Equal(t, uint64(1000+40), off[1])
	assert.Equal(t, uint64(1000+40+100), off[2])
	assert.Equal(t, uint64(1000+40+100+40), off[3])
}

func TestBuildConditionalIFDDoesNotMutateOriginal(t *testing.T) {
	original := tileIFDWithOffsets([]int64{1000, 1100}, []int64{100, 100})
	reencoded := tileIFDWithOffsets(nil, []int64{40, 40})
	_, err := BuildConditionalIFD(original, reencoded, []bool{true, true})
	assert.NoError(t, err)
	assert.Equal(t, []uint64{100, 100}, original.TileByteCounts())
}

func TestBuildConditionalIFDRejectsLengthMismatch(t *testing.T) {
	original := tileIFDWithOffsets([]int64{1000, 1100}, []int64{100, 100})
	reencoded := tileIFDWithOffsets(nil, []int64{40, 40})
	_, err := BuildConditionalIFD(original, reencoded, []bool{true, true, false})
	assert.Error(t, err)
	assert.IsType(t, &SourceOffsetsInconsistentError{}, err)
}

func TestBuildConditionalIFDRejectsEmptyTileGrid(t *testing.T) {
	original := tileIFDWithOffsets(nil, nil)
	reencoded := tileIFDWithOffsets(nil, nil)
	_, err := BuildConditionalIFD(original, reencoded, nil)
	assert.Error(t, err)
}
