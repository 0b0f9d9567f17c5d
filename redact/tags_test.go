package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatatypeSize(t *testing.T) {
	cases := map[uint16]uint64{
		tByte:   1,
		tASCII:  1,
		tShort:  2,
		tSShort: 2,
		tLong:   4,
		tFloat:  4,
		tIFD:    4,
		tRational:  8,
		tSRational: 8,
		tDouble:    8,
		tLong8:     8,
		tIFD8:      8,
	}
	for dt, want := range cases {
		assert.Equal(t, want, datatypeSize(dt))
	}
}

func TestDatatypeSizeUnknown(t *testing.T) {
	assert.Equal(t, uint64(0), datatypeSize(9999))
}

func TestOffsetBearingTags(t *testing.T) {
	assert.Equal(t, uint16(tagTileByteCounts), offsetBearingTags[tagTileOffsets])
	assert.Equal(t, uint16(tagStripByteCounts), offsetBearingTags[tagStripOffsets])
	_, ok := offsetBearingTags[tagImageWidth]
	assert.False(t, ok)
}
