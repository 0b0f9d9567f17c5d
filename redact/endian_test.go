package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackerRoundTrip(t *testing.T) {
	for _, big := range []bool{true, false} {
		p := newPacker(big)
		var b16 [2]byte
		p.putU16(b16[:], 0xABCD)
		assert.EqualValues(t, 0xABCD, p.u16(b16[:]))

		var b32 [4]byte
		p.putU32(b32[:], 0xDEADBEEF)
		assert.EqualValues(t, 0xDEADBEEF, p.u32(b32[:]))

		var b64 [8]byte
		p.putU64(b64[:], 0x1122334455667788)
		assert.EqualValues(t, 0x1122334455667788, p.u64(b64[:]))
	}
}

func TestPackerByteOrderMark(t *testing.T) {
	assert.Equal(t, [2]byte{'M', 'M'}, newPacker(true).byteOrderMark())
	assert.Equal(t, [2]byte{'I', 'I'}, newPacker(false).byteOrderMark())
}
