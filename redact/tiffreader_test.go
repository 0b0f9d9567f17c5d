package redact

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// memRS wraps a bytes.Reader with the Seek method
// parseIFDChain needs (io.ReaderAt + io.ReadSeeker), to exercise the
// hand-rolled classic-TIFF (4-byte offset) branch directly, bypassing
// tiff.Parse's own sniffing so the test targets only this package's code.
type memRS struct {
	*bytes.Reader
}

func newMemRS(b []byte) *memRS { return &memRS{bytes.NewReader(b)} }

func buildClassicTIFF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	// Header: little-endian, magic 42, first IFD at offset 8.
	buf.Write([]byte{'I', 'I'})
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(8))

	// One IFD with a single SHORT entry (ImageWidth=512), next pointer 0.
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // entry count
	binary.Write(&buf, binary.LittleEndian, uint16(tagImageWidth))
	binary.Write(&buf, binary.LittleEndian, uint16(tShort))
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // count
	var valField [4]byte
	binary.LittleEndian.PutUint16(valField[:2], 512)
	buf.Write(valField[:])
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // next IFD pointer

	return buf.Bytes()
}

func TestParseIFDChainClassicTIFF(t *testing.T) {
	r := newMemRS(buildClassicTIFF(t))
	ifds, err := parseIFDChain(r)
	assert.NoError(t, err)
	assert.Len(t, ifds, 1)
	assert.False(t, ifds[0].BigEndian)
	assert.Equal(t, uint64(512), ifds[0].ImageWidth())
}

func TestParseIFDChainRejectsBadByteOrderMark(t *testing.T) {
	r := newMemRS([]byte{'X', 'X', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	_, err := parseIFDChain(r)
	assert.Error(t, err)
	assert.IsType(t, &InputMalformedError{}, err)
}

func TestParseIFDChainRejectsUnknownMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{'I', 'I'})
	binary.Write(&buf, binary.LittleEndian, uint16(99))
	buf.Write(make([]byte, 10))
	r := newMemRS(buf.Bytes())
	_, err := parseIFDChain(r)
	assert.Error(t, err)
}

func TestDecodeEntrySpillsLongArray(t *testing.T) {
	// A LONG array of 3 elements (12 bytes) does not fit inline in a
	// classic TIFF's 4-byte value field, so it must be read via offset.
	var buf bytes.Buffer
	buf.Write(make([]byte, 100)) // padding so the spilled data has a real offset
	spillOffset := buf.Len()
	binary.Write(&buf, binary.LittleEndian, uint32(10))
	binary.Write(&buf, binary.LittleEndian, uint32(20))
	binary.Write(&buf, binary.LittleEndian, uint32(30))

	r := newMemRS(buf.Bytes())
	var valField [4]byte
	binary.LittleEndian.PutUint32(valField[:], uint32(spillOffset))
	enc := newPacker(false)
	e, _, err := decodeEntry(r, enc, false, tagTileOffsets, tLong, 3, valField[:], 4)
	assert.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, e.Ints)
}

func TestDecodeEntryRationalKeepsExactNumeratorDenominator(t *testing.T) {
	// 9830400/3200000 (a real slide-scanner XResolution value) is stored
	// with a denominator other than any fixed one a writer might pick, so
	// decoding it through a float64 and re-deriving a fraction on write
	// would change the stored pair and hence the bytes.
	var valField [8]byte
	enc := newPacker(false)
	enc.putU32(valField[:4], 9830400)
	enc.putU32(valField[4:], 3200000)
	e, _, err := decodeEntry(newMemRS(nil), enc, false, tagImageWidth, tRational, 1, valField[:], 8)
	assert.NoError(t, err)
	assert.Equal(t, [][2]int64{{9830400, 3200000}}, e.Rationals)
	assert.Nil(t, e.Floats)
}

func TestDecodeEntrySRationalKeepsSign(t *testing.T) {
	var valField [8]byte
	enc := newPacker(false)
	enc.putU32(valField[:4], uint32(int32(-1)))
	enc.putU32(valField[4:], 3)
	e, _, err := decodeEntry(newMemRS(nil), enc, false, tagImageWidth, tSRational, 1, valField[:], 8)
	assert.NoError(t, err)
	assert.Equal(t, [][2]int64{{-1, 3}}, e.Rationals)
}

var _ io.ReaderAt = (*memRS)(nil)
