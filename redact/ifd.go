package redact

import (
	"io"
	"sort"
)

// Entry is a single (tag, datatype, count, data) IFD record, per spec.md
// §3. Decoded integer-typed values (Byte/Short/Long/Long8/signed variants
// and IFD/IFD8 pointers) live in Ints; Float/Double values are widened to
// float64 in Floats; Rational/SRational values keep their exact
// (numerator, denominator) pair in Rationals rather than collapsing to a
// float, so a tag like XResolution whose denominator doesn't divide
// evenly round-trips byte-identical; ASCII/Undefined payloads stay as raw
// bytes in Bytes. Exactly one of Ints/Floats/Rationals/Bytes is
// populated, selected by Datatype.
type Entry struct {
	Tag       uint16
	Datatype  uint16
	Count     uint64
	Ints      []int64
	Floats    []float64
	Rationals [][2]int64
	Bytes     []byte
}

func intEntry(tag uint16, datatype uint16, v ...int64) *Entry {
	return &Entry{Tag: tag, Datatype: datatype, Count: uint64(len(v)), Ints: v}
}

// IFD is the in-memory representation of one Image File Directory: an
// ordered (by ascending tag) map of tag to entry, the backing byte source
// it was parsed from, that source's length, and the endianness inherited
// from the pyramid's first IFD. SubIFDs are owned subtrees keyed by the
// tag that carries the pointer (usually 330), never cross-links, per the
// "Cyclic references" design note.
type IFD struct {
	Entries map[uint16]*Entry
	Sub     map[uint16][]*IFD

	Source     io.ReaderAt
	SourceSize int64
	BigEndian  bool
}

func newIFD(src io.ReaderAt, size int64, bigEndian bool) *IFD {
	return &IFD{
		Entries:    make(map[uint16]*Entry),
		Sub:        make(map[uint16][]*IFD),
		Source:     src,
		SourceSize: size,
		BigEndian:  bigEndian,
	}
}

// SortedTags returns the IFD's tags in ascending order, the order entries
// must be emitted on write (spec.md §4.6 "Entries are emitted in ascending
// tag order").
func (ifd *IFD) SortedTags() []uint16 {
	tags := make([]uint16, 0, len(ifd.Entries))
	for t := range ifd.Entries {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func (ifd *IFD) has(tag uint16) bool {
	_, ok := ifd.Entries[tag]
	return ok
}

func (ifd *IFD) firstInt(tag uint16, def int64) int64 {
	e, ok := ifd.Entries[tag]
	if !ok || len(e.Ints) == 0 {
		return def
	}
	return e.Ints[0]
}

func (ifd *IFD) ints(tag uint16) []int64 {
	e, ok := ifd.Entries[tag]
	if !ok {
		return nil
	}
	return e.Ints
}

func (ifd *IFD) ascii(tag uint16) string {
	e, ok := ifd.Entries[tag]
	if !ok {
		return ""
	}
	b := e.Bytes
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func (ifd *IFD) ImageWidth() uint64     { return uint64(ifd.firstInt(tagImageWidth, 0)) }
func (ifd *IFD) ImageLength() uint64    { return uint64(ifd.firstInt(tagImageLength, 0)) }
func (ifd *IFD) TileWidth() uint64      { return uint64(ifd.firstInt(tagTileWidth, 0)) }
func (ifd *IFD) TileLength() uint64     { return uint64(ifd.firstInt(tagTileLength, 0)) }
func (ifd *IFD) Compression() uint64    { return uint64(ifd.firstInt(tagCompression, 1)) }
func (ifd *IFD) Photometric() uint64    { return uint64(ifd.firstInt(tagPhotometric, 0)) }
func (ifd *IFD) NewSubfileType() uint64 { return uint64(ifd.firstInt(tagNewSubfileType, 0)) }
func (ifd *IFD) ImageDescription() string { return ifd.ascii(tagImageDescription) }
func (ifd *IFD) JPEGTables() []byte {
	e, ok := ifd.Entries[tagJPEGTables]
	if !ok {
		return nil
	}
	return e.Bytes
}

func (ifd *IFD) TileOffsets() []uint64    { return asUint64(ifd.ints(tagTileOffsets)) }
func (ifd *IFD) TileByteCounts() []uint64 { return asUint64(ifd.ints(tagTileByteCounts)) }

func asUint64(in []int64) []uint64 {
	if in == nil {
		return nil
	}
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}

// NTilesX and NTilesY implement spec.md §3 "Tile grid (per IFD)":
// ceil(W/tw) columns, ceil(H/th) rows.
func (ifd *IFD) NTilesX() int { return ceilDiv(ifd.ImageWidth(), ifd.TileWidth()) }
func (ifd *IFD) NTilesY() int { return ceilDiv(ifd.ImageLength(), ifd.TileLength()) }

func ceilDiv(a, b uint64) int {
	if b == 0 {
		return 0
	}
	return int((a + b - 1) / b)
}

// TileRect returns the pixel rectangle of tile i in row-major order, per
// spec.md §3: x = (i mod cols)*tw, y = (i div cols)*th, clipped to the
// image's right/bottom edge.
func (ifd *IFD) TileRect(i int) (x, y, w, h int) {
	cols := ifd.NTilesX()
	tw, th := int(ifd.TileWidth()), int(ifd.TileLength())
	W, H := int(ifd.ImageWidth()), int(ifd.ImageLength())
	x = (i % cols) * tw
	y = (i / cols) * th
	w = tw
	if x+w > W {
		w = W - x
	}
	h = th
	if y+h > H {
		h = H - y
	}
	return
}

// clone returns a deep copy of the IFD's entries (not its SubIFDs or
// backing source), used by the conditional IFD builder (C9) which must
// not mutate the original.
func (ifd *IFD) clone() *IFD {
	out := newIFD(ifd.Source, ifd.SourceSize, ifd.BigEndian)
	for tag, e := range ifd.Entries {
		ce := *e
		if e.Ints != nil {
			ce.Ints = append([]int64(nil), e.Ints...)
		}
		if e.Floats != nil {
			ce.Floats = append([]float64(nil), e.Floats...)
		}
		if e.Rationals != nil {
			ce.Rationals = append([][2]int64(nil), e.Rationals...)
		}
		if e.Bytes != nil {
			ce.Bytes = append([]byte(nil), e.Bytes...)
		}
		out.Entries[tag] = &ce
	}
	for tag, subs := range ifd.Sub {
		out.Sub[tag] = subs
	}
	return out
}

func (ifd *IFD) setInts(tag uint16, datatype uint16, v []int64) {
	ifd.Entries[tag] = &Entry{Tag: tag, Datatype: datatype, Count: uint64(len(v)), Ints: v}
}
