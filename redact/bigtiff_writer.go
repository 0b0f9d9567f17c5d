package redact

import (
	"io"
	"math"
	"os"
	"sort"
)

// Destination is what the writer needs from the output file: sequential
// writes at the current end, plus the ability to seek backward to
// back-patch a pointer once the thing it points at has been placed. An
// *os.File satisfies this directly.
type Destination interface {
	io.Writer
	io.Seeker
}

const bigTIFFMagic = 0x002B

// WriteBigTIFF implements C11: emits the BigTIFF header, then each plan in
// order, chaining their next-IFD pointers, recursing into SubIFDs per
// plan.Children. Always emits BigTIFF regardless of the source's original
// flavor, per spec.md §4.6. Generalizes the teacher's fixed-depth
// overview/mask chain (cog.go's ifd.overview/ifd.masks) into recursion over
// an arbitrary-depth Plan tree (writeIFDNode calls itself for each child)
// instead of a fixed-shape linked structure.
func WriteBigTIFF(dst Destination, bigEndian bool, plans []*Plan) error {
	enc := newPacker(bigEndian)
	ifdPtrPos, err := writeBigTIFFHeader(dst, enc)
	if err != nil {
		return err
	}
	backpatch := ifdPtrPos
	for _, p := range plans {
		_, nextPtrPos, err := writeIFDNode(dst, enc, backpatch, p)
		if err != nil {
			return err
		}
		backpatch = nextPtrPos
	}
	return nil
}

func writeBigTIFFHeader(dst Destination, enc packer) (ifdPtrPos int64, err error) {
	var buf [16]byte
	mark := enc.byteOrderMark()
	buf[0], buf[1] = mark[0], mark[1]
	enc.putU16(buf[2:4], bigTIFFMagic)
	enc.putU16(buf[4:6], 8)
	enc.putU16(buf[6:8], 0)
	// buf[8:16] left zero: the first-IFD pointer placeholder.
	if _, err := dst.Write(buf[:]); err != nil {
		return 0, &IoFailureError{Op: "write bigtiff header", Err: err}
	}
	return 8, nil
}

// writeIFDNode writes plan's IFD (streaming its tile/strip payload first,
// per spec.md §4.6's entry emission rule), back-patches backpatchPos to
// point at it, recurses into its children, and returns (its own file
// position, the absolute position of its own next-IFD pointer slot) so the
// caller can chain a following sibling into that slot.
func writeIFDNode(dst Destination, enc packer, backpatchPos int64, plan *Plan) (ifdPos int64, nextPtrPos int64, err error) {
	if err := alignEven(dst); err != nil {
		return 0, 0, err
	}

	var resolvedOffsets []int64
	offTag, bcTag, hasOffsets := offsetCarryingTag(plan.Emit)
	if hasOffsets {
		resolvedOffsets, err = writeTileData(dst, plan)
		if err != nil {
			return 0, 0, err
		}
	}

	ifdPos, err = currentPos(dst)
	if err != nil {
		return 0, 0, err
	}
	if err := backpatchU64(dst, enc, backpatchPos, uint64(ifdPos)); err != nil {
		return 0, 0, err
	}

	subPatches, err := writeIFDEntries(dst, enc, plan, offTag, bcTag, resolvedOffsets)
	if err != nil {
		return 0, 0, err
	}

	// writeIFDEntries placed the next-IFD pointer slot directly after the
	// entry array (8-byte count header + 20 bytes/entry).
	nextPtrPos = ifdPos + 8 + int64(len(plan.Emit.Entries))*20

	var subTags []uint16
	for t := range subPatches {
		subTags = append(subTags, t)
	}
	sort.Slice(subTags, func(i, j int) bool { return subTags[i] < subTags[j] })

	for _, tag := range subTags {
		patches := subPatches[tag]
		children := plan.Children[tag]
		var prevNextPtr int64 = -1
		for i, patchPos := range patches {
			if i >= len(children) {
				break
			}
			childIfdPos, childNextPtr, err := writeIFDNode(dst, enc, patchPos, children[i])
			if err != nil {
				return 0, 0, err
			}
			if prevNextPtr >= 0 {
				if err := backpatchU64(dst, enc, prevNextPtr, uint64(childIfdPos)); err != nil {
					return 0, 0, err
				}
			}
			prevNextPtr = childNextPtr
		}
	}

	return ifdPos, nextPtrPos, nil
}

// offsetCarryingTag reports which offset/byte-count tag pair ifd uses for
// its pixel payload, checking TileOffsets before StripOffsets since a tiled
// IFD never carries both. Tile takes priority deterministically rather than
// ranging over offsetBearingTags, whose iteration order Go leaves
// unspecified.
func offsetCarryingTag(ifd *IFD) (offTag, bcTag uint16, ok bool) {
	if bc, known := offsetBearingTags[tagTileOffsets]; known && ifd.has(tagTileOffsets) {
		return tagTileOffsets, bc, true
	}
	if bc, known := offsetBearingTags[tagStripOffsets]; known && ifd.has(tagStripOffsets) {
		return tagStripOffsets, bc, true
	}
	return 0, 0, false
}

// writeTileData implements the data half of spec.md §4.6's entry emission
// rule and, when plan.Conditional is set, delegates to C10
// (WriteConditionalTiles) instead of a straightforward single-source copy.
func writeTileData(dst Destination, plan *Plan) ([]int64, error) {
	start, err := currentPos(dst)
	if err != nil {
		return nil, err
	}

	if plan.Conditional != nil {
		o, r, sel := plan.Conditional.Original, plan.Conditional.Redacted, plan.Conditional.Selection
		destOffsets, err := WriteConditionalTiles(dst, uint64(start),
			o.Source, o.SourceSize, o.TileOffsets(), o.TileByteCounts(),
			r.Source, r.SourceSize, r.TileOffsets(), r.TileByteCounts(),
			sel)
		if err != nil {
			return nil, err
		}
		return toInt64Slice(destOffsets), nil
	}

	ifd := plan.Emit
	offTag, bcTag, ok := offsetCarryingTag(ifd)
	if !ok {
		return nil, nil
	}
	offsets := asUint64(ifd.ints(offTag))
	counts := asUint64(ifd.ints(bcTag))
	dest := make([]int64, len(offsets))
	buf := make([]byte, tileCopyBufferSize)
	pos := start
	for i := range offsets {
		if counts[i] == 0 || int64(offsets[i]+counts[i]) > ifd.SourceSize {
			dest[i] = 0
			continue
		}
		dest[i] = pos
		section := io.NewSectionReader(ifd.Source, int64(offsets[i]), int64(counts[i]))
		written, err := io.CopyBuffer(dst, section, buf)
		if err != nil {
			return nil, &IoFailureError{Op: "copy tile data", Err: err}
		}
		pos += written
	}
	return dest, nil
}

func toInt64Slice(in []uint64) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

// writeIFDEntries packs plan.Emit's entries in ascending tag order into a
// fixed-size BigTIFF entry array (8-byte count header + 20 bytes/entry),
// followed by a zeroed 8-byte next-IFD pointer slot (where TIFF readers look
// for it) and then the spill area for any values too large to embed
// inline, per spec.md §4.6. It returns, for every SubIFDs-carrying tag, the
// absolute file positions reserved for each child pointer, so the caller
// can back-patch them once the children are written.
func writeIFDEntries(dst Destination, enc packer, plan *Plan, offTag, bcTag uint16, resolvedOffsets []int64) (map[uint16][]int64, error) {
	ifd := plan.Emit
	tags := ifd.SortedTags()
	n := len(tags)
	entriesPos, err := currentPos(dst)
	if err != nil {
		return nil, err
	}
	if err := writeRawU64(dst, enc, uint64(n)); err != nil {
		return nil, err
	}
	entriesPos += 8
	spillBase := entriesPos + int64(n)*20 + 8 // past the next-IFD pointer slot

	entries := make([]byte, n*20)
	var spill []byte
	subPatches := map[uint16][]int64{}

	for idx, tag := range tags {
		e := ifd.Entries[tag]
		if resolvedOffsets != nil && tag == offTag {
			e = &Entry{Tag: tag, Datatype: tLong8, Count: uint64(len(resolvedOffsets)), Ints: resolvedOffsets}
		} else if resolvedOffsets != nil && tag == bcTag {
			// A zero in resolvedOffsets means writeTileData/WriteConditionalTiles
			// skipped that tile as out-of-bounds against its source; the byte
			// count must follow it to zero too, or a reader sees offset=0 paired
			// with a stale nonzero length and reads garbage at file offset 0.
			counts := append([]int64(nil), e.Ints...)
			for i, off := range resolvedOffsets {
				if off == 0 && i < len(counts) {
					counts[i] = 0
				}
			}
			e = &Entry{Tag: tag, Datatype: tLong8, Count: e.Count, Ints: counts}
		} else if tag == tagTileByteCounts || tag == tagStripByteCounts {
			e = &Entry{Tag: tag, Datatype: tLong8, Count: e.Count, Ints: e.Ints}
		}
		slot := entries[idx*20 : idx*20+20]
		if err := packEntry(enc, slot, &spill, spillBase, entriesPos, idx, plan, tag, e, subPatches); err != nil {
			return nil, err
		}
	}

	if _, err := dst.Write(entries); err != nil {
		return nil, &IoFailureError{Op: "write ifd entries", Err: err}
	}
	if _, err := dst.Write(make([]byte, 8)); err != nil { // next-IFD pointer placeholder
		return nil, &IoFailureError{Op: "write next-ifd placeholder", Err: err}
	}
	if len(spill) > 0 {
		if _, err := dst.Write(spill); err != nil {
			return nil, &IoFailureError{Op: "write ifd spill", Err: err}
		}
	}
	return subPatches, nil
}

// packEntry fills one 20-byte BigTIFF entry slot, spilling to *spill (and
// recording its absolute offset in the slot) when the value doesn't fit in
// the 8-byte inline area. SubIFDs-carrying tags are handled specially: the
// value slot(s) are left zero and their absolute positions recorded in
// subPatches for the caller to back-patch after recursing.
func packEntry(enc packer, slot []byte, spill *[]byte, spillBase, entriesPos int64, idx int, plan *Plan, tag uint16, e *Entry, subPatches map[uint16][]int64) error {
	enc.putU16(slot[0:2], tag)

	if tag == tagSubIFDs {
		count := len(plan.Children[tag])
		if count == 0 {
			count = len(e.Ints)
		}
		enc.putU16(slot[2:4], tIFD8)
		enc.putU64(slot[4:12], uint64(count))
		patches := make([]int64, count)
		if count == 1 {
			patches[0] = entriesPos + int64(idx)*20 + 12
		} else if count > 1 {
			alignSpill(spill, spillBase)
			base := spillBase + int64(len(*spill))
			enc.putU64(slot[12:20], uint64(base))
			for i := 0; i < count; i++ {
				patches[i] = base + int64(i)*8
				*spill = append(*spill, make([]byte, 8)...)
			}
		}
		subPatches[tag] = patches
		return nil
	}

	enc.putU16(slot[2:4], e.Datatype)

	switch e.Datatype {
	case tASCII, tUndefined, tByte, tSByte:
		data := e.Bytes
		n := len(data)
		enc.putU64(slot[4:12], uint64(n))
		if n <= 8 {
			copy(slot[12:12+n], data)
		} else {
			alignSpill(spill, spillBase)
			off := spillBase + int64(len(*spill))
			enc.putU64(slot[12:20], uint64(off))
			*spill = append(*spill, data...)
		}
	case tShort, tSShort:
		packIntArray(enc, slot, spill, spillBase, e.Ints, 2, 4, func(b []byte, v int64) { enc.putU16(b, uint16(v)) })
	case tLong, tSLong, tIFD:
		packIntArray(enc, slot, spill, spillBase, e.Ints, 4, 2, func(b []byte, v int64) { enc.putU32(b, uint32(v)) })
	case tLong8, tSLong8, tIFD8:
		packIntArray(enc, slot, spill, spillBase, e.Ints, 8, 1, func(b []byte, v int64) { enc.putU64(b, uint64(v)) })
	case tFloat:
		packFloatArray(enc, slot, spill, spillBase, e.Floats, 4, 2, func(b []byte, v float64) { enc.putU32(b, math.Float32bits(float32(v))) })
	case tDouble:
		packFloatArray(enc, slot, spill, spillBase, e.Floats, 8, 1, func(b []byte, v float64) { enc.putU64(b, math.Float64bits(v)) })
	case tRational, tSRational:
		// Rationals carry their original (numerator, denominator) pair in
		// Rationals (see Entry's doc comment), so this re-emits the exact
		// on-disk bytes the source had rather than a re-derived fraction.
		n := len(e.Rationals)
		enc.putU64(slot[4:12], uint64(n))
		buf := make([]byte, n*8)
		for i, pair := range e.Rationals {
			// uint32(pair[N]) truncates to the low 32 bits, which for a
			// tSRational's negative int32 values reproduces the original
			// two's-complement bytes, and for a tRational's non-negative
			// [0, 2^32) values is an exact, lossless cast.
			enc.putU32(buf[i*8:], uint32(pair[0]))
			enc.putU32(buf[i*8+4:], uint32(pair[1]))
		}
		if n <= 1 {
			copy(slot[12:20], buf)
		} else {
			alignSpill(spill, spillBase)
			off := spillBase + int64(len(*spill))
			enc.putU64(slot[12:20], uint64(off))
			*spill = append(*spill, buf...)
		}
	default:
		panic("redact: packEntry: unreachable datatype")
	}
	return nil
}

func packIntArray(enc packer, slot []byte, spill *[]byte, spillBase int64, vals []int64, elemSize, inlineMax int, put func([]byte, int64)) {
	n := len(vals)
	enc.putU64(slot[4:12], uint64(n))
	if n <= inlineMax {
		for i, v := range vals {
			put(slot[12+i*elemSize:], v)
		}
		return
	}
	alignSpill(spill, spillBase)
	off := spillBase + int64(len(*spill))
	enc.putU64(slot[12:20], uint64(off))
	buf := make([]byte, n*elemSize)
	for i, v := range vals {
		put(buf[i*elemSize:], v)
	}
	*spill = append(*spill, buf...)
}

func packFloatArray(enc packer, slot []byte, spill *[]byte, spillBase int64, vals []float64, elemSize, inlineMax int, put func([]byte, float64)) {
	n := len(vals)
	enc.putU64(slot[4:12], uint64(n))
	if n <= inlineMax {
		for i, v := range vals {
			put(slot[12+i*elemSize:], v)
		}
		return
	}
	alignSpill(spill, spillBase)
	off := spillBase + int64(len(*spill))
	enc.putU64(slot[12:20], uint64(off))
	buf := make([]byte, n*elemSize)
	for i, v := range vals {
		put(buf[i*elemSize:], v)
	}
	*spill = append(*spill, buf...)
}

func alignSpill(spill *[]byte, spillBase int64) {
	if (spillBase+int64(len(*spill)))%2 != 0 {
		*spill = append(*spill, 0)
	}
}

func currentPos(dst Destination) (int64, error) {
	pos, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, &IoFailureError{Op: "seek current position", Err: err}
	}
	return pos, nil
}

func alignEven(dst Destination) error {
	pos, err := currentPos(dst)
	if err != nil {
		return err
	}
	if pos%2 == 0 {
		return nil
	}
	_, err = dst.Write([]byte{0})
	return err
}

func writeRawU64(dst Destination, enc packer, v uint64) error {
	var b [8]byte
	enc.putU64(b[:], v)
	_, err := dst.Write(b[:])
	return err
}

func backpatchU64(dst Destination, enc packer, pos int64, v uint64) error {
	cur, err := currentPos(dst)
	if err != nil {
		return err
	}
	if _, err := dst.Seek(pos, io.SeekStart); err != nil {
		return &IoFailureError{Op: "seek to backpatch", Err: err}
	}
	var b [8]byte
	enc.putU64(b[:], v)
	if _, err := dst.Write(b[:]); err != nil {
		return &IoFailureError{Op: "write backpatch", Err: err}
	}
	_, err = dst.Seek(cur, io.SeekStart)
	if err != nil {
		return &IoFailureError{Op: "seek back to end", Err: err}
	}
	return nil
}

// memReaderAt adapts an in-memory buffer to io.ReaderAt, used by
// writeSingleIFDBigTIFF to let a freshly re-encoded image (not yet backed
// by any file) flow through the same tile-data path as a parsed source.
type memReaderAt struct{ data []byte }

func (m *memReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// writeSingleIFDBigTIFF assembles tileData into a single in-memory source
// and writes it as a one-IFD BigTIFF file, the shape save_tiled_jpeg/
// save_untiled_jpeg need (spec.md §6). Reuses WriteBigTIFF's passthrough
// path rather than duplicating the entry-packing logic.
func writeSingleIFDBigTIFF(path string, ifd *IFD, tileData [][]byte, offsetTag uint16) error {
	total := 0
	for _, t := range tileData {
		total += len(t)
	}
	buf := make([]byte, 0, total)
	offsets := make([]int64, len(tileData))
	for i, t := range tileData {
		offsets[i] = int64(len(buf))
		buf = append(buf, t...)
	}

	ifd.Source = &memReaderAt{data: buf}
	ifd.SourceSize = int64(len(buf))
	ifd.BigEndian = true
	ifd.setInts(offsetTag, tLong8, offsets)

	f, err := os.Create(path)
	if err != nil {
		return &IoFailureError{Op: "create scratch file", Err: err}
	}
	defer f.Close()

	if err := WriteBigTIFF(f, true, []*Plan{{Emit: ifd}}); err != nil {
		return err
	}
	return nil
}
