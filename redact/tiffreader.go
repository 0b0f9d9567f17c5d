package redact

import (
	"fmt"
	"io"
	"math"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
)

// ReadAtReadSeeker is the byte-addressable source a TIFFReader consumes —
// the same capability the teacher's loader.go requires of its
// tiff.ReadAtReadSeeker inputs.
type ReadAtReadSeeker interface {
	io.ReaderAt
	io.ReadSeeker
}

// TIFFReader is the C3 contract from spec.md §6: parse a file into a
// sequence of IFDs + SubIFDs, surfacing per IFD the endianness, tag map,
// source length, and backing source handle. The core never parses TIFF
// itself beyond this contract.
type TIFFReader interface {
	ReadPyramid(r ReadAtReadSeeker) ([]*IFD, error)
}

// DefaultTIFFReader is the default TIFFReader. It uses
// github.com/google/tiff — the library the teacher's loader.go parses
// with — to sniff and validate the classic-TIFF/BigTIFF header the way
// loader.go's sanityCheck does. Entry-by-entry decoding is then hand-rolled
// directly against the byte stream (grounded on the raw IFD-entry parsing
// in prl900-gocog's reader.go, generalized here to BigTIFF's 8-byte
// entries), because google/tiff's reflective UnmarshalIFD only
// reconstructs the fields a destination struct declares — sufficient for
// the teacher's COG builder, which only ever needs a fixed tag set, but not
// for this redactor's requirement that untouched IFDs round-trip every tag
// unchanged, including ones this package never otherwise interprets.
type DefaultTIFFReader struct{}

func (DefaultTIFFReader) ReadPyramid(r ReadAtReadSeeker) ([]*IFD, error) {
	if _, err := tiff.Parse(r, nil, nil); err != nil {
		return nil, &InputMalformedError{Reason: fmt.Sprintf("not a recognized TIFF/BigTIFF: %v", err)}
	}
	return parseIFDChain(r)
}

func parseIFDChain(r ReadAtReadSeeker) ([]*IFD, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IoFailureError{Op: "seek to end", Err: err}
	}

	var hdr [16]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, &InputMalformedError{Reason: fmt.Sprintf("short header: %v", err)}
	}
	var bigEndian bool
	switch {
	case hdr[0] == 'M' && hdr[1] == 'M':
		bigEndian = true
	case hdr[0] == 'I' && hdr[1] == 'I':
		bigEndian = false
	default:
		return nil, &InputMalformedError{Reason: "bad byte-order mark"}
	}
	enc := newPacker(bigEndian)
	magic := enc.u16(hdr[2:4])

	var big bool
	var firstOffset uint64
	switch magic {
	case 42:
		big = false
		firstOffset = uint64(enc.u32(hdr[4:8]))
	case bigTIFFMagic:
		big = true
		if enc.u16(hdr[4:6]) != 8 {
			return nil, &InputMalformedError{Reason: "unsupported bigtiff offset size"}
		}
		firstOffset = enc.u64(hdr[8:16])
	default:
		return nil, &InputMalformedError{Reason: "unrecognized TIFF magic"}
	}

	var ifds []*IFD
	offset := firstOffset
	for offset != 0 {
		ifd, next, err := parseOneIFD(r, size, enc, big, offset)
		if err != nil {
			return nil, err
		}
		ifds = append(ifds, ifd)
		offset = next
	}
	if len(ifds) == 0 {
		return nil, &InputMalformedError{Reason: "no IFDs in file"}
	}
	return ifds, nil
}

func parseOneIFD(r ReadAtReadSeeker, size int64, enc packer, big bool, offset uint64) (*IFD, uint64, error) {
	countWidth, entrySize, valWidth := 2, 12, 4
	if big {
		countWidth, entrySize, valWidth = 8, 20, 8
	}

	var cbuf [8]byte
	if _, err := r.ReadAt(cbuf[:countWidth], int64(offset)); err != nil {
		return nil, 0, &IoFailureError{Op: "read ifd entry count", Err: err}
	}
	var n uint64
	if big {
		n = enc.u64(cbuf[:8])
	} else {
		n = uint64(enc.u16(cbuf[:2]))
	}

	ifd := newIFD(r, size, enc.byteOrderMark() == [2]byte{'M', 'M'})
	entriesStart := offset + uint64(countWidth)
	subOffsets := map[uint16][]int64{}
	entryBuf := make([]byte, entrySize)

	for i := uint64(0); i < n; i++ {
		pos := entriesStart + i*uint64(entrySize)
		if _, err := r.ReadAt(entryBuf, int64(pos)); err != nil {
			return nil, 0, &IoFailureError{Op: "read ifd entry", Err: err}
		}
		tag := enc.u16(entryBuf[0:2])
		datatype := enc.u16(entryBuf[2:4])
		var count uint64
		var valField []byte
		if big {
			count = enc.u64(entryBuf[4:12])
			valField = entryBuf[12:20]
		} else {
			count = uint64(enc.u32(entryBuf[4:8]))
			valField = entryBuf[8:12]
		}

		e, childOffsets, err := decodeEntry(r, enc, big, tag, datatype, count, valField, valWidth)
		if err != nil {
			return nil, 0, err
		}
		ifd.Entries[tag] = e
		if tag == tagSubIFDs {
			subOffsets[tag] = childOffsets
		}
	}

	nextWidth := 4
	if big {
		nextWidth = 8
	}
	var nextBuf [8]byte
	nextPos := entriesStart + n*uint64(entrySize)
	if _, err := r.ReadAt(nextBuf[:nextWidth], int64(nextPos)); err != nil {
		return nil, 0, &IoFailureError{Op: "read next-ifd pointer", Err: err}
	}
	var next uint64
	if big {
		next = enc.u64(nextBuf[:8])
	} else {
		next = uint64(enc.u32(nextBuf[:4]))
	}

	for tag, offsets := range subOffsets {
		children := make([]*IFD, 0, len(offsets))
		for _, childOff := range offsets {
			child, _, err := parseOneIFD(r, size, enc, big, uint64(childOff))
			if err != nil {
				return nil, 0, err
			}
			children = append(children, child)
		}
		ifd.Sub[tag] = children
	}

	return ifd, next, nil
}

// decodeEntry decodes one entry's payload, resolving the inline-vs-offset
// distinction per spec.md §3 ("data is either a small inline value or a
// byte offset into the originating file"). For a SubIFDs entry the decoded
// integers double as the child IFDs' file offsets, returned separately so
// the caller can recurse.
func decodeEntry(r ReadAtReadSeeker, enc packer, big bool, tag, datatype uint16, count uint64, valField []byte, valWidth int) (*Entry, []int64, error) {
	elemSize := datatypeSize(datatype)
	total := elemSize * count

	var raw []byte
	if total <= uint64(valWidth) {
		raw = valField[:total]
	} else {
		var off uint64
		if big {
			off = enc.u64(valField)
		} else {
			off = uint64(enc.u32(valField[:4]))
		}
		raw = make([]byte, total)
		if _, err := r.ReadAt(raw, int64(off)); err != nil {
			return nil, nil, &IoFailureError{Op: "read entry payload", Err: err}
		}
	}

	e := &Entry{Tag: tag, Datatype: datatype, Count: count}
	switch datatype {
	case tASCII, tUndefined, tByte, tSByte:
		e.Bytes = append([]byte(nil), raw...)
	case tShort, tSShort:
		e.Ints = decodeInts(raw, count, 2, func(b []byte) int64 { return int64(enc.u16(b)) })
	case tLong, tSLong, tIFD:
		e.Ints = decodeInts(raw, count, 4, func(b []byte) int64 { return int64(enc.u32(b)) })
	case tLong8, tSLong8, tIFD8:
		e.Ints = decodeInts(raw, count, 8, func(b []byte) int64 { return int64(enc.u64(b)) })
	case tFloat:
		floats := make([]float64, count)
		for i := range floats {
			floats[i] = float64(math.Float32frombits(enc.u32(raw[i*4:])))
		}
		e.Floats = floats
	case tDouble:
		floats := make([]float64, count)
		for i := range floats {
			floats[i] = math.Float64frombits(enc.u64(raw[i*8:]))
		}
		e.Floats = floats
	case tRational:
		pairs := make([][2]int64, count)
		for i := range pairs {
			pairs[i] = [2]int64{int64(enc.u32(raw[i*8:])), int64(enc.u32(raw[i*8+4:]))}
		}
		e.Rationals = pairs
	case tSRational:
		pairs := make([][2]int64, count)
		for i := range pairs {
			pairs[i] = [2]int64{int64(int32(enc.u32(raw[i*8:]))), int64(int32(enc.u32(raw[i*8+4:])))}
		}
		e.Rationals = pairs
	default:
		return nil, nil, &UnsupportedEncodingError{Reason: fmt.Sprintf("tag %d: unsupported datatype %d", tag, datatype)}
	}

	var childOffsets []int64
	if tag == tagSubIFDs {
		childOffsets = e.Ints
	}
	return e, childOffsets, nil
}

func decodeInts(raw []byte, count uint64, elemSize int, get func([]byte) int64) []int64 {
	ints := make([]int64, count)
	for i := range ints {
		ints[i] = get(raw[int(i)*elemSize:])
	}
	return ints
}
