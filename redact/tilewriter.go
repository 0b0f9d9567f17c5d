package redact

import (
	"io"
)

const tileCopyBufferSize = 1 << 20 // 1 MiB, per spec.md §4.5/§5

// WriteConditionalTiles implements C10: for each tile index i, choose the
// original or redacted source by selection[i], bounds-check its
// (offset, length) against the source's length, and stream the bytes to
// dst. Tiles are emitted in tile-index order (not sorted by source offset)
// so destOffsets[i] corresponds to tile i exactly, per the open question in
// spec.md §9 resolved in favour of tile-index order.
//
// dst must be positioned where the caller wants the first tile written;
// WriteConditionalTiles tracks the running write position itself rather
// than querying dst, so it works against any io.Writer, not just a seeker.
func WriteConditionalTiles(
	dst io.Writer,
	startOffset uint64,
	originalSrc io.ReaderAt, originalSize int64, originalOffsets, originalByteCounts []uint64,
	redactedSrc io.ReaderAt, redactedSize int64, redactedOffsets, redactedByteCounts []uint64,
	selection []bool,
) (destOffsets []uint64, err error) {
	n := len(selection)
	destOffsets = make([]uint64, n)
	pos := startOffset
	buf := make([]byte, tileCopyBufferSize)

	for i := 0; i < n; i++ {
		var src io.ReaderAt
		var srcLen int64
		var offset, length uint64
		if selection[i] {
			src, srcLen = redactedSrc, redactedSize
			offset, length = redactedOffsets[i], redactedByteCounts[i]
		} else {
			src, srcLen = originalSrc, originalSize
			offset, length = originalOffsets[i], originalByteCounts[i]
		}

		if length == 0 || int64(offset)+int64(length) > srcLen {
			// Matches the source's tolerant behaviour for missing tiles:
			// record a zero offset and skip rather than failing the run.
			destOffsets[i] = 0
			continue
		}

		destOffsets[i] = pos
		section := io.NewSectionReader(src, int64(offset), int64(length))
		written, cerr := io.CopyBuffer(dst, section, buf)
		if cerr != nil {
			return nil, &IoFailureError{Op: "copy tile data", Err: cerr}
		}
		pos += uint64(written)
	}
	return destOffsets, nil
}
