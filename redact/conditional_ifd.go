package redact

// BuildConditionalIFD implements C9 (spec.md §4.4): a deep copy of the
// original tile IFD O whose TileOffsets/TileByteCounts are synthesised from
// O and the re-encoded IFD R per the selection vector S, with placeholder
// offsets the writer (C11) rewrites during emission.
//
// Preconditions: len(O.TileOffsets) == len(O.TileByteCounts) ==
// len(R.TileByteCounts) == len(S) > 0; a selected tile i takes R's byte
// count at the same index i. Violations are fatal per spec.md §7.
func BuildConditionalIFD(original, reencoded *IFD, selection []bool) (*IFD, error) {
	oOff := original.TileOffsets()
	oBC := original.TileByteCounts()
	rBC := reencoded.TileByteCounts()
	n := len(selection)

	if len(oOff) != n || len(oBC) != n {
		return nil, &SourceOffsetsInconsistentError{Reason: "original TileOffsets/TileByteCounts/selection length mismatch"}
	}
	if len(rBC) != n {
		return nil, &SourceOffsetsInconsistentError{Reason: "re-encoded TileByteCounts length does not match selection"}
	}
	if n == 0 {
		return nil, &SourceOffsetsInconsistentError{Reason: "tile IFD has no tiles"}
	}

	out := original.clone()
	placeholder := int64(oOff[0])

	byteCounts := make([]int64, n)
	offsets := make([]int64, n)
	offset := placeholder
	for i := 0; i < n; i++ {
		var bc int64
		if selection[i] {
			bc = int64(rBC[i])
		} else {
			bc = int64(oBC[i])
		}
		byteCounts[i] = bc
		offsets[i] = offset
		offset += bc
	}

	out.setInts(tagTileOffsets, tLong8, offsets)
	out.setInts(tagTileByteCounts, tLong8, byteCounts)
	return out, nil
}
