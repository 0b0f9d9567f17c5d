package redact

// TIFF field datatypes (TIFF 6.0 §2 plus the BigTIFF additions: LONG8,
// SLONG8, IFD8). Named exactly as the teacher's cog.go constants.
const (
	tByte      = 1
	tASCII     = 2
	tShort     = 3
	tLong      = 4
	tRational  = 5
	tSByte     = 6
	tUndefined = 7
	tSShort    = 8
	tSLong     = 9
	tSRational = 10
	tFloat     = 11
	tDouble    = 12
	tIFD       = 13
	tLong8     = 16
	tSLong8    = 17
	tIFD8      = 18
)

func datatypeSize(datatype uint16) uint64 {
	switch datatype {
	case tByte, tASCII, tSByte, tUndefined:
		return 1
	case tShort, tSShort:
		return 2
	case tLong, tSLong, tFloat, tIFD:
		return 4
	case tRational, tSRational:
		return 8
	case tDouble, tLong8, tSLong8, tIFD8:
		return 8
	default:
		return 0
	}
}

// Well-known TIFF/EXIF tags used by the classifier, the mandatory-tag
// checks, and the writer's offset-bearing-tag rules.
const (
	tagNewSubfileType    = 254
	tagImageWidth        = 256
	tagImageLength       = 257
	tagBitsPerSample     = 258
	tagCompression       = 259
	tagPhotometric       = 262
	tagImageDescription  = 270
	tagStripOffsets      = 273
	tagSamplesPerPixel   = 277
	tagRowsPerStrip      = 278
	tagStripByteCounts   = 279
	tagPlanarConfig      = 284
	tagTileWidth         = 322
	tagTileLength        = 323
	tagTileOffsets       = 324
	tagTileByteCounts    = 325
	tagSubIFDs           = 330
	tagExtraSamples      = 338
	tagSampleFormat      = 339
	tagJPEGTables        = 347
	tagYCbCrSubSampling  = 530
)

const (
	subfileTypeThumbnail = 0
	subfileTypeLabel     = 1
	subfileTypeMacro     = 9
)

const (
	// PhotometricRGB and PhotometricYCbCr are the only photometric
	// interpretations this redactor will re-encode tiles under (spec.md §1
	// Non-goals).
	PhotometricRGB   = 2
	PhotometricYCbCr = 6
)

// CompressionJPEG is the "new-style" JPEG compression tag value (7), the
// only tile compression this redactor re-encodes.
const CompressionJPEG = 7

// offsetBearingTags identifies entries whose data field is itself a byte
// offset into the originating file (spec.md §3 "IFD entry"), distinct from
// entries that merely overflow into the file because their inline value is
// too large to embed. TileOffsets/StripOffsets point at pixel payloads;
// each maps to its paired byte-count tag, the single source
// offsetCarryingTag (bigtiff_writer.go) consults so the two tags can't
// drift out of sync with each other.
var offsetBearingTags = map[uint16]uint16{
	tagTileOffsets:  tagTileByteCounts,
	tagStripOffsets: tagStripByteCounts,
}
