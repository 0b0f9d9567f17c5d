package redact

import (
	"regexp"
	"strconv"
)

// CheckCompatible implements C8 (spec.md §4.3): a re-encoded IFD is
// compatible with its source IFD only if tile geometry, compression,
// photometric interpretation, and estimated JPEG quality all match. A
// mismatch is recoverable — the driver (C12) catches *IncompatibleError and
// falls back to wholesale emission of the re-encoded IFD (§4.7, scenario S5).
func CheckCompatible(source, reencoded *IFD) error {
	if source.TileWidth() != reencoded.TileWidth() || source.TileLength() != reencoded.TileLength() {
		return &IncompatibleError{Reason: "tile dimensions differ"}
	}
	if source.Compression() != reencoded.Compression() {
		return &IncompatibleError{Reason: "compression differs"}
	}
	if source.Photometric() != reencoded.Photometric() {
		return &IncompatibleError{Reason: "photometric interpretation differs"}
	}
	sq := estimateJPEGQuality(source)
	rq := estimateJPEGQuality(reencoded)
	if sq != rq {
		return &IncompatibleError{Reason: "estimated JPEG quality differs"}
	}
	return nil
}

var qDescriptionPattern = regexp.MustCompile(`Q=(\d+)`)

// estimateJPEGQuality recovers an approximate IJG quality factor for an
// IFD's tiles, per spec.md §9's "JPEG-quality recovery" open question: the
// primary source is the JPEGTables quantization entry; failing that, a
// "Q=NN" marker in ImageDescription; failing that, a fixed default. This is
// explicitly a best-effort heuristic, not an invariant.
func estimateJPEGQuality(ifd *IFD) int {
	if tables := ifd.JPEGTables(); len(tables) > 0 {
		if q, ok := qualityFromQuantTable(tables); ok {
			return q
		}
	}
	if m := qDescriptionPattern.FindStringSubmatch(ifd.ImageDescription()); m != nil {
		if q, err := strconv.Atoi(m[1]); err == nil {
			return q
		}
	}
	return defaultJPEGQuality
}

// qualityFromQuantTable scans a JPEGTables byte stream for its first DQT
// (0xFFDB) marker segment, takes the integer mean avg of that segment's
// first 64 table entries, and maps it to a quality: avg >= 100 gives 1,
// avg <= 50 gives (5000/avg + 50)/100, anything between gives
// (200 - avg)/2, with the result clamped to [1,100].
func qualityFromQuantTable(tables []byte) (int, bool) {
	for i := 0; i+4 < len(tables); i++ {
		if tables[i] != 0xFF || tables[i+1] != 0xDB {
			continue
		}
		segLen := int(tables[i+2])<<8 | int(tables[i+3])
		start := i + 5 // marker(2) + length(2) + precision/id byte(1)
		end := start + 64
		if segLen < 65 || end > len(tables) {
			return 0, false
		}
		var sum int
		for _, b := range tables[start:end] {
			sum += int(b)
		}
		avg := sum / 64
		if avg <= 0 {
			return 0, false
		}
		if avg >= 100 {
			return 1, true
		}
		var q int
		if avg <= 50 {
			q = (5000/avg + 50) / 100
		} else {
			q = (200 - avg) / 2
		}
		if q < 1 {
			q = 1
		}
		if q > 100 {
			q = 100
		}
		return q, true
	}
	return 0, false
}
