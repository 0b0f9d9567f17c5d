package redact

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
)

// DecodeIFDImage assembles a tile IFD's pixels into a single image.Image by
// decoding each JPEG tile and compositing it into its grid position, the
// read-side counterpart of SaveTiledJPEG's tiling loop. It backs the
// driver's (C12) need for a decoded base image to composite a mask over
// before re-encoding (spec.md §4.2 step 2), using the stdlib image/jpeg
// codec for the same reason JPEGReEncoder does: no ecosystem decoder in
// the retrieval pack improves on it for plain baseline JPEG.
func DecodeIFDImage(ifd *IFD) (image.Image, error) {
	if ifd.Compression() != CompressionJPEG {
		return nil, &UnsupportedEncodingError{Reason: "tile compression is not JPEG"}
	}
	if p := ifd.Photometric(); p != PhotometricRGB && p != PhotometricYCbCr {
		return nil, &UnsupportedEncodingError{Reason: "photometric interpretation is neither RGB nor YCbCr"}
	}
	w, h := int(ifd.ImageWidth()), int(ifd.ImageLength())
	if w <= 0 || h <= 0 {
		return nil, &InputMalformedError{Reason: "tile IFD missing ImageWidth/ImageLength"}
	}
	offsets, byteCounts := ifd.TileOffsets(), ifd.TileByteCounts()
	n := ifd.NTilesX() * ifd.NTilesY()
	if len(offsets) != n || len(byteCounts) != n {
		return nil, &SourceOffsetsInconsistentError{Reason: "TileOffsets/TileByteCounts length does not match tile grid"}
	}
	if ifd.Source == nil {
		return nil, &InputMalformedError{Reason: "tile IFD has no backing source"}
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	jpegTables := ifd.JPEGTables()
	for i := 0; i < n; i++ {
		x, y, tw, th := ifd.TileRect(i)
		if tw <= 0 || th <= 0 {
			continue
		}
		off, bc := int64(offsets[i]), int64(byteCounts[i])
		if bc == 0 {
			continue
		}
		raw := make([]byte, bc)
		if _, err := ifd.Source.ReadAt(raw, off); err != nil {
			return nil, &IoFailureError{Op: "read tile payload", Err: err}
		}
		tile, err := decodeJPEGTile(raw, jpegTables)
		if err != nil {
			return nil, err
		}
		tb := tile.Bounds()
		srcW, srcH := tb.Dx(), tb.Dy()
		if srcW < tw {
			tw = srcW
		}
		if srcH < th {
			th = srcH
		}
		draw.Draw(out, image.Rect(x, y, x+tw, y+th), tile, tb.Min, draw.Src)
	}
	return out, nil
}

// decodeJPEGTile decodes one tile's JPEG stream, prefixing it with the
// IFD's shared JPEGTables segment when the tile itself omits its own
// quantization/Huffman tables (TIFF's "abbreviated JPEG stream" form,
// spec.md §3's JPEGTables note).
func decodeJPEGTile(raw, jpegTables []byte) (image.Image, error) {
	// jpegTables is itself a complete SOI..EOI stream (TIFF Technical Note 2),
	// but it holds only table segments (DQT/DHT) with no image data of its
	// own. Splicing it in front of an abbreviated tile stream means dropping
	// its trailing EOI so the tables flow straight into the tile's SOF/SOS;
	// keeping the EOI would terminate the stream before the tile's image
	// data ever appears.
	tables := jpegTables
	if len(tables) >= 2 && tables[len(tables)-2] == 0xFF && tables[len(tables)-1] == 0xD9 {
		tables = tables[:len(tables)-2]
	}
	if len(tables) > 0 && !bytes.HasPrefix(raw, []byte{0xFF, 0xD8}) {
		full := make([]byte, 0, len(tables)+len(raw))
		full = append(full, tables...)
		full = append(full, raw...)
		raw = full
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		if len(tables) > 0 {
			if img2, err2 := jpeg.Decode(io.MultiReader(bytes.NewReader(tables), bytes.NewReader(raw))); err2 == nil {
				return img2, nil
			}
		}
		return nil, &UnsupportedEncodingError{Reason: "decode jpeg tile: " + err.Error()}
	}
	return img, nil
}
