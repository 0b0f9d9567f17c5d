package redact

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
)

// ReEncoder is the C7 contract from spec.md §6: composite a mask over a
// decoded level and persist it as a fresh single-IFD BigTIFF, tiled or
// untiled. The driver (C12) only depends on this interface; JPEGReEncoder
// below is the default implementation.
type ReEncoder interface {
	CompositeOver(base image.Image, mask image.Image) image.Image
	SaveTiledJPEG(img image.Image, path string, tileW, tileH int, photometric uint64, quality int) error
	SaveUntiledJPEG(img image.Image, path string) error
}

// JPEGReEncoder is the default ReEncoder: standard "over" alpha compositing
// via image/draw, baseline JPEG tile encoding via the stdlib image/jpeg
// codec (no ecosystem JPEG encoder in the retrieval pack improves on it for
// plain baseline JPEG), assembled into a single-IFD BigTIFF by the same
// writer machinery C11 uses for the destination file.
type JPEGReEncoder struct{}

func (JPEGReEncoder) CompositeOver(base image.Image, mask image.Image) image.Image {
	b := base.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, base, b.Min, draw.Src)
	draw.Draw(out, b, mask, mask.Bounds().Min, draw.Over)
	return out
}

// SaveTiledJPEG implements the C7 save_tiled_jpeg contract: a single-IFD
// tiled BigTIFF whose tiles are independently-encoded baseline JPEGs at the
// requested tile geometry, photometric interpretation, and quality.
func (JPEGReEncoder) SaveTiledJPEG(img image.Image, path string, tileW, tileH int, photometric uint64, quality int) error {
	if tileW <= 0 || tileH <= 0 {
		return &InputMalformedError{Reason: "tile width/height must be positive"}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cols, rows := ceilDivInt(w, tileW), ceilDivInt(h, tileH)

	tiles := make([][]byte, cols*rows)
	for i := range tiles {
		x := (i % cols) * tileW
		y := (i / cols) * tileH
		tw, th := tileW, tileH
		if x+tw > w {
			tw = w - x
		}
		if y+th > h {
			th = h - y
		}
		sub := image.NewRGBA(image.Rect(0, 0, tileW, tileH))
		draw.Draw(sub, image.Rect(0, 0, tw, th), img, image.Point{b.Min.X + x, b.Min.Y + y}, draw.Src)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, sub, &jpeg.Options{Quality: quality}); err != nil {
			return &IoFailureError{Op: "jpeg encode tile", Err: err}
		}
		tiles[i] = buf.Bytes()
	}

	ifd := newIFD(nil, 0, true)
	ifd.setInts(tagImageWidth, tLong8, []int64{int64(w)})
	ifd.setInts(tagImageLength, tLong8, []int64{int64(h)})
	ifd.setInts(tagTileWidth, tLong8, []int64{int64(tileW)})
	ifd.setInts(tagTileLength, tLong8, []int64{int64(tileH)})
	ifd.setInts(tagCompression, tShort, []int64{int64(CompressionJPEG)})
	ifd.setInts(tagPhotometric, tShort, []int64{int64(photometric)})
	ifd.setInts(tagSamplesPerPixel, tShort, []int64{3})
	ifd.setInts(tagBitsPerSample, tShort, []int64{8, 8, 8})
	ifd.setInts(tagPlanarConfig, tShort, []int64{1})
	if photometric == PhotometricYCbCr {
		ifd.setInts(tagYCbCrSubSampling, tShort, []int64{2, 2})
	}
	placeholderOffsets := make([]int64, len(tiles))
	byteCounts := make([]int64, len(tiles))
	for i, t := range tiles {
		byteCounts[i] = int64(len(t))
	}
	ifd.setInts(tagTileOffsets, tLong8, placeholderOffsets)
	ifd.setInts(tagTileByteCounts, tLong8, byteCounts)

	return writeSingleIFDBigTIFF(path, ifd, tiles, tagTileOffsets)
}

// SaveUntiledJPEG implements save_untiled_jpeg: a single-IFD BigTIFF with
// one strip covering the whole image, used for thumbnails per spec.md
// §4.7 (no tiling required for the Thumbnail class).
func (JPEGReEncoder) SaveUntiledJPEG(img image.Image, path string) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: defaultJPEGQuality}); err != nil {
		return &IoFailureError{Op: "jpeg encode thumbnail", Err: err}
	}
	strip := buf.Bytes()

	ifd := newIFD(nil, 0, true)
	ifd.setInts(tagImageWidth, tLong8, []int64{int64(w)})
	ifd.setInts(tagImageLength, tLong8, []int64{int64(h)})
	ifd.setInts(tagCompression, tShort, []int64{int64(CompressionJPEG)})
	ifd.setInts(tagPhotometric, tShort, []int64{int64(PhotometricYCbCr)})
	ifd.setInts(tagSamplesPerPixel, tShort, []int64{3})
	ifd.setInts(tagBitsPerSample, tShort, []int64{8, 8, 8})
	ifd.setInts(tagPlanarConfig, tShort, []int64{1})
	ifd.setInts(tagRowsPerStrip, tLong8, []int64{int64(h)})
	ifd.setInts(tagStripOffsets, tLong8, []int64{0})
	ifd.setInts(tagStripByteCounts, tLong8, []int64{int64(len(strip))})

	return writeSingleIFDBigTIFF(path, ifd, [][]byte{strip}, tagStripOffsets)
}

func ceilDivInt(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

const defaultJPEGQuality = 70
