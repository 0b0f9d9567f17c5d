package redact

import (
	"image"

	"golang.org/x/image/draw"
)

// ResampleMask implements spec.md §4.2 step 1: resample the full-
// resolution polygon mask to W×H by uniform bilinear scaling, so that a
// polygon authored at full resolution still marks the right tiles at a
// downsampled pyramid level. golang.org/x/image/draw.BiLinear is the same
// resampling family golang.org/x/image exposes for general-purpose image
// scaling; draw.Src is used (not draw.Over) since the destination starts
// uninitialized and there is nothing to blend against.
func ResampleMask(mask image.Image, w, h int) *image.RGBA {
	b := mask.Bounds()
	if b.Dx() == w && b.Dy() == h {
		if rgba, ok := mask.(*image.RGBA); ok {
			return rgba
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), mask, b, draw.Src, nil)
	return dst
}

// ComputeTileMask implements C6: for the given IFD's tile geometry,
// compute the boolean selection vector R where R[i] is true iff any pixel
// of tile i has non-zero mask alpha, per spec.md §4.2. The mask is
// resampled to the IFD's full (ImageWidth, ImageLength) first if its
// dimensions differ.
func ComputeTileMask(mask image.Image, ifd *IFD) ([]bool, error) {
	w, h := int(ifd.ImageWidth()), int(ifd.ImageLength())
	if w <= 0 || h <= 0 {
		return nil, &InputMalformedError{Reason: "tile IFD missing ImageWidth/ImageLength"}
	}
	if ifd.TileWidth() == 0 || ifd.TileLength() == 0 {
		return nil, &InputMalformedError{Reason: "tile IFD missing TileWidth/TileLength"}
	}
	resampled := ResampleMask(mask, w, h)

	cols, rows := ifd.NTilesX(), ifd.NTilesY()
	r := make([]bool, cols*rows)
	for i := range r {
		x, y, tw, th := ifd.TileRect(i)
		r[i] = tileHasAlpha(resampled, x, y, tw, th)
	}
	return r, nil
}

func tileHasAlpha(img *image.RGBA, x, y, w, h int) bool {
	for yy := y; yy < y+h; yy++ {
		rowStart := img.PixOffset(x, yy)
		row := img.Pix[rowStart : rowStart+w*4]
		for px := 3; px < len(row); px += 4 {
			if row[px] != 0 {
				return true
			}
		}
	}
	return false
}
