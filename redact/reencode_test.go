package redact

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func openForRead(t *testing.T, path string) (*os.File, error) {
	t.Helper()
	f, err := os.Open(path)
	if err == nil {
		t.Cleanup(func() { f.Close() })
	}
	return f, err
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompositeOverBlendsMaskOnly(t *testing.T) {
	base := solidImage(4, 4, color.RGBA{0, 0, 255, 255})
	mask := image.NewRGBA(image.Rect(0, 0, 4, 4))
	mask.Set(0, 0, color.RGBA{255, 0, 0, 255})

	out := JPEGReEncoder{}.CompositeOver(base, mask)

	r, g, b, a := out.At(0, 0).RGBA()
	assert.NotZero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.NotZero(t, a)

	r, g, b, _ = out.At(1, 1).RGBA()
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.NotZero(t, b)
}

func TestSaveTiledJPEGRoundTrips(t *testing.T) {
	img := solidImage(300, 200, color.RGBA{10, 20, 30, 255})
	path := filepath.Join(t.TempDir(), "tiled.tif")

	err := JPEGReEncoder{}.SaveTiledJPEG(img, path, 256, 256, PhotometricRGB, 80)
	assert.NoError(t, err)

	f, err := openForRead(t, path)
	assert.NoError(t, err)
	ifds, err := parseIFDChain(f)
	assert.NoError(t, err)
	assert.Len(t, ifds, 1)

	ifd := ifds[0]
	assert.Equal(t, uint64(300), ifd.ImageWidth())
	assert.Equal(t, uint64(200), ifd.ImageLength())
	assert.Equal(t, uint64(256), ifd.TileWidth())
	assert.Equal(t, uint64(256), ifd.TileLength())
	assert.Equal(t, 2, ifd.NTilesX()) // ceil(300/256)
	assert.Equal(t, 1, ifd.NTilesY()) // ceil(200/256)
	assert.Len(t, ifd.TileOffsets(), 2)
	for _, bc := range ifd.TileByteCounts() {
		assert.NotZero(t, bc)
	}
}

func TestSaveUntiledJPEGRoundTrips(t *testing.T) {
	img := solidImage(64, 48, color.RGBA{200, 200, 200, 255})
	path := filepath.Join(t.TempDir(), "untiled.tif")

	err := JPEGReEncoder{}.SaveUntiledJPEG(img, path)
	assert.NoError(t, err)

	f, err := openForRead(t, path)
	assert.NoError(t, err)
	ifds, err := parseIFDChain(f)
	assert.NoError(t, err)
	assert.Len(t, ifds, 1)
	assert.Equal(t, uint64(64), ifds[0].ImageWidth())
	assert.Len(t, ifds[0].ints(tagStripOffsets), 1)
}
