package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 256, c.TileWidth)
	assert.Equal(t, 256, c.TileHeight)
	assert.Equal(t, 85, c.JPEGQuality)
}

func TestNewConfigAppliesOptions(t *testing.T) {
	c, err := NewConfig(WithTileSize(512, 512), WithJPEGQuality(60))
	assert.NoError(t, err)
	assert.Equal(t, 512, c.TileWidth)
	assert.Equal(t, 60, c.JPEGQuality)
}

func TestWithTileSizeRejectsNonPositive(t *testing.T) {
	_, err := NewConfig(WithTileSize(0, 256))
	assert.Error(t, err)
	assert.IsType(t, ErrInvalidOption{}, err)
}

func TestWithJPEGQualityRejectsOutOfRange(t *testing.T) {
	_, err := NewConfig(WithJPEGQuality(0))
	assert.Error(t, err)
	_, err = NewConfig(WithJPEGQuality(101))
	assert.Error(t, err)
}

func TestWithScratchDirRejectsEmpty(t *testing.T) {
	_, err := NewConfig(WithScratchDir(""))
	assert.Error(t, err)
}
