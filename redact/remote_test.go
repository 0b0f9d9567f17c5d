package redact

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteReaderAtSeek(t *testing.T) {
	r := &RemoteReaderAt{size: 1000}

	pos, err := r.Seek(100, io.SeekStart)
	assert.NoError(t, err)
	assert.EqualValues(t, 100, pos)

	pos, err = r.Seek(50, io.SeekCurrent)
	assert.NoError(t, err)
	assert.EqualValues(t, 150, pos)

	pos, err = r.Seek(-10, io.SeekEnd)
	assert.NoError(t, err)
	assert.EqualValues(t, 990, pos)

	_, err = r.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestRemoteReaderAtSize(t *testing.T) {
	r := &RemoteReaderAt{size: 42}
	assert.EqualValues(t, 42, r.Size())
}
