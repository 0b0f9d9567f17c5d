package redact

import (
	"errors"
	"io"

	"github.com/airbusgeo/osio"
)

// RemoteReaderAt adapts an osio.Handle-backed, block-caching osio.Adapter —
// the same reader cmd/tiler wires for its gs:// inputs — into the
// ReadAtReadSeeker a TIFFReader needs, satisfying spec.md §6's "source file
// path (or byte-addressable reader)" input form for non-local sources.
type RemoteReaderAt struct {
	adapter *osio.Adapter
	size    int64
	pos     int64
}

// NewRemoteReaderAt wraps handle in an osio.Adapter with the given options
// (e.g. osio.BlockSize, osio.NumCachedBlocks, as cmd/tiler configures for
// its gcs.Handle), and stages it to seek/read sequentially for the one
// full streaming pass a TIFFReader makes while locating IFDs, while still
// exposing ReadAt for random-access tile copying.
func NewRemoteReaderAt(handle osio.Handle, opts ...osio.AdapterOption) (*RemoteReaderAt, error) {
	a, err := osio.NewAdapter(handle, opts...)
	if err != nil {
		return nil, &IoFailureError{Op: "osio.NewAdapter", Err: err}
	}
	size, err := handle.Size()
	if err != nil {
		return nil, &IoFailureError{Op: "osio handle size", Err: err}
	}
	return &RemoteReaderAt{adapter: a, size: size}, nil
}

func (r *RemoteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return r.adapter.ReadAt(p, off)
}

func (r *RemoteReaderAt) Read(p []byte) (int, error) {
	n, err := r.adapter.ReadAt(p, r.pos)
	r.pos += int64(n)
	if err == nil && r.pos >= r.size {
		err = io.EOF
	}
	return n, err
}

func (r *RemoteReaderAt) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	case io.SeekEnd:
		target = r.size + offset
	default:
		return 0, errors.New("redact: RemoteReaderAt.Seek: invalid whence")
	}
	if target < 0 {
		return 0, errors.New("redact: RemoteReaderAt.Seek: negative position")
	}
	r.pos = target
	return r.pos, nil
}

func (r *RemoteReaderAt) Size() int64 { return r.size }
