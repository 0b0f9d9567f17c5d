package redact

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ScratchFile is a scoped acquisition of one re-encoded level's temporary
// storage (spec.md §3 "Ownership & lifecycle", §5 "Scratch files" and §9
// "Scoped acquisition"): a uniquely-named file created on demand and
// removed by Close. Redact closes every scratch file it created together,
// once the whole output has been written or the run has failed; files are
// not removed at the end of each IFD's iteration. Naming follows the
// teacher's cmd/pcogger convention of a fresh uuid per intermediate artifact.
type ScratchFile struct {
	Path string
	dir  string
}

// NewScratchFile reserves a scratch file path under dir (an empty dir uses
// os.TempDir) without creating the file itself — the caller's re-encoder
// creates it. Call Close to remove it once nothing reads from it any more.
func NewScratchFile(dir string) *ScratchFile {
	if dir == "" {
		dir = os.TempDir()
	}
	name := "redact-" + uuid.Must(uuid.NewRandom()).String() + ".tif"
	return &ScratchFile{Path: filepath.Join(dir, name), dir: dir}
}

// Close removes the scratch file if it exists. Safe to call multiple
// times and safe to call when SaveTiledJPEG/SaveUntiledJPEG never actually
// created the file (a failed re-encode attempt).
func (s *ScratchFile) Close() error {
	err := os.Remove(s.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
