// Package redactconfig layers the CLI-facing flag surface over
// redact.Config, the same way the teacher's cmd/tiler and cmd/mcog layer
// cobra flags over their Stripper/Tiler option constructors.
package redactconfig

import (
	"github.com/DigitalSlideArchive/ImageDePHI-Phase-I/redact"
	"github.com/spf13/cobra"
)

// Flags holds the values cobra binds directly to command-line flags.
type Flags struct {
	TileWidth   int
	TileHeight  int
	JPEGQuality int
	ScratchDir  string
}

// Register attaches the tool's tuning flags to cmd's persistent flag set.
// source/--out/--annotation/--verbose (spec.md §6's CLI contract) are
// registered separately by the caller; these are the redaction-tuning
// knobs layered on top.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().IntVar(&f.TileWidth, "tile-width", 256, "re-encoded tile width")
	cmd.PersistentFlags().IntVar(&f.TileHeight, "tile-height", 256, "re-encoded tile height")
	cmd.PersistentFlags().IntVar(&f.JPEGQuality, "jpeg-quality", 85, "re-encoded JPEG quality (1-100)")
	cmd.PersistentFlags().StringVar(&f.ScratchDir, "scratch-dir", "", "directory for scratch files (default: OS temp dir)")
}

// Build resolves the bound flags into a redact.Config, surfacing any
// out-of-range value as redact.ErrInvalidOption before any file I/O
// begins.
func (f *Flags) Build() (redact.Config, error) {
	opts := []redact.Option{
		redact.WithTileSize(f.TileWidth, f.TileHeight),
		redact.WithJPEGQuality(f.JPEGQuality),
	}
	if f.ScratchDir != "" {
		opts = append(opts, redact.WithScratchDir(f.ScratchDir))
	}
	return redact.NewConfig(opts...)
}
