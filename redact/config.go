package redact

// ErrInvalidOption is returned by Option constructors when a supplied
// value is out of range, before any file I/O begins — same shape as the
// teacher's Stripper/TilerOption error type.
type ErrInvalidOption struct {
	Reason string
}

func (err ErrInvalidOption) Error() string {
	return "invalid option: " + err.Reason
}

// Config controls redaction parameters the driver (C12) and the default
// re-encoder rely on: tile geometry for re-encoded levels, JPEG quality,
// and the directory scratch files are created under.
type Config struct {
	TileWidth   int
	TileHeight  int
	JPEGQuality int
	ScratchDir  string
}

// Option mutates a Config, the same functional-options shape as the
// teacher's StripperOption/TilerOption.
type Option func(*Config) error

// DefaultConfig mirrors the 256x256 tile, Q=85 defaults the teacher's
// cmd/tiler and cmd/pcogger wire for their re-encoders.
func DefaultConfig() Config {
	return Config{
		TileWidth:   256,
		TileHeight:  256,
		JPEGQuality: 85,
		ScratchDir:  "",
	}
}

func WithTileSize(width, height int) Option {
	return func(c *Config) error {
		if width < 1 || height < 1 {
			return ErrInvalidOption{"tile width and height must be >=1"}
		}
		c.TileWidth, c.TileHeight = width, height
		return nil
	}
}

func WithJPEGQuality(quality int) Option {
	return func(c *Config) error {
		if quality < 1 || quality > 100 {
			return ErrInvalidOption{"jpeg quality must be in [1,100]"}
		}
		c.JPEGQuality = quality
		return nil
	}
}

func WithScratchDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return ErrInvalidOption{"scratch dir must not be empty"}
		}
		c.ScratchDir = dir
		return nil
	}
}

// NewConfig applies options over DefaultConfig, the same construction
// shape as the teacher's NewStripper/NewTiler.
func NewConfig(options ...Option) (Config, error) {
	c := DefaultConfig()
	for _, opt := range options {
		if err := opt(&c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}
