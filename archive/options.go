package archive

import "github.com/klauspost/compress/flate"

// DefaultPrefix is the name prefix of private staging directories.
const DefaultPrefix = "projects"

// Option configures a Stager.
type Option func(*settings)

type settings struct {
	tempRoot   string
	prefix     string
	stagingDir string
	level      int
	logger     Logger
}

func resolveSettings(opts []Option) settings {
	cfg := settings{
		prefix: DefaultPrefix,
		level:  flate.DefaultCompression,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}
	return cfg
}

// WithTempRoot sets the directory under which private staging directories are
// created. An empty root means os.TempDir().
func WithTempRoot(root string) Option {
	return func(s *settings) {
		s.tempRoot = root
	}
}

// WithPrefix sets the name prefix of private staging directories.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithStagingDir makes the stager use dir instead of a private temporary
// directory. The directory is created if missing and is left in place when
// the stager is closed. An empty dir restores the private directory mode.
func WithStagingDir(dir string) Option {
	return func(s *settings) {
		s.stagingDir = dir
	}
}

// WithCompressionLevel sets the deflate level used when compressing. Zero
// keeps the library default; valid explicit levels are 1 through 9.
func WithCompressionLevel(level int) Option {
	return func(s *settings) {
		if level == 0 {
			s.level = flate.DefaultCompression
			return
		}
		s.level = level
	}
}

// WithLogger sets the logger used to report cleanup failures.
func WithLogger(logger Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
