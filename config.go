package projects

import (
	"fmt"
	"time"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"

	"github.com/GoCodeAlone/projects/archive"
)

// Config holds the settings applied to documents through WithConfig.
type Config struct {
	// TempDir is the root for private staging directories; empty means the
	// system temp directory.
	TempDir string `yaml:"tempDir" toml:"tempDir" json:"tempDir" env:"PROJECTS_TEMP_DIR"`

	StagingPrefix string `yaml:"stagingPrefix" toml:"stagingPrefix" json:"stagingPrefix" env:"PROJECTS_STAGING_PREFIX" default:"projects" validate:"required,excludesall=/\\"`

	// Compression is the mode for new documents: compressed or uncompressed.
	Compression string `yaml:"compression" toml:"compression" json:"compression" env:"PROJECTS_COMPRESSION" default:"compressed" validate:"oneof=compressed uncompressed"`

	Codec string `yaml:"codec" toml:"codec" json:"codec" env:"PROJECTS_CODEC" default:"xml" validate:"oneof=xml json yaml cbor"`

	// PrimaryMember overrides the archive member holding the document body.
	PrimaryMember string `yaml:"primaryMember" toml:"primaryMember" json:"primaryMember" env:"PROJECTS_PRIMARY_MEMBER" validate:"omitempty,excludesall=/\\"`

	// CompressionLevel is the deflate level, 1 to 9; 0 keeps the default.
	CompressionLevel int `yaml:"compressionLevel" toml:"compressionLevel" json:"compressionLevel" env:"PROJECTS_COMPRESSION_LEVEL" validate:"min=0,max=9"`

	// WatchDebounce is how long Watch waits for a burst of disk events to
	// settle.
	WatchDebounce time.Duration `yaml:"watchDebounce" toml:"watchDebounce" json:"watchDebounce" env:"PROJECTS_WATCH_DEBOUNCE" default:"100ms"`
}

// Feeder fills a config struct from one source.
type Feeder = config.Feeder

// Feeder aliases for the sources supported out of the box.
type (
	EnvFeeder    = feeder.Env
	DotEnvFeeder = feeder.DotEnv
	YamlFeeder   = feeder.Yaml
	JSONFeeder   = feeder.Json
	TomlFeeder   = feeder.Toml
)

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = ProcessConfigDefaults(cfg)
	return cfg
}

// LoadConfig runs feeders in order, later ones overriding earlier ones, then
// applies defaults and validates the result.
func LoadConfig(feeders ...Feeder) (*Config, error) {
	cfg := &Config{}
	if len(feeders) > 0 {
		builder := config.New()
		builder.AddFeeder(feeders...)
		builder.AddStruct(cfg)
		if err := builder.Feed(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigFeederError, err)
		}
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CompressionMode parses Compression.
func (c *Config) CompressionMode() (Compression, error) {
	return ParseCompression(c.Compression)
}

// ArchiveOptions converts the staging settings to archive options.
func (c *Config) ArchiveOptions() []archive.Option {
	opts := []archive.Option{
		archive.WithPrefix(c.StagingPrefix),
		archive.WithCompressionLevel(c.CompressionLevel),
	}
	if c.TempDir != "" {
		opts = append(opts, archive.WithTempRoot(c.TempDir))
	}
	return opts
}
