package projects

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/projects/codec"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	assert.Equal(t, "projects", cfg.StagingPrefix)
	assert.Equal(t, "compressed", cfg.Compression)
	assert.Equal(t, "xml", cfg.Codec)
	assert.Equal(t, 100*time.Millisecond, cfg.WatchDebounce)
	assert.Empty(t, cfg.TempDir)
	assert.Empty(t, cfg.PrimaryMember)
	assert.Zero(t, cfg.CompressionLevel)
	require.NoError(t, ValidateConfig(cfg))

	mode, err := cfg.CompressionMode()
	require.NoError(t, err)
	assert.Equal(t, Compressed, mode)
}

func TestLoadConfig_NoFeeders(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Files(t *testing.T) {
	t.Parallel()

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, "projects.yaml", `
codec: yaml
compression: uncompressed
compressionLevel: 9
primaryMember: Drawing.yaml
watchDebounce: 250ms
`)
		cfg, err := LoadConfig(YamlFeeder{Path: path})
		require.NoError(t, err)
		assert.Equal(t, "yaml", cfg.Codec)
		assert.Equal(t, 9, cfg.CompressionLevel)
		assert.Equal(t, "Drawing.yaml", cfg.PrimaryMember)
		assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
		assert.Equal(t, "projects", cfg.StagingPrefix, "unset fields get defaults")

		mode, err := cfg.CompressionMode()
		require.NoError(t, err)
		assert.Equal(t, Uncompressed, mode)
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, "projects.json", `{"codec": "cbor", "stagingPrefix": "cad"}`)
		cfg, err := LoadConfig(JSONFeeder{Path: path})
		require.NoError(t, err)
		assert.Equal(t, "cbor", cfg.Codec)
		assert.Equal(t, "cad", cfg.StagingPrefix)
	})

	t.Run("toml", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, "projects.toml", "codec = \"json\"\ncompressionLevel = 3\n")
		cfg, err := LoadConfig(TomlFeeder{Path: path})
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.Codec)
		assert.Equal(t, 3, cfg.CompressionLevel)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(YamlFeeder{Path: filepath.Join(t.TempDir(), "absent.yaml")})
		assert.ErrorIs(t, err, ErrConfigFeederError)
	})
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "projects.yaml", "codec: yaml\ncompressionLevel: 2\n")
	t.Setenv("PROJECTS_CODEC", "json")
	t.Setenv("PROJECTS_STAGING_PREFIX", "from-env")

	cfg, err := LoadConfig(YamlFeeder{Path: path}, EnvFeeder{})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Codec)
	assert.Equal(t, "from-env", cfg.StagingPrefix)
	assert.Equal(t, 2, cfg.CompressionLevel)
}

func TestValidateConfig_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown codec", func(c *Config) { c.Codec = "toml" }},
		{"unknown compression", func(c *Config) { c.Compression = "zip" }},
		{"level too high", func(c *Config) { c.CompressionLevel = 12 }},
		{"negative level", func(c *Config) { c.CompressionLevel = -2 }},
		{"prefix with separator", func(c *Config) { c.StagingPrefix = "a/b" }},
		{"nested primary member", func(c *Config) { c.PrimaryMember = `docs\Project.xml` }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, ValidateConfig(cfg), ErrConfigValidationFailed)
		})
	}
}

type hookedConfig struct {
	Name string `default:"x"`
	err  error
}

func (c *hookedConfig) Validate() error { return c.err }

func TestValidateConfig_Hook(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateConfig(&hookedConfig{}))

	cfg := &hookedConfig{err: assert.AnError}
	err := ValidateConfig(cfg)
	assert.ErrorIs(t, err, ErrConfigValidationFailed)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "x", cfg.Name)
}

func TestProcessConfigDefaults(t *testing.T) {
	t.Parallel()

	type inner struct {
		Port int `default:"8080"`
	}
	type sample struct {
		Name     string        `default:"doc"`
		Enabled  bool          `default:"true"`
		Ratio    float64       `default:"0.5"`
		Tags     []string      `default:"a, b"`
		Timeout  time.Duration `default:"2s"`
		Kept     string        `default:"ignored"`
		Inner    inner
		InnerPtr *inner
		When     time.Time
	}

	cfg := &sample{Kept: "set", InnerPtr: &inner{}}
	require.NoError(t, ProcessConfigDefaults(cfg))
	assert.Equal(t, "doc", cfg.Name)
	assert.True(t, cfg.Enabled)
	assert.InDelta(t, 0.5, cfg.Ratio, 1e-9)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "set", cfg.Kept)
	assert.Equal(t, 8080, cfg.Inner.Port)
	assert.Equal(t, 8080, cfg.InnerPtr.Port)
	assert.True(t, cfg.When.IsZero())

	assert.ErrorIs(t, ProcessConfigDefaults(nil), ErrConfigNil)
	assert.ErrorIs(t, ProcessConfigDefaults(sample{}), ErrConfigNotPointer)
	n := 3
	assert.ErrorIs(t, ProcessConfigDefaults(&n), ErrConfigNotStruct)

	type badDuration struct {
		D time.Duration `default:"soon"`
	}
	assert.ErrorIs(t, ProcessConfigDefaults(&badDuration{}), ErrDefaultValueParseError)

	type badKind struct {
		M map[string]string `default:"a=b"`
	}
	assert.ErrorIs(t, ProcessConfigDefaults(&badKind{}), ErrUnsupportedTypeForDefault)
}

func TestWithConfig(t *testing.T) {
	t.Parallel()
	staging := t.TempDir()
	cfg := DefaultConfig()
	cfg.Codec = "json"
	cfg.PrimaryMember = "Model.json"
	cfg.TempDir = staging
	cfg.CompressionLevel = 9
	cfg.WatchDebounce = 20 * time.Millisecond
	require.NoError(t, ValidateConfig(cfg))

	mode, err := cfg.CompressionMode()
	require.NoError(t, err)
	doc, err := New[testProject](mode, WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, codec.JSON, doc.Codec())
	assert.Equal(t, "Model.json", doc.PrimaryMember())
	assert.Equal(t, 20*time.Millisecond, doc.watchDebounce)

	doc.Person.SetName("configured")
	path := filepath.Join(t.TempDir(), "doc.proj")
	require.NoError(t, doc.SaveAs(path))

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging under the configured temp dir is cleaned up")

	loaded, err := Open[testProject](path, mode, WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, "configured", loaded.Person.Name())

	_, err = New[testProject](Compressed, WithConfig(nil))
	assert.ErrorIs(t, err, ErrConfigNil)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Compression = "uncompressed"
	cfg.Codec = "yaml"

	doc, err := NewFromConfig[testProject](cfg)
	require.NoError(t, err)
	assert.Equal(t, Uncompressed, doc.Compression())
	assert.Equal(t, codec.YAML, doc.Codec())
	assert.False(t, doc.Modified())

	cfg.Compression = "compressed"
	doc, err = NewFromConfig[testProject](cfg, WithPrimaryMember("Main.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Compressed, doc.Compression())
	assert.Equal(t, "Main.yaml", doc.PrimaryMember(), "options run after the config")

	cfg.Compression = "zipped"
	_, err = NewFromConfig[testProject](cfg)
	assert.ErrorIs(t, err, ErrInvalidCompression)

	_, err = NewFromConfig[testProject](nil)
	assert.ErrorIs(t, err, ErrConfigNil)
}

func TestGenerateSampleConfig(t *testing.T) {
	t.Parallel()

	data, err := GenerateSampleConfig(&Config{}, "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "codec: xml")
	assert.Contains(t, string(data), "stagingPrefix: projects")

	data, err = GenerateSampleConfig(&Config{}, "json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"compression": "compressed"`)

	data, err = GenerateSampleConfig(&Config{}, "TOML")
	require.NoError(t, err)
	assert.Contains(t, string(data), `codec = "xml"`)

	_, err = GenerateSampleConfig(&Config{}, "ini")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, SaveSampleConfig(&Config{}, "yaml", path))
	loaded, err := LoadConfig(YamlFeeder{Path: path})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}
