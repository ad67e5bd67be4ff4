package feeders

import (
	"github.com/BurntSushi/toml"
	"github.com/golobby/config/v3/pkg/feeder"
)

// TomlFeeder reads a TOML file.
type TomlFeeder struct {
	feeder.Toml
}

// NewTomlFeeder returns a feeder for the TOML file at filePath.
func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{feeder.Toml{Path: filePath}}
}

// FeedKey fills target from the top level table key of the file.
func (t TomlFeeder) FeedKey(key string, target any) error {
	return feedKey(t, key, target, toml.Marshal, toml.Unmarshal, "TOML file")
}
