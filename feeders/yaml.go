package feeders

import (
	"github.com/golobby/config/v3/pkg/feeder"
	"gopkg.in/yaml.v3"
)

// YamlFeeder reads a YAML file.
type YamlFeeder struct {
	feeder.Yaml
}

// NewYamlFeeder returns a feeder for the YAML file at filePath.
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{feeder.Yaml{Path: filePath}}
}

// FeedKey fills target from the top level key of the file.
func (y YamlFeeder) FeedKey(key string, target any) error {
	return feedKey(y, key, target, yaml.Marshal, yaml.Unmarshal, "YAML file")
}
