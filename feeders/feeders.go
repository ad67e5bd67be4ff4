// Package feeders reads document settings from YAML, TOML and JSON files and
// from environment variables. Every feeder fills a struct through Feed; file
// feeders can also fill it from one top level key with FeedKey.
package feeders

import "fmt"

// Feeder fills target from one source.
type Feeder interface {
	Feed(target any) error
}

// KeyFeeder can fill target from a single top level key of its source.
type KeyFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}

// Section feeds from the Key section of Source, so document settings can sit
// inside a larger application config:
//
//	projects:
//	  codec: yaml
//	  compressionLevel: 9
type Section struct {
	Source KeyFeeder
	Key    string
}

// Feed fills target from the section. A missing section leaves it unchanged.
func (s Section) Feed(target any) error {
	return s.Source.FeedKey(s.Key, target)
}

// feedKey reads the whole source into a map and re-encodes the value under
// key into target.
func feedKey(
	feeder Feeder,
	key string,
	target any,
	marshal func(any) ([]byte, error),
	unmarshal func([]byte, any) error,
	fileType string,
) error {
	var all map[string]any
	if err := feeder.Feed(&all); err != nil {
		return fmt.Errorf("failed to read %s: %w", fileType, err)
	}

	value, exists := all[key]
	if !exists {
		return nil
	}

	data, err := marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", fileType, err)
	}
	if err := unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", fileType, err)
	}
	return nil
}
