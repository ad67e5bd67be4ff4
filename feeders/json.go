package feeders

import (
	"encoding/json"

	"github.com/golobby/config/v3/pkg/feeder"
)

// JSONFeeder reads a JSON file.
type JSONFeeder struct {
	feeder.Json
}

// NewJSONFeeder returns a feeder for the JSON file at filePath.
func NewJSONFeeder(filePath string) JSONFeeder {
	return JSONFeeder{feeder.Json{Path: filePath}}
}

// FeedKey fills target from the top level key of the file.
func (j JSONFeeder) FeedKey(key string, target any) error {
	return feedKey(j, key, target, json.Marshal, json.Unmarshal, "JSON file")
}
