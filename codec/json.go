package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type jsonCodec struct{}

// JSON encodes documents as indented JSON.
var JSON Codec = jsonCodec{}

func (jsonCodec) Name() string      { return "json" }
func (jsonCodec) Extension() string { return ".json" }

func (jsonCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	data, err := readAll(r)
	if err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrNoDocument
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
