// Package codec serializes documents to and from the member files of a
// project archive.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Codec encodes a document object graph to a stream and decodes it back.
type Codec interface {
	// Name is the identifier used in configuration, e.g. "xml".
	Name() string
	// Extension is the file extension of encoded output, including the dot.
	Extension() string
	Encode(w io.Writer, v any) error
	// Decode fills v from r. Input with no object yields ErrNoDocument.
	Decode(r io.Reader, v any) error
}

var registry = map[string]Codec{
	XML.Name():  XML,
	JSON.Name(): JSON,
	YAML.Name(): YAML,
	CBOR.Name(): CBOR,
}

// Lookup returns the codec registered under name. Names are case-insensitive.
func Lookup(name string) (Codec, error) {
	c, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// readAll buffers r and reports ErrNoDocument when nothing but whitespace
// was read.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoDocument
	}
	return data, nil
}
