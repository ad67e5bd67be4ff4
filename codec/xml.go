package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

type xmlCodec struct{}

// XML encodes documents as indented XML with a standard header.
var XML Codec = xmlCodec{}

func (xmlCodec) Name() string      { return "xml" }
func (xmlCodec) Extension() string { return ".xml" }

func (xmlCodec) Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (xmlCodec) Decode(r io.Reader, v any) error {
	data, err := readAll(r)
	if err != nil {
		return err
	}
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrNoDocument
		}
		return fmt.Errorf("decode xml: %w", err)
	}
	return nil
}
