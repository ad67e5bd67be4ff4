package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

// YAML encodes documents as YAML.
var YAML Codec = yamlCodec{}

func (yamlCodec) Name() string      { return "yaml" }
func (yamlCodec) Extension() string { return ".yaml" }

func (yamlCodec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}

func (yamlCodec) Decode(r io.Reader, v any) error {
	data, err := readAll(r)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	if isNullNode(&node) {
		return ErrNoDocument
	}
	if err := node.Decode(v); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func isNullNode(node *yaml.Node) bool {
	if node.Kind == 0 {
		return true
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return true
		}
		node = node.Content[0]
	}
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
