// Package values provides an ordered YAML mapping document used for chart
// metadata and values files, plus helpers to load and persist it.
//
// A Document keeps key order and comments as they appear on disk, so a file
// read and written back without modification is byte-stable.
package values

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is an ordered mapping from string keys to arbitrary YAML values.
// The zero value is not usable; use New, FromMap, or Read.
type Document struct {
	node *yaml.Node
}

// New returns an empty Document.
func New() *Document {
	return &Document{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// FromMap builds a Document from a Go map. Keys are emitted in the sorted
// order yaml.v3 uses for maps.
func FromMap(m map[string]interface{}) (*Document, error) {
	if len(m) == 0 {
		return New(), nil
	}

	n := &yaml.Node{}
	if err := n.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding values: %w", err)
	}

	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("encoding values: expected mapping, got kind %d", n.Kind)
	}

	return &Document{node: n}, nil
}

// Parse decodes YAML bytes into a Document. Empty input and content whose
// root is not a mapping yield an empty Document. Malformed YAML is an error.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return New(), nil
	}

	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return New(), nil
	}

	return &Document{node: body}, nil
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	return len(d.node.Content) / 2
}

// IsEmpty reports whether the document has no keys.
func (d *Document) IsEmpty() bool {
	return d.Len() == 0
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.Len())

	for i := 0; i+1 < len(d.node.Content); i += 2 {
		keys = append(keys, d.node.Content[i].Value)
	}

	return keys
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	return d.index(key) >= 0
}

// Set assigns v to key. An existing key keeps its position; a new key is
// appended. v may be another *Document, which is deep-copied.
func (d *Document) Set(key string, v interface{}) error {
	var valueNode *yaml.Node

	switch val := v.(type) {
	case *Document:
		valueNode = cloneNode(val.node)
	case *yaml.Node:
		valueNode = cloneNode(val)
	default:
		valueNode = &yaml.Node{}
		if err := valueNode.Encode(v); err != nil {
			return fmt.Errorf("encoding value for key %q: %w", key, err)
		}
	}

	if i := d.index(key); i >= 0 {
		d.node.Content[i+1] = valueNode
		return nil
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	d.node.Content = append(d.node.Content, keyNode, valueNode)

	return nil
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	i := d.index(key)
	if i < 0 {
		return false
	}

	d.node.Content = append(d.node.Content[:i], d.node.Content[i+2:]...)

	return true
}

// Decode decodes the value stored at key into out. It returns false when
// the key is absent.
func (d *Document) Decode(key string, out interface{}) (bool, error) {
	i := d.index(key)
	if i < 0 {
		return false, nil
	}

	if err := d.node.Content[i+1].Decode(out); err != nil {
		return true, fmt.Errorf("decoding key %q: %w", key, err)
	}

	return true, nil
}

// Sub returns the mapping stored at key as a Document copy. It returns
// false when the key is absent or does not hold a mapping.
func (d *Document) Sub(key string) (*Document, bool) {
	i := d.index(key)
	if i < 0 {
		return nil, false
	}

	v := d.node.Content[i+1]
	if v.Kind != yaml.MappingNode {
		return nil, false
	}

	return &Document{node: cloneNode(v)}, true
}

// ToMap decodes the document into a plain Go map.
func (d *Document) ToMap() (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if d.IsEmpty() {
		return out, nil
	}

	if err := d.node.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return out, nil
}

// Bytes serializes the document as YAML with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(d.node); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	return buf.Bytes(), nil
}

// index returns the Content index of key's key node, or -1.
func (d *Document) index(key string) int {
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value == key {
			return i
		}
	}

	return -1
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}

	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}

	// Alias targets point into the source tree; they stay shared.
	return &c
}
