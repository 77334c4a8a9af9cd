package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type nodeKind int

const (
	scalarNode nodeKind = iota
	objectNode
	arrayNode
)

// node is a JSON value that keeps object keys in document order.
type node struct {
	kind nodeKind

	// scalar: nil, bool, json.Number or string
	value any

	keys   []string
	fields []*node
	items  []*node
}

// toTree encodes v as JSON and decodes it back into ordered nodes.
func toTree(v any) (*node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return readNode(dec)
}

func readNode(dec *json.Decoder) (*node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &node{kind: objectNode}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, errors.New("object key is not a string")
				}
				child, err := readNode(dec)
				if err != nil {
					return nil, err
				}
				n.keys = append(n.keys, key)
				n.fields = append(n.fields, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &node{kind: arrayNode}
			for dec.More() {
				child, err := readNode(dec)
				if err != nil {
					return nil, err
				}
				n.items = append(n.items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return &node{kind: scalarNode, value: t}, nil
	}
}

// isPrimitive reports whether n is a scalar.
func (n *node) isPrimitive() bool {
	return n.kind == scalarNode
}

// tabularFields returns the shared keys when every item of an array is an
// object with the same keys in the same order and only primitive values.
func (n *node) tabularFields() ([]string, bool) {
	if n.kind != arrayNode || len(n.items) == 0 {
		return nil, false
	}
	first := n.items[0]
	if first.kind != objectNode || len(first.keys) == 0 {
		return nil, false
	}
	for _, it := range n.items {
		if it.kind != objectNode || len(it.keys) != len(first.keys) {
			return nil, false
		}
		for i, k := range it.keys {
			if k != first.keys[i] || !it.fields[i].isPrimitive() {
				return nil, false
			}
		}
	}
	return first.keys, true
}

// allPrimitive reports whether every array item is a scalar.
func (n *node) allPrimitive() bool {
	for _, it := range n.items {
		if !it.isPrimitive() {
			return false
		}
	}
	return true
}
