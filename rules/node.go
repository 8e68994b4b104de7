package rules

import (
	"bytes"
	"encoding/json"
)

// Node is one node of the generated rules document: an object with
// insertion-ordered keys, an array, or a string leaf. MarshalJSON emits
// object keys in the order they were first set, so document output is
// deterministic and mirrors source order.
type Node struct {
	kind     nodeKind
	keys     []string
	children map[string]*Node
	items    []*Node
	value    string
}

type nodeKind int

const (
	objectNode nodeKind = iota
	arrayNode
	stringNode
)

// NewObject creates an empty object node
func NewObject() *Node {
	return &Node{kind: objectNode, children: map[string]*Node{}}
}

// NewArray creates an array node with the given items
func NewArray(items ...*Node) *Node {
	return &Node{kind: arrayNode, items: items}
}

// NewString creates a string leaf
func NewString(value string) *Node {
	return &Node{kind: stringNode, value: value}
}

// Set stores a child under key. A key set twice keeps its original
// position and takes the new value.
func (n *Node) Set(key string, child *Node) {
	if _, exists := n.children[key]; !exists {
		n.keys = append(n.keys, key)
	}

	n.children[key] = child
}

// Get returns the child stored under key
func (n *Node) Get(key string) (*Node, bool) {
	child, ok := n.children[key]

	return child, ok
}

// Keys returns the object keys in insertion order
func (n *Node) Keys() []string {
	return n.keys
}

// Len returns the number of object keys or array items
func (n *Node) Len() int {
	if n.kind == arrayNode {
		return len(n.items)
	}

	return len(n.keys)
}

// Append adds an item to an array node
func (n *Node) Append(item *Node) {
	n.items = append(n.items, item)
}

// String returns the value of a string leaf
func (n *Node) String() string {
	return n.value
}

// MarshalJSON emits the node tree with object keys in insertion order
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	if err := n.writeTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (n *Node) writeTo(buf *bytes.Buffer) error {
	switch n.kind {
	case arrayNode:
		buf.WriteByte('[')

		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := item.writeTo(buf); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case stringNode:
		encoded, err := json.Marshal(n.value)
		if err != nil {
			return err
		}

		buf.Write(encoded)
	default:
		buf.WriteByte('{')

		for i, key := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			encoded, err := json.Marshal(key)
			if err != nil {
				return err
			}

			buf.Write(encoded)
			buf.WriteByte(':')

			if err := n.children[key].writeTo(buf); err != nil {
				return err
			}
		}

		buf.WriteByte('}')
	}

	return nil
}
