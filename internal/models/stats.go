package models

import "strconv"

// Kind identifies the variant held by a Node.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindSection
	KindList
)

// Node is one entry in a period tree: either a scalar leaf (int, float or
// string), a named section, or an ordered list of children (record mode
// produces lists for array-typed fields). Sections preserve insertion order
// for display; lookup is always by name.
type Node struct {
	kind     Kind
	intVal   int64
	floatVal float64
	strVal   string
	keys     []string
	children map[string]*Node
	items    []*Node
}

func NewInt(v int64) *Node     { return &Node{kind: KindInt, intVal: v} }
func NewFloat(v float64) *Node { return &Node{kind: KindFloat, floatVal: v} }
func NewString(v string) *Node { return &Node{kind: KindString, strVal: v} }
func NewSection() *Node        { return &Node{kind: KindSection, children: make(map[string]*Node)} }
func NewList(items []*Node) *Node { return &Node{kind: KindList, items: items} }

func (n *Node) Kind() Kind {
	if n == nil {
		return KindInvalid
	}
	return n.kind
}

// Int returns the integer value. The second return is false for any other kind.
func (n *Node) Int() (int64, bool) {
	if n == nil || n.kind != KindInt {
		return 0, false
	}
	return n.intVal, true
}

// Float returns the node as a float64. Integer leaves convert; everything
// else reports false.
func (n *Node) Float() (float64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.kind {
	case KindFloat:
		return n.floatVal, true
	case KindInt:
		return float64(n.intVal), true
	default:
		return 0, false
	}
}

func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.kind {
	case KindString:
		return n.strVal
	case KindInt:
		return strconv.FormatInt(n.intVal, 10)
	case KindFloat:
		return strconv.FormatFloat(n.floatVal, 'g', -1, 64)
	default:
		return ""
	}
}

// Child looks up a named child of a section. Nil-safe; non-sections have no
// children.
func (n *Node) Child(name string) (*Node, bool) {
	if n == nil || n.kind != KindSection {
		return nil, false
	}
	c, ok := n.children[name]
	return c, ok
}

// SetChild adds or replaces a named child, keeping first-insertion order.
func (n *Node) SetChild(name string, child *Node) {
	if n == nil || n.kind != KindSection {
		return
	}
	if _, exists := n.children[name]; !exists {
		n.keys = append(n.keys, name)
	}
	n.children[name] = child
}

// Keys returns section child names in insertion order.
func (n *Node) Keys() []string {
	if n == nil || n.kind != KindSection {
		return nil
	}
	return n.keys
}

// Items returns list children in order.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != KindList {
		return nil
	}
	return n.items
}

// Len reports the number of children for sections and lists, 0 otherwise.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindSection:
		return len(n.children)
	case KindList:
		return len(n.items)
	default:
		return 0
	}
}
