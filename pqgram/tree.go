package pqgram

import (
	"reflect"
	"strings"
)

// Node is the ordered labeled tree the builder consumes. Sibling order is
// significant.
type Node interface {
	Label() string
	Children() []Node
}

// Tree is a simple in-memory Node.
type Tree struct {
	label    string
	children []*Tree
}

// NewTree returns a node with the given label and children.
func NewTree(label string, kids ...*Tree) *Tree {
	t := &Tree{label: label}
	t.children = append(t.children, kids...)
	return t
}

// AddKid appends kid as the last child and returns t for chaining.
func (t *Tree) AddKid(kid *Tree) *Tree {
	t.children = append(t.children, kid)
	return t
}

// Label returns the node label.
func (t *Tree) Label() string {
	return t.label
}

// Children returns the children as Nodes.
func (t *Tree) Children() []Node {
	if len(t.children) == 0 {
		return nil
	}
	out := make([]Node, len(t.children))
	for i, c := range t.children {
		out[i] = c
	}
	return out
}

// Kids returns the concrete children. The slice must not be modified.
func (t *Tree) Kids() []*Tree {
	return t.children
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	if t == nil {
		return 0
	}
	n := 0
	stack := []*Tree{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, cur.children...)
	}
	return n
}

// String renders the tree in bracket notation, e.g. a(b,c(d)).
func (t *Tree) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	writeTree(&b, t)
	return b.String()
}

func writeTree(b *strings.Builder, t *Tree) {
	b.WriteString(t.label)
	if len(t.children) == 0 {
		return
	}
	b.WriteByte('(')
	for i, c := range t.children {
		if i > 0 {
			b.WriteByte(',')
		}
		writeTree(b, c)
	}
	b.WriteByte(')')
}

// isNil reports a nil interface or a Node holding a nil pointer, map, slice
// or func of any implementation.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	if t, ok := n.(*Tree); ok {
		return t == nil
	}
	switch v := reflect.ValueOf(n); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
