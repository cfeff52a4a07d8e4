package pqgram

import "strings"

// Label is one entry of a gram. The zero Label is the placeholder used to pad
// ancestor and sibling windows at tree boundaries; it never equals a real
// label, not even one spelled "*".
type Label struct {
	name string
	real bool
}

// Placeholder is the out-of-band padding label.
var Placeholder Label

// Name returns the real label s.
func Name(s string) Label {
	return Label{name: s, real: true}
}

// IsPlaceholder reports whether l is the padding label.
func (l Label) IsPlaceholder() bool {
	return !l.real
}

// Value returns the label text, or "" for the placeholder.
func (l Label) Value() string {
	return l.name
}

// String renders the label for display. The placeholder prints as "*".
func (l Label) String() string {
	if !l.real {
		return "*"
	}
	return l.name
}

// compareLabels orders the placeholder before every real label, and real
// labels by byte-wise string comparison.
func compareLabels(a, b Label) int {
	switch {
	case a.real == b.real:
		return strings.Compare(a.name, b.name)
	case !a.real:
		return -1
	default:
		return 1
	}
}

// Gram is an immutable sequence of p ancestor labels followed by q sibling
// labels.
type Gram struct {
	labels []Label
	p      int
}

// NewGram builds a gram from p ancestor labels followed by sibling labels.
// The labels are copied.
func NewGram(p int, labels ...Label) Gram {
	cp := make([]Label, len(labels))
	copy(cp, labels)
	if p > len(cp) {
		p = len(cp)
	}
	return Gram{labels: cp, p: p}
}

// Len returns p+q.
func (g Gram) Len() int {
	return len(g.labels)
}

// At returns the i-th label.
func (g Gram) At(i int) Label {
	return g.labels[i]
}

// Labels returns a copy of the gram's labels.
func (g Gram) Labels() []Label {
	cp := make([]Label, len(g.labels))
	copy(cp, g.labels)
	return cp
}

// Ancestors returns a copy of the ancestor part (root-most first).
func (g Gram) Ancestors() []Label {
	return append([]Label(nil), g.labels[:g.p]...)
}

// Siblings returns a copy of the sibling window.
func (g Gram) Siblings() []Label {
	return append([]Label(nil), g.labels[g.p:]...)
}

// Strings renders every label, placeholders as "*".
func (g Gram) Strings() []string {
	out := make([]string, len(g.labels))
	for i, l := range g.labels {
		out[i] = l.String()
	}
	return out
}

// Compare orders grams element-wise. A gram that is a strict prefix of another
// sorts first.
func (g Gram) Compare(other Gram) int {
	n := min(len(g.labels), len(other.labels))
	for i := 0; i < n; i++ {
		if c := compareLabels(g.labels[i], other.labels[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(g.labels) < len(other.labels):
		return -1
	case len(g.labels) > len(other.labels):
		return 1
	}
	return 0
}

// Equal reports whether both grams hold the same labels.
func (g Gram) Equal(other Gram) bool {
	if len(g.labels) != len(other.labels) {
		return false
	}
	for i := range g.labels {
		if g.labels[i] != other.labels[i] {
			return false
		}
	}
	return true
}

// String renders the gram as a parenthesised tuple, e.g. (*,a,*,*,*).
func (g Gram) String() string {
	return "(" + strings.Join(g.Strings(), ",") + ")"
}
