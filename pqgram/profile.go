// Package pqgram computes the PQ-gram distance between ordered labeled trees.
//
// A tree is summarised as a Profile: the sorted multiset of its PQ-grams, each
// gram holding a node's p-long ancestor chain and a q-long window over its
// children. Two profiles are compared with a linear merge scan, which gives an
// approximation of tree edit distance in [0, 1].
//
// Profiles are immutable and every function in this package is safe for
// concurrent use. Distances are only meaningful between profiles built with
// the same (p, q); see Compatible.
package pqgram

import (
	"fmt"
	"iter"
	"sort"
	"strings"
)

// Recommended gram shape.
const (
	DefaultP = 2
	DefaultQ = 3
)

// Profile is the sorted gram sequence of one tree.
type Profile struct {
	p, q  int
	grams []Gram
}

type frame struct {
	node Node
	// ancestor window of node's parent; shared read-only between siblings
	anc []Label
}

// Build computes the profile of the tree rooted at root.
//
// The walk uses an explicit stack, so very deep trees do not exhaust the
// goroutine stack. On error no profile is returned.
func Build(root Node, p, q int) (*Profile, error) {
	if p < 1 || q < 1 {
		return nil, fmt.Errorf("%w: p=%d q=%d, both must be >= 1", ErrInvalidParameter, p, q)
	}
	if isNil(root) {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidInput)
	}

	var grams []Gram
	sib := make([]Label, q)
	stack := []frame{{node: root, anc: make([]Label, p)}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		anc := shifted(f.anc, Name(f.node.Label()))
		clear(sib)

		kids := f.node.Children()
		if len(kids) == 0 {
			grams = append(grams, join(p, anc, sib))
			continue
		}

		for _, kid := range kids {
			if isNil(kid) {
				return nil, fmt.Errorf("%w: nil child of %q", ErrInvalidInput, f.node.Label())
			}
			shiftInPlace(sib, Name(kid.Label()))
			grams = append(grams, join(p, anc, sib))
		}
		for i := 1; i < q; i++ {
			shiftInPlace(sib, Placeholder)
			grams = append(grams, join(p, anc, sib))
		}

		// Reverse push keeps the walk in document order.
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: kids[i], anc: anc})
		}
	}

	sort.Slice(grams, func(i, j int) bool {
		return grams[i].Compare(grams[j]) < 0
	})

	return &Profile{p: p, q: q, grams: grams}, nil
}

// BuildDefault builds a profile with DefaultP and DefaultQ.
func BuildDefault(root Node) (*Profile, error) {
	return Build(root, DefaultP, DefaultQ)
}

// shifted returns a new window: w without its oldest entry, with l appended.
func shifted(w []Label, l Label) []Label {
	out := make([]Label, len(w))
	copy(out, w[1:])
	out[len(out)-1] = l
	return out
}

func shiftInPlace(w []Label, l Label) {
	copy(w, w[1:])
	w[len(w)-1] = l
}

func join(p int, anc, sib []Label) Gram {
	labels := make([]Label, 0, len(anc)+len(sib))
	labels = append(labels, anc...)
	labels = append(labels, sib...)
	return Gram{labels: labels, p: p}
}

// P returns the ancestor window length the profile was built with.
func (pr *Profile) P() int {
	if pr == nil {
		return 0
	}
	return pr.p
}

// Q returns the sibling window length the profile was built with.
func (pr *Profile) Q() int {
	if pr == nil {
		return 0
	}
	return pr.q
}

// Len returns the number of grams. A nil profile has none.
func (pr *Profile) Len() int {
	if pr == nil {
		return 0
	}
	return len(pr.grams)
}

// At returns the i-th gram in sort order.
func (pr *Profile) At(i int) Gram {
	return pr.grams[i]
}

// All iterates the grams in sort order.
func (pr *Profile) All() iter.Seq2[int, Gram] {
	return func(yield func(int, Gram) bool) {
		for i := 0; i < pr.Len(); i++ {
			if !yield(i, pr.grams[i]) {
				return
			}
		}
	}
}

// Grams returns a copy of the gram slice.
func (pr *Profile) Grams() []Gram {
	if pr == nil {
		return nil
	}
	return append([]Gram(nil), pr.grams...)
}

// Equal reports whether both profiles have the same shape and the same grams
// in the same order.
func (pr *Profile) Equal(other *Profile) bool {
	if pr.P() != other.P() || pr.Q() != other.Q() || pr.Len() != other.Len() {
		return false
	}
	for i := 0; i < pr.Len(); i++ {
		if !pr.grams[i].Equal(other.grams[i]) {
			return false
		}
	}
	return true
}

func (pr *Profile) String() string {
	parts := make([]string, pr.Len())
	for i := range parts {
		parts[i] = pr.grams[i].String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
