package pqgram

import "fmt"

// Intersection returns the size of the multiset intersection of a and b.
// Equal grams pair up one-to-one; a gram present twice in a and once in b
// counts once.
func Intersection(a, b *Profile) int {
	n := 0
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		switch c := a.grams[i].Compare(b.grams[j]); {
		case c == 0:
			n++
			i++
			j++
		case c < 0:
			i++
		default:
			j++
		}
	}
	return n
}

// Distance returns the normalised PQ-gram distance 1 - 2|A∩B| / (|A|+|B|).
// Identical profiles are at 0, profiles sharing nothing at 1. Two empty
// profiles are at 0.
//
// The value is only meaningful when both profiles share (p, q); Distance does
// not check this, call Compatible first when profiles come from elsewhere.
func Distance(a, b *Profile) float64 {
	_, d := Measure(a, b)
	return d
}

// Measure returns the intersection size and the distance from a single scan.
func Measure(a, b *Profile) (shared int, distance float64) {
	union := a.Len() + b.Len()
	if union == 0 {
		return 0, 0
	}
	shared = Intersection(a, b)
	return shared, 1.0 - 2.0*float64(shared)/float64(union)
}

// Compatible returns ErrShapeMismatch if a and b were built with different
// (p, q).
func Compatible(a, b *Profile) error {
	if a.P() != b.P() || a.Q() != b.Q() {
		return fmt.Errorf("%w: (%d,%d) vs (%d,%d)", ErrShapeMismatch, a.P(), a.Q(), b.P(), b.Q())
	}
	return nil
}
