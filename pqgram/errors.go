package pqgram

import "errors"

var (
	// ErrInvalidParameter is returned when p or q is less than 1.
	ErrInvalidParameter = errors.New("pqgram: invalid parameter")

	// ErrInvalidInput is returned for a nil root or a nil child node.
	ErrInvalidInput = errors.New("pqgram: invalid input")

	// ErrShapeMismatch is returned by Compatible when two profiles were built
	// with different (p, q).
	ErrShapeMismatch = errors.New("pqgram: profile shape mismatch")
)
