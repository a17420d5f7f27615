// Package field provides the F abstraction of spec.md §3/C1: opaque
// scalars with 0, 1, +, -, ×, ⁻¹, √, legendre, and serialization. Two
// concrete backends are provided — Prime (a true finite field) and
// Ring (a polynomial-ring element with scalar-extraction guards) —
// behind one Element interface so the rest of the compiler (C2, C7,
// C8, C9) never branches on which field it was built with.
package field

// Element is an opaque scalar of F. Every arithmetic method returns a
// fresh Element; none mutate the receiver.
type Element interface {
	Add(Element) Element
	Sub(Element) Element
	Mul(Element) Element
	Neg() Element
	Inverse() (Element, error)
	Sqrt() (Element, error)
	Legendre() int
	IsZero() bool
	IsOne() bool
	Equal(Element) bool
	Bytes() []byte
	String() string

	// ToUint64 extracts the element's value as a small non-negative
	// integer, for contexts that need a host int out of F (loop
	// bounds, vector lengths, indices) without assuming anything
	// about how a backend's Bytes() is encoded. Errors if the value
	// has no such representation (e.g. a non-constant ring element,
	// or a value too large to fit).
	ToUint64() (uint64, error)
}

// Field is a factory for the constants and literal constructors of a
// concrete F. AVM and witness code take a Field, never a concrete
// type, to stay generic over F per the design note in spec.md §9.
type Field interface {
	Zero() Element
	One() Element
	FromUint64(uint64) Element
	FromBytes([]byte) (Element, error)
	Name() string
}
