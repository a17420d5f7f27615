// Package shaped implements C2: vectors and matrices of field
// elements with shape checks and elementwise operations, grounded on
// the teacher's frame-data-plus-type-descriptor split (one flat
// backing slice, shape carried alongside it as metadata rather than
// nested containers).
package shaped

import (
	"fmt"

	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
)

// Value is a shaped value: dimensions paired with a flat, row-major
// backing slice. prod(Dims) == len(Data) is an invariant of every
// Value returned by this package.
//
// Scalars canonically carry Dims = nil (the empty shape); prod(nil)
// is defined as 1 by the empty-product convention, resolving the
// Open Question in spec.md §9.
type Value struct {
	Dims []int
	Data []field.Element
}

// Prod computes the product of dims, 1 for the empty shape.
func Prod(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// New builds a Value, checking prod(dims) == len(data).
func New(dims []int, data []field.Element) (Value, error) {
	if Prod(dims) != len(data) {
		return Value{}, diag.Errorf(diag.KindShape, "shape %s does not match %d values", dimString(dims), len(data))
	}
	return Value{Dims: dims, Data: data}, nil
}

// Scalar builds a scalar Value (Dims = nil).
func Scalar(e field.Element) Value {
	return Value{Dims: nil, Data: []field.Element{e}}
}

// IsScalar reports whether v holds exactly one element.
func (v Value) IsScalar() bool { return Prod(v.Dims) == 1 }

// AsScalar returns the single element of a scalar Value.
func (v Value) AsScalar() (field.Element, error) {
	if !v.IsScalar() {
		return nil, diag.Errorf(diag.KindShape, "expected a scalar, got shape %s", dimString(v.Dims))
	}
	return v.Data[0], nil
}

func dimString(dims []int) string {
	return fmt.Sprintf("%v", dims)
}

func shapesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func elementwise(a, b Value, op func(x, y field.Element) (field.Element, error)) (Value, error) {
	if !shapesEqual(a.Dims, b.Dims) {
		return Value{}, diag.Errorf(diag.KindShape, "shape mismatch: %s vs %s", dimString(a.Dims), dimString(b.Dims))
	}
	out := make([]field.Element, len(a.Data))
	for i := range a.Data {
		r, err := op(a.Data[i], b.Data[i])
		if err != nil {
			return Value{}, err
		}
		out[i] = r
	}
	return Value{Dims: a.Dims, Data: out}, nil
}

// Add, Sub, Mul, Div require identical Dims on both operands —
// scalar broadcasting is deliberately not implicit (spec.md §4.1).

func (v Value) Add(o Value) (Value, error) {
	return elementwise(v, o, func(x, y field.Element) (field.Element, error) { return x.Add(y), nil })
}

func (v Value) Sub(o Value) (Value, error) {
	return elementwise(v, o, func(x, y field.Element) (field.Element, error) { return x.Sub(y), nil })
}

func (v Value) Mul(o Value) (Value, error) {
	return elementwise(v, o, func(x, y field.Element) (field.Element, error) { return x.Mul(y), nil })
}

// Inverse is elementwise unary inversion; Div below multiplies by the
// inverse of its operand.
func (v Value) Inverse() (Value, error) {
	out := make([]field.Element, len(v.Data))
	for i, e := range v.Data {
		inv, err := e.Inverse()
		if err != nil {
			return Value{}, err
		}
		out[i] = inv
	}
	return Value{Dims: v.Dims, Data: out}, nil
}

func (v Value) Div(o Value) (Value, error) {
	oi, err := o.Inverse()
	if err != nil {
		return Value{}, err
	}
	return v.Mul(oi)
}

// Retrieve computes the row-major flat offset of indices and returns
// either a scalar (len(indices) == len(v.Dims)) or the remaining
// sub-shape, per spec.md §4.1:
// offset = Σⱼ indicesⱼ · Πₖ>ⱼ dimensionsₖ.
func (v Value) Retrieve(indices []int) (Value, error) {
	if len(indices) > len(v.Dims) {
		return Value{}, diag.Errorf(diag.KindShape, "too many indices for shape %s", dimString(v.Dims))
	}
	offset := 0
	for j, idx := range indices {
		stride := Prod(v.Dims[j+1:])
		if idx < 0 || idx >= v.Dims[j] {
			return Value{}, diag.Errorf(diag.KindShape, "index %d out of range for dimension %d", idx, v.Dims[j])
		}
		offset += idx * stride
	}
	subDims := v.Dims[len(indices):]
	subLen := Prod(subDims)
	return Value{Dims: subDims, Data: v.Data[offset : offset+subLen]}, nil
}
