package field

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/zkavm/avmc/internal/diag"
)

// ringCtx is the decimal arithmetic context shared by every Ring
// operation. Results are rounded to 50 significant decimal digits,
// fewer than the 77 digits of the bn254 scalar modulus.
var ringCtx = apd.BaseContext.WithPrecision(50)

// Ring is a dense polynomial-ring element: coeffs[i] is the
// coefficient of x^i. It realizes the "polynomial ring element"
// variant of C1 noted in spec.md §3/§9 — repurposing
// cockroachdb/apd/v3 (already present in the retrieval pack via
// cuelang.org/go) as polynomial coefficients rather than decimal
// config values.
type Ring struct {
	coeffs []apd.Decimal
}

// RingField is the Field factory for Ring elements.
type RingField struct{}

func (RingField) Name() string { return "ring[apd.Decimal]" }

func (RingField) Zero() Element { return Ring{coeffs: []apd.Decimal{{}}} }

func (RingField) One() Element {
	var one apd.Decimal
	one.SetInt64(1)
	return Ring{coeffs: []apd.Decimal{one}}
}

func (RingField) FromUint64(v uint64) Element {
	var d apd.Decimal
	d.SetUint64(v)
	return Ring{coeffs: []apd.Decimal{d}}
}

func (RingField) FromBytes(b []byte) (Element, error) {
	var d apd.Decimal
	if _, _, err := d.SetString(string(b)); err != nil {
		return nil, diag.Wrap(diag.KindParse, err, "invalid ring element encoding")
	}
	return Ring{coeffs: []apd.Decimal{d}}, nil
}

// trim drops trailing zero coefficients, keeping at least the
// constant term.
func trim(c []apd.Decimal) []apd.Decimal {
	n := len(c)
	for n > 1 && c[n-1].IsZero() {
		n--
	}
	return c[:n]
}

// Degree returns the polynomial degree; a constant (including zero)
// has degree 0.
func (r Ring) Degree() int { return len(trim(r.coeffs)) - 1 }

// AsScalar extracts the constant term, erroring whenever the
// polynomial has degree > 0 — exactly the guard spec.md §3 calls for.
func (r Ring) AsScalar() (Element, error) {
	if r.Degree() > 0 {
		return nil, diag.Errorf(diag.KindShape, "cannot extract scalar from ring element of degree %d", r.Degree())
	}
	return r, nil
}

func asRing(e Element) (Ring, error) {
	rr, ok := e.(Ring)
	if !ok {
		return Ring{}, diag.Errorf(diag.KindShape, "mixed field elements: expected ring element, got %T", e)
	}
	return rr, nil
}

func padded(c []apd.Decimal, n int) []apd.Decimal {
	if len(c) >= n {
		return c
	}
	out := make([]apd.Decimal, n)
	copy(out, c)
	return out
}

func (r Ring) Add(o Element) Element {
	op, err := asRing(o)
	if err != nil {
		panic(err)
	}
	n := len(r.coeffs)
	if len(op.coeffs) > n {
		n = len(op.coeffs)
	}
	a, b := padded(r.coeffs, n), padded(op.coeffs, n)
	out := make([]apd.Decimal, n)
	for i := range out {
		_, _ = ringCtx.Add(&out[i], &a[i], &b[i])
	}
	return Ring{coeffs: trim(out)}
}

func (r Ring) Neg() Element {
	out := make([]apd.Decimal, len(r.coeffs))
	for i := range r.coeffs {
		_, _ = ringCtx.Neg(&out[i], &r.coeffs[i])
	}
	return Ring{coeffs: trim(out)}
}

func (r Ring) Sub(o Element) Element {
	op, err := asRing(o)
	if err != nil {
		panic(err)
	}
	return r.Add(op.Neg())
}

func (r Ring) Mul(o Element) Element {
	op, err := asRing(o)
	if err != nil {
		panic(err)
	}
	out := make([]apd.Decimal, len(r.coeffs)+len(op.coeffs)-1)
	var term apd.Decimal
	for i, a := range r.coeffs {
		for j, b := range op.coeffs {
			_, _ = ringCtx.Mul(&term, &a, &b)
			_, _ = ringCtx.Add(&out[i+j], &out[i+j], &term)
		}
	}
	return Ring{coeffs: trim(out)}
}

// Inverse is defined only for constants: a general polynomial ring
// element has no multiplicative inverse without a reduction modulus,
// which this compiler's AVM never introduces.
func (r Ring) Inverse() (Element, error) {
	if r.Degree() > 0 {
		return nil, diag.Errorf(diag.KindArithmetic, "ring element of degree %d is not invertible", r.Degree())
	}
	if r.coeffs[0].IsZero() {
		return nil, diag.Errorf(diag.KindArithmetic, "division by zero")
	}
	var out, one apd.Decimal
	one.SetInt64(1)
	if _, err := ringCtx.Quo(&out, &one, &r.coeffs[0]); err != nil {
		return nil, diag.Wrap(diag.KindArithmetic, err, "ring inverse")
	}
	return Ring{coeffs: []apd.Decimal{out}}, nil
}

// Sqrt/Legendre are meaningful here only for the constant subring,
// where Ring behaves like a signed real rather than a Galois field:
// Legendre returns the sign of the constant term.
func (r Ring) Legendre() int {
	if r.Degree() > 0 {
		return -1
	}
	return r.coeffs[0].Sign()
}

func (r Ring) Sqrt() (Element, error) {
	if r.Degree() > 0 {
		return nil, diag.Errorf(diag.KindArithmetic, "square root of non-constant ring element")
	}
	if r.coeffs[0].Sign() < 0 {
		return nil, diag.Errorf(diag.KindArithmetic, "square root of non-residue")
	}
	var out apd.Decimal
	if _, err := ringCtx.Sqrt(&out, &r.coeffs[0]); err != nil {
		return nil, diag.Wrap(diag.KindArithmetic, err, "ring sqrt")
	}
	return Ring{coeffs: []apd.Decimal{out}}, nil
}

func (r Ring) IsZero() bool { return r.Degree() == 0 && r.coeffs[0].IsZero() }

func (r Ring) IsOne() bool {
	if r.Degree() > 0 {
		return false
	}
	var one apd.Decimal
	one.SetInt64(1)
	return r.coeffs[0].Cmp(&one) == 0
}

func (r Ring) Equal(o Element) bool {
	op, err := asRing(o)
	if err != nil {
		return false
	}
	a, b := trim(r.coeffs), trim(op.coeffs)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(&b[i]) != 0 {
			return false
		}
	}
	return true
}

func (r Ring) Bytes() []byte { return []byte(r.String()) }

// ToUint64 extracts the constant term as a non-negative integer,
// rather than going through Bytes() (which returns the decimal ASCII
// string here, not a byte-for-byte encoding comparable across
// backends). Follows cue's own apd.Decimal.Coeff/Negative/Exponent
// narrowing idiom (cue/types.go's Value.Uint64) rather than a
// hypothetical Int64 getter apd.Decimal doesn't expose.
func (r Ring) ToUint64() (uint64, error) {
	if r.Degree() > 0 {
		return 0, diag.Errorf(diag.KindShape, "cannot extract an integer from ring element of degree %d", r.Degree())
	}
	c := r.coeffs[0]
	if c.Exponent != 0 {
		return 0, diag.Errorf(diag.KindShape, "ring element %s is not an integer", c.String())
	}
	if c.Negative {
		return 0, diag.Errorf(diag.KindShape, "ring element %s is negative", c.String())
	}
	if !c.Coeff.IsUint64() {
		return 0, diag.Errorf(diag.KindShape, "ring element %s does not fit in a uint64", c.String())
	}
	return c.Coeff.Uint64(), nil
}

func (r Ring) String() string {
	c := trim(r.coeffs)
	if len(c) == 1 {
		return c[0].String()
	}
	out := c[0].String()
	for i := 1; i < len(c); i++ {
		out += "+" + c[i].String() + "*x^" + itoa(i)
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
