package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkavm/avmc/internal/diag"
)

// Prime is a finite-field element backed by gnark-crypto's bn254
// scalar field. It supplies the "finite field" variant of C1 called
// for in spec.md §9's design note, grounded on
// _examples/other_examples/d2915b2b_cuishuang-gnark__frontend-cs-r1cs-compiler.go.go,
// which pulls in gnark-crypto for exactly the same arithmetic.
type Prime struct {
	v fr.Element
}

// PrimeField is the Field factory for Prime elements.
type PrimeField struct{}

func (PrimeField) Name() string { return "bn254.fr" }

func (PrimeField) Zero() Element {
	var e fr.Element
	e.SetZero()
	return Prime{e}
}

func (PrimeField) One() Element {
	var e fr.Element
	e.SetOne()
	return Prime{e}
}

func (PrimeField) FromUint64(v uint64) Element {
	var e fr.Element
	e.SetUint64(v)
	return Prime{e}
}

// FromBytes reads b as a little-endian integer, the inverse of
// Prime.Bytes.
func (PrimeField) FromBytes(b []byte) (Element, error) {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	var e fr.Element
	e.SetBytes(be)
	return Prime{e}, nil
}

func asPrime(e Element) (Prime, error) {
	p, ok := e.(Prime)
	if !ok {
		return Prime{}, diag.Errorf(diag.KindShape, "mixed field elements: expected bn254.fr, got %T", e)
	}
	return p, nil
}

func (p Prime) Add(o Element) Element {
	op, err := asPrime(o)
	if err != nil {
		panic(err)
	}
	var r fr.Element
	r.Add(&p.v, &op.v)
	return Prime{r}
}

func (p Prime) Sub(o Element) Element {
	op, err := asPrime(o)
	if err != nil {
		panic(err)
	}
	var r fr.Element
	r.Sub(&p.v, &op.v)
	return Prime{r}
}

func (p Prime) Mul(o Element) Element {
	op, err := asPrime(o)
	if err != nil {
		panic(err)
	}
	var r fr.Element
	r.Mul(&p.v, &op.v)
	return Prime{r}
}

func (p Prime) Neg() Element {
	var r fr.Element
	r.Neg(&p.v)
	return Prime{r}
}

// Inverse errors with KindArithmetic on division by zero, per
// spec.md §7, rather than letting the underlying library panic.
func (p Prime) Inverse() (Element, error) {
	if p.v.IsZero() {
		return nil, diag.Errorf(diag.KindArithmetic, "division by zero")
	}
	var r fr.Element
	r.Inverse(&p.v)
	return Prime{r}, nil
}

// Sqrt implements the Inv/Sqrt taxonomy of spec.md §4.6: zero when
// the Legendre symbol is zero, the canonical root when it is 1, and a
// KindArithmetic error when p is a non-residue.
func (p Prime) Sqrt() (Element, error) {
	switch p.Legendre() {
	case 0:
		return PrimeField{}.Zero(), nil
	case 1:
		var r fr.Element
		r.Sqrt(&p.v)
		return Prime{r}, nil
	default:
		return nil, diag.Errorf(diag.KindArithmetic, "square root of non-residue")
	}
}

func (p Prime) Legendre() int { return int(p.v.Legendre()) }

func (p Prime) IsZero() bool { return p.v.IsZero() }

func (p Prime) IsOne() bool { return p.v.IsOne() }

func (p Prime) Equal(o Element) bool {
	op, err := asPrime(o)
	if err != nil {
		return false
	}
	return p.v.Equal(&op.v)
}

// Bytes returns the canonical little-endian encoding of p.
func (p Prime) Bytes() []byte {
	b := p.v.Bytes()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b[:]
}

func (p Prime) String() string { return p.v.String() }

// ToUint64 converts p out of Montgomery form into a canonical
// big.Int before narrowing, rather than reading p.v.Bytes() (which is
// big-endian-canonical only for this backend and would not agree
// with Ring's ASCII-decimal Bytes() if callers assumed a shared
// encoding).
func (p Prime) ToUint64() (uint64, error) {
	var bi big.Int
	p.v.BigInt(&bi)
	if !bi.IsUint64() {
		return 0, diag.Errorf(diag.KindShape, "value %s does not fit in a uint64", bi.String())
	}
	return bi.Uint64(), nil
}
