package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkavm/avmc/internal/field"
)

func TestPrimeArithmetic(t *testing.T) {
	f := field.PrimeField{}
	three := f.FromUint64(3)
	four := f.FromUint64(4)

	assert.True(t, three.Add(four).Equal(f.FromUint64(7)))
	assert.True(t, four.Sub(three).Equal(f.FromUint64(1)))
	assert.True(t, three.Mul(four).Equal(f.FromUint64(12)))
}

func TestPrimeInverse(t *testing.T) {
	f := field.PrimeField{}
	two := f.FromUint64(2)

	inv, err := two.Inverse()
	require.NoError(t, err)
	assert.True(t, two.Mul(inv).Equal(f.One()))

	_, err = f.Zero().Inverse()
	require.Error(t, err)
}

func TestPrimeSqrtLegendre(t *testing.T) {
	f := field.PrimeField{}
	four := f.FromUint64(4)

	root, err := four.Sqrt()
	require.NoError(t, err)
	assert.True(t, root.Mul(root).Equal(four))

	assert.Equal(t, 0, f.Zero().Legendre())
}

func TestRingScalarExtractionGuard(t *testing.T) {
	f := field.RingField{}
	c := f.FromUint64(5)

	scalar, err := c.(interface {
		AsScalar() (field.Element, error)
	}).AsScalar()
	require.NoError(t, err)
	assert.True(t, scalar.Equal(c))

	// Degree > 0 polynomials can only be built from inside the field
	// package (Ring's coeffs are unexported); that guard is exercised
	// by TestRingDegreeGuard in ring_internal_test.go.
}

func TestPrimeToUint64(t *testing.T) {
	f := field.PrimeField{}
	v, err := f.FromUint64(2).ToUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
}

func TestRingToUint64(t *testing.T) {
	f := field.RingField{}
	v, err := f.FromUint64(2).ToUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
}

func TestRingArithmetic(t *testing.T) {
	f := field.RingField{}
	a := f.FromUint64(3)
	b := f.FromUint64(4)

	assert.True(t, a.Add(b).Equal(f.FromUint64(7)))
	assert.True(t, a.Mul(b).Equal(f.FromUint64(12)))
}
