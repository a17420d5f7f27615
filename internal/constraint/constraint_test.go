package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkavm/avmc/internal/constraint"
	"github.com/zkavm/avmc/internal/field"
)

func sampleStream(f field.Field) constraint.Stream {
	one := f.One()
	two := f.FromUint64(2)
	var s constraint.Stream
	s = append(s, constraint.NewSymbolic(constraint.SymbolicRecord{
		OutIndex: 1,
		Lhs:      constraint.LinComb{{Coef: one, Index: constraint.OneIndex}},
		Rhs:      constraint.LinComb{{Coef: two, Index: constraint.OneIndex}},
		Op:       constraint.OpMul,
		Comment:  "x1 <- 1*one mul 2*one",
	}))
	s = append(s, constraint.NewWitness(constraint.WitnessRecord{
		A:       constraint.LinComb{{Coef: one, Index: 1}},
		B:       constraint.LinComb{{Coef: one, Index: constraint.OneIndex}},
		C:       constraint.LinComb{{Coef: one, Index: 1}},
		Comment: "identity row",
	}))
	s = append(s, constraint.NewWitness(constraint.FieldSanityWitness(f)))
	return s
}

func TestRoundTripPrime(t *testing.T) {
	f := field.PrimeField{}
	s := sampleStream(f)
	text := constraint.RenderString(s)

	pf, err := constraint.Parse(f, text)
	require.NoError(t, err)
	require.Nil(t, pf.Signature)

	assert.Equal(t, len(s.WitnessRecords()), len(pf.Stream.WitnessRecords()))
	assert.Equal(t, len(s.SymbolicRecords()), len(pf.Stream.SymbolicRecords()))

	wantW := s.WitnessRecords()
	gotW := pf.Stream.WitnessRecords()
	for i := range wantW {
		assertLinCombEqual(t, f, wantW[i].A, gotW[i].A)
		assertLinCombEqual(t, f, wantW[i].B, gotW[i].B)
		assertLinCombEqual(t, f, wantW[i].C, gotW[i].C)
	}

	wantS := s.SymbolicRecords()
	gotS := pf.Stream.SymbolicRecords()
	for i := range wantS {
		assert.Equal(t, wantS[i].OutIndex, gotS[i].OutIndex)
		assert.Equal(t, wantS[i].Op, gotS[i].Op)
		assertLinCombEqual(t, f, wantS[i].Lhs, gotS[i].Lhs)
		assertLinCombEqual(t, f, wantS[i].Rhs, gotS[i].Rhs)
	}
}

func TestRoundTripRing(t *testing.T) {
	f := field.RingField{}
	s := sampleStream(f)
	text := constraint.RenderString(s)

	pf, err := constraint.Parse(f, text)
	require.NoError(t, err)

	wantW := s.WitnessRecords()
	gotW := pf.Stream.WitnessRecords()
	require.Equal(t, len(wantW), len(gotW))
	for i := range wantW {
		assertLinCombEqual(t, f, wantW[i].A, gotW[i].A)
	}
}

func assertLinCombEqual(t *testing.T, f field.Field, want, got constraint.LinComb) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Index, got[i].Index)
		assert.True(t, want[i].Coef.Equal(got[i].Coef), "coef mismatch at %d: want %s got %s", i, want[i].Coef, got[i].Coef)
	}
}

func TestParseSignatureHeader(t *testing.T) {
	f := field.PrimeField{}
	src := "(a,b) -> (r)\n" +
		"x3 = (0x01*a) * (0x01*b)\n" +
		"0 = (0x01*a) * (0x01*b) - (0x01*r)\n"
	pf, err := constraint.Parse(f, src)
	require.NoError(t, err)
	require.NotNil(t, pf.Signature)
	assert.Equal(t, []string{"a", "b"}, pf.Signature.Args)
	assert.Equal(t, []string{"r"}, pf.Signature.Returns)
	require.Len(t, pf.Stream.SymbolicRecords(), 1)
	require.Len(t, pf.Stream.WitnessRecords(), 1)
}

func TestParseDecimalLiteralCoefficient(t *testing.T) {
	f := field.PrimeField{}
	src := "0 = (2*one) * (3*one) - (6*one)\n"
	pf, err := constraint.Parse(f, src)
	require.NoError(t, err)
	rows := pf.Stream.WitnessRecords()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].A[0].Coef.Equal(f.FromUint64(2)))
}

func TestParseCommentPreserved(t *testing.T) {
	f := field.PrimeField{}
	src := "0 = (0x01*one) * (0x01*one) - (0x01*one) # trivial\n"
	pf, err := constraint.Parse(f, src)
	require.NoError(t, err)
	require.Len(t, pf.Stream.WitnessRecords(), 1)
	assert.Equal(t, "trivial", pf.Stream.WitnessRecords()[0].Comment)
}

func TestParseCombinedChunks(t *testing.T) {
	f := field.PrimeField{}
	src := "0 = (0x01*one) * (0x01*one) - (0x01*one)\n" +
		"=====\n" +
		"helper.r1cs\n" +
		"(a) -> (r)\n" +
		"x1 = (0x01*a) * (0x01*a)\n"
	files, err := constraint.ParseCombined(f, src)
	require.NoError(t, err)
	require.Contains(t, files, "")
	require.Contains(t, files, "helper.r1cs")
	assert.NotNil(t, files["helper.r1cs"].Signature)
}
