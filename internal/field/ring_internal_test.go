package field

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func mustDecimal(t *testing.T, s string) apd.Decimal {
	t.Helper()
	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRingDegreeGuard(t *testing.T) {
	linear := Ring{coeffs: []apd.Decimal{mustDecimal(t, "1"), mustDecimal(t, "1")}}
	if linear.Degree() != 1 {
		t.Fatalf("expected degree 1, got %d", linear.Degree())
	}
	if _, err := linear.AsScalar(); err == nil {
		t.Fatal("expected AsScalar to error on degree > 0")
	}
	if _, err := linear.Inverse(); err == nil {
		t.Fatal("expected Inverse to error on degree > 0")
	}
}

func TestRingToUint64(t *testing.T) {
	two := Ring{coeffs: []apd.Decimal{mustDecimal(t, "2")}}
	v, err := two.ToUint64()
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Fatalf("expected 2, got %d", v)
	}

	linear := Ring{coeffs: []apd.Decimal{mustDecimal(t, "1"), mustDecimal(t, "1")}}
	if _, err := linear.ToUint64(); err == nil {
		t.Fatal("expected ToUint64 to error on degree > 0")
	}

	negative := Ring{coeffs: []apd.Decimal{mustDecimal(t, "-1")}}
	if _, err := negative.ToUint64(); err == nil {
		t.Fatal("expected ToUint64 to error on a negative value")
	}

	fractional := Ring{coeffs: []apd.Decimal{mustDecimal(t, "1.5")}}
	if _, err := fractional.ToUint64(); err == nil {
		t.Fatal("expected ToUint64 to error on a non-integer value")
	}
}

func TestRingMulConvolution(t *testing.T) {
	// (1 + x) * (1 + x) = 1 + 2x + x^2
	p := Ring{coeffs: []apd.Decimal{mustDecimal(t, "1"), mustDecimal(t, "1")}}
	sq := p.Mul(p).(Ring)
	if sq.Degree() != 2 {
		t.Fatalf("expected degree 2, got %d", sq.Degree())
	}
	want := []string{"1", "2", "1"}
	for i, w := range want {
		wd := mustDecimal(t, w)
		if sq.coeffs[i].Cmp(&wd) != 0 {
			t.Fatalf("coeff %d: got %s want %s", i, sq.coeffs[i].String(), w)
		}
	}
}
