package field

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
)

func sm2P() *big.Int {
	p, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF", 16)
	return p
}

// TestCreateReduces checks Create always lands in [0, modulus).
func TestCreateReduces(t *testing.T) {
	f := New(big.NewInt(17))

	cases := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{16, 16},
		{17, 0},
		{35, 1},
		{-1, 16},
		{-18, 16},
	}
	for _, c := range cases {
		got := f.Create(big.NewInt(c.in))
		if got.Big().Int64() != c.want {
			t.Errorf("Create(%d) = %d, want %d", c.in, got.Big().Int64(), c.want)
		}
	}
}

// TestArithmeticIdentities exercises add/sub/mul/neg against their
// algebraic identities in the real SM2 field.
func TestArithmeticIdentities(t *testing.T) {
	f := New(sm2P())
	x := f.FromBytes([]byte("some arbitrary residue material."))
	y := f.FromUint64(0xDEADBEEF)

	if !x.Add(y).Sub(y).Equals(x) {
		t.Error("x + y - y != x")
	}
	if !x.Add(x.Neg()).IsZero() {
		t.Error("x + (-x) != 0")
	}
	if !x.Mul(f.One()).Equals(x) {
		t.Error("x * 1 != x")
	}
	if !x.Mul(f.Zero()).IsZero() {
		t.Error("x * 0 != 0")
	}
	if !x.Sqr().Equals(x.Mul(x)) {
		t.Error("x^2 != x * x")
	}
}

// TestInv checks inversion round-trips and that inverting zero fails.
func TestInv(t *testing.T) {
	f := New(sm2P())
	x := f.FromUint64(123456789)

	inv, err := x.Inv()
	if err != nil {
		t.Fatalf("Inv failed: %v", err)
	}
	if !x.Mul(inv).Equals(f.One()) {
		t.Fatal("x * x^-1 != 1")
	}

	if _, err := f.Zero().Inv(); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("Inv(0) error = %v, want ErrInvalidField", err)
	}
}

// TestPow checks exponentiation against repeated multiplication.
func TestPow(t *testing.T) {
	f := New(sm2P())
	x := f.FromUint64(7)

	want := f.One()
	for i := 0; i < 13; i++ {
		want = want.Mul(x)
	}
	if !x.Pow(big.NewInt(13)).Equals(want) {
		t.Fatal("x^13 != x multiplied 13 times")
	}
	if !x.Pow(big.NewInt(0)).Equals(f.One()) {
		t.Fatal("x^0 != 1")
	}
}

// TestSqrt checks the p = 3 (mod 4) square-root fast path: every square
// has a root whose square matches, and a known non-residue fails.
func TestSqrt(t *testing.T) {
	f := New(sm2P())

	x := f.FromUint64(987654321)
	square := x.Sqr()
	root, err := square.Sqrt()
	if err != nil {
		t.Fatalf("Sqrt of a square failed: %v", err)
	}
	if !root.Sqr().Equals(square) {
		t.Fatal("sqrt(x^2)^2 != x^2")
	}

	// Find a non-residue by scanning small values: for an odd prime
	// exactly half the nonzero residues are squares.
	found := false
	for v := uint64(2); v < 50; v++ {
		c := f.FromUint64(v)
		legendre := c.Pow(new(big.Int).Rsh(new(big.Int).Sub(sm2P(), big.NewInt(1)), 1))
		if !legendre.Equals(f.One()) {
			if _, err := c.Sqrt(); !errors.Is(err, ErrNotAQuadraticResidue) {
				t.Fatalf("Sqrt of non-residue %d error = %v, want ErrNotAQuadraticResidue", v, err)
			}
			found = true
			break
		}
	}
	if !found {
		t.Fatal("no non-residue found below 50, test is broken")
	}
}

// TestToBytesFixedWidth checks ToBytes left-pads to the requested width.
func TestToBytesFixedWidth(t *testing.T) {
	f := New(sm2P())
	x := f.FromUint64(0x0102)

	got := x.ToBytes(Width)
	want := make([]byte, Width)
	want[Width-2] = 0x01
	want[Width-1] = 0x02
	if !bytes.Equal(got, want) {
		t.Fatalf("ToBytes = %x, want %x", got, want)
	}

	back := f.FromBytes(got)
	if !back.Equals(x) {
		t.Fatal("FromBytes(ToBytes(x)) != x")
	}
}

// TestBatchInvert checks the prefix-product batch inversion matches
// per-element inversion, and fails as a whole on any zero.
func TestBatchInvert(t *testing.T) {
	f := New(sm2P())
	xs := []Elem{f.FromUint64(3), f.FromUint64(1), f.FromUint64(999999937), f.FromBytes([]byte("batch inversion test residue...."))}

	invs, err := BatchInvert(xs)
	if err != nil {
		t.Fatalf("BatchInvert failed: %v", err)
	}
	if len(invs) != len(xs) {
		t.Fatalf("BatchInvert returned %d results for %d inputs", len(invs), len(xs))
	}
	for i := range xs {
		if !xs[i].Mul(invs[i]).Equals(f.One()) {
			t.Errorf("element %d: x * BatchInvert(x) != 1", i)
		}
	}

	if _, err := BatchInvert([]Elem{f.FromUint64(5), f.Zero()}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("BatchInvert with a zero error = %v, want ErrInvalidField", err)
	}

	empty, err := BatchInvert(nil)
	if err != nil || empty != nil {
		t.Fatalf("BatchInvert(nil) = (%v, %v), want (nil, nil)", empty, err)
	}
}

// TestIsOdd checks parity reporting on the reduced representative.
func TestIsOdd(t *testing.T) {
	f := New(sm2P())
	if f.FromUint64(4).IsOdd() {
		t.Error("4 reported odd")
	}
	if !f.FromUint64(7).IsOdd() {
		t.Error("7 reported even")
	}
}
