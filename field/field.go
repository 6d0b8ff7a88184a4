// Package field implements the 256-bit modular arithmetic layer shared
// by the SM2 field of definition (mod p) and scalar field (mod n). It is
// deliberately generic over the modulus so both fields reuse the same
// code: construct one Field per modulus, then work with its Elem values.
//
// Inversion uses the extended Euclidean algorithm via math/big. Square
// root uses the p = 3 (mod 4) shortcut for SM2's field modulus,
// verified by squaring.
package field

import (
	"fmt"
	"math/big"
)

// Width is the fixed byte width of every Elem for this suite's curve:
// both p and n are 256-bit moduli.
const Width = 32

// ErrInvalidField signals inversion of zero.
var ErrInvalidField = fmt.Errorf("field: cannot invert zero")

// ErrNotAQuadraticResidue signals that sqrt was asked for a non-residue.
var ErrNotAQuadraticResidue = fmt.Errorf("field: value is not a quadratic residue")

// Field is a modulus together with the operations defined over it.
type Field struct {
	modulus *big.Int
}

// New builds a Field for the given modulus. The modulus is copied; the
// caller's big.Int is not retained.
func New(modulus *big.Int) *Field {
	return &Field{modulus: new(big.Int).Set(modulus)}
}

// Modulus returns a copy of the field's modulus.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Elem is a nonnegative integer strictly less than its Field's modulus.
type Elem struct {
	f *Field
	v *big.Int
}

// Create reduces x modulo the field's modulus and returns the resulting
// element. This is the only constructor; every Elem a caller holds
// satisfies 0 <= v < modulus by construction.
func (f *Field) Create(x *big.Int) Elem {
	v := new(big.Int).Mod(x, f.modulus)
	return Elem{f: f, v: v}
}

// FromBytes interprets b as a big-endian integer and reduces it.
func (f *Field) FromBytes(b []byte) Elem {
	return f.Create(new(big.Int).SetBytes(b))
}

// FromUint64 lifts a small integer into the field.
func (f *Field) FromUint64(x uint64) Elem {
	return f.Create(new(big.Int).SetUint64(x))
}

// Zero returns the additive identity.
func (f *Field) Zero() Elem { return f.FromUint64(0) }

// One returns the multiplicative identity.
func (f *Field) One() Elem { return f.FromUint64(1) }

// Big returns a copy of the underlying integer, 0 <= v < modulus.
func (e Elem) Big() *big.Int {
	return new(big.Int).Set(e.v)
}

// ToBytes renders e as a big-endian byte slice of the given fixed
// width, left-padded with zeros.
func (e Elem) ToBytes(width int) []byte {
	out := make([]byte, width)
	b := e.v.Bytes()
	if len(b) > width {
		panic("field: element does not fit in requested width")
	}
	copy(out[width-len(b):], b)
	return out
}

func (e Elem) checkSameField(o Elem) {
	if e.f != o.f {
		panic("field: mismatched field instances")
	}
}

// Add returns e + o mod p.
func (e Elem) Add(o Elem) Elem {
	e.checkSameField(o)
	return e.f.Create(new(big.Int).Add(e.v, o.v))
}

// Sub returns e - o mod p.
func (e Elem) Sub(o Elem) Elem {
	e.checkSameField(o)
	return e.f.Create(new(big.Int).Sub(e.v, o.v))
}

// Mul returns e * o mod p.
func (e Elem) Mul(o Elem) Elem {
	e.checkSameField(o)
	return e.f.Create(new(big.Int).Mul(e.v, o.v))
}

// Sqr returns e^2 mod p.
func (e Elem) Sqr() Elem {
	return e.Mul(e)
}

// Neg returns -e mod p.
func (e Elem) Neg() Elem {
	return e.f.Create(new(big.Int).Neg(e.v))
}

// Inv returns the multiplicative inverse of e via the extended
// Euclidean algorithm. Fails with ErrInvalidField if e is zero.
func (e Elem) Inv() (Elem, error) {
	if e.IsZero() {
		return Elem{}, ErrInvalidField
	}
	inv := new(big.Int).ModInverse(e.v, e.f.modulus)
	if inv == nil {
		return Elem{}, ErrInvalidField
	}
	return Elem{f: e.f, v: inv}, nil
}

// Pow returns e^k mod p for a nonnegative exponent k.
func (e Elem) Pow(k *big.Int) Elem {
	return e.f.Create(new(big.Int).Exp(e.v, k, e.f.modulus))
}

// Sqrt returns a square root of e when the field's modulus is p = 3
// (mod 4), using the fast-path exponent x = e^((p+1)/4), verified by
// squaring the candidate and comparing to e. Fails with
// ErrNotAQuadraticResidue if e has no square root, or if the field's
// modulus isn't of the supported form.
func (e Elem) Sqrt() (Elem, error) {
	p := e.f.modulus
	// p mod 4 must be 3 for the fast path used throughout this suite.
	mod4 := new(big.Int).Mod(p, big.NewInt(4))
	if mod4.Int64() != 3 {
		return Elem{}, fmt.Errorf("field: sqrt fast path requires p = 3 (mod 4)")
	}
	exp := new(big.Int).Add(p, big.NewInt(1))
	exp.Rsh(exp, 2) // (p+1)/4
	candidate := e.Pow(exp)
	if candidate.Sqr().Equals(e) {
		return candidate, nil
	}
	return Elem{}, ErrNotAQuadraticResidue
}

// IsZero reports whether e is the additive identity.
func (e Elem) IsZero() bool {
	return e.v.Sign() == 0
}

// IsOdd reports whether e's integer representative is odd.
func (e Elem) IsOdd() bool {
	return e.v.Bit(0) == 1
}

// Equals reports whether e and o represent the same residue.
func (e Elem) Equals(o Elem) bool {
	e.checkSameField(o)
	return e.v.Cmp(o.v) == 0
}

// BatchInvert inverts every element of xs using a single underlying
// Inv call: it accumulates prefix products, inverts the final product,
// then folds the inverse back across the prefix products to recover
// each individual inverse. Fails with ErrInvalidField if any element is
// zero.
func BatchInvert(xs []Elem) ([]Elem, error) {
	n := len(xs)
	if n == 0 {
		return nil, nil
	}
	f := xs[0].f
	prefix := make([]Elem, n)
	acc := f.One()
	for i, x := range xs {
		if x.IsZero() {
			return nil, ErrInvalidField
		}
		prefix[i] = acc
		acc = acc.Mul(x)
	}
	accInv, err := acc.Inv()
	if err != nil {
		return nil, err
	}
	out := make([]Elem, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(xs[i])
	}
	return out, nil
}
