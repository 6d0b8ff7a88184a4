// Package sm2 implements the GM/T 0003 SM2 elliptic-curve suite: scalar
// arithmetic over the specified prime field, keypair generation,
// signature (with the GM/T identifier pre-hash Z), public-key
// encryption (C1C3C2), and two-party authenticated key agreement.
//
// Curve parameters are package-level constants computed once at
// package load: no process-wide mutable singleton, no init-ordering
// dependency.
package sm2

import (
	"math/big"

	"gmsuite/field"
)

var (
	// p is the field modulus.
	p, _ = new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF", 16)
	// n is the group order.
	n, _ = new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFF7203DF6B21C6052B53BBF40939D54123", 16)
	// a = p - 3.
	aBig = new(big.Int).Sub(p, big.NewInt(3))
	// b curve parameter.
	bBig, _ = new(big.Int).SetString("28E9FA9E9D9F5E344D5A9E4BCF6509A7F39789F515AB8F92DDBCBD414D940E93", 16)
	gxBig, _ = new(big.Int).SetString("32C4AE2C1F1981195F9904466A39C9948FE30BBFF2660BE1715A4589334C74C7", 16)
	gyBig, _ = new(big.Int).SetString("BC3736A2F4F6779C59BDCEE36B692153D0A9877CC62A474002DF32E52139F0A0", 16)

	// Fp is the field of definition.
	Fp = field.New(p)
	// Fn is the scalar field.
	Fn = field.New(n)

	curveA = Fp.Create(aBig)
	curveB = Fp.Create(bBig)
)

// N returns the group order.
func N() *big.Int { return new(big.Int).Set(n) }

// P returns the field modulus.
func P() *big.Int { return new(big.Int).Set(p) }

// Point is a point on the SM2 curve, held in Jacobian projective
// coordinates (X, Y, Z) with affine reconstruction x = X/Z^2, y =
// Y/Z^3. This avoids a modular inversion on every addition/doubling;
// Affine() is the one place inversion happens, once, on demand.
type Point struct {
	X, Y, Z field.Elem
	infinity bool
}

// Infinity is the distinguished point at infinity (the additive
// identity of the curve group).
func Infinity() Point {
	return Point{X: Fp.Zero(), Y: Fp.One(), Z: Fp.Zero(), infinity: true}
}

// IsInfinity reports whether pt is the point at infinity.
func (pt Point) IsInfinity() bool {
	return pt.infinity || pt.Z.IsZero()
}

// Generator is the SM2 base point G.
func Generator() Point {
	return NewAffine(Fp.Create(gxBig), Fp.Create(gyBig))
}

// NewAffine builds a projective Point from affine coordinates (Z=1).
func NewAffine(x, y field.Elem) Point {
	return Point{X: x, Y: y, Z: Fp.One()}
}

// Affine returns the affine (x, y) coordinates of pt. Calling Affine on
// the point at infinity returns (0, 0); callers must check IsInfinity
// first when that distinction matters.
func (pt Point) Affine() (field.Elem, field.Elem) {
	if pt.IsInfinity() {
		return Fp.Zero(), Fp.Zero()
	}
	zInv, err := pt.Z.Inv()
	if err != nil {
		return Fp.Zero(), Fp.Zero()
	}
	zInv2 := zInv.Sqr()
	zInv3 := zInv2.Mul(zInv)
	x := pt.X.Mul(zInv2)
	y := pt.Y.Mul(zInv3)
	return x, y
}

// OnCurve reports whether the affine point (x, y) satisfies
// y^2 = x^3 + a*x + b.
func OnCurve(x, y field.Elem) bool {
	lhs := y.Sqr()
	rhs := x.Sqr().Mul(x).Add(curveA.Mul(x)).Add(curveB)
	return lhs.Equals(rhs)
}

// Negate returns the additive inverse of pt.
func (pt Point) Negate() Point {
	if pt.IsInfinity() {
		return pt
	}
	return Point{X: pt.X, Y: pt.Y.Neg(), Z: pt.Z}
}

// Double returns pt + pt using Jacobian doubling specialized to a = -3
// (SM2's a = p - 3, the standard optimization used by every Weierstrass
// curve with that property, including the curves backing Go's own
// deprecated crypto/elliptic package).
func (pt Point) Double() Point {
	if pt.IsInfinity() || pt.Y.IsZero() {
		return Infinity()
	}
	x, y, z := pt.X, pt.Y, pt.Z

	delta := z.Sqr()
	gamma := y.Sqr()
	beta := x.Mul(gamma)

	alpha := x.Sub(delta).Mul(x.Add(delta))
	alpha = alpha.Add(alpha).Add(alpha) // 3*(X-delta)*(X+delta), the a=-3 shortcut

	fourBeta := beta.Add(beta).Add(beta).Add(beta)
	eightBeta := fourBeta.Add(fourBeta)
	x3 := alpha.Sqr().Sub(eightBeta)

	eightGammaSqr := gamma.Sqr()
	eightGammaSqr = eightGammaSqr.Add(eightGammaSqr).Add(eightGammaSqr).Add(eightGammaSqr)
	eightGammaSqr = eightGammaSqr.Add(eightGammaSqr)
	y3 := fourBeta.Sub(x3).Mul(alpha).Sub(eightGammaSqr)

	z3 := y.Add(z).Sqr().Sub(gamma).Sub(delta)

	return Point{X: x3, Y: y3, Z: z3}
}

// Add returns pt + other using the general Jacobian addition formula.
// Does not assume either operand is affine.
func (pt Point) Add(other Point) Point {
	if pt.IsInfinity() {
		return other
	}
	if other.IsInfinity() {
		return pt
	}

	z1z1 := pt.Z.Sqr()
	z2z2 := other.Z.Sqr()
	u1 := pt.X.Mul(z2z2)
	u2 := other.X.Mul(z1z1)
	s1 := pt.Y.Mul(other.Z).Mul(z2z2)
	s2 := other.Y.Mul(pt.Z).Mul(z1z1)

	if u1.Equals(u2) {
		if !s1.Equals(s2) {
			return Infinity()
		}
		return pt.Double()
	}

	h := u2.Sub(u1)
	i := h.Add(h).Sqr()
	j := h.Mul(i)
	r := s2.Sub(s1).Add(s2.Sub(s1))
	v := u1.Mul(i)

	x3 := r.Sqr().Sub(j).Sub(v).Sub(v)
	y3 := v.Sub(x3).Mul(r).Sub(s1.Mul(j).Add(s1.Mul(j)))
	z3 := pt.Z.Add(other.Z).Sqr().Sub(z1z1).Sub(z2z2).Mul(h)

	return Point{X: x3, Y: y3, Z: z3}
}

// ScalarMult returns k*pt using a fixed-length, left-to-right
// double-and-add ladder over the 256-bit scalar k. Every bit of k
// performs a double and an add of pt (the sum is discarded, not
// skipped, on a zero bit) so the number of curve operations does not
// depend on k's Hamming weight. This bounds gross timing variance
// without claiming instruction-level constant time: Add and Double
// still branch internally on the point at infinity.
func (pt Point) ScalarMult(k *big.Int) Point {
	result := Infinity()
	kBytes := make([]byte, 32)
	k.FillBytes(kBytes)

	for _, b := range kBytes {
		for bit := 7; bit >= 0; bit-- {
			result = result.Double()
			// The add is computed for every bit; only a set bit keeps it.
			sum := result.Add(pt)
			if (b>>uint(bit))&1 == 1 {
				result = sum
			}
		}
	}
	return result
}

// ScalarBaseMult returns k*G.
func ScalarBaseMult(k *big.Int) Point {
	return Generator().ScalarMult(k)
}

const (
	uncompressedPrefix = 0x04
	compressedEvenY    = 0x02
	compressedOddY     = 0x03
)

// MarshalUncompressed encodes pt as 0x04 || X(32) || Y(32).
func MarshalUncompressed(pt Point) ([]byte, error) {
	if pt.IsInfinity() {
		return nil, ErrPointAtInfinity
	}
	x, y := pt.Affine()
	out := make([]byte, 1+2*field.Width)
	out[0] = uncompressedPrefix
	copy(out[1:1+field.Width], x.ToBytes(field.Width))
	copy(out[1+field.Width:], y.ToBytes(field.Width))
	return out, nil
}

// MarshalCompressed encodes pt as 0x02/0x03 || X(32).
func MarshalCompressed(pt Point) ([]byte, error) {
	if pt.IsInfinity() {
		return nil, ErrPointAtInfinity
	}
	x, y := pt.Affine()
	out := make([]byte, 1+field.Width)
	if y.IsOdd() {
		out[0] = compressedOddY
	} else {
		out[0] = compressedEvenY
	}
	copy(out[1:], x.ToBytes(field.Width))
	return out, nil
}

// Unmarshal decodes a point from its uncompressed or compressed wire
// form, validating it lies on the curve. The point at infinity has no
// wire form and is rejected. A bad prefix or length yields
// ErrInvalidEncoding; a point that is not on the curve yields
// ErrInvalidKey.
func Unmarshal(data []byte) (Point, error) {
	if len(data) == 0 {
		return Point{}, ErrInvalidEncoding
	}
	switch data[0] {
	case uncompressedPrefix:
		if len(data) != 1+2*field.Width {
			return Point{}, ErrInvalidEncoding
		}
		x := Fp.FromBytes(data[1 : 1+field.Width])
		y := Fp.FromBytes(data[1+field.Width:])
		if !OnCurve(x, y) {
			return Point{}, ErrInvalidKey
		}
		return NewAffine(x, y), nil
	case compressedEvenY, compressedOddY:
		if len(data) != 1+field.Width {
			return Point{}, ErrInvalidEncoding
		}
		x := Fp.FromBytes(data[1:])
		rhs := x.Sqr().Mul(x).Add(curveA.Mul(x)).Add(curveB)
		y, err := rhs.Sqrt()
		if err != nil {
			return Point{}, ErrInvalidKey
		}
		wantOdd := data[0] == compressedOddY
		if y.IsOdd() != wantOdd {
			y = y.Neg()
		}
		return NewAffine(x, y), nil
	default:
		return Point{}, ErrInvalidEncoding
	}
}
