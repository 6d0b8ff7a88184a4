package sm2

import (
	"crypto/rand"
	"encoding/asn1"
	"math/big"

	"gmsuite/field"
	"gmsuite/sm3"
	"gmsuite/util"
)

// Signature is an SM2 signature (r, s), each a scalar in [1, n-1].
type Signature struct {
	R, S *big.Int
}

// SignOptions configures Sign/Verify.
type SignOptions struct {
	// ID is the signer identifier folded into the Z value. Empty means
	// DefaultID.
	ID string
	// Hash, when false, means msg is already the e value (an SM3
	// digest, or any 32-byte integer the caller computed Z over out of
	// band) and no Z-prefixing is performed: this exists purely for
	// interoperability with callers that compute Z separately.
	Hash bool
	// DER records whether the caller's wire form is a DER
	// SEQUENCE{r INTEGER, s INTEGER} rather than two fixed 32-byte
	// fields. Sign and Verify do not read it: they work on *Signature
	// values, and the encoding is chosen by the der argument of
	// Signature.Marshal and UnmarshalSignature.
	DER bool
}

// DefaultSignOptions is {ID: "", Hash: true, DER: false}: hash with
// the default identifier.
func DefaultSignOptions() SignOptions {
	return SignOptions{Hash: true}
}

// computeE returns the integer e of GM/T 0003.2: either SM3(Z || msg),
// or msg parsed directly as an integer when the caller has pre-hashed.
func computeE(msg []byte, pub Point, opts SignOptions) *big.Int {
	if !opts.Hash {
		return new(big.Int).SetBytes(msg)
	}
	z := ZValue(opts.ID, pub)
	digest := sm3.Sum256(util.Concat(z[:], msg))
	return new(big.Int).SetBytes(digest[:])
}

// Sign produces a GM/T 0003.2 signature over msg. It draws a fresh
// ephemeral scalar k per attempt, retrying whenever r=0, r+k=n, or s=0.
func Sign(msg []byte, priv *big.Int, pub Point, opts SignOptions) (*Signature, error) {
	e := computeE(msg, pub, opts)

	dPlus1Inv, err := Fn.Create(new(big.Int).Add(priv, big.NewInt(1))).Inv()
	if err != nil {
		return nil, ErrInvalidKey
	}

	for {
		k, err := randScalar()
		if err != nil {
			return nil, err
		}

		x1, _ := ScalarBaseMult(k).Affine()
		r := new(big.Int).Add(e, x1.Big())
		r.Mod(r, n)
		if r.Sign() == 0 {
			continue
		}
		rPlusK := new(big.Int).Add(r, k)
		if rPlusK.Cmp(n) == 0 {
			continue
		}

		// s = (1+d)^-1 * (k - r*d) mod n
		rd := new(big.Int).Mul(r, priv)
		kMinusRd := Fn.Create(k).Sub(Fn.Create(rd))
		s := dPlus1Inv.Mul(kMinusRd)
		if s.IsZero() {
			continue
		}

		return &Signature{R: r, S: s.Big()}, nil
	}
}

// Verify checks a GM/T 0003.2 signature: rejects r, s outside [1, n-1],
// rejects t = (r+s) mod n = 0, and accepts iff (e + x1') mod n == r.
// Forgery is reported as false, never as an error, so callers cannot
// conflate a bad signature with a programming mistake.
func Verify(msg []byte, sig *Signature, pub Point, opts SignOptions) bool {
	if sig == nil || sig.R == nil || sig.S == nil {
		return false
	}
	if !inRange1ToNMinus1(sig.R) || !inRange1ToNMinus1(sig.S) {
		return false
	}

	e := computeE(msg, pub, opts)

	t := new(big.Int).Add(sig.R, sig.S)
	t.Mod(t, n)
	if t.Sign() == 0 {
		return false
	}

	p1 := ScalarBaseMult(sig.S)
	p2 := pub.ScalarMult(t)
	sum := p1.Add(p2)
	if sum.IsInfinity() {
		return false
	}
	x1Prime, _ := sum.Affine()

	check := new(big.Int).Add(e, x1Prime.Big())
	check.Mod(check, n)

	return check.Cmp(sig.R) == 0
}

func inRange1ToNMinus1(v *big.Int) bool {
	if v.Sign() <= 0 {
		return false
	}
	return v.Cmp(n) < 0
}

// randScalar draws a uniformly random scalar in [1, n-1] from the
// platform CSPRNG.
func randScalar() (*big.Int, error) {
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))
	for {
		raw := make([]byte, field.Width)
		if _, err := rand.Read(raw); err != nil {
			return nil, ErrRngFailure
		}
		k := new(big.Int).SetBytes(raw)
		if k.Sign() == 0 || k.Cmp(nMinus1) > 0 {
			continue
		}
		return k, nil
	}
}

// derSignature is the ASN.1 shape of an SM2 signature: SEQUENCE{r
// INTEGER, s INTEGER}. encoding/asn1's big.Int marshaling already
// produces the minimal two's-complement form (a leading 0x00 byte
// exactly when the magnitude's high bit is set).
type derSignature struct {
	R, S *big.Int
}

// Marshal serializes sig per der: either two fixed 32-byte
// big-endian fields concatenated, or a DER SEQUENCE{r,s}.
func (sig *Signature) Marshal(der bool) ([]byte, error) {
	if der {
		return asn1.Marshal(derSignature{R: sig.R, S: sig.S})
	}
	out := make([]byte, 2*field.Width)
	copy(out[:field.Width], Fn.Create(sig.R).ToBytes(field.Width))
	copy(out[field.Width:], Fn.Create(sig.S).ToBytes(field.Width))
	return out, nil
}

// UnmarshalSignature parses sig per der: either a fixed 64-byte r||s,
// or a DER SEQUENCE{r,s}.
func UnmarshalSignature(data []byte, der bool) (*Signature, error) {
	if der {
		var parsed derSignature
		rest, err := asn1.Unmarshal(data, &parsed)
		if err != nil || len(rest) != 0 {
			return nil, ErrInvalidEncoding
		}
		return &Signature{R: parsed.R, S: parsed.S}, nil
	}
	if len(data) != 2*field.Width {
		return nil, ErrInvalidEncoding
	}
	r := new(big.Int).SetBytes(data[:field.Width])
	s := new(big.Int).SetBytes(data[field.Width:])
	return &Signature{R: r, S: s}, nil
}
