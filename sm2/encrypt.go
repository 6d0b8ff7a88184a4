package sm2

import (
	"crypto/subtle"
	"math/big"

	"gmsuite/field"
	"gmsuite/sm3"
	"gmsuite/util"
)

// Layout selects the SM2 ciphertext component ordering.
type Layout int

const (
	// LayoutC1C3C2 is the current GM/T standard's default layout and
	// this library's default.
	LayoutC1C3C2 Layout = iota
	// LayoutC1C2C3 is the legacy layout, still required on decrypt
	// since there is no in-band indicator of which one was used.
	LayoutC1C2C3
)

const (
	c1Size = 1 + 2*field.Width // uncompressed point encoding
	c3Size = sm3.Size
)

// Encrypt implements GM/T 0003.4 public-key encryption: draw an
// ephemeral k, derive the shared point k*P, KDF-mask the message, tag
// with SM3, and frame the three components per layout.
func Encrypt(msg []byte, pub Point, layout Layout) ([]byte, error) {
	for {
		k, err := randScalar()
		if err != nil {
			return nil, err
		}

		c1Point := ScalarBaseMult(k)
		c1, err := MarshalUncompressed(c1Point)
		if err != nil {
			return nil, err
		}

		sharedPoint := pub.ScalarMult(k)
		if sharedPoint.IsInfinity() {
			continue
		}
		x2, y2 := sharedPoint.Affine()
		x2b, y2b := x2.ToBytes(field.Width), y2.ToBytes(field.Width)

		t := KDF(util.Concat(x2b, y2b), len(msg), nil)
		if ZeroOutput(t) {
			continue
		}

		c2 := make([]byte, len(msg))
		for i := range msg {
			c2[i] = msg[i] ^ t[i]
		}

		c3Digest := sm3.Sum256(util.Concat(x2b, msg, y2b))
		c3 := c3Digest[:]

		switch layout {
		case LayoutC1C2C3:
			return util.Concat(c1, c2, c3), nil
		default:
			return util.Concat(c1, c3, c2), nil
		}
	}
}

// Decrypt reverses Encrypt: parse C1 as a validated point, recompute
// the shared secret with the private key, re-derive the mask, unmask
// C2, and verify C3 before returning the plaintext.
func Decrypt(ct []byte, priv *big.Int, layout Layout) ([]byte, error) {
	if len(ct) < c1Size+c3Size {
		return nil, ErrInvalidCiphertext
	}

	c1Bytes := ct[:c1Size]
	c1Point, err := Unmarshal(c1Bytes)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	var c2, c3 []byte
	switch layout {
	case LayoutC1C2C3:
		rest := ct[c1Size:]
		c2 = rest[:len(rest)-c3Size]
		c3 = rest[len(rest)-c3Size:]
	default:
		c3 = ct[c1Size : c1Size+c3Size]
		c2 = ct[c1Size+c3Size:]
	}

	sharedPoint := c1Point.ScalarMult(priv)
	if sharedPoint.IsInfinity() {
		return nil, ErrInvalidCiphertext
	}
	x2, y2 := sharedPoint.Affine()
	x2b, y2b := x2.ToBytes(field.Width), y2.ToBytes(field.Width)

	t := KDF(util.Concat(x2b, y2b), len(c2), nil)
	if ZeroOutput(t) {
		return nil, ErrInvalidCiphertext
	}

	msg := make([]byte, len(c2))
	for i := range c2 {
		msg[i] = c2[i] ^ t[i]
	}

	wantC3 := sm3.Sum256(util.Concat(x2b, msg, y2b))
	if subtle.ConstantTimeCompare(wantC3[:], c3) != 1 {
		return nil, ErrInvalidCiphertext
	}

	return msg, nil
}
