package sm2

import (
	"crypto/rand"
	"math/big"

	"gmsuite/field"
	"gmsuite/util"
)

// KeyPair is an SM2 private/public scalar pair, with the invariant
// PublicKey = PrivateKey * G. Public keys are always derived, never
// independently constructed.
type KeyPair struct {
	PrivateKey *big.Int
	PublicKey  Point
}

// GenerateKeyPair draws 32 random bytes from the platform CSPRNG,
// reduces them to d = (raw mod (n-1)) + 1 so d is in [1, n-1], and
// derives P = d*G. It fails rather than fall back to a
// non-cryptographic PRNG.
func GenerateKeyPair() (*KeyPair, error) {
	nMinus1 := new(big.Int).Sub(n, big.NewInt(1))

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, ErrRngFailure
	}
	d := new(big.Int).Mod(new(big.Int).SetBytes(raw), nMinus1)
	d.Add(d, big.NewInt(1))

	pub := ScalarBaseMult(d)
	return &KeyPair{PrivateKey: d, PublicKey: pub}, nil
}

// PrivateKeyHex renders the private scalar as 32-byte big-endian hex.
func (kp *KeyPair) PrivateKeyHex() string {
	return util.BytesToHex(Fn.Create(kp.PrivateKey).ToBytes(field.Width))
}

// PublicKeyHex renders the public key in uncompressed wire form.
func (kp *KeyPair) PublicKeyHex() (string, error) {
	b, err := MarshalUncompressed(kp.PublicKey)
	if err != nil {
		return "", err
	}
	return util.BytesToHex(b), nil
}

// ParsePrivateKeyHex decodes a 32-byte big-endian hex scalar, rejecting
// values outside [1, n-1].
func ParsePrivateKeyHex(s string) (*big.Int, error) {
	b, err := util.HexToBytes(s)
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	if len(b) != field.Width {
		return nil, ErrInvalidEncoding
	}
	d := new(big.Int).SetBytes(b)
	if d.Sign() <= 0 || d.Cmp(new(big.Int).Sub(n, big.NewInt(1))) > 0 {
		return nil, ErrInvalidKey
	}
	return d, nil
}

// ParsePublicKeyHex decodes an uncompressed or compressed public key,
// validating it is on the curve and is not the point at infinity.
func ParsePublicKeyHex(s string) (Point, error) {
	b, err := util.HexToBytes(s)
	if err != nil {
		return Point{}, ErrInvalidEncoding
	}
	pt, err := Unmarshal(b)
	if err != nil {
		return Point{}, err
	}
	if pt.IsInfinity() {
		return Point{}, ErrInvalidKey
	}
	return pt, nil
}
