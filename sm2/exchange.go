package sm2

import (
	"math/big"

	"gmsuite/field"
	"gmsuite/util"
)

// w = ceil(ceil(log2(n))/2) - 1 = 127 for SM2's 256-bit order.
const exchangeW = 127

var exchangeWBig = new(big.Int).Lsh(big.NewInt(1), exchangeW)
var exchangeWMask = new(big.Int).Sub(exchangeWBig, big.NewInt(1))

// CalculateSharedKey runs the GM/T 0003.3 two-party authenticated key
// agreement from one side: given this party's static keypair, its
// ephemeral keypair, the peer's static and ephemeral public keys, and
// the desired key length, derive klen bytes of shared key material.
// The optional confirmation hashes S1/S2/SA/SB of GM/T 0003.3 are not
// computed; only K is returned.
//
// isRecipient swaps the Z-value concatenation order: the initiator's
// KDF input ends with ZA||ZB, the responder's (after the swap, from
// its own point of view) ends with ZB||ZA. idSelf/idPeer default to
// DefaultID when empty.
func CalculateSharedKey(
	self *KeyPair, selfEphemeral *KeyPair,
	peerStaticPub, peerEphemeralPub Point,
	klen int, isRecipient bool,
	idSelf, idPeer string,
) ([]byte, error) {
	xBarSelf := truncatedX(selfEphemeral.PublicKey)
	t := Fn.Create(self.PrivateKey).Add(Fn.Create(new(big.Int).Mul(xBarSelf, selfEphemeral.PrivateKey)))

	xBarPeer := truncatedX(peerEphemeralPub)
	u := peerStaticPub.Add(peerEphemeralPub.ScalarMult(xBarPeer)).ScalarMult(t.Big())
	if u.IsInfinity() {
		return nil, ErrInvalidKey
	}
	ux, uy := u.Affine()

	zSelf := ZValue(idSelf, self.PublicKey)
	zPeer := ZValue(idPeer, peerStaticPub)

	var kdfInput []byte
	if isRecipient {
		kdfInput = util.Concat(ux.ToBytes(field.Width), uy.ToBytes(field.Width), zPeer[:], zSelf[:])
	} else {
		kdfInput = util.Concat(ux.ToBytes(field.Width), uy.ToBytes(field.Width), zSelf[:], zPeer[:])
	}

	k := KDF(kdfInput, klen, nil)
	if ZeroOutput(k) {
		return nil, ErrInvalidCiphertext
	}
	return k, nil
}

// truncatedX returns xBar = W + (pt.x AND Wmask) for either party's
// ephemeral point, W = 2^127.
func truncatedX(pt Point) *big.Int {
	x, _ := pt.Affine()
	masked := new(big.Int).And(x.Big(), exchangeWMask)
	return new(big.Int).Add(exchangeWBig, masked)
}

// ECDH returns the raw 32-byte X coordinate of d*P, with no KDF
// applied. Distinct from CalculateSharedKey, which is the full
// authenticated agreement.
func ECDH(priv *big.Int, pub Point) [field.Width]byte {
	shared := pub.ScalarMult(priv)
	x, _ := shared.Affine()
	var out [field.Width]byte
	copy(out[:], x.ToBytes(field.Width))
	return out
}
