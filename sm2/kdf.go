package sm2

import (
	"gmsuite/sm3"
	"gmsuite/util"
)

// KDF implements the GM/T 0003.4 counter-mode key derivation function:
// t = ceil(klen/32) blocks Hi = SM3(Z || ct(i) || IV), ct(i) a 4-byte
// big-endian counter starting at 1, concatenated and truncated to
// klen bytes. An empty klen yields an empty output; an all-zero
// result must be treated as failure by the caller, and ZeroOutput
// reports that condition so the encryption and key-agreement retry
// loops can check it.
func KDF(z []byte, klen int, iv []byte) []byte {
	if klen == 0 {
		return nil
	}
	out := make([]byte, 0, klen)
	for counter := uint32(1); len(out) < klen; counter++ {
		block := sm3.Sum256(util.Concat(z, util.PutUint32BE(counter), iv))
		out = append(out, block[:]...)
	}
	return out[:klen]
}

// ZeroOutput reports whether every byte of a KDF result is zero, the
// condition GM/T 0003 requires callers to treat as derivation failure.
func ZeroOutput(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return len(b) > 0
}
