package sm3

import "crypto/hmac"

// HMAC computes the standard HMAC construction (RFC 2104) over SM3:
// 64-byte block size, 32-byte output, the usual 0x36/0x5C inner/outer
// pads. The standard library's crypto/hmac already implements the
// construction generically over any hash.Hash; we only need to supply
// sm3.New as the hash constructor, the same pattern every other Go hash
// package uses to get HMAC support.
func HMAC(key, msg []byte) []byte {
	mac := hmac.New(New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
