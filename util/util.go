// Package util provides the byte/integer conversion helpers that sit
// underneath every other package in this module: hex <-> bytes,
// UTF-8 <-> bytes, big-endian fixed-width integer <-> bytes, and buffer
// concatenation. None of this is cryptographic; it exists so callers can
// cross the API boundary in hex without every package re-implementing
// encoding/hex.
package util

import (
	"encoding/hex"
	"fmt"
)

// ErrOddLength is returned by HexToBytes when given an odd-length string.
var ErrOddLength = fmt.Errorf("util: hex string must have even length")

// HexToBytes decodes a hex string, tolerant of case, into a fresh byte
// slice. The caller's string is not retained.
func HexToBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, ErrOddLength
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("util: invalid hex: %w", err)
	}
	return out, nil
}

// BytesToHex renders b as a lowercase hex string.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// UTF8ToBytes returns the UTF-8 byte encoding of s.
func UTF8ToBytes(s string) []byte {
	return []byte(s)
}

// BytesToUTF8 interprets b as UTF-8 text.
func BytesToUTF8(b []byte) string {
	return string(b)
}

// Concat returns a freshly allocated concatenation of all the given
// byte slices, in order.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// PutUint16BE writes v as a 2-byte big-endian value.
func PutUint16BE(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

// PutUint32BE writes v as a 4-byte big-endian value.
func PutUint32BE(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// PutUint64BE writes v as an 8-byte big-endian value.
func PutUint64BE(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[7-i] = byte(v >> (8 * i))
	}
	return out
}

// Zeroize overwrites b with zeros in place. Soft-contract only: on a
// garbage-collected runtime this does not guarantee the runtime hasn't
// already copied the underlying bytes elsewhere.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
