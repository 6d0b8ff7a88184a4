package sm3

import (
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF derives length bytes from ikm using the RFC 5869 extract-then-
// expand construction with HMAC-SM3, via golang.org/x/crypto/hkdf
// parameterized by sm3.New.
func HKDF(ikm, salt, info []byte, length int) ([]byte, error) {
	r := hkdf.New(New, ikm, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
