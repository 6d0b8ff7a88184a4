package sm2

import "errors"

// Failure categories for malformed input and precondition violations.
// Signature-verification failure is never represented here: Verify
// reports a plain bool, never an error, so callers can't conflate
// forgery with a programmer/precondition mistake.
var (
	// ErrInvalidEncoding covers malformed hex, bad length, or an
	// unrecognized point-serialization prefix.
	ErrInvalidEncoding = errors.New("sm2: invalid encoding")

	// ErrInvalidKey covers a private key outside [1, n-1], a public
	// key not on the curve, or a public key equal to the point at
	// infinity.
	ErrInvalidKey = errors.New("sm2: invalid key")

	// ErrPointAtInfinity is returned when a caller asks to serialize
	// or otherwise treat the point at infinity as a valid public key.
	ErrPointAtInfinity = errors.New("sm2: point at infinity")

	// ErrInvalidCiphertext covers a decrypt-time tag mismatch or an
	// all-zero KDF output.
	ErrInvalidCiphertext = errors.New("sm2: invalid ciphertext")

	// ErrRngFailure is returned when the CSPRNG supplies fewer bytes
	// than requested.
	ErrRngFailure = errors.New("sm2: RNG failure")
)
