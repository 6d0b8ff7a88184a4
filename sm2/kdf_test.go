package sm2

import (
	"bytes"
	"testing"
)

func TestKDFLengthAndDeterminism(t *testing.T) {
	z := []byte("shared secret octets")

	for _, klen := range []int{1, 16, 32, 33, 64, 100} {
		out := KDF(z, klen, nil)
		if len(out) != klen {
			t.Fatalf("KDF(klen=%d) returned %d bytes", klen, len(out))
		}
	}

	if !bytes.Equal(KDF(z, 48, nil), KDF(z, 48, nil)) {
		t.Fatal("KDF is not deterministic for identical inputs")
	}
	if bytes.Equal(KDF(z, 32, nil), KDF([]byte("different octets"), 32, nil)) {
		t.Fatal("KDF ignored its input")
	}
}

func TestKDFZeroLengthIsEmpty(t *testing.T) {
	if out := KDF([]byte("z"), 0, nil); len(out) != 0 {
		t.Fatalf("KDF(klen=0) = %x, want empty", out)
	}
}

func TestKDFSuffixChangesOutput(t *testing.T) {
	z := []byte("shared secret octets")
	plain := KDF(z, 32, nil)
	suffixed := KDF(z, 32, []byte("iv"))
	if bytes.Equal(plain, suffixed) {
		t.Fatal("KDF suffix had no effect on the derived stream")
	}
}

func TestZeroOutput(t *testing.T) {
	if !ZeroOutput([]byte{0, 0, 0}) {
		t.Fatal("all-zero buffer not reported as zero")
	}
	if ZeroOutput([]byte{0, 1, 0}) {
		t.Fatal("nonzero buffer reported as zero")
	}
	if ZeroOutput(nil) {
		t.Fatal("empty buffer should not count as a zero KDF result")
	}
}

// TestZValueDefaultsAndIDSensitivity checks the identifier binding: an
// empty id falls back to the default, and distinct ids hash apart.
func TestZValueDefaultsAndIDSensitivity(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	zEmpty := ZValue("", kp.PublicKey)
	zDefault := ZValue(DefaultID, kp.PublicKey)
	if zEmpty != zDefault {
		t.Fatal("empty ID did not fall back to the default identifier")
	}

	zOther := ZValue("alice@example.com", kp.PublicKey)
	if zOther == zDefault {
		t.Fatal("distinct identifiers produced the same Z value")
	}

	other, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if ZValue(DefaultID, other.PublicKey) == zDefault {
		t.Fatal("distinct public keys produced the same Z value")
	}
}
