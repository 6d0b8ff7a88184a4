package sm2

import (
	"bytes"
	"testing"
)

func TestCalculateSharedKeySymmetric(t *testing.T) {
	a, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair A: %v", err)
	}
	b, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair B: %v", err)
	}
	aEph, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair A ephemeral: %v", err)
	}
	bEph, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair B ephemeral: %v", err)
	}

	const klen = 16
	idA, idB := "alice@example.com", "bob@example.com"

	keyA, err := CalculateSharedKey(a, aEph, b.PublicKey, bEph.PublicKey, klen, false, idA, idB)
	if err != nil {
		t.Fatalf("CalculateSharedKey (initiator A): %v", err)
	}
	keyB, err := CalculateSharedKey(b, bEph, a.PublicKey, aEph.PublicKey, klen, true, idB, idA)
	if err != nil {
		t.Fatalf("CalculateSharedKey (recipient B): %v", err)
	}

	if !bytes.Equal(keyA, keyB) {
		t.Fatalf("shared keys diverged: A=%x B=%x", keyA, keyB)
	}
	if len(keyA) != klen {
		t.Fatalf("shared key length = %d, want %d", len(keyA), klen)
	}
}

func TestCalculateSharedKeyDefaultIDs(t *testing.T) {
	a, _ := GenerateKeyPair()
	b, _ := GenerateKeyPair()
	aEph, _ := GenerateKeyPair()
	bEph, _ := GenerateKeyPair()

	keyA, err := CalculateSharedKey(a, aEph, b.PublicKey, bEph.PublicKey, 32, false, "", "")
	if err != nil {
		t.Fatalf("CalculateSharedKey (initiator, default IDs): %v", err)
	}
	keyB, err := CalculateSharedKey(b, bEph, a.PublicKey, aEph.PublicKey, 32, true, "", "")
	if err != nil {
		t.Fatalf("CalculateSharedKey (recipient, default IDs): %v", err)
	}
	if !bytes.Equal(keyA, keyB) {
		t.Fatalf("shared keys diverged under default IDs: A=%x B=%x", keyA, keyB)
	}
}

func TestCalculateSharedKeyDiffersWithWrongPeer(t *testing.T) {
	a, _ := GenerateKeyPair()
	b, _ := GenerateKeyPair()
	mallory, _ := GenerateKeyPair()
	aEph, _ := GenerateKeyPair()
	bEph, _ := GenerateKeyPair()
	malloryEph, _ := GenerateKeyPair()

	keyA, err := CalculateSharedKey(a, aEph, b.PublicKey, bEph.PublicKey, 16, false, "a", "b")
	if err != nil {
		t.Fatalf("CalculateSharedKey: %v", err)
	}
	keyWrong, err := CalculateSharedKey(a, aEph, mallory.PublicKey, malloryEph.PublicKey, 16, false, "a", "m")
	if err != nil {
		t.Fatalf("CalculateSharedKey with substituted peer: %v", err)
	}
	if bytes.Equal(keyA, keyWrong) {
		t.Fatal("shared key did not change when the peer's static/ephemeral keys were substituted")
	}
}

// TestECDHMatchesManualScalarMult cross-checks the ECDH convenience
// function against a direct ScalarMult, independent of
// CalculateSharedKey's KDF/Z-value plumbing.
func TestECDHMatchesManualScalarMult(t *testing.T) {
	a, _ := GenerateKeyPair()
	b, _ := GenerateKeyPair()

	got := ECDH(a.PrivateKey, b.PublicKey)
	want, _ := b.PublicKey.ScalarMult(a.PrivateKey).Affine()

	if !bytes.Equal(got[:], want.ToBytes(32)) {
		t.Fatal("ECDH does not match a direct scalar multiplication of the peer's public key")
	}
}
