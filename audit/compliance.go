package audit

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math"
	"time"

	"gmsuite/sm2"
	"gmsuite/sm3"
	"gmsuite/sm4"
	"gmsuite/util"
)

// ComplianceReport summarizes whether this module's GM/T implementations
// pass their known-answer vectors and whether the ambient custody
// controls (HSM, RBAC, key lifecycle) are wired in. Every boolean here
// is the result of actually running the corresponding check.
type ComplianceReport struct {
	GeneratedAt time.Time

	SM3KnownAnswerTestsPassed bool
	SM4KnownAnswerTestsPassed bool
	SM2KnownAnswerTestsPassed bool
	EntropyValidationPassed   bool
	HSMIntegrationReady       bool
	KeyLifecycleReady         bool
	AuditLoggingEnabled       bool
	RBACEnabled               bool

	ComplianceScore int
}

// RunFullCompliance runs every check and populates score. hsm, klm, and
// rbac may be nil, in which case their readiness checks simply fail.
func RunFullCompliance(hsm HSMKeyStorage, klm *KeyLifecycleManager, rbac *RBACManager) *ComplianceReport {
	cr := &ComplianceReport{GeneratedAt: time.Now()}

	cr.SM3KnownAnswerTestsPassed = checkSM3KAT()
	cr.SM4KnownAnswerTestsPassed = checkSM4KAT()
	cr.SM2KnownAnswerTestsPassed = checkSM2RoundTrip()
	cr.EntropyValidationPassed = checkEntropy()
	cr.HSMIntegrationReady = hsm != nil && hsm.GetStatus().Online
	cr.KeyLifecycleReady = klm != nil
	cr.AuditLoggingEnabled = klm != nil || hsm != nil
	cr.RBACEnabled = rbac != nil

	cr.calculateScore()
	return cr
}

// checkSM3KAT verifies SM3's empty-input known-answer vector from
// GM/T 0004-2012.
func checkSM3KAT() bool {
	want, err := util.HexToBytes("1ab21d8355cfa17f8e61194831e81a8f22bec8c728fefb747ed035eb5082aa2b")
	if err != nil {
		return false
	}
	got := sm3.Sum256(nil)
	return bytes.Equal(got[:], want)
}

// checkSM4KAT verifies SM4's GM/T 0002-2012 appendix A.1 single-block
// known-answer vector.
func checkSM4KAT() bool {
	key, err1 := util.HexToBytes("0123456789abcdeffedcba9876543210")
	pt, err2 := util.HexToBytes("0123456789abcdeffedcba9876543210")
	want, err3 := util.HexToBytes("681edf34d206965e86b3e94f536e4246")
	if err1 != nil || err2 != nil || err3 != nil || len(key) != sm4.KeySize || len(pt) != sm4.BlockSize {
		return false
	}
	rk, err := sm4.ExpandKey(key)
	if err != nil {
		return false
	}
	ct := make([]byte, sm4.BlockSize)
	if err := sm4.EncryptBlock(rk, ct, pt); err != nil {
		return false
	}
	return bytes.Equal(ct, want)
}

// checkSM2RoundTrip exercises a live sign/verify and encrypt/decrypt
// cycle: compliance here means the algebra is self-consistent right
// now, not a match against an external fixed vector.
func checkSM2RoundTrip() bool {
	kp, err := sm2.GenerateKeyPair()
	if err != nil {
		return false
	}
	msg := []byte("gm/t 0003 compliance self-test")
	opts := sm2.DefaultSignOptions()
	sig, err := sm2.Sign(msg, kp.PrivateKey, kp.PublicKey, opts)
	if err != nil || !sm2.Verify(msg, sig, kp.PublicKey, opts) {
		return false
	}

	ct, err := sm2.Encrypt(msg, kp.PublicKey, sm2.LayoutC1C3C2)
	if err != nil {
		return false
	}
	pt, err := sm2.Decrypt(ct, kp.PrivateKey, sm2.LayoutC1C3C2)
	if err != nil {
		return false
	}
	return bytes.Equal(pt, msg)
}

// checkEntropy draws a sample from crypto/rand and runs the monobit
// frequency test: count the 1-bits and require the ratio to sit within
// 3 standard deviations of 0.5.
func checkEntropy() bool {
	const sampleBytes = 4096
	sample := make([]byte, sampleBytes)
	if _, err := rand.Read(sample); err != nil {
		return false
	}
	ones := 0
	for _, b := range sample {
		for i := 0; i < 8; i++ {
			if (b>>i)&1 == 1 {
				ones++
			}
		}
	}
	totalBits := float64(sampleBytes * 8)
	ratio := float64(ones) / totalBits
	stdDev := 0.5 / math.Sqrt(totalBits)
	return math.Abs(ratio-0.5) <= 3*stdDev
}

func (cr *ComplianceReport) calculateScore() {
	checks := []bool{
		cr.SM3KnownAnswerTestsPassed,
		cr.SM4KnownAnswerTestsPassed,
		cr.SM2KnownAnswerTestsPassed,
		cr.EntropyValidationPassed,
		cr.HSMIntegrationReady,
		cr.KeyLifecycleReady,
		cr.AuditLoggingEnabled,
		cr.RBACEnabled,
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	// Computed from the running pass count so the all-pass case is
	// exactly 100 regardless of how many checks there are.
	cr.ComplianceScore = (100 * passed) / len(checks)
}

// Summary renders a short human-readable status line per check.
func (cr *ComplianceReport) Summary() string {
	line := func(ok bool, label string) string {
		mark := "FAIL"
		if ok {
			mark = "PASS"
		}
		return fmt.Sprintf("  [%s] %s\n", mark, label)
	}
	out := fmt.Sprintf("Compliance report generated %s\n", cr.GeneratedAt.Format(time.RFC3339))
	out += line(cr.SM3KnownAnswerTestsPassed, "SM3 known-answer vector (GM/T 0004)")
	out += line(cr.SM4KnownAnswerTestsPassed, "SM4 known-answer vector (GM/T 0002)")
	out += line(cr.SM2KnownAnswerTestsPassed, "SM2 sign/verify + encrypt/decrypt self-test (GM/T 0003)")
	out += line(cr.EntropyValidationPassed, "crypto/rand monobit entropy check")
	out += line(cr.HSMIntegrationReady, "HSM custody backend online")
	out += line(cr.KeyLifecycleReady, "key lifecycle manager configured")
	out += line(cr.AuditLoggingEnabled, "audit logging enabled")
	out += line(cr.RBACEnabled, "role-based access control enabled")
	out += fmt.Sprintf("Score: %d/100\n", cr.ComplianceScore)
	return out
}
