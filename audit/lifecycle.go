package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gmsuite/field"
	"gmsuite/sm2"
	"gmsuite/util"
)

// KeyState is a position in an SM2 keypair's custody lifecycle.
type KeyState int

const (
	StateGenerated KeyState = iota
	StateActivated
	StateDeactivated
	StateDestroyed
)

func (s KeyState) String() string {
	switch s {
	case StateGenerated:
		return "generated"
	case StateActivated:
		return "activated"
	case StateDeactivated:
		return "deactivated"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// ManagedKey tracks one SM2 keypair's custody lifecycle: its current
// state, rotation history, and audit trail. PrivateScalar is the
// big-endian byte form of KeyPair.PrivateKey kept alongside it so
// Destroy has bytes it can actually zero; zeroing a *big.Int in place
// isn't possible without reaching into its unexported internals.
type ManagedKey struct {
	KeyID         string
	KeyPair       *sm2.KeyPair
	PrivateScalar [field.Width]byte
	State         KeyState
	Generated     time.Time
	RotationDue   time.Time
	RotationCount int
	Destroyed     time.Time
	CreatedBy     string
	AuditTrail    []Entry
	mu            sync.RWMutex
}

// KeyLifecycleManager tracks every SM2 keypair the process has
// generated, optionally custodying each one's private scalar in an
// HSMKeyStorage backend.
type KeyLifecycleManager struct {
	keys             map[string]*ManagedKey
	hsm              HSMKeyStorage
	rotationInterval time.Duration
	logger           *slog.Logger
	mu               sync.RWMutex
}

// NewKeyLifecycleManager creates a manager with an annual rotation
// interval, matching GM/T deployment guidance for signing keys. hsm may
// be nil if no hardware custody backend is configured.
func NewKeyLifecycleManager(hsm HSMKeyStorage, logger *slog.Logger) *KeyLifecycleManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyLifecycleManager{
		keys:             make(map[string]*ManagedKey),
		hsm:              hsm,
		rotationInterval: 365 * 24 * time.Hour,
		logger:           logger,
	}
}

// GenerateKey draws a fresh SM2 keypair via sm2.GenerateKeyPair, assigns
// it a random KeyID, imports its private scalar to the HSM backend (if
// configured), and begins tracking its lifecycle.
func (klm *KeyLifecycleManager) GenerateKey(operatorID string) (*ManagedKey, error) {
	kp, err := sm2.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate sm2 keypair: %w", err)
	}

	klm.mu.Lock()
	defer klm.mu.Unlock()

	keyID := uuid.NewString()
	var scalar [field.Width]byte
	copy(scalar[:], kp.PrivateKey.FillBytes(make([]byte, field.Width)))

	mk := &ManagedKey{
		KeyID:         keyID,
		KeyPair:       kp,
		PrivateScalar: scalar,
		Generated:     time.Now(),
		State:         StateGenerated,
		CreatedBy:     operatorID,
	}

	if klm.hsm != nil {
		if err := klm.hsm.ImportKey(scalar); err != nil {
			return nil, fmt.Errorf("import key to hsm: %w", err)
		}
	}

	klm.keys[keyID] = mk
	mk.addAuditEntry("KEY_GENERATED", fmt.Sprintf("sm2 key %s generated", keyID), "SUCCESS", operatorID)
	klm.logger.Info("key generated", "key_id", keyID, "operator", operatorID)

	return mk, nil
}

// ActivateKey transitions a generated key into active use.
func (klm *KeyLifecycleManager) ActivateKey(keyID, operatorID string) error {
	mk, err := klm.lookup(keyID)
	if err != nil {
		return err
	}

	mk.mu.Lock()
	defer mk.mu.Unlock()
	if mk.State != StateGenerated {
		return fmt.Errorf("key %s must be in generated state to activate, is %s", keyID, mk.State)
	}
	mk.State = StateActivated
	mk.RotationDue = time.Now().Add(klm.rotationInterval)
	mk.addAuditEntry("KEY_ACTIVATED", fmt.Sprintf("key %s activated", keyID), "SUCCESS", operatorID)
	klm.logger.Info("key activated", "key_id", keyID, "operator", operatorID)
	return nil
}

// RotateKey replaces an activated key's material with a freshly
// generated SM2 keypair, preserving the KeyID and audit trail.
func (klm *KeyLifecycleManager) RotateKey(keyID, operatorID string) (*ManagedKey, error) {
	mk, err := klm.lookup(keyID)
	if err != nil {
		return nil, err
	}

	newKP, err := sm2.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate replacement keypair: %w", err)
	}

	mk.mu.Lock()
	defer mk.mu.Unlock()
	if mk.State != StateActivated {
		return nil, fmt.Errorf("only activated keys can be rotated, key %s is %s", keyID, mk.State)
	}

	var newScalar [field.Width]byte
	copy(newScalar[:], newKP.PrivateKey.FillBytes(make([]byte, field.Width)))

	if klm.hsm != nil {
		if err := klm.hsm.ImportKey(newScalar); err != nil {
			return nil, fmt.Errorf("import rotated key to hsm: %w", err)
		}
	}

	mk.KeyPair = newKP
	mk.PrivateScalar = newScalar
	mk.RotationCount++
	mk.RotationDue = time.Now().Add(klm.rotationInterval)
	mk.addAuditEntry("KEY_ROTATED", fmt.Sprintf("key %s rotated (count: %d)", keyID, mk.RotationCount), "SUCCESS", operatorID)
	klm.logger.Info("key rotated", "key_id", keyID, "rotation_count", mk.RotationCount, "operator", operatorID)

	return mk, nil
}

// DeactivateKey marks a key as no longer usable for new operations,
// without destroying its material (it may still be needed to verify
// signatures or decrypt old ciphertexts).
func (klm *KeyLifecycleManager) DeactivateKey(keyID, operatorID string) error {
	mk, err := klm.lookup(keyID)
	if err != nil {
		return err
	}
	mk.mu.Lock()
	defer mk.mu.Unlock()
	mk.State = StateDeactivated
	mk.addAuditEntry("KEY_DEACTIVATED", fmt.Sprintf("key %s deactivated", keyID), "SUCCESS", operatorID)
	return nil
}

// DestroyKey zeroizes the tracked private scalar and drops the live
// *sm2.KeyPair reference. This is a soft contract: Go does not
// guarantee when the garbage collector reclaims the big.Int's own
// backing array. The copy of the scalar imported into the HSM backend
// at generation or rotation is not cleared by DestroyKey.
func (klm *KeyLifecycleManager) DestroyKey(keyID, operatorID string) error {
	mk, err := klm.lookup(keyID)
	if err != nil {
		return err
	}
	mk.mu.Lock()
	defer mk.mu.Unlock()

	util.Zeroize(mk.PrivateScalar[:])
	mk.KeyPair = nil
	mk.State = StateDestroyed
	mk.Destroyed = time.Now()
	mk.addAuditEntry("KEY_DESTROYED", fmt.Sprintf("key %s zeroized and destroyed", keyID), "SUCCESS", operatorID)
	klm.logger.Warn("key destroyed", "key_id", keyID, "operator", operatorID)
	return nil
}

// GetKeysNeedingRotation lists activated keys past their RotationDue.
func (klm *KeyLifecycleManager) GetKeysNeedingRotation() []string {
	klm.mu.RLock()
	defer klm.mu.RUnlock()

	now := time.Now()
	var due []string
	for keyID, mk := range klm.keys {
		mk.mu.RLock()
		if mk.State == StateActivated && now.After(mk.RotationDue) {
			due = append(due, keyID)
		}
		mk.mu.RUnlock()
	}
	return due
}

// GetAuditTrail returns a copy of keyID's audit trail.
func (klm *KeyLifecycleManager) GetAuditTrail(keyID string) []Entry {
	mk, err := klm.lookup(keyID)
	if err != nil {
		return nil
	}
	mk.mu.RLock()
	defer mk.mu.RUnlock()
	out := make([]Entry, len(mk.AuditTrail))
	copy(out, mk.AuditTrail)
	return out
}

func (klm *KeyLifecycleManager) lookup(keyID string) (*ManagedKey, error) {
	klm.mu.RLock()
	defer klm.mu.RUnlock()
	mk, ok := klm.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("key %s not found", keyID)
	}
	return mk, nil
}

func (mk *ManagedKey) addAuditEntry(eventType, description, status, operatorID string) {
	mk.AuditTrail = append(mk.AuditTrail, Entry{
		Timestamp:   time.Now(),
		EventType:   eventType,
		Description: description,
		Status:      status,
		OperatorID:  operatorID,
	})
}
