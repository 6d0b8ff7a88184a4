// Package audit wraps the sm2/sm3/sm4 primitives in the enterprise
// key-custody shell a deployment needs around them: an HSM-storage
// abstraction, key lifecycle tracking, role-based access control, and a
// compliance report that exercises the real GM/T known-answer vectors
// instead of reporting canned numbers.
package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// HSMKeyStorage abstracts hardware-backed custody of an SM2 private
// scalar. ImportKey/ExportKey move the 32-byte big-endian scalar in and
// out; callers are responsible for reconstructing a *big.Int via
// sm2.ParsePrivateKeyHex.
type HSMKeyStorage interface {
	ImportKey(key [32]byte) error
	ExportKey() [32]byte
	DetectTamper() bool
	LogAudit(eventType, description, status, operatorID string) error
	GetStatus() HSMStatus
}

// HSMStatus reports an HSM's operational state.
type HSMStatus struct {
	Online           bool
	TamperDetected   bool
	AuthorizedAccess bool
	LastHeartbeat    time.Time
	SecurityEvents   int
}

// HSMConfig selects and configures a storage backend.
type HSMConfig struct {
	HSMType      string // "softhsm" is the only backend this package implements
	TamperSensor bool
	KeySlot      int
}

// Entry records one security-relevant event, shared by SoftHSM's and
// ManagedKey's audit trails. RBACManager records its own Event type.
type Entry struct {
	Timestamp   time.Time
	EventType   string
	Description string
	Status      string
	OperatorID  string
}

// SoftHSM is a software-only HSMKeyStorage reference implementation:
// it keeps the key in process memory, logs every access through
// log/slog, and zeroizes on simulated tamper detection. Real deployments
// swap this for a vendor-specific implementation of the same interface.
type SoftHSM struct {
	config      HSMConfig
	status      HSMStatus
	auditLog    []Entry
	keyMaterial [32]byte
	logger      *slog.Logger
	mu          sync.RWMutex
}

// NewSoftHSM initializes the SoftHSM backend and logs its startup.
func NewSoftHSM(config HSMConfig, logger *slog.Logger) *SoftHSM {
	if logger == nil {
		logger = slog.Default()
	}
	h := &SoftHSM{
		config: config,
		logger: logger,
		status: HSMStatus{LastHeartbeat: time.Now()},
	}
	h.status.Online = true
	h.logAuditLocked("HSM_INIT", "SoftHSM initialized", "SUCCESS", "system")
	return h
}

// ImportKey stores key as the HSM's custodied scalar.
func (h *SoftHSM) ImportKey(key [32]byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.status.Online {
		return fmt.Errorf("hsm not online")
	}
	h.keyMaterial = key
	h.logAuditLocked("KEY_IMPORT", fmt.Sprintf("key imported to slot %d", h.config.KeySlot), "SUCCESS", "admin")
	return nil
}

// ExportKey returns the custodied scalar. Every export is audited at
// WARNING severity since it leaves the custody boundary.
func (h *SoftHSM) ExportKey() [32]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logAuditLocked("KEY_EXPORT", fmt.Sprintf("key exported from slot %d", h.config.KeySlot), "WARNING", "admin")
	return h.keyMaterial
}

// DetectTamper simulates a tamper-sensor poll. SoftHSM has no physical
// sensor, so this only ever reports tamper when TamperSensor is enabled
// and a test has explicitly forced it via ForceTamper.
func (h *SoftHSM) DetectTamper() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.config.TamperSensor {
		return false
	}
	if h.status.TamperDetected {
		h.zeroizeLocked()
	}
	return h.status.TamperDetected
}

// ForceTamper marks the module as tampered, for drills and tests: the
// next DetectTamper call zeroizes the custodied key.
func (h *SoftHSM) ForceTamper() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.TamperDetected = true
	h.logAuditLocked("TAMPER_ALERT", "tamper forced for drill/test", "CRITICAL", "system")
}

func (h *SoftHSM) zeroizeLocked() {
	for i := range h.keyMaterial {
		h.keyMaterial[i] = 0
	}
	h.logAuditLocked("ZEROIZE", "key zeroized after tamper", "SUCCESS", "system")
}

// LogAudit appends an entry to the HSM's own audit trail and mirrors it
// to the structured logger.
func (h *SoftHSM) LogAudit(eventType, description, status, operatorID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logAuditLocked(eventType, description, status, operatorID)
	return nil
}

// logAuditLocked is LogAudit's body, callable from methods that already
// hold h.mu.
func (h *SoftHSM) logAuditLocked(eventType, description, status, operatorID string) {
	entry := Entry{Timestamp: time.Now(), EventType: eventType, Description: description, Status: status, OperatorID: operatorID}
	h.auditLog = append(h.auditLog, entry)
	h.status.SecurityEvents++
	h.logger.Info("hsm audit", "event", eventType, "description", description, "status", status, "operator", operatorID)
}

// GetStatus returns the HSM's current status, refreshing the heartbeat.
func (h *SoftHSM) GetStatus() HSMStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.status.LastHeartbeat = time.Now()
	return h.status
}

// GetAuditLog returns a copy of the HSM's audit trail.
func (h *SoftHSM) GetAuditLog() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.auditLog))
	copy(out, h.auditLog)
	return out
}
