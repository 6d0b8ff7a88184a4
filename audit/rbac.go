package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Role is a named bundle of Permissions.
type Role string

const (
	RoleAdmin       Role = "admin"       // full access, including user management
	RoleOperator    Role = "operator"    // day-to-day sign/verify/encrypt/decrypt
	RoleAuditor     Role = "auditor"     // read-only: audit log and compliance report
	RoleMaintenance Role = "maintenance" // key generation, rotation, destruction
)

// Permission names one gated operation against this module's SM2/SM3/SM4
// surface.
type Permission string

const (
	PermSign         Permission = "sign"
	PermVerify       Permission = "verify"
	PermEncrypt      Permission = "encrypt"
	PermDecrypt      Permission = "decrypt"
	PermGenerateKey  Permission = "generate_key"
	PermRotateKey    Permission = "rotate_key"
	PermDestroyKey   Permission = "destroy_key"
	PermViewAuditLog Permission = "view_audit_log"
)

// User is a system principal bound to exactly one Role at a time.
type User struct {
	UserID      string
	Username    string
	Role        Role
	CreatedAt   time.Time
	LastAccess  time.Time
	AccessCount int64
	Permissions []Permission
}

// Event logs one access-control decision.
type Event struct {
	Timestamp  time.Time
	UserID     string
	Username   string
	Action     string
	Resource   string
	Result     string
	Permission Permission
	Details    string
}

// RBACManager binds users to roles and roles to permissions, and
// records every permission check as an Event.
type RBACManager struct {
	users     map[string]*User
	rolePerms map[Role][]Permission
	auditLog  []Event
	logger    *slog.Logger
	mu        sync.RWMutex
}

// NewRBACManager builds the default role -> permission mapping used
// throughout this package's demos and tests.
func NewRBACManager(logger *slog.Logger) *RBACManager {
	if logger == nil {
		logger = slog.Default()
	}
	rbac := &RBACManager{
		users:     make(map[string]*User),
		rolePerms: make(map[Role][]Permission),
		logger:    logger,
	}
	rbac.rolePerms[RoleAdmin] = []Permission{
		PermSign, PermVerify, PermEncrypt, PermDecrypt,
		PermGenerateKey, PermRotateKey, PermDestroyKey, PermViewAuditLog,
	}
	rbac.rolePerms[RoleOperator] = []Permission{PermSign, PermVerify, PermEncrypt, PermDecrypt}
	rbac.rolePerms[RoleAuditor] = []Permission{PermViewAuditLog}
	rbac.rolePerms[RoleMaintenance] = []Permission{PermGenerateKey, PermRotateKey, PermDestroyKey}
	return rbac
}

// CreateUser registers a new principal under role.
func (rbac *RBACManager) CreateUser(userID, username string, role Role) (*User, error) {
	rbac.mu.Lock()
	defer rbac.mu.Unlock()

	if _, exists := rbac.users[userID]; exists {
		return nil, fmt.Errorf("user %s already exists", userID)
	}
	perms, ok := rbac.rolePerms[role]
	if !ok {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	user := &User{
		UserID:      userID,
		Username:    username,
		Role:        role,
		CreatedAt:   time.Now(),
		LastAccess:  time.Now(),
		Permissions: perms,
	}
	rbac.users[userID] = user
	rbac.logEventLocked(Event{Timestamp: time.Now(), UserID: "system", Action: "CREATE_USER", Resource: userID, Result: "SUCCESS",
		Details: fmt.Sprintf("created user %s with role %s", username, role)})
	return user, nil
}

// CheckPermission reports whether userID currently holds permission.
// A denial is recorded as an audit Event; a grant only updates the
// user's LastAccess and AccessCount.
func (rbac *RBACManager) CheckPermission(userID string, permission Permission) bool {
	rbac.mu.Lock()
	defer rbac.mu.Unlock()

	user, exists := rbac.users[userID]
	if !exists {
		rbac.logEventLocked(Event{Timestamp: time.Now(), UserID: userID, Action: "PERMISSION_CHECK",
			Resource: string(permission), Result: "DENIED", Permission: permission, Details: "user not found"})
		return false
	}
	for _, perm := range user.Permissions {
		if perm == permission {
			user.LastAccess = time.Now()
			user.AccessCount++
			return true
		}
	}
	rbac.logEventLocked(Event{Timestamp: time.Now(), UserID: userID, Username: user.Username, Action: "PERMISSION_CHECK",
		Resource: string(permission), Result: "DENIED", Permission: permission,
		Details: fmt.Sprintf("user lacks permission: %s", permission)})
	return false
}

// AuthorizeAction checks permission and records an AUTHORIZED/DENIED
// event for action, returning an error on denial.
func (rbac *RBACManager) AuthorizeAction(userID, action string, permission Permission) error {
	if !rbac.CheckPermission(userID, permission) {
		return fmt.Errorf("access denied: user %s cannot perform %s", userID, action)
	}

	rbac.mu.Lock()
	defer rbac.mu.Unlock()
	user := rbac.users[userID]
	rbac.logEventLocked(Event{Timestamp: time.Now(), UserID: userID, Username: user.Username, Action: action,
		Result: "AUTHORIZED", Permission: permission, Details: fmt.Sprintf("user authorized for: %s", action)})
	rbac.logger.Info("rbac authorized", "user", userID, "action", action, "permission", permission)
	return nil
}

// GetUser retrieves a registered principal.
func (rbac *RBACManager) GetUser(userID string) (*User, error) {
	rbac.mu.RLock()
	defer rbac.mu.RUnlock()
	user, exists := rbac.users[userID]
	if !exists {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	return user, nil
}

// GetAuditLog returns a copy of every recorded access-control event.
func (rbac *RBACManager) GetAuditLog() []Event {
	rbac.mu.RLock()
	defer rbac.mu.RUnlock()
	out := make([]Event, len(rbac.auditLog))
	copy(out, rbac.auditLog)
	return out
}

func (rbac *RBACManager) logEventLocked(event Event) {
	rbac.auditLog = append(rbac.auditLog, event)
}
