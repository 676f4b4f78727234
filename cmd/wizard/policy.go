package main

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Role is a CLI operator role, gating which subcommands the -role flag's
// value may invoke. Adapted from a role-based access control layer; scoped down to
// the handful of permissions this CLI's subcommands actually exercise.
type Role string

const (
	RoleAdmin    Role = "admin"    // every subcommand
	RoleOperator Role = "operator" // encipher/decipher/hash
	RoleAuditor  Role = "auditor"  // summary only
)

// Permission is one CLI capability a Role may or may not hold.
type Permission string

const (
	PermEncipher     Permission = "encipher"
	PermDecipher     Permission = "decipher"
	PermHash         Permission = "hash"
	PermAuthenticate Permission = "authenticate"
	PermSummary      Permission = "summary"
)

var rolePermissions = map[Role]map[Permission]bool{
	RoleAdmin: {
		PermEncipher: true, PermDecipher: true, PermHash: true,
		PermAuthenticate: true, PermSummary: true,
	},
	RoleOperator: {
		PermEncipher: true, PermDecipher: true, PermHash: true,
	},
	RoleAuditor: {
		PermSummary: true,
	},
}

// policyEvent is one authorization decision, kept for the summary
// subcommand's diagnostics.
type policyEvent struct {
	Timestamp  time.Time
	Role       Role
	Permission Permission
	Allowed    bool
}

var (
	policyMu  sync.Mutex
	policyLog []policyEvent
)

// authorize checks whether role may exercise permission, logging the
// decision. An unknown role holds no permissions.
func authorize(role Role, permission Permission) error {
	policyMu.Lock()
	defer policyMu.Unlock()

	allowed := rolePermissions[role][permission]
	policyLog = append(policyLog, policyEvent{
		Timestamp:  time.Now(),
		Role:       role,
		Permission: permission,
		Allowed:    allowed,
	})
	slog.Debug("policy decision", "role", role, "permission", permission, "allowed", allowed)
	if !allowed {
		return fmt.Errorf("role %q is not authorized for %q", role, permission)
	}
	return nil
}

// policyEventCount reports how many authorization decisions have been
// logged this process, for the summary subcommand.
func policyEventCount() int {
	policyMu.Lock()
	defer policyMu.Unlock()
	return len(policyLog)
}

func currentRole() Role {
	role := Role(roleFlag)
	if _, ok := rolePermissions[role]; !ok {
		return RoleAdmin // unset or unrecognized flag defaults to unrestricted local use
	}
	return role
}
