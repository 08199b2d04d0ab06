package adapters

import (
	"os"

	"netapply-agent/internal/domain/interfaces"
)

// RealPrivilegeChecker is a PrivilegeChecker implementation based on the effective UID
type RealPrivilegeChecker struct{}

// NewRealPrivilegeChecker creates a new RealPrivilegeChecker
func NewRealPrivilegeChecker() interfaces.PrivilegeChecker {
	return &RealPrivilegeChecker{}
}

// IsPrivileged reports whether the process runs with administrative privilege
func (c *RealPrivilegeChecker) IsPrivileged() bool {
	return os.Geteuid() == 0
}
