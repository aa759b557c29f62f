package tracker

import (
	"fmt"
	"sync/atomic"
)

// Role is the part an instance plays in a session
type Role string

const (
	// RoleHost is the session's authoritative host and the only ledger writer
	RoleHost Role = "host"
	// RoleObserver runs the same transitions for display but never writes
	RoleObserver Role = "observer"
)

// ParseRole validates a configured role name
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHost, RoleObserver:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsPrivilegedWriter implements WriterCheck
func (r Role) IsPrivilegedWriter() bool {
	return r == RoleHost
}

// FeatureToggle is a Toggle that can be flipped at runtime
type FeatureToggle struct {
	enabled atomic.Bool
}

// NewFeatureToggle creates a toggle with the given initial value
func NewFeatureToggle(enabled bool) *FeatureToggle {
	t := &FeatureToggle{}
	t.enabled.Store(enabled)
	return t
}

func (t *FeatureToggle) Enabled() bool {
	return t.enabled.Load()
}

func (t *FeatureToggle) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}
