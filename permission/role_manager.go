package permission

import (
	"errors"
	"sync"
)

// RoleManager maps operator role names to capability bitmasks built
// against a frozen [Registry].
type RoleManager struct {
	registry *Registry

	mu         sync.RWMutex
	roleToMask map[string]*Mask64
	frozen     bool
}

func NewRoleManager(registry *Registry) *RoleManager {
	return &RoleManager{
		registry:   registry,
		roleToMask: make(map[string]*Mask64),
	}
}

// RegisterRole assigns the named capabilities to a role. Every capability
// must already be registered; unknown names are an error so a typo cannot
// silently grant nothing. Must be called before [RoleManager.Freeze].
func (rm *RoleManager) RegisterRole(name string, capabilities []string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.frozen {
		return errors.New("role manager frozen")
	}
	if name == "" {
		return errors.New("role name cannot be empty")
	}
	if _, exists := rm.roleToMask[name]; exists {
		return errors.New("role already registered")
	}

	var mask Mask64
	for _, capability := range capabilities {
		bit, ok := rm.registry.Bit(capability)
		if !ok {
			return errors.New("unknown capability: " + capability)
		}
		mask.Set(bit)
	}

	rm.roleToMask[name] = &mask
	return nil
}

// GetMask returns the capability mask for a role, or false for an
// unregistered role.
func (rm *RoleManager) GetMask(role string) (*Mask64, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	mask, ok := rm.roleToMask[role]
	return mask, ok
}

// Freeze prevents further role registrations.
func (rm *RoleManager) Freeze() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.frozen = true
}
