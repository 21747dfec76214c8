package passedit

import (
	"context"
	"errors"
	"fmt"

	"github.com/credforge/passedit/password"
	"github.com/credforge/passedit/permission"
	"github.com/credforge/passedit/session"
)

// Engine runs the privileged account-maintenance flow: capability
// checks, edit token issuance and verification, and sparse credential
// updates against the directory.
type Engine struct {
	config       Config
	registry     *permission.Registry
	roleManager  *permission.RoleManager
	sessionStore *session.Store
	metrics      *Metrics
	passwordHash *password.Argon2
	directory    Directory
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// HasCapability reports whether the operator's role carries the named
// capability. Unregistered roles and capabilities carry nothing.
func (e *Engine) HasCapability(operator Operator, capability string) bool {
	if e == nil {
		return false
	}

	mask, ok := e.roleManager.GetMask(operator.Role)
	if !ok {
		return false
	}

	bit, ok := e.registry.Bit(capability)
	if !ok {
		return false
	}

	return mask.Has(bit, e.config.Permission.RootBitReserved)
}

// IssueEditToken returns the operator's current edit token for embedding
// in the maintenance form, creating one if the session has none. The
// capability gate runs first: operators who may not submit the form do
// not get a token either.
func (e *Engine) IssueEditToken(ctx context.Context, operator Operator) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	if !e.HasCapability(operator, CapabilityEditPassword) {
		e.metricInc(MetricEditUnauthorized)
		return "", ErrUnauthorized
	}

	token, err := e.sessionStore.EnsureToken(ctx, operator.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return "", err
	}

	e.metricInc(MetricTokenIssued)
	return token, nil
}
