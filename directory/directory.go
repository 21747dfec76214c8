package directory

import "errors"

// ErrNotFound is returned when a named account does not exist in the
// directory, or resolves to an anonymous (unregistered) identity.
var ErrNotFound = errors.New("account not found")

// Field names accepted by UpdateFields. These are the only credential
// fields the maintenance endpoint writes.
const (
	FieldPasswordHash = "password_hash"
	FieldEmail        = "email"
)

// AccountIdentity is the resolved identity of a directory account.
type AccountIdentity struct {
	ID        string
	Name      string
	Anonymous bool
}
