package passedit

import (
	"context"

	"github.com/credforge/passedit/directory"
)

// CapabilityEditPassword is the capability an operator role must carry to
// view or submit the account-maintenance form.
const CapabilityEditPassword = "editpassword"

// Operator identifies the authenticated staff member making a request.
// It comes from the verified operator token, never from form input.
type Operator struct {
	UserID    string
	Role      string
	SessionID string
}

// Submission carries the raw maintenance form fields. Password and Email
// are independent: either may be blank, which means leave that credential
// untouched.
type Submission struct {
	EditToken       string
	Username        string
	Password        string
	PasswordConfirm string
	Email           string
}

// Directory is the account store the engine resolves targets against and
// writes credential updates to. [directory.RedisDirectory] is the
// production implementation.
type Directory interface {
	FindByName(ctx context.Context, name string) (*directory.AccountIdentity, error)
	UpdateFields(ctx context.Context, id string, fields map[string]string) error
}
