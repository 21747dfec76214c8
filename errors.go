package passedit

import "errors"

var (
	// ErrUnauthorized is returned when the operator's role lacks the
	// capability required for the requested operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionForgery is returned when the submitted edit token does not
	// match the operator's session token.
	ErrSessionForgery = errors.New("session token mismatch")
	// ErrPasswordMismatch is returned when the password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidEmail is returned when a non-blank email fails syntax validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrUnknownTarget is returned when the target username resolves to no
	// registered account.
	ErrUnknownTarget = errors.New("unknown or anonymous target account")
	// ErrNothingToUpdate is returned when every updatable field in the
	// submission is blank.
	ErrNothingToUpdate = errors.New("nothing to update")
	// ErrNotUpdated is returned when the directory write fails after all
	// checks passed.
	ErrNotUpdated = errors.New("account could not be updated")
	// ErrEngineNotReady is returned when the engine is used before Build completed.
	ErrEngineNotReady = errors.New("engine not ready")
)
