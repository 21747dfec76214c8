package passedit

import (
	"context"
	"errors"
	"log"

	"github.com/credforge/passedit/directory"
)

// EditCredentials performs one maintenance submission: verify the edit
// token, validate input, resolve the target account, and write the
// requested credential fields. Checks run in a fixed order and the first
// failure ends the request; the directory is never touched before every
// check has passed, so a failed request mutates nothing.
func (e *Engine) EditCredentials(ctx context.Context, operator Operator, sub Submission) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if !e.HasCapability(operator, CapabilityEditPassword) {
		e.metricInc(MetricEditUnauthorized)
		return ErrUnauthorized
	}

	ok, err := e.sessionStore.VerifyToken(ctx, operator.SessionID, sub.EditToken)
	if err != nil {
		// fail closed: an unreachable token store cannot prove the
		// submission is genuine
		e.metricInc(MetricSessionForgery)
		return ErrSessionForgery
	}
	if !ok {
		e.metricInc(MetricSessionForgery)
		return ErrSessionForgery
	}

	if !passwordsMatch(sub.Password, sub.PasswordConfirm) {
		e.metricInc(MetricPasswordMismatch)
		return ErrPasswordMismatch
	}

	if !isBlank(sub.Email) && !emailValid(sub.Email) {
		e.metricInc(MetricInvalidEmail)
		return ErrInvalidEmail
	}

	target, err := e.directory.FindByName(ctx, sub.Username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			e.metricInc(MetricUnknownTarget)
			return ErrUnknownTarget
		}
		e.metricInc(MetricStoreFailure)
		return ErrNotUpdated
	}
	if target.Anonymous {
		e.metricInc(MetricUnknownTarget)
		return ErrUnknownTarget
	}

	fields, err := e.buildUpdate(sub)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		e.metricInc(MetricNothingToUpdate)
		return ErrNothingToUpdate
	}

	if err := e.directory.UpdateFields(ctx, target.ID, fields); err != nil {
		e.metricInc(MetricStoreFailure)
		return ErrNotUpdated
	}

	// best effort: a fresh token for the next form render. The update
	// already happened, so a rotation failure must not fail the request.
	if err := e.sessionStore.RotateToken(ctx, operator.SessionID); err != nil {
		log.Print("passedit: edit token rotation failed: ", err)
	}

	e.metricInc(MetricEditSuccess)
	return nil
}

// buildUpdate maps the non-blank submission fields to directory writes.
// Passwords are hashed here; the plaintext never leaves this function.
// Email is stored verbatim.
func (e *Engine) buildUpdate(sub Submission) (map[string]string, error) {
	fields := make(map[string]string, 2)

	if !isBlank(sub.Password) {
		hash, err := e.passwordHash.Hash(sub.Password)
		if err != nil {
			e.metricInc(MetricStoreFailure)
			return nil, ErrNotUpdated
		}
		fields[directory.FieldPasswordHash] = hash
	}

	if !isBlank(sub.Email) {
		fields[directory.FieldEmail] = sub.Email
	}

	return fields, nil
}
