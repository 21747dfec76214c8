package passedit

import (
	"context"
	"time"

	"github.com/credforge/passedit/internal"
	"github.com/credforge/passedit/session"
)

// OpenOperatorSession creates a server-side session for an authenticated
// operator and returns its ID. Callers bind the ID into an operator token
// for the web layer. The edit token is issued lazily on first form render,
// not here.
func (e *Engine) OpenOperatorSession(ctx context.Context, userID, role string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	id, err := internal.NewSessionID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	sess := &session.Session{
		SessionID: id.String(),
		UserID:    userID,
		Role:      role,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(e.config.Token.SessionTTL).Unix(),
	}

	if err := e.sessionStore.Save(ctx, sess, e.config.Token.SessionTTL); err != nil {
		return "", err
	}

	return sess.SessionID, nil
}

// CloseOperatorSession deletes a session and with it the session's edit
// token. Closing an already absent session is not an error.
func (e *Engine) CloseOperatorSession(ctx context.Context, sessionID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.sessionStore.Delete(ctx, sessionID)
}
