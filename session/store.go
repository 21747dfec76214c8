package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/credforge/passedit/internal"
)

// ErrRedisUnavailable is returned when Redis cannot serve a request.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionNotFound is returned when a session does not exist or has expired.
var ErrSessionNotFound = errors.New("session not found")

// Store persists operator sessions and their edit tokens in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Save persists a [Session] with the given TTL.
func (s *Store) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(sess.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get retrieves a session by ID. A record whose ExpiresAt has passed is
// deleted and reported as [ErrSessionNotFound], so a stale Redis TTL can
// never resurrect an expired session.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}
	sess.SessionID = sessionID

	if sess.ExpiresAt <= time.Now().Unix() {
		if err := s.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// EnsureToken returns the session's edit token, generating and persisting
// one if the session has none yet. Repeated calls within a session return
// the same token.
func (s *Store) EnsureToken(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if sess.EditToken != "" {
		return sess.EditToken, nil
	}

	token, err := internal.NewEditToken()
	if err != nil {
		return "", err
	}

	sess.EditToken = token
	if err := s.Save(ctx, sess, s.remainingTTL(sess)); err != nil {
		return "", err
	}

	return token, nil
}

// VerifyToken compares a submitted token against the session's stored
// token in constant time. It has no side effects: a failed comparison
// does not invalidate the stored token, and a successful one does not
// consume it. Missing session or empty stored token verify as false.
func (s *Store) VerifyToken(ctx context.Context, sessionID, submitted string) (bool, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	if sess.EditToken == "" || submitted == "" {
		return false, nil
	}

	match := subtle.ConstantTimeCompare([]byte(sess.EditToken), []byte(submitted)) == 1
	return match, nil
}

// RotateToken replaces the session's edit token with a fresh value,
// preserving the session's remaining lifetime. Forms rendered against
// the old token will no longer verify.
func (s *Store) RotateToken(ctx context.Context, sessionID string) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	token, err := internal.NewEditToken()
	if err != nil {
		return err
	}

	sess.EditToken = token
	return s.Save(ctx, sess, s.remainingTTL(sess))
}

func (s *Store) remainingTTL(sess *Session) time.Duration {
	remaining := time.Until(time.Unix(sess.ExpiresAt, 0))
	if remaining < time.Second {
		remaining = time.Second
	}
	return remaining
}

// Ping reports Redis round-trip latency for health checks.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
