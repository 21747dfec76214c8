package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when Redis cannot serve a request.
var ErrRedisUnavailable = errors.New("redis unavailable")

const anonymousFlag = "anonymous"

// RedisDirectory stores accounts as Redis hashes keyed by account ID,
// with a name-to-ID index for lookup by username.
type RedisDirectory struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisDirectory(redis redis.UniversalClient, prefix string) *RedisDirectory {
	return &RedisDirectory{
		redis:  redis,
		prefix: prefix,
	}
}

func (d *RedisDirectory) userKey(id string) string {
	return d.prefix + ":u:" + id
}

func (d *RedisDirectory) nameKey(name string) string {
	return d.prefix + ":n:" + name
}

// FindByName resolves a username to an [AccountIdentity]. A blank name
// resolves to nothing. Accounts flagged anonymous are returned with
// Anonymous set so callers can refuse them.
func (d *RedisDirectory) FindByName(ctx context.Context, name string) (*AccountIdentity, error) {
	if name == "" {
		return nil, ErrNotFound
	}

	id, err := d.redis.Get(ctx, d.nameKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	anon, err := d.redis.HGet(ctx, d.userKey(id), anonymousFlag).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return &AccountIdentity{
		ID:        id,
		Name:      name,
		Anonymous: anon == "1",
	}, nil
}

// UpdateFields writes the given fields to an existing account in a
// single HSET. An empty field map is rejected rather than silently
// succeeding, and a missing account is [ErrNotFound].
func (d *RedisDirectory) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	key := d.userKey(id)

	exists, err := d.redis.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	args := make([]interface{}, 0, len(fields)*2)
	for field, value := range fields {
		args = append(args, field, value)
	}

	if err := d.redis.HSet(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// CreateUser registers a new account and returns its generated ID.
// Intended for seeding and tests; the maintenance endpoint never
// creates accounts.
func (d *RedisDirectory) CreateUser(ctx context.Context, name string, fields map[string]string) (string, error) {
	if name == "" {
		return "", errors.New("name cannot be empty")
	}

	id := uuid.NewString()

	args := make([]interface{}, 0, (len(fields)+1)*2)
	args = append(args, "name", name)
	for field, value := range fields {
		args = append(args, field, value)
	}

	_, err := d.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, d.userKey(id), args...)
		pipe.Set(ctx, d.nameKey(name), id, 0)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return id, nil
}

// Get returns all stored fields for an account.
func (d *RedisDirectory) Get(ctx context.Context, id string) (map[string]string, error) {
	fields, err := d.redis.HGetAll(ctx, d.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return fields, nil
}
