package passedit

import (
	"errors"
	"time"
)

// Config carries the tunable parameters for the engine. It is set once
// during Build and treated as immutable afterwards.
type Config struct {
	Token      TokenConfig
	Password   PasswordConfig
	Permission PermissionConfig
	Metrics    MetricsConfig
}

// TokenConfig controls operator sessions and their edit tokens.
type TokenConfig struct {
	RedisPrefix string
	SessionTTL  time.Duration
}

// PasswordConfig holds the Argon2id parameters used for hashing new
// passwords before storage.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PermissionConfig controls the capability registry.
type PermissionConfig struct {
	RootBitReserved bool
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the engine starts from when the
// caller supplies none.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			RedisPrefix: "pes",
			SessionTTL:  30 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Permission: PermissionConfig{
			RootBitReserved: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// all fields are value types; a shallow copy is a deep copy
	return cfg
}

// Validate rejects configurations that would weaken token or hash
// guarantees at runtime.
func (c *Config) Validate() error {
	if c.Token.RedisPrefix == "" {
		return errors.New("token redis prefix required")
	}
	if c.Token.SessionTTL < time.Minute {
		return errors.New("session TTL below one minute")
	}
	if c.Password.Memory < 8*1024 {
		return errors.New("argon2 memory below minimum")
	}
	if c.Password.Time < 1 {
		return errors.New("argon2 time below minimum")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("argon2 parallelism below minimum")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("argon2 salt length below minimum")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("argon2 key length below minimum")
	}
	return nil
}
