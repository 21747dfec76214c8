package passedit

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/credforge/passedit/password"
	"github.com/credforge/passedit/permission"
	"github.com/credforge/passedit/session"
)

// Builder assembles an [Engine]. Capabilities and roles are fixed at
// build time; the registry and role manager freeze before the engine is
// returned.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	permissions []string
	roles       map[string][]string

	directory Directory

	built bool
}

// New returns a builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPermissions declares the capability names, in bit order.
func (b *Builder) WithPermissions(perms []string) *Builder {
	b.permissions = perms
	return b
}

// WithRoles maps role names to the capabilities they carry.
func (b *Builder) WithRoles(r map[string][]string) *Builder {
	b.roles = r
	return b
}

func (b *Builder) WithDirectory(d Directory) *Builder {
	b.directory = d
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, freezes the capability model, and
// returns a ready engine. A builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(b.permissions) == 0 {
		return nil, errors.New("permissions must be provided")
	}

	if len(b.roles) == 0 {
		return nil, errors.New("roles must be provided")
	}

	if b.directory == nil {
		return nil, errors.New("directory required")
	}

	registry := permission.NewRegistry(cfg.Permission.RootBitReserved)
	for _, name := range b.permissions {
		if _, err := registry.Register(name); err != nil {
			return nil, err
		}
	}
	registry.Freeze()

	if _, ok := registry.Bit(CapabilityEditPassword); !ok {
		return nil, errors.New("capability " + CapabilityEditPassword + " must be registered")
	}

	roleManager := permission.NewRoleManager(registry)
	for role, capabilities := range b.roles {
		if err := roleManager.RegisterRole(role, capabilities); err != nil {
			return nil, err
		}
	}
	roleManager.Freeze()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		registry:     registry,
		roleManager:  roleManager,
		sessionStore: session.NewStore(b.redis, cfg.Token.RedisPrefix),
		metrics:      NewMetrics(cfg.Metrics),
		passwordHash: hasher,
		directory:    b.directory,
	}

	b.built = true
	return engine, nil
}
