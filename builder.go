package authcore

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/lancerhq/authcore/password"
	"github.com/lancerhq/authcore/session"
	"github.com/lancerhq/authcore/token"
)

// Builder assembles a [Core] from its external collaborators. The session
// cache and credential store are injected rather than constructed globally so
// tests can substitute in-memory fakes with controllable TTL and contents.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  CredentialStore
	hasher PasswordHasher
	built  bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the session cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialStore sets the transactional store for User and Auth records.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithPasswordHasher overrides the default argon2id hasher.
func (b *Builder) WithPasswordHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

// Build validates the configuration, wires the token manager and session
// store, and returns a ready Core. A builder can be used once.
func (b *Builder) Build() (*Core, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.store == nil {
		return nil, errors.New("credential store required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	tm, err := token.NewManager(
		token.Config{
			Secret: b.config.JWT.AccessSecret,
			TTL:    b.config.JWT.AccessTTL,
			Issuer: b.config.JWT.Issuer,
		},
		token.Config{
			Secret: b.config.JWT.RefreshSecret,
			TTL:    b.config.JWT.RefreshTTL,
			Issuer: b.config.JWT.Issuer,
		},
	)
	if err != nil {
		return nil, err
	}

	hasher := b.hasher
	if hasher == nil {
		hasher, err = password.NewArgon2(password.Config{
			Memory:      b.config.Password.Memory,
			Time:        b.config.Password.Time,
			Parallelism: b.config.Password.Parallelism,
			SaltLength:  b.config.Password.SaltLength,
			KeyLength:   b.config.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
	}

	b.built = true

	return &Core{
		config:   b.config,
		store:    b.store,
		hasher:   hasher,
		tokens:   tm,
		sessions: session.NewStore(b.redis, b.config.Session.KeyPrefix),
		metrics:  NewMetrics(),
	}, nil
}
