package authcore

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the auth core. Construct it with
// [DefaultConfig] or [FromEnv] and treat it as immutable after [Builder.Build].
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Password PasswordConfig
	Security SecurityConfig
	Database DatabaseConfig
	HTTP     HTTPConfig
}

// JWTConfig holds the two independent signing secrets and lifetimes. The
// access token is short-lived (minutes); the refresh token is long-lived
// (days) and also bounds the session cache TTL.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// SessionConfig controls the Redis-backed token-pair cache.
type SessionConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// PasswordConfig holds the argon2id parameters used by the default hasher.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityConfig gathers hardening switches that change observable behavior.
type SecurityConfig struct {
	// DefaultRole is embedded in every token pair's role claim.
	DefaultRole string
	// RevokeSessionOnPasswordReset deletes the user's cached token pair
	// after a successful password reset. Off by default: the upstream
	// behavior leaves the session alive.
	RevokeSessionOnPasswordReset bool
}

// DatabaseConfig points at the credential store.
type DatabaseConfig struct {
	URL string
}

// HTTPConfig is consumed by cmd/authd only.
type HTTPConfig struct {
	Host string
	Port int
}

// DefaultConfig returns the baseline configuration: 5-minute access tokens,
// 7-day refresh tokens, and moderate argon2id cost. Secrets and the database
// URL must still be supplied before Build.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  5 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "authcore",
		},
		Session: SessionConfig{
			RedisAddr: "localhost:6379",
			KeyPrefix: "ac",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        1,
			Parallelism: 4,
			SaltLength:  16,
			KeyLength:   32,
		},
		Security: SecurityConfig{
			DefaultRole: "FREELANCER",
		},
		HTTP: HTTPConfig{
			Host: "localhost",
			Port: 3000,
		},
	}
}

// FromEnv layers the recognized environment variables over [DefaultConfig]:
//
//	ACCESS_TOKEN_SECRET    access-token signing secret (required)
//	REFRESH_TOKEN_SECRET   refresh-token signing secret (required)
//	ACCESS_TOKEN_TTL       access lifetime in seconds
//	REFRESH_TOKEN_TTL      refresh lifetime in seconds
//	DATABASE_URL           postgres connection string
//	REDIS_ADDR             session cache address
//	HOST, PORT             HTTP bind address
//
// Missing required values are reported by [Config.Validate], not here, so a
// partially configured environment still yields an inspectable Config.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.JWT.AccessSecret = []byte(os.Getenv("ACCESS_TOKEN_SECRET"))
	cfg.JWT.RefreshSecret = []byte(os.Getenv("REFRESH_TOKEN_SECRET"))

	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ACCESS_TOKEN_TTL %q: %w", v, err)
		}
		cfg.JWT.AccessTTL = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid REFRESH_TOKEN_TTL %q: %w", v, err)
		}
		cfg.JWT.RefreshTTL = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Session.RedisAddr = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.HTTP.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.HTTP.Port = port
	}

	return cfg, nil
}

// Validate rejects configurations the core cannot run with. The two signing
// secrets must be present and distinct: sharing one secret would let an
// access token pass refresh verification.
func (c *Config) Validate() error {
	if len(c.JWT.AccessSecret) == 0 {
		return errors.New("config: access token secret required")
	}
	if len(c.JWT.RefreshSecret) == 0 {
		return errors.New("config: refresh token secret required")
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("config: access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("config: access TTL must be positive")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("config: refresh TTL must be positive")
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		return errors.New("config: access TTL must be shorter than refresh TTL")
	}
	if c.Security.DefaultRole == "" {
		return errors.New("config: default role required")
	}
	if c.Password.SaltLength < 8 || c.Password.KeyLength < 16 {
		return errors.New("config: password hash parameters too weak")
	}
	return nil
}

// SessionTTL is the cache lifetime for a token pair. Keeping it equal to the
// refresh lifetime makes a pair unverifiable and unfetchable at the same
// wall-clock boundary.
func (c *Config) SessionTTL() time.Duration {
	return c.JWT.RefreshTTL
}
