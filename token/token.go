// Package token signs and verifies the compact claims tokens used by the
// auth core. Access and refresh tokens share one claims shape but are signed
// with independent HS256 secrets and lifetimes, so neither can stand in for
// the other.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failure modes. Callers must be able to tell an expired token
// from a malformed one; everything that is not an expiry collapses into
// ErrMalformed so partial trust is impossible.
var (
	// ErrExpired reports a token whose signature verified but whose
	// expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrMalformed reports every other verification failure: bad
	// signature, wrong algorithm, garbled payload, wrong secret.
	ErrMalformed = errors.New("token malformed")
)

// Claims is the payload embedded in both tokens of a pair. ID (jti) is a
// fresh random identifier per pair so two pairs minted for the same user in
// the same second still differ.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Config carries one secret/lifetime side of the codec.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Manager holds the access and refresh configurations. Instances are
// immutable and safe for concurrent use.
type Manager struct {
	access  Config
	refresh Config
}

// NewManager validates the two configurations and returns a Manager. Both
// secrets are required and must differ; both TTLs must be positive.
func NewManager(access, refresh Config) (*Manager, error) {
	if len(access.Secret) == 0 || len(refresh.Secret) == 0 {
		return nil, errors.New("token: both secrets required")
	}
	if string(access.Secret) == string(refresh.Secret) {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if access.TTL <= 0 || refresh.TTL <= 0 {
		return nil, errors.New("token: TTLs must be positive")
	}
	return &Manager{access: access, refresh: refresh}, nil
}

// Pair mints an access and a refresh token for the given subject. Both carry
// the same sub/email/role payload and the same fresh jti; they differ only
// in signing secret and expiry. Pair has no side effects; caching the
// result is the caller's responsibility.
func (m *Manager) Pair(userID, email, role string) (accessToken, refreshToken string, err error) {
	now := time.Now()
	jti := uuid.NewString()

	accessToken, err = sign(m.access, userID, email, role, jti, now)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = sign(m.refresh, userID, email, role, jti, now)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// VerifyAccess verifies tokenStr against the access secret.
func (m *Manager) VerifyAccess(tokenStr string) (*Claims, error) {
	return verify(m.access, tokenStr)
}

// VerifyRefresh verifies tokenStr against the refresh secret.
func (m *Manager) VerifyRefresh(tokenStr string) (*Claims, error) {
	return verify(m.refresh, tokenStr)
}

func sign(cfg Config, userID, email, role, jti string, now time.Time) (string, error) {
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
}

// verify is the single normalization point for verification failures:
// expired signatures surface as ErrExpired, everything else as ErrMalformed.
// It never returns partially trusted claims.
func verify(cfg Config, tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// WellFormed reports whether tokenStr has the three-segment compact JWT
// shape. It is a cheap precondition check, not a verification: refresh input
// failing it is rejected as a validation error before any cache work.
func WellFormed(tokenStr string) bool {
	if tokenStr == "" {
		return false
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts[:2] {
		if p == "" {
			return false
		}
	}
	return true
}
