package authcore

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lancerhq/authcore/session"
	"github.com/lancerhq/authcore/token"
)

// Core orchestrates signup, login, token refresh, validation, logout, and
// password reset over its injected collaborators. It holds no mutable state
// of its own; all shared state lives in the session cache and the credential
// store, which synchronize independently.
type Core struct {
	config   Config
	store    CredentialStore
	hasher   PasswordHasher
	tokens   *token.Manager
	sessions *session.Store
	metrics  *Metrics
}

// MetricsSnapshot returns a copy of the core's counters.
func (c *Core) MetricsSnapshot() map[MetricID]uint64 {
	if c == nil {
		return map[MetricID]uint64{}
	}
	return c.metrics.Snapshot()
}

func (c *Core) metricInc(id MetricID) {
	if c != nil {
		c.metrics.Inc(id)
	}
}

// Login verifies the email/password pair and, on success, mints a fresh
// token pair, stores it in the session cache for the refresh lifetime, and
// stamps the last-login time. Unknown email and wrong password return the
// same [ErrInvalidCredentials] so callers cannot enumerate accounts.
func (c *Core) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if c == nil || c.hasher == nil {
		return nil, ErrCoreNotReady
	}
	if email == "" || plaintext == "" {
		c.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	auth, user, err := c.store.GetAuthByEmail(ctx, email)
	if err != nil {
		c.metricInc(MetricLoginFailure)
		if KindOf(err) == KindNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, internalErr(err)
	}

	ok, err := c.hasher.Verify(plaintext, auth.PasswordHash)
	if err != nil || !ok {
		c.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	pair, err := c.generatePair(user.ID, auth.Email)
	if err != nil {
		c.metricInc(MetricLoginFailure)
		return nil, internalErr(err)
	}

	if err := c.sessions.Save(ctx, user.ID, session.Pair(*pair), c.config.SessionTTL()); err != nil {
		c.metricInc(MetricLoginFailure)
		return nil, internalErr(err)
	}

	if err := c.store.UpdateLastLogin(ctx, auth.ID, time.Now()); err != nil {
		// Timestamp update is best-effort and must not invalidate the
		// session that was just created.
		log.Print("authcore: last-login update failed")
	}

	c.metricInc(MetricLoginSuccess)
	return &LoginResult{Tokens: pair, User: user}, nil
}

// Validate is the guard-side verification used for every protected
// operation. It verifies the access token cryptographically, then re-checks
// the session cache: the cached access token must equal the presented one.
// The cache re-check re-derives revocation at every authenticated call, not
// just at refresh time.
func (c *Core) Validate(ctx context.Context, accessToken string) (*token.Claims, error) {
	if c == nil || c.tokens == nil {
		return nil, ErrCoreNotReady
	}
	if accessToken == "" {
		c.metricInc(MetricValidateFailure)
		return nil, ErrTokenRequired
	}

	claims, err := c.tokens.VerifyAccess(accessToken)
	if err != nil {
		c.metricInc(MetricValidateFailure)
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrAccessTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	cached, err := c.sessions.Get(ctx, claims.Subject)
	if err != nil {
		c.metricInc(MetricValidateFailure)
		if errors.Is(err, redis.Nil) {
			return nil, ErrAccessTokenMismatch
		}
		return nil, internalErr(err)
	}
	if cached.AccessToken != accessToken {
		c.metricInc(MetricValidateFailure)
		return nil, ErrAccessTokenMismatch
	}

	return claims, nil
}

// Logout removes the session cache entry for userID, revoking both tokens of
// the active pair instantly. It is idempotent: a user who never logged in, or
// already logged out, gets the same success message.
func (c *Core) Logout(ctx context.Context, userID string) (*Message, error) {
	if c == nil || c.sessions == nil {
		return nil, ErrCoreNotReady
	}
	if err := c.sessions.Delete(ctx, userID); err != nil {
		return nil, internalErr(err)
	}
	c.metricInc(MetricLogout)
	return &Message{Message: "Logged out successfully"}, nil
}

// Profile returns the user record for an authenticated user id.
func (c *Core) Profile(ctx context.Context, userID string) (*User, error) {
	if c == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}
	user, err := c.store.GetUserByID(ctx, userID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, ErrUserNotFound
		}
		return nil, internalErr(err)
	}
	return user, nil
}

// generatePair mints a fresh access/refresh pair for the subject. The role
// claim is the configured default role; per-user roles are carried, not
// enforced, by this core.
func (c *Core) generatePair(userID, email string) (*TokenPair, error) {
	access, refresh, err := c.tokens.Pair(userID, email, c.config.Security.DefaultRole)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
