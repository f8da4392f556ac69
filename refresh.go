package authcore

import (
	"context"
	"errors"

	"github.com/lancerhq/authcore/session"
	"github.com/lancerhq/authcore/token"
)

// RefreshTokens exchanges a valid token pair for a fresh one. The protocol,
// in order:
//
//  1. Both submitted tokens must be JWT-shaped. This is a validation
//     precondition, rejected before any verification or cache work.
//  2. The refresh token must verify against the refresh secret. Expiry and
//     malformation translate to distinct unauthorized outcomes.
//  3. The cached pair for the subject must byte-match the submitted pair,
//     and is atomically replaced by the new pair in the same step. A pair
//     that was already rotated, revoked, expired out of the cache, or mixed
//     across users fails this match even if it still verifies
//     cryptographically: refresh tokens are single-use.
//
// The replacement resets the cache TTL to the full refresh lifetime, and the
// new pair is minted from the verified claims with a fresh jti.
func (c *Core) RefreshTokens(ctx context.Context, pair TokenPair) (*TokenPair, error) {
	if c == nil || c.tokens == nil {
		return nil, ErrCoreNotReady
	}

	if !token.WellFormed(pair.AccessToken) || !token.WellFormed(pair.RefreshToken) {
		c.metricInc(MetricRefreshFailure)
		return nil, ErrTokenNotWellFormed
	}

	claims, err := c.tokens.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		c.metricInc(MetricRefreshFailure)
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	access, refresh, err := c.tokens.Pair(claims.Subject, claims.Email, claims.Role)
	if err != nil {
		c.metricInc(MetricRefreshFailure)
		return nil, internalErr(err)
	}
	next := TokenPair{AccessToken: access, RefreshToken: refresh}

	// The compare-and-swap is the single-use gate: exactly one concurrent
	// caller can win the swap, every other presentation of the old pair
	// observes a mismatch.
	err = c.sessions.Replace(ctx, claims.Subject,
		session.Pair(pair), session.Pair(next), c.config.SessionTTL())
	if err != nil {
		if errors.Is(err, session.ErrPairMismatch) {
			c.metricInc(MetricRefreshReplayBlocked)
			c.metricInc(MetricRefreshFailure)
			return nil, ErrInvalidTokens
		}
		c.metricInc(MetricRefreshFailure)
		return nil, internalErr(err)
	}

	c.metricInc(MetricRefreshSuccess)
	return &next, nil
}
