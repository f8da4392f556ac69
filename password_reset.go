package authcore

import (
	"context"
	"log"
)

// ResetPassword replaces the stored hash for an authenticated user. The
// userID comes from a verified access token, never from the request body.
// Preconditions, checked in order: the new password must differ from the
// old, the Auth record must exist, and the old password must verify against
// the stored hash.
//
// By default a successful reset leaves the active session untouched, which
// matches the upstream behavior. Setting
// [SecurityConfig.RevokeSessionOnPasswordReset] deletes the cached pair so
// the user must log in again with the new password.
func (c *Core) ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) (*Message, error) {
	if c == nil || c.hasher == nil || c.store == nil {
		return nil, ErrCoreNotReady
	}

	if oldPassword == newPassword {
		c.metricInc(MetricPasswordResetFailure)
		return nil, ErrSamePassword
	}

	auth, err := c.store.GetAuthByUserID(ctx, userID)
	if err != nil {
		c.metricInc(MetricPasswordResetFailure)
		if KindOf(err) == KindNotFound {
			return nil, ErrUserNotFound
		}
		return nil, internalErr(err)
	}

	ok, err := c.hasher.Verify(oldPassword, auth.PasswordHash)
	if err != nil || !ok {
		c.metricInc(MetricPasswordResetFailure)
		return nil, ErrOldPasswordMismatch
	}

	newHash, err := c.hasher.Hash(newPassword)
	if err != nil {
		c.metricInc(MetricPasswordResetFailure)
		return nil, internalErr(err)
	}

	if err := c.store.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		c.metricInc(MetricPasswordResetFailure)
		return nil, internalErr(err)
	}

	if c.config.Security.RevokeSessionOnPasswordReset {
		// Revocation is best-effort: the hash is already replaced and the
		// reset must report success.
		if err := c.sessions.Delete(ctx, userID); err != nil {
			log.Print("authcore: session revocation after password reset failed")
		}
	}

	c.metricInc(MetricPasswordResetSuccess)
	return &Message{Message: "Password reset successful"}, nil
}
