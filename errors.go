package authcore

import "errors"

// Kind classifies an authentication outcome so callers can branch on the
// failure class instead of matching concrete error values or types.
type Kind uint8

const (
	// KindInternal marks unexpected failures that propagate unchanged.
	KindInternal Kind = iota
	// KindConflict marks uniqueness violations (duplicate signup email).
	KindConflict
	// KindUnauthorized marks credential, token, and session-match failures.
	KindUnauthorized
	// KindBadRequest marks precondition failures caught before any state change.
	KindBadRequest
	// KindNotFound marks lookups for records that do not exist.
	KindNotFound
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is the tagged outcome type returned by the core. Kind carries the
// failure class, Message the user-facing text. Err, when set, holds the
// underlying cause and participates in errors.Is/As chains.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err. Errors that are not (and do not wrap)
// an *Error report KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Well-known outcomes. Messages are part of the observable contract and are
// returned verbatim to the HTTP layer.
var (
	// ErrEmailExists is returned by Signup when the email is already registered.
	ErrEmailExists = &Error{Kind: KindConflict, Message: "User with this email already exists"}
	// ErrInvalidCredentials is returned by Login for both unknown email and
	// wrong password. The two cases are intentionally indistinguishable.
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "Invalid credentials"}
	// ErrInvalidTokens is returned by RefreshTokens when the presented pair
	// does not byte-match the cached pair (absent, rotated, cross-user, and
	// tampered entries all collapse here).
	ErrInvalidTokens = &Error{Kind: KindUnauthorized, Message: "Invalid tokens"}
	// ErrTokenExpired is the refresh-flow translation of an expired signature.
	ErrTokenExpired = &Error{Kind: KindUnauthorized, Message: "Token has expired"}
	// ErrAccessTokenExpired is the guard-flow translation of an expired signature.
	ErrAccessTokenExpired = &Error{Kind: KindUnauthorized, Message: "Access token has expired"}
	// ErrTokenInvalid covers every non-expiry verification failure.
	ErrTokenInvalid = &Error{Kind: KindUnauthorized, Message: "Invalid token"}
	// ErrAccessTokenMismatch is returned by Validate when the presented access
	// token verifies but is not the cached one.
	ErrAccessTokenMismatch = &Error{Kind: KindUnauthorized, Message: "Invalid access token"}
	// ErrTokenRequired is returned when a protected operation has no bearer token.
	ErrTokenRequired = &Error{Kind: KindUnauthorized, Message: "Authentication required"}
	// ErrTokenNotWellFormed rejects refresh input that is not JWT-shaped at
	// all, before any verification or cache work.
	ErrTokenNotWellFormed = &Error{Kind: KindBadRequest, Message: "Malformed token"}
	// ErrSamePassword rejects a reset where old and new passwords are equal.
	ErrSamePassword = &Error{Kind: KindBadRequest, Message: "Old and new password cannot be the same"}
	// ErrOldPasswordMismatch rejects a reset when the old password does not verify.
	ErrOldPasswordMismatch = &Error{Kind: KindBadRequest, Message: "Old password is incorrect"}
	// ErrUserNotFound is returned when no Auth record exists for the user id.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "User not found"}
	// ErrCoreNotReady guards against calls on a partially constructed Core.
	ErrCoreNotReady = &Error{Kind: KindInternal, Message: "auth core not initialized"}
)

// internalErr wraps an unexpected dependency failure so it propagates with
// KindInternal without losing the cause. Errors that already carry a Kind
// pass through unchanged.
func internalErr(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}
