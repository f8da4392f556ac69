package authcore

import (
	"context"
	"time"
)

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus uint8

const (
	// AccountActive is the default state for freshly created accounts.
	AccountActive AccountStatus = iota
	// AccountPendingVerification marks accounts awaiting email verification.
	AccountPendingVerification
	// AccountDisabled marks administratively disabled accounts.
	AccountDisabled
)

// User is the identity-facing profile record. Password material never
// appears here; credentials live on the linked [Auth] row.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	BusinessName string        `json:"businessName,omitempty"`
	CountryCode  string        `json:"countryCode"`
	Status       AccountStatus `json:"status"`
	Verified     bool          `json:"verified"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Auth is the credential record, created atomically with its User. Email is
// duplicated from the User row so credential lookup needs no join on write
// paths.
type Auth struct {
	ID           string
	UserID       string
	Email        string
	PasswordHash string
	LastLoginAt  *time.Time
}

// SignupInput carries the fields accepted by [Core.Signup]. Shape validation
// (email syntax, password strength) is the transport layer's concern; the
// core only acts on the values.
type SignupInput struct {
	Email        string
	FirstName    string
	LastName     string
	BusinessName string
	CountryCode  string
	Password     string
}

// LoginResult is returned by [Core.Login]: the freshly minted pair plus the
// authenticated user's profile.
type LoginResult struct {
	Tokens *TokenPair `json:"tokens"`
	User   *User      `json:"user"`
}

// TokenPair is a matched access/refresh token set. It is never persisted as
// a row; the authoritative copy lives in the session cache for the lifetime
// of the refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CredentialStore is the transactional persistence boundary for User and
// Auth records. CreateUserWithAuth must be all-or-nothing and must surface
// a duplicate email as [ErrEmailExists]; every other failure propagates
// unchanged.
type CredentialStore interface {
	CreateUserWithAuth(ctx context.Context, user *User, passwordHash string) (*User, error)
	GetAuthByEmail(ctx context.Context, email string) (*Auth, *User, error)
	GetAuthByUserID(ctx context.Context, userID string) (*Auth, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	UpdateLastLogin(ctx context.Context, authID string, at time.Time) error
}

// PasswordHasher is the opaque one-way hash capability. Verify must be
// constant-time with respect to the password bytes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Message is the body returned by operations whose only output is a
// confirmation string (logout, password reset).
type Message struct {
	Message string `json:"message"`
}
