// Package postgres implements the credential store on PostgreSQL. The users
// and auths tables are one-to-one, both carry a unique email, and signup
// writes them in a single transaction so a User can never exist without its
// Auth or vice versa.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	authcore "github.com/lancerhq/authcore"
)

// DB is the subset of pgxpool.Pool the store uses. pgxmock satisfies it as
// well, which keeps the store testable without a live database.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed [authcore.CredentialStore].
type Store struct {
	db DB
}

// NewStore creates a Store on the given connection pool.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// CreateUserWithAuth inserts the user and its credential row in one
// transaction. A unique violation on either email column maps to
// [authcore.ErrEmailExists]; every other failure propagates unchanged.
func (s *Store) CreateUserWithAuth(ctx context.Context, user *authcore.User, passwordHash string) (*authcore.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := *user
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, business_name, country_code, status, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, created.ID, created.Email, created.FirstName, created.LastName,
		nullable(created.BusinessName), created.CountryCode,
		int16(created.Status), created.Verified, created.CreatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO auths (id, user_id, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), created.ID, created.Email, passwordHash)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetAuthByEmail looks up a credential row by email together with its linked
// user. A missing row is reported as [authcore.ErrUserNotFound].
func (s *Store) GetAuthByEmail(ctx context.Context, email string) (*authcore.Auth, *authcore.User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT a.id, a.user_id, a.email, a.password_hash, a.last_login_at,
		       u.id, u.email, u.first_name, u.last_name, u.business_name,
		       u.country_code, u.status, u.verified, u.created_at
		FROM auths a
		JOIN users u ON u.id = a.user_id
		WHERE a.email = $1
	`, email)

	var (
		auth         authcore.Auth
		user         authcore.User
		lastLogin    *time.Time
		businessName *string
		status       int16
	)
	err := row.Scan(
		&auth.ID, &auth.UserID, &auth.Email, &auth.PasswordHash, &lastLogin,
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &businessName,
		&user.CountryCode, &status, &user.Verified, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, authcore.ErrUserNotFound
		}
		return nil, nil, err
	}

	auth.LastLoginAt = lastLogin
	if businessName != nil {
		user.BusinessName = *businessName
	}
	user.Status = authcore.AccountStatus(status)
	return &auth, &user, nil
}

// GetAuthByUserID looks up the credential row for a user id.
func (s *Store) GetAuthByUserID(ctx context.Context, userID string) (*authcore.Auth, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, email, password_hash, last_login_at
		FROM auths
		WHERE user_id = $1
	`, userID)

	var (
		auth      authcore.Auth
		lastLogin *time.Time
	)
	err := row.Scan(&auth.ID, &auth.UserID, &auth.Email, &auth.PasswordHash, &lastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authcore.ErrUserNotFound
		}
		return nil, err
	}
	auth.LastLoginAt = lastLogin
	return &auth, nil
}

// GetUserByID retrieves a user profile by id.
func (s *Store) GetUserByID(ctx context.Context, userID string) (*authcore.User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, business_name, country_code, status, verified, created_at
		FROM users
		WHERE id = $1
	`, userID)

	var (
		user         authcore.User
		businessName *string
		status       int16
	)
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&businessName, &user.CountryCode, &status, &user.Verified, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authcore.ErrUserNotFound
		}
		return nil, err
	}
	if businessName != nil {
		user.BusinessName = *businessName
	}
	user.Status = authcore.AccountStatus(status)
	return &user, nil
}

// UpdatePasswordHash overwrites the stored hash for a user.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE auths SET password_hash = $2 WHERE user_id = $1
	`, userID, newHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authcore.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the credential row's last-login time.
func (s *Store) UpdateLastLogin(ctx context.Context, authID string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE auths SET last_login_at = $2 WHERE id = $1
	`, authID, at.UTC())
	return err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return authcore.ErrEmailExists
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
