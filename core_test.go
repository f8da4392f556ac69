package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// fakeStore is an in-memory CredentialStore with injectable failures.
type fakeStore struct {
	mu      sync.Mutex
	users   map[string]*User // by user id
	auths   map[string]*Auth // by user id
	byEmail map[string]string

	createErr    error
	lastLoginErr error

	lastLoginCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*User),
		auths:   make(map[string]*Auth),
		byEmail: make(map[string]string),
	}
}

func (s *fakeStore) CreateUserWithAuth(_ context.Context, user *User, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return nil, ErrEmailExists
	}

	created := *user
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()

	s.users[created.ID] = &created
	s.byEmail[created.Email] = created.ID
	s.auths[created.ID] = &Auth{
		ID:           uuid.NewString(),
		UserID:       created.ID,
		Email:        created.Email,
		PasswordHash: passwordHash,
	}
	return &created, nil
}

func (s *fakeStore) GetAuthByEmail(_ context.Context, email string) (*Auth, *User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.byEmail[email]
	if !ok {
		return nil, nil, ErrUserNotFound
	}
	return s.auths[userID], s.users[userID], nil
}

func (s *fakeStore) GetAuthByUserID(_ context.Context, userID string) (*Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth, ok := s.auths[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return auth, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *fakeStore) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth, ok := s.auths[userID]
	if !ok {
		return ErrUserNotFound
	}
	auth.PasswordHash = newHash
	return nil
}

func (s *fakeStore) UpdateLastLogin(_ context.Context, authID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastLoginCalls++
	if s.lastLoginErr != nil {
		return s.lastLoginErr
	}
	for _, auth := range s.auths {
		if auth.ID == authID {
			t := at
			auth.LastLoginAt = &t
		}
	}
	return nil
}

// fakeHasher trades argon2 cost for test speed; the hash is recognizable and
// the comparison exact, which is all the core's logic depends on.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "h:" + password, nil
}

func (fakeHasher) Verify(password, encodedHash string) (bool, error) {
	return encodedHash == "h:"+password, nil
}

type coreFixture struct {
	core  *Core
	store *fakeStore
	mr    *miniredis.Miniredis
}

func newTestCore(t *testing.T, mutate func(*Config)) *coreFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")
	if mutate != nil {
		mutate(&cfg)
	}

	store := newFakeStore()
	core, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithCredentialStore(store).
		WithPasswordHasher(fakeHasher{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return &coreFixture{core: core, store: store, mr: mr}
}

func (f *coreFixture) signup(t *testing.T, email, password string) *User {
	t.Helper()
	user, err := f.core.Signup(context.Background(), SignupInput{
		Email:       email,
		FirstName:   "Ada",
		LastName:    "Okoye",
		CountryCode: "NG",
		Password:    password,
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return user
}

func (f *coreFixture) login(t *testing.T, email, password string) *LoginResult {
	t.Helper()
	res, err := f.core.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return res
}

func TestSignupCreatesActiveUser(t *testing.T) {
	f := newTestCore(t, nil)

	user := f.signup(t, "ada@example.com", "s3cret-pass")

	if user.ID == "" {
		t.Fatal("created user has no id")
	}
	if user.Status != AccountActive {
		t.Fatalf("status = %v, want AccountActive", user.Status)
	}

	auth, _, err := f.store.GetAuthByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("auth lookup failed: %v", err)
	}
	if auth.PasswordHash == "s3cret-pass" || !strings.HasPrefix(auth.PasswordHash, "h:") {
		t.Fatalf("stored hash %q is not a hash of the password", auth.PasswordHash)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "first-pass")

	_, err := f.core.Signup(context.Background(), SignupInput{
		Email:    "ada@example.com",
		Password: "second-pass",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("want ErrEmailExists, got %v", err)
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("kind = %v, want conflict", KindOf(err))
	}
}

func TestSignupStoreFailureIsInternal(t *testing.T) {
	f := newTestCore(t, nil)
	f.store.createErr = fmt.Errorf("connection refused")

	_, err := f.core.Signup(context.Background(), SignupInput{
		Email:    "ada@example.com",
		Password: "pass",
	})
	if err == nil || KindOf(err) != KindInternal {
		t.Fatalf("want internal error, got %v", err)
	}
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	f := newTestCore(t, nil)
	user := f.signup(t, "ada@example.com", "s3cret-pass")

	res := f.login(t, "ada@example.com", "s3cret-pass")

	if res.User == nil || res.User.ID != user.ID {
		t.Fatalf("login returned wrong user: %+v", res.User)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}

	// The fresh access token must immediately pass the guard path.
	claims, err := f.core.Validate(context.Background(), res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Validate rejected a fresh token: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("claims subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Email != "ada@example.com" {
		t.Fatalf("claims email = %q", claims.Email)
	}
	if claims.Role != "FREELANCER" {
		t.Fatalf("claims role = %q, want configured default", claims.Role)
	}
}

func TestLoginUnknownEmailAndWrongPasswordMatch(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")

	_, unknownErr := f.core.Login(context.Background(), "ghost@example.com", "s3cret-pass")
	_, wrongErr := f.core.Login(context.Background(), "ada@example.com", "not-the-pass")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email: want ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", wrongErr)
	}
	// Identical observable outcome: no way to enumerate accounts.
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("messages diverge: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLoginEmptyCredentials(t *testing.T) {
	f := newTestCore(t, nil)

	if _, err := f.core.Login(context.Background(), "", "pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty email: got %v", err)
	}
	if _, err := f.core.Login(context.Background(), "a@b.c", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty password: got %v", err)
	}
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")
	f.store.lastLoginErr = fmt.Errorf("deadlock detected")

	res := f.login(t, "ada@example.com", "s3cret-pass")

	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); err != nil {
		t.Fatalf("session invalidated by best-effort timestamp failure: %v", err)
	}
	if f.store.lastLoginCalls != 1 {
		t.Fatalf("lastLoginCalls = %d, want 1", f.store.lastLoginCalls)
	}
}

func TestLoginReplacesPreviousSession(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")

	first := f.login(t, "ada@example.com", "s3cret-pass")
	second := f.login(t, "ada@example.com", "s3cret-pass")

	if _, err := f.core.Validate(context.Background(), first.Tokens.AccessToken); !errors.Is(err, ErrAccessTokenMismatch) {
		t.Fatalf("first session still valid after re-login: %v", err)
	}
	if _, err := f.core.Validate(context.Background(), second.Tokens.AccessToken); err != nil {
		t.Fatalf("second session rejected: %v", err)
	}
}

func TestValidateRequiresToken(t *testing.T) {
	f := newTestCore(t, nil)

	if _, err := f.core.Validate(context.Background(), ""); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("want ErrTokenRequired, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	f := newTestCore(t, nil)

	if _, err := f.core.Validate(context.Background(), "not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
}

func TestValidateExpiredAccessToken(t *testing.T) {
	f := newTestCore(t, func(cfg *Config) {
		cfg.JWT.AccessTTL = time.Millisecond
	})
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	time.Sleep(5 * time.Millisecond)

	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); !errors.Is(err, ErrAccessTokenExpired) {
		t.Fatalf("want ErrAccessTokenExpired, got %v", err)
	}
}

func TestValidateAfterLogout(t *testing.T) {
	f := newTestCore(t, nil)
	user := f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	msg, err := f.core.Logout(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if msg.Message != "Logged out successfully" {
		t.Fatalf("logout message = %q", msg.Message)
	}

	// Cryptographic validity is irrelevant once the cache entry is gone.
	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); !errors.Is(err, ErrAccessTokenMismatch) {
		t.Fatalf("want ErrAccessTokenMismatch after logout, got %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newTestCore(t, nil)

	for i := 0; i < 2; i++ {
		msg, err := f.core.Logout(context.Background(), "never-logged-in")
		if err != nil {
			t.Fatalf("Logout %d failed: %v", i, err)
		}
		if msg.Message != "Logged out successfully" {
			t.Fatalf("logout message = %q", msg.Message)
		}
	}
}

func TestValidateAfterSessionExpiry(t *testing.T) {
	f := newTestCore(t, func(cfg *Config) {
		cfg.JWT.AccessTTL = time.Hour
		cfg.JWT.RefreshTTL = 2 * time.Hour
	})
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	// The cache entry expires with the refresh lifetime even while the
	// access token still verifies.
	f.mr.FastForward(3 * time.Hour)

	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); !errors.Is(err, ErrAccessTokenMismatch) {
		t.Fatalf("want ErrAccessTokenMismatch after cache expiry, got %v", err)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	next, err := f.core.RefreshTokens(context.Background(), *res.Tokens)
	if err != nil {
		t.Fatalf("RefreshTokens failed: %v", err)
	}
	if next.AccessToken == res.Tokens.AccessToken || next.RefreshToken == res.Tokens.RefreshToken {
		t.Fatal("rotation returned a token from the old pair")
	}

	// Old pair is dead, new pair is live.
	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); !errors.Is(err, ErrAccessTokenMismatch) {
		t.Fatalf("old access token still valid: %v", err)
	}
	if _, err := f.core.Validate(context.Background(), next.AccessToken); err != nil {
		t.Fatalf("new access token rejected: %v", err)
	}
}

func TestRefreshIsSingleUse(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	if _, err := f.core.RefreshTokens(context.Background(), *res.Tokens); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if _, err := f.core.RefreshTokens(context.Background(), *res.Tokens); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("replay: want ErrInvalidTokens, got %v", err)
	}
}

func TestRefreshAfterRevocation(t *testing.T) {
	f := newTestCore(t, nil)
	user := f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	if _, err := f.core.Logout(context.Background(), user.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// The refresh token still verifies cryptographically, but the cache
	// entry is gone, so the pair is dead.
	if _, err := f.core.RefreshTokens(context.Background(), *res.Tokens); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("want ErrInvalidTokens after revocation, got %v", err)
	}
}

func TestRefreshRejectsMixedPair(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")
	next, err := f.core.RefreshTokens(context.Background(), *res.Tokens)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	// Both tokens verify individually but were never issued as this pair.
	mixed := TokenPair{AccessToken: res.Tokens.AccessToken, RefreshToken: next.RefreshToken}
	if _, err := f.core.RefreshTokens(context.Background(), mixed); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("mixed pair: want ErrInvalidTokens, got %v", err)
	}
}

func TestRefreshRejectsCrossUserPair(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "pass-one")
	f.signup(t, "bayo@example.com", "pass-two")

	ada := f.login(t, "ada@example.com", "pass-one")
	bayo := f.login(t, "bayo@example.com", "pass-two")

	// A pair stitched together from two users' sessions never matches
	// either cache entry.
	stitched := TokenPair{AccessToken: ada.Tokens.AccessToken, RefreshToken: bayo.Tokens.RefreshToken}
	if _, err := f.core.RefreshTokens(context.Background(), stitched); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("cross-user pair: want ErrInvalidTokens, got %v", err)
	}

	// Neither victim's live session is disturbed by the attempt.
	if _, err := f.core.Validate(context.Background(), ada.Tokens.AccessToken); err != nil {
		t.Fatalf("ada's session disturbed: %v", err)
	}
	if _, err := f.core.Validate(context.Background(), bayo.Tokens.AccessToken); err != nil {
		t.Fatalf("bayo's session disturbed: %v", err)
	}
}

func TestRefreshRejectsMalformedInput(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	cases := []struct {
		name string
		pair TokenPair
	}{
		{"empty access", TokenPair{AccessToken: "", RefreshToken: res.Tokens.RefreshToken}},
		{"empty refresh", TokenPair{AccessToken: res.Tokens.AccessToken, RefreshToken: ""}},
		{"non-jwt access", TokenPair{AccessToken: "two.parts", RefreshToken: res.Tokens.RefreshToken}},
		{"non-jwt refresh", TokenPair{AccessToken: res.Tokens.AccessToken, RefreshToken: "garbage"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.core.RefreshTokens(context.Background(), tc.pair)
			if !errors.Is(err, ErrTokenNotWellFormed) {
				t.Fatalf("want ErrTokenNotWellFormed, got %v", err)
			}
		})
	}

	// Malformed input is rejected before the cache is consulted: the
	// session must still be intact.
	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); err != nil {
		t.Fatalf("session disturbed by rejected input: %v", err)
	}
}

func TestRefreshRejectsForgedRefreshToken(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	// JWT-shaped but not signed with the refresh secret. The access token
	// from the pair qualifies: it is a real JWT under the wrong key.
	forged := TokenPair{AccessToken: res.Tokens.AccessToken, RefreshToken: res.Tokens.AccessToken}
	if _, err := f.core.RefreshTokens(context.Background(), forged); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshExpiredRefreshToken(t *testing.T) {
	f := newTestCore(t, func(cfg *Config) {
		cfg.JWT.AccessTTL = time.Millisecond
		cfg.JWT.RefreshTTL = 10 * time.Millisecond
	})
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")

	time.Sleep(20 * time.Millisecond)

	if _, err := f.core.RefreshTokens(context.Background(), *res.Tokens); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestResetPasswordHappyPath(t *testing.T) {
	f := newTestCore(t, nil)
	user := f.signup(t, "ada@example.com", "old-pass")
	res := f.login(t, "ada@example.com", "old-pass")

	msg, err := f.core.ResetPassword(context.Background(), user.ID, "old-pass", "new-pass")
	if err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if msg.Message != "Password reset successful" {
		t.Fatalf("message = %q", msg.Message)
	}

	// Old password is dead, new one works.
	if _, err := f.core.Login(context.Background(), "ada@example.com", "old-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := f.core.Login(context.Background(), "ada@example.com", "new-pass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// Default behavior keeps the existing session alive.
	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); err != nil {
		t.Fatalf("session revoked without the revocation flag: %v", err)
	}
}

func TestResetPasswordRevokesSessionWhenConfigured(t *testing.T) {
	f := newTestCore(t, func(cfg *Config) {
		cfg.Security.RevokeSessionOnPasswordReset = true
	})
	user := f.signup(t, "ada@example.com", "old-pass")
	res := f.login(t, "ada@example.com", "old-pass")

	if _, err := f.core.ResetPassword(context.Background(), user.ID, "old-pass", "new-pass"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if _, err := f.core.Validate(context.Background(), res.Tokens.AccessToken); !errors.Is(err, ErrAccessTokenMismatch) {
		t.Fatalf("session survived configured revocation: %v", err)
	}
}

func TestResetPasswordPreconditions(t *testing.T) {
	f := newTestCore(t, nil)
	user := f.signup(t, "ada@example.com", "old-pass")

	t.Run("same password", func(t *testing.T) {
		_, err := f.core.ResetPassword(context.Background(), user.ID, "old-pass", "old-pass")
		if !errors.Is(err, ErrSamePassword) {
			t.Fatalf("want ErrSamePassword, got %v", err)
		}
	})
	t.Run("unknown user", func(t *testing.T) {
		_, err := f.core.ResetPassword(context.Background(), "ghost", "old-pass", "new-pass")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("want ErrUserNotFound, got %v", err)
		}
	})
	t.Run("wrong old password", func(t *testing.T) {
		_, err := f.core.ResetPassword(context.Background(), user.ID, "not-old", "new-pass")
		if !errors.Is(err, ErrOldPasswordMismatch) {
			t.Fatalf("want ErrOldPasswordMismatch, got %v", err)
		}
	})

	// None of the rejected attempts changed the stored hash.
	if _, err := f.core.Login(context.Background(), "ada@example.com", "old-pass"); err != nil {
		t.Fatalf("original password no longer works: %v", err)
	}
}

func TestProfile(t *testing.T) {
	f := newTestCore(t, nil)
	user := f.signup(t, "ada@example.com", "s3cret-pass")

	got, err := f.core.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if got.Email != "ada@example.com" || got.ID != user.ID {
		t.Fatalf("Profile returned %+v", got)
	}

	if _, err := f.core.Profile(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestMetricsCountOutcomes(t *testing.T) {
	f := newTestCore(t, nil)
	f.signup(t, "ada@example.com", "s3cret-pass")
	res := f.login(t, "ada@example.com", "s3cret-pass")
	_, _ = f.core.Login(context.Background(), "ada@example.com", "wrong")
	if _, err := f.core.RefreshTokens(context.Background(), *res.Tokens); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := f.core.RefreshTokens(context.Background(), *res.Tokens); !errors.Is(err, ErrInvalidTokens) {
		t.Fatalf("replay: got %v", err)
	}

	snap := f.core.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricSignupSuccess:        1,
		MetricLoginSuccess:         1,
		MetricLoginFailure:         1,
		MetricRefreshSuccess:       1,
		MetricRefreshReplayBlocked: 1,
	}
	for id, n := range want {
		if snap[id] != n {
			t.Errorf("metric %v = %d, want %d", id, snap[id], n)
		}
	}
}

func TestBuilderValidation(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("a-secret")
	cfg.JWT.RefreshSecret = []byte("r-secret")

	if _, err := New().WithConfig(cfg).WithCredentialStore(newFakeStore()).Build(); err == nil {
		t.Fatal("Build succeeded without a redis client")
	}
	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("Build succeeded without a credential store")
	}

	b := New().WithConfig(cfg).WithRedis(rdb).WithCredentialStore(newFakeStore())
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("second Build on the same builder succeeded")
	}
}
