// Package session implements the server-side token-pair cache. The cache is
// the single source of truth for whether a pair is still active: an entry
// maps a user id to exactly one pair, expiring with the refresh token.
// Deleting the entry revokes both tokens instantly regardless of their
// remaining cryptographic validity.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures so callers can
// tell an unreachable cache from a missing entry.
var ErrRedisUnavailable = errors.New("session cache unavailable")

// ErrPairMismatch is returned by Replace when the stored pair does not
// byte-match the presented one, or the entry is gone. Both cases collapse
// deliberately: a rotated, expired, or foreign pair must be indistinguishable
// to the caller.
var ErrPairMismatch = errors.New("token pair mismatch")

// Pair is the cached token pair. The JSON field names are part of the stored
// format and are compared inside the rotation script.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

const (
	replaceStatusMissing  int64 = 0
	replaceStatusMismatch int64 = 1
	replaceStatusReplaced int64 = 2
)

// replacePairScript is the atomic replace-if-equals primitive. Comparing and
// swapping inside Redis closes the window where two concurrent refresh calls
// could both pass an exact-match check before either overwrote the entry:
// exactly one caller observes a match, the rest see a mismatch.
const replacePairScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
local ok, stored = pcall(cjson.decode, data)
if not ok or type(stored) ~= "table" then
  return 1
end
if stored["accessToken"] ~= ARGV[1] or stored["refreshToken"] ~= ARGV[2] then
  return 1
end
redis.call("SET", KEYS[1], ARGV[3], "PX", ARGV[4])
return 2
`

var replacePairLua = redis.NewScript(replacePairScript)

// Store is the Redis-backed pair cache. All operations are keyed by user id;
// at most one entry exists per user.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a Store on the given Redis client. prefix namespaces the
// keys so several deployments can share one Redis.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "ac"
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) key(userID string) string {
	return s.prefix + ":pair:" + userID
}

// Save stores pair under userID with the given TTL, replacing any previous
// entry. The TTL must equal the refresh-token lifetime so cache expiry and
// signature expiry land on the same wall-clock boundary.
func (s *Store) Save(ctx context.Context, userID string, pair Pair, ttl time.Duration) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the cached pair for userID. A missing or expired entry is
// reported as redis.Nil.
func (s *Store) Get(ctx context.Context, userID string) (Pair, error) {
	var pair Pair

	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return pair, err
		}
		return pair, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if err := json.Unmarshal(data, &pair); err != nil {
		return pair, err
	}
	return pair, nil
}

// Delete removes the entry for userID. Deleting a missing entry is not an
// error; logout stays idempotent on top of this.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Replace atomically swaps the entry for userID from presented to next,
// resetting the TTL, iff the stored pair byte-matches presented. A missing
// entry or any mismatch returns ErrPairMismatch and leaves the entry
// untouched. This is the rotation primitive: once one refresh call wins,
// replaying the old pair can never match again.
func (s *Store) Replace(ctx context.Context, userID string, presented, next Pair, ttl time.Duration) error {
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}

	status, err := replacePairLua.Run(ctx, s.redis,
		[]string{s.key(userID)},
		presented.AccessToken,
		presented.RefreshToken,
		string(data),
		ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch status {
	case replaceStatusReplaced:
		return nil
	case replaceStatusMissing, replaceStatusMismatch:
		return ErrPairMismatch
	default:
		return fmt.Errorf("session: unexpected replace status %d", status)
	}
}
