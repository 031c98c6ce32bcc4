package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned by the code store.
var (
	ErrCodeNotFound = errors.New("verification code not found or expired")
	ErrCodeMismatch = errors.New("verification code does not match")
)

const (
	codeKeyPrefix    = "verify-code::"
	pendingKeyPrefix = "pending-signup::"

	// DefaultCodeTTL bounds how long an emailed code stays redeemable.
	DefaultCodeTTL = 10 * time.Minute
)

// PendingSignup is the signup payload parked between the initiate and
// complete steps of registration.
type PendingSignup struct {
	Email      string `json:"email"`
	ProfileKey string `json:"profileKey"`
	Remarks    string `json:"remarks,omitempty"`
}

// CodeStore keeps short-lived email verification codes in Redis. Codes
// are bcrypt-hashed at rest so a Redis dump never exposes a live code.
type CodeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCodeStore creates a code store with the given TTL (DefaultCodeTTL
// when ttl is zero).
func NewCodeStore(client *redis.Client, ttl time.Duration) *CodeStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &CodeStore{client: client, ttl: ttl}
}

// SaveCode stores the hash of a freshly issued code under the email,
// replacing any previous code for the same address.
func (s *CodeStore) SaveCode(ctx context.Context, email, code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash verification code: %w", err)
	}
	return s.client.Set(ctx, codeKeyPrefix+email, string(hash), s.ttl).Err()
}

// VerifyCode checks a submitted code against the stored hash. The code is
// consumed on success; a wrong code leaves it in place for a retry until
// the TTL runs out.
func (s *CodeStore) VerifyCode(ctx context.Context, email, code string) error {
	key := codeKeyPrefix + email
	hash, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCodeNotFound
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return ErrCodeMismatch
	}
	return s.client.Del(ctx, key).Err()
}

// SavePendingSignup parks signup details until the emailed code comes back.
func (s *CodeStore) SavePendingSignup(ctx context.Context, pending PendingSignup) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending signup: %w", err)
	}
	return s.client.Set(ctx, pendingKeyPrefix+pending.Email, string(payload), s.ttl).Err()
}

// TakePendingSignup retrieves and consumes the parked signup for an email.
func (s *CodeStore) TakePendingSignup(ctx context.Context, email string) (*PendingSignup, error) {
	key := pendingKeyPrefix + email
	payload, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	var pending PendingSignup
	if err := json.Unmarshal([]byte(payload), &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending signup: %w", err)
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return nil, err
	}
	return &pending, nil
}
